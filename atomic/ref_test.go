package atomic

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type point struct {
	X, Y int
}

func TestRef_LoadStore(t *testing.T) {
	var drops Int32
	track := WithDrop(func(*string) { drops.FetchInc() })

	r := NewRefOf("a", track)
	h := r.Load()
	assert.Equal(t, "a", *h.Value())
	assert.Equal(t, int64(2), h.Count())
	assert.Equal(t, "a", r.String())

	r.Store(NewHandle("b", track))
	// h keeps "a" alive after the cell lets go of it.
	assert.Equal(t, int32(0), drops.Load())
	assert.Equal(t, "a", *h.Value())
	h.Release()
	assert.Equal(t, int32(1), drops.Load())

	old := r.Swap(NewHandle("c", track))
	assert.Equal(t, "b", *old.Value())
	old.Release()
	assert.Equal(t, int32(2), drops.Load())

	r.Close()
	assert.Equal(t, int32(3), drops.Load())
}

func TestRef_CompareAndSetIdentity(t *testing.T) {
	var drops Int32
	track := WithDrop(func(*point) { drops.FetchInc() })

	a := NewHandle(point{1, 2}, track)
	r := NewRef(a.Clone())
	twin := NewHandle(point{1, 2}, track)
	next := NewHandle(point{3, 4}, track)

	// Equal payloads in different allocations never match.
	actual, ok := r.CompareAndSet(twin, next)
	assert.False(t, ok)
	assert.True(t, actual.Same(a))
	assert.False(t, actual.Same(twin))
	actual.Release()

	actual, ok = r.CompareAndSet(a, next)
	assert.True(t, ok)
	assert.Nil(t, actual)
	assert.Equal(t, int64(1), a.Count())

	cur := r.Load()
	assert.Equal(t, point{3, 4}, *cur.Value())
	cur.Release()

	a.Release()
	twin.Release()
	assert.Equal(t, int32(2), drops.Load())

	r.Close()
	assert.Equal(t, int32(3), drops.Load())
}

func TestRef_CompareAndSetWeak(t *testing.T) {
	r := NewRefOf(1)
	defer r.Close()

	cur := r.Load()
	stale := NewHandle(1)
	next := NewHandle(2)

	actual, ok := r.CompareAndSetWeak(stale, next)
	require.False(t, ok)
	assert.True(t, actual.Same(cur))
	actual.Release()

	for {
		actual, ok = r.CompareAndSetWeak(cur, next)
		if ok {
			break
		}
		actual.Release()
	}
	assert.Nil(t, actual)

	cur.Release()
	stale.Release()
}

func TestRef_CompareAndExchange(t *testing.T) {
	var drops Int32
	track := WithDrop(func(*string) { drops.FetchInc() })

	r := NewRefOf("x", track)
	h := r.Load()
	other := NewHandle("y", track)

	witness := r.CompareAndExchange(h, other)
	assert.True(t, witness.Same(h))
	// witness carries the reference the cell held.
	assert.Equal(t, int64(2), h.Count())
	witness.Release()
	h.Release()
	assert.Equal(t, int32(1), drops.Load())

	stale := NewHandle("z", track)
	next := NewHandle("q", track)
	witness = r.CompareAndExchange(stale, next)
	assert.Equal(t, "y", *witness.Value())
	assert.Equal(t, "q", *next.Value())
	witness.Release()
	stale.Release()
	next.Release()
	assert.Equal(t, int32(3), drops.Load())

	r.Close()
	assert.Equal(t, int32(4), drops.Load())
}

func TestRef_Update(t *testing.T) {
	r := NewRefOf(1)
	defer r.Close()

	prev := r.FetchUpdate(func(cur *Handle[int]) *Handle[int] {
		return NewHandle(*cur.Value() + 1)
	})
	assert.Equal(t, 1, *prev.Value())
	assert.Equal(t, int64(1), prev.Count())
	prev.Release()

	next := r.UpdateAndGet(func(cur *Handle[int]) *Handle[int] {
		return NewHandle(*cur.Value() * 10)
	})
	assert.Equal(t, 20, *next.Value())
	assert.Equal(t, int64(2), next.Count())

	// Returning cur republishes the same allocation.
	same := r.FetchUpdate(func(cur *Handle[int]) *Handle[int] {
		return cur
	})
	assert.True(t, same.Same(next))
	assert.Equal(t, int64(3), same.Count())
	same.Release()
	next.Release()
}

func TestRef_UpdatePanicSafety(t *testing.T) {
	var drops Int32
	track := WithDrop(func(*int) { drops.FetchInc() })

	r := NewRefOf(0, track)
	calls := 0

	assert.PanicsWithValue(t, "third", func() {
		r.FetchUpdate(func(cur *Handle[int]) *Handle[int] {
			calls++
			if calls == 3 {
				panic("third")
			}
			// Make this round lose.
			r.Store(NewHandle(*cur.Value()+1, track))
			return NewHandle(*cur.Value()*10, track)
		})
	})

	assert.Equal(t, 3, calls)
	// Two losing candidates and the two payloads stored over.
	assert.Equal(t, int32(4), drops.Load())

	cur := r.Load()
	assert.Equal(t, 2, *cur.Value())
	assert.Equal(t, int64(2), cur.Count())
	cur.Release()

	r.Close()
	assert.Equal(t, int32(5), drops.Load())
}

func TestRef_ConcurrentStores(t *testing.T) {
	const tags = 64
	drops := make([]Int32, tags+1)
	track := WithDrop(func(v *int) { drops[*v].FetchInc() })

	r := NewRefOf(tags, track)

	var g errgroup.Group
	for i := 0; i < tags; i++ {
		g.Go(func() error {
			r.Store(NewHandle(i, track))
			return nil
		})
	}
	require.NoError(t, g.Wait())

	last := r.Load()
	final := *last.Value()
	last.Release()

	for tag := range drops {
		want := int32(1)
		if tag == final {
			want = 0
		}
		assert.Equal(t, want, drops[tag].Load(), "tag %d", tag)
	}

	r.Close()
	assert.Equal(t, int32(1), drops[final].Load())
}

type tagged struct {
	tag  int
	dead Bool
}

func TestRef_LoadDuringSwap(t *testing.T) {
	total := numWorkers*numRounds + 1
	drops := make([]Int32, total)
	track := WithDrop(func(p *tagged) {
		if !p.dead.CompareAndSetIfFalse(true) {
			t.Errorf("tag %d dropped twice", p.tag)
		}
		drops[p.tag].FetchInc()
	})

	r := NewRef(NewHandle(tagged{}, track))

	var (
		stop    Bool
		readers sync.WaitGroup
	)
	readers.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer readers.Done()
			for !stop.Load() {
				h := r.Load()
				if h.Value().dead.Load() {
					t.Errorf("loaded dropped tag %d", h.Value().tag)
				}
				h.Release()
			}
		}()
	}

	var writers errgroup.Group
	for w := 0; w < numWorkers; w++ {
		writers.Go(func() error {
			for j := 0; j < numRounds; j++ {
				old := r.Swap(NewHandle(tagged{tag: w*numRounds + j + 1}, track))
				old.Release()
			}
			return nil
		})
	}
	require.NoError(t, writers.Wait())

	stop.Store(true)
	readers.Wait()
	r.Close()

	for tag := range drops {
		assert.Equal(t, int32(1), drops[tag].Load(), "tag %d", tag)
	}
}

func TestHandle_Misuse(t *testing.T) {
	h := NewHandle(1)
	c := h.Clone()
	assert.True(t, h.Same(c))
	assert.False(t, h.Same(nil))
	c.Release()

	h.Release()
	assert.PanicsWithValue(t, "atomic: handle released twice", h.Release)
	assert.PanicsWithValue(t, "atomic: use of released handle", func() { h.Value() })
	assert.Equal(t, "<released>", h.String())

	r := NewRefOf(2)
	published := NewHandle(3)
	r.Store(published)
	assert.PanicsWithValue(t, "atomic: use of released handle", func() { r.Store(published) })

	r.Close()
	assert.PanicsWithValue(t, errClosed, func() { r.Load() })
	assert.PanicsWithValue(t, errClosed, r.Close)
}

func TestRef_ClosedStaysClosed(t *testing.T) {
	var drops Int32
	track := WithDrop(func(*int) { drops.FetchInc() })

	r := NewRefOf(1, track)
	r.Close()
	assert.Equal(t, int32(1), drops.Load())

	h := NewHandle(2, track)
	assert.PanicsWithValue(t, errClosed, func() { r.Store(h) })
	assert.PanicsWithValue(t, errClosed, func() { r.Swap(h) })

	// Nothing was published, so the cell is still closed.
	assert.Nil(t, r.Inner().Load())
	assert.PanicsWithValue(t, errClosed, func() { r.Load() })

	expected := NewHandle(3, track)
	assert.PanicsWithValue(t, errClosed, func() { r.CompareAndSet(expected, h) })
	assert.PanicsWithValue(t, errClosed, func() { r.CompareAndSetWeak(expected, h) })
	assert.PanicsWithValue(t, errClosed, func() { r.CompareAndExchange(expected, h) })
	assert.PanicsWithValue(t, errClosed, func() { r.CompareAndExchangeWeak(expected, h) })
	assert.PanicsWithValue(t, errClosed, func() { r.Clone() })

	// Every failed call left h with the caller.
	assert.Equal(t, int64(1), h.Count())
	assert.Equal(t, int64(1), expected.Count())
	h.Release()
	expected.Release()
	assert.Equal(t, int32(3), drops.Load())
}

func TestRef_CompareAndExchangeWeak(t *testing.T) {
	r := NewRefOf("a")
	defer r.Close()

	cur := r.Load()
	next := NewHandle("b")

	for {
		r.CompareAndExchangeWeak(cur, next).Release()
		h := r.Load()
		published := !h.Same(cur)
		h.Release()
		if published {
			break
		}
	}
	assert.Equal(t, int64(1), cur.Count())

	h := r.Load()
	assert.Equal(t, "b", *h.Value())
	h.Release()
	cur.Release()
}

// go test -bench=. -benchmem -v
func BenchmarkRef_Load(b *testing.B) {
	r := NewRefOf(point{1, 2})
	defer r.Close()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			r.Load().Release()
		}
	})
}

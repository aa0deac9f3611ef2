package cas

import (
	"math"
	"sync"
	"testing"

	"github.com/grpc-boot/atom/bitcodec"
	"github.com/grpc-boot/atom/slot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const (
	workers = 10
	rounds  = 1000
)

var (
	f64 = bitcodec.Float64{}
	i64 = bitcodec.Integer[int64]{}
)

func TestFetchUpdate(t *testing.T) {
	s := slot.New64(i64.Encode(10))

	prev := FetchUpdate[int64, uint64](s, i64, func(v int64) int64 { return v * 3 })
	assert.Equal(t, int64(10), prev)
	assert.Equal(t, int64(30), i64.Decode(s.Load()))

	next := UpdateAndGet[int64, uint64](s, i64, func(v int64) int64 { return v - 31 })
	assert.Equal(t, int64(-1), next)
	assert.Equal(t, int64(-1), i64.Decode(s.Load()))
}

func TestFetchAccumulate(t *testing.T) {
	s := slot.New64(i64.Encode(7))
	max := func(cur, x int64) int64 {
		if x > cur {
			return x
		}
		return cur
	}

	assert.Equal(t, int64(7), FetchAccumulate[int64, uint64](s, i64, 3, max))
	assert.Equal(t, int64(7), FetchAccumulate[int64, uint64](s, i64, 12, max))
	assert.Equal(t, int64(12), AccumulateAndGet[int64, uint64](s, i64, 5, max))
}

func TestCounterConservation(t *testing.T) {
	s := slot.New64(i64.Encode(100))

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := 0; j < rounds; j++ {
				FetchAccumulate[int64, uint64](s, i64, 1, func(cur, x int64) int64 { return cur + x })
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int64(100+workers*rounds), i64.Decode(s.Load()))
}

func TestFloatConservation(t *testing.T) {
	s := slot.New64(f64.Encode(0))
	const step = 0.25

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				FetchUpdate[float64, uint64](s, f64, func(v float64) float64 { return v + step })
			}
		}()
	}
	wg.Wait()

	// Quarter steps are exact in binary, so no rounding slack is needed here.
	assert.InDelta(t, workers*rounds*step, f64.Decode(s.Load()), 1e-9)
}

// conflicting makes the first CompareAndSwap lose to a concurrent writer.
type conflicting struct {
	*slot.Slot64
	once   sync.Once
	inject uint64
}

func (c *conflicting) CompareAndSwap(old, new uint64) bool {
	c.once.Do(func() { c.Slot64.Store(c.inject) })
	return c.Slot64.CompareAndSwap(old, new)
}

func TestRetryFromWinner(t *testing.T) {
	s := &conflicting{Slot64: slot.New64(1), inject: 40}

	var seen []uint64
	prev := Update[uint64](s, func(w uint64) uint64 {
		seen = append(seen, w)
		return w + 2
	})

	assert.Equal(t, []uint64{1, 40}, seen)
	assert.Equal(t, uint64(40), prev)
	assert.Equal(t, uint64(42), s.Load())
}

func TestLoopDiscard(t *testing.T) {
	s := &conflicting{Slot64: slot.New64(5), inject: 6}

	var observed, discarded int
	prev := Loop[uint64](s,
		func() uint64 { observed++; return s.Load() },
		func(cur uint64) uint64 { return cur * 10 },
		func(cur, candidate uint64) {
			discarded++
			assert.Equal(t, uint64(5), cur)
			assert.Equal(t, uint64(50), candidate)
		},
	)

	assert.Equal(t, uint64(6), prev)
	assert.Equal(t, 2, observed)
	assert.Equal(t, 1, discarded)
	assert.Equal(t, uint64(60), s.Load())
}

func TestNaNMakesProgress(t *testing.T) {
	nan := bitcodec.NaN64(0x1234)
	s := slot.New64(f64.Encode(nan))

	// The update sees a NaN and replaces it; the loop must terminate even
	// though nan != nan under IEEE rules.
	prev := FetchUpdate[float64, uint64](s, f64, func(v float64) float64 {
		if math.IsNaN(v) {
			return 1
		}
		return v + 1
	})
	assert.True(t, bitcodec.SameBits64(nan, prev))
	assert.Equal(t, 1.0, f64.Decode(s.Load()))
}

func TestCompareAndSetBits(t *testing.T) {
	a, b := bitcodec.NaN64(1), bitcodec.NaN64(2)
	s := slot.New64(f64.Encode(a))

	actual, ok := CompareAndSet[float64, uint64](s, f64, b, 3)
	assert.False(t, ok)
	assert.True(t, bitcodec.SameBits64(a, actual))

	_, ok = CompareAndSet[float64, uint64](s, f64, a, 3)
	assert.True(t, ok)
	assert.Equal(t, 3.0, f64.Decode(s.Load()))

	// -0 and +0 are equal under IEEE but are different words.
	_, ok = CompareAndSet[float64, uint64](s, f64, 3, math.Copysign(0, -1))
	require.True(t, ok)
	_, ok = CompareAndSet[float64, uint64](s, f64, 0, 1)
	assert.False(t, ok)

	witness := CompareAndExchange[float64, uint64](s, f64, math.Copysign(0, -1), 2)
	assert.True(t, bitcodec.SameBits64(math.Copysign(0, -1), witness))
	assert.Equal(t, 2.0, f64.Decode(s.Load()))
}

func TestPanicLeavesSlot(t *testing.T) {
	s := slot.New64(i64.Encode(9))
	calls := 0

	assert.Panics(t, func() {
		FetchUpdate[int64, uint64](s, i64, func(v int64) int64 {
			calls++
			if calls == 3 {
				panic("boom")
			}
			// Lose the first two rounds by bumping the slot behind our back.
			s.Add(1)
			return v * 100
		})
	})

	assert.Equal(t, 3, calls)
	assert.Equal(t, int64(11), i64.Decode(s.Load()))
}

func TestDivideByZeroPublishesNothing(t *testing.T) {
	s := slot.New64(i64.Encode(8))
	zero := int64(0)

	assert.Panics(t, func() {
		FetchUpdate[int64, uint64](s, i64, func(v int64) int64 { return v / zero })
	})
	assert.Equal(t, int64(8), i64.Decode(s.Load()))
}

// go test -bench=. -benchmem -v
func BenchmarkFetchUpdate(b *testing.B) {
	s := slot.New64(0)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			FetchUpdate[float64, uint64](s, f64, func(v float64) float64 { return v + 1 })
		}
	})
}

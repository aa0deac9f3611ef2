package atomic

import (
	"sync/atomic"

	"github.com/grpc-boot/atom/cas"
	"github.com/grpc-boot/atom/slot"
)

const errClosed = "atomic: use of closed Ref"

// Ref is an atomically swappable reference to a counted payload. The cell
// owns one reference to whatever it publishes; Load hands out another.
//
// Compare operations use allocation identity, never payload equality, and
// are always made while the caller holds a live handle to the expected
// payload, so the address cannot have been recycled for something else.
//
// A Ref must be closed with Close to release its reference.
type Ref[T any] struct {
	_ nocmp
	s slot.Pointer[box[T]]
}

// NewRef publishes h; the Ref takes ownership of it.
func NewRef[T any](h *Handle[T]) *Ref[T] {
	r := &Ref[T]{}
	r.s.Store(h.take())
	return r
}

// NewRefOf is NewRef(NewHandle(v, opts...)).
func NewRefOf[T any](v T, opts ...Option[T]) *Ref[T] {
	return NewRef(NewHandle(v, opts...))
}

// Load returns a new reference to the published payload. If the payload is
// unpublished and dropped between reading the pointer and retaining it, the
// load starts over from the new pointer.
func (r *Ref[T]) Load() *Handle[T] {
	for {
		b := r.s.Load()
		if b == nil {
			panic(errClosed)
		}
		if b.tryRetain() {
			return newHandle(b)
		}
	}
}

// Store publishes h and releases the reference it displaces.
func (r *Ref[T]) Store(h *Handle[T]) {
	r.swap(h).release()
}

// Swap publishes h and returns the displaced reference to the caller.
func (r *Ref[T]) Swap(h *Handle[T]) (old *Handle[T]) {
	return newHandle(r.swap(h))
}

// swap never publishes into a closed cell; h stays with the caller if it
// panics.
func (r *Ref[T]) swap(h *Handle[T]) *box[T] {
	nb := h.take()
	for {
		cur := r.s.Load()
		if cur == nil {
			h.untake()
			panic(errClosed)
		}
		if r.s.CompareAndSwap(cur, nb) {
			return cur
		}
	}
}

// compare runs one compare-and-swap of expected for new. The reference in new
// is only consumed when swapped is true; a closed cell panics and leaves new
// with the caller. found is a live reference to the payload seen instead,
// never expected's allocation when strong is set.
func (r *Ref[T]) compare(expected, new *Handle[T], strong bool) (eb *box[T], found *Handle[T], swapped bool) {
	eb = expected.live()
	nb := new.take()
	defer func() {
		if !swapped {
			new.untake()
		}
	}()

	for {
		if r.s.CompareAndSwap(eb, nb) {
			return eb, nil, true
		}

		found = r.Load()
		if found.b != eb || !strong {
			return eb, found, false
		}
		// expected was republished between the failed swap and the load.
		found.Release()
	}
}

// CompareAndSet publishes new if expected is the published allocation. On
// success new is consumed, the displaced reference is released and actual is
// nil. On failure new still belongs to the caller and actual is a reference to
// the payload found instead.
func (r *Ref[T]) CompareAndSet(expected, new *Handle[T]) (actual *Handle[T], swapped bool) {
	eb, actual, swapped := r.compare(expected, new, true)
	if swapped {
		eb.release()
	}
	return actual, swapped
}

// CompareAndSetWeak is a single attempt with the contract of CompareAndSet,
// except that actual may be expected itself when the attempt raced.
func (r *Ref[T]) CompareAndSetWeak(expected, new *Handle[T]) (actual *Handle[T], swapped bool) {
	eb, actual, swapped := r.compare(expected, new, false)
	if swapped {
		eb.release()
	}
	return actual, swapped
}

// CompareAndExchange returns a reference to the payload published before the
// attempt. It is the same allocation as expected exactly when new was
// published; in that case new is consumed, otherwise it stays with the caller.
func (r *Ref[T]) CompareAndExchange(expected, new *Handle[T]) (witness *Handle[T]) {
	eb, witness, swapped := r.compare(expected, new, true)
	if swapped {
		// The cell's reference to eb moves to the caller.
		return newHandle(eb)
	}
	return witness
}

// CompareAndExchangeWeak is CompareAndExchange allowed to fail spuriously, in
// which case the witness may be expected's allocation.
func (r *Ref[T]) CompareAndExchangeWeak(expected, new *Handle[T]) (witness *Handle[T]) {
	eb, witness, swapped := r.compare(expected, new, false)
	if swapped {
		return newHandle(eb)
	}
	return witness
}

// FetchUpdate publishes f(cur) and returns cur, the reference that was
// replaced. Each round retains a fresh reference before calling f, so cur
// stays alive for the whole call even if another goroutine stores over it.
// f must return a handle it owns (cur itself, a Clone, or a NewHandle) and
// must not release cur. A lost round releases both; a panic in f releases
// cur and publishes nothing.
func (r *Ref[T]) FetchUpdate(f func(cur *Handle[T]) *Handle[T]) (prev *Handle[T]) {
	prev, _ = r.update(f, false)
	return prev
}

// UpdateAndGet is FetchUpdate returning a reference to the published payload.
func (r *Ref[T]) UpdateAndGet(f func(cur *Handle[T]) *Handle[T]) (next *Handle[T]) {
	prev, next := r.update(f, true)
	prev.Release()
	return next
}

func (r *Ref[T]) update(f func(cur *Handle[T]) *Handle[T], keep bool) (prev, next *Handle[T]) {
	var cur, candidate *Handle[T]
	defer func() {
		if prev == nil && cur != nil {
			cur.Release()
		}
	}()

	old := cas.Loop[*box[T]](&r.s,
		func() *box[T] {
			cur = r.Load()
			return cur.b
		},
		func(*box[T]) *box[T] {
			candidate = f(cur)
			if candidate == cur {
				candidate = cur.Clone()
			}
			nb := candidate.take()
			if keep {
				nb.retain()
			}
			return nb
		},
		func(_ *box[T], nb *box[T]) {
			if keep {
				nb.release()
			}
			candidate.untake()
			candidate.Release()
			cur.Release()
			cur, candidate = nil, nil
		},
	)

	// cur holds its own reference, so dropping the cell's one cannot free it.
	old.release()
	if keep {
		next = newHandle(candidate.b)
	}
	return cur, next
}

// Clone returns an independent Ref publishing the payload r publishes now.
// Later operations on either cell do not affect the other.
func (r *Ref[T]) Clone() *Ref[T] {
	return NewRef(r.Load())
}

// Close releases the published reference. Any later use of r panics without
// publishing anything. Operations that run concurrently with Close are a
// caller error: a Store racing with Close may land after the release and keep
// its payload alive in a cell nobody will close.
func (r *Ref[T]) Close() {
	b := r.s.Swap(nil)
	if b == nil {
		panic(errClosed)
	}
	b.release()
}

// Inner exposes the pointer slot. Anything stored through it bypasses the
// reference count and must already carry the cell's reference.
func (r *Ref[T]) Inner() *atomic.Pointer[box[T]] {
	return r.s.Inner()
}

func (r *Ref[T]) String() string {
	h := r.Load()
	defer h.Release()
	return h.String()
}

package atomic

import "fmt"

// box is a heap payload with its reference count. The payload is dropped
// exactly once, by whichever release takes the count from 1 to 0. The count
// never rises again after reaching 0: Ref.Load only retains through tryRetain.
type box[T any] struct {
	value *T
	count Int64
	drop  func(*T)
}

// Option configures a handle created by NewHandle.
type Option[T any] func(b *box[T])

// WithDrop registers fn to run once when the last reference is released.
func WithDrop[T any](fn func(v *T)) Option[T] {
	return func(b *box[T]) {
		b.drop = fn
	}
}

// retain adds a reference on behalf of a caller that already holds one.
func (b *box[T]) retain() {
	if n := b.count.IncrementAndGet(); n <= 1 {
		panic(fmt.Sprintf("atomic: retain of dropped reference (count %d)", n))
	}
}

// tryRetain adds a reference unless the count has already reached zero.
func (b *box[T]) tryRetain() bool {
	n := b.count.Load()
	for n > 0 {
		actual, ok := b.count.CompareAndSetWeak(n, n+1)
		if ok {
			return true
		}
		n = actual
	}
	return false
}

// release gives up one reference. Every decrement is ordered before the drop
// because the decrement that observes 0 is the last write to the count.
func (b *box[T]) release() {
	n := b.count.DecrementAndGet()
	switch {
	case n > 0:
		return
	case n < 0:
		panic(fmt.Sprintf("atomic: reference count underflow (count %d)", n))
	}

	v := b.value
	b.value = nil
	if b.drop != nil {
		b.drop(v)
	}
}

// Handle is one owned, counted reference to a shared payload. Every Handle
// must be released exactly once, either by Release or by handing it to a Ref.
type Handle[T any] struct {
	b        *box[T]
	released Bool
}

// NewHandle allocates a payload holding v with a count of one.
func NewHandle[T any](v T, opts ...Option[T]) *Handle[T] {
	b := &box[T]{value: &v}
	b.count.Store(1)
	for _, opt := range opts {
		opt(b)
	}
	return &Handle[T]{b: b}
}

func newHandle[T any](b *box[T]) *Handle[T] {
	return &Handle[T]{b: b}
}

func (h *Handle[T]) live() *box[T] {
	if h == nil {
		panic("atomic: nil handle")
	}
	if h.released.Load() {
		panic("atomic: use of released handle")
	}
	return h.b
}

// Value returns the payload. It stays valid until the handle is released.
func (h *Handle[T]) Value() *T {
	return h.live().value
}

// Clone returns a second, independently owned reference to the same payload.
func (h *Handle[T]) Clone() *Handle[T] {
	b := h.live()
	b.retain()
	return newHandle(b)
}

// Release gives up the reference. Releasing twice panics.
func (h *Handle[T]) Release() {
	if h == nil {
		panic("atomic: nil handle")
	}
	if !h.released.CompareAndSetIfFalse(true) {
		panic("atomic: handle released twice")
	}
	h.b.release()
}

// Same reports whether both handles refer to the same allocation. Equal
// payloads in different allocations are not the same.
func (h *Handle[T]) Same(other *Handle[T]) bool {
	if h == nil || other == nil {
		return h == other
	}
	return h.b == other.b
}

// Count is the number of live references to the payload, for audits.
func (h *Handle[T]) Count() int64 {
	return h.live().count.Load()
}

// take moves the handle's reference out, leaving the handle released.
func (h *Handle[T]) take() *box[T] {
	if h == nil {
		panic("atomic: nil handle")
	}
	if !h.released.CompareAndSetIfFalse(true) {
		panic("atomic: use of released handle")
	}
	return h.b
}

// untake undoes take when the reference was not consumed after all.
func (h *Handle[T]) untake() {
	h.released.Store(false)
}

func (h *Handle[T]) String() string {
	if h == nil || h.released.Load() {
		return "<released>"
	}
	return fmt.Sprint(*h.b.value)
}

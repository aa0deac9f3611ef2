package slot

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Pointer is a slot holding a *T. Comparison is by address only.
type Pointer[T any] struct {
	_ nocmp
	v atomic.Pointer[T]
}

func NewPointer[T any](p *T) *Pointer[T] {
	s := &Pointer[T]{}
	s.v.Store(p)
	return s
}

func (s *Pointer[T]) Load() *T { return s.v.Load() }

func (s *Pointer[T]) Store(p *T) { s.v.Store(p) }

func (s *Pointer[T]) Swap(p *T) (old *T) { return s.v.Swap(p) }

func (s *Pointer[T]) CompareAndSwap(old, new *T) (swapped bool) {
	return s.v.CompareAndSwap(old, new)
}

func (s *Pointer[T]) CompareAndSwapWeak(old, new *T) (swapped bool) {
	return s.v.CompareAndSwap(old, new)
}

func (s *Pointer[T]) CompareExchange(old, new *T) (witness *T, swapped bool) {
	return compareExchange[*T](s, old, new)
}

func (s *Pointer[T]) Inner() *atomic.Pointer[T] { return &s.v }

// Padded64 is a Slot64 alone on its cache line, for counters that many
// goroutines hammer at once.
type Padded64 struct {
	_ cpu.CacheLinePad
	Slot64
	_ cpu.CacheLinePad
}

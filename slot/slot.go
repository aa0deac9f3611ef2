// Package slot holds the one-word atomic storage cells every higher-level cell
// is built on. Each method is bound to a fixed row of ordering.Default; there
// is no way to pick an ordering per call except through Inner.
package slot

import (
	"sync/atomic"

	"github.com/grpc-boot/atom/ordering"
)

// Word is a value a slot can compare and exchange.
type Word interface {
	~uint32 | ~uint64
}

// Slot is the part of a slot the CAS retry engine drives.
type Slot[W comparable] interface {
	Load() W
	CompareAndSwap(old, new W) (swapped bool)
}

// Orderings is the table the slots in this package implement. Every sync/atomic
// operation is sequentially consistent, so each row is met by strengthening.
func Orderings() ordering.Policy {
	return ordering.Default()
}

type nocmp [0]func()

type Slot32 struct {
	_ nocmp
	v atomic.Uint32
}

func New32(v uint32) *Slot32 {
	s := &Slot32{}
	s.v.Store(v)
	return s
}

// Load is ordering.Load.
func (s *Slot32) Load() uint32 { return s.v.Load() }

// Store is ordering.Store.
func (s *Slot32) Store(v uint32) { s.v.Store(v) }

// Swap is ordering.Swap.
func (s *Slot32) Swap(v uint32) (old uint32) { return s.v.Swap(v) }

// CompareAndSwap is ordering.CompareSet.
func (s *Slot32) CompareAndSwap(old, new uint32) (swapped bool) {
	return s.v.CompareAndSwap(old, new)
}

// CompareAndSwapWeak is ordering.CompareSetWeak. Go only offers a strong
// compare-and-swap, which never fails spuriously.
func (s *Slot32) CompareAndSwapWeak(old, new uint32) (swapped bool) {
	return s.v.CompareAndSwap(old, new)
}

// CompareExchange returns the value observed by the attempt: old on success,
// the conflicting value otherwise.
func (s *Slot32) CompareExchange(old, new uint32) (witness uint32, swapped bool) {
	return compareExchange[uint32](s, old, new)
}

// Add is ordering.FetchArith and returns the new value.
func (s *Slot32) Add(delta uint32) (new uint32) { return s.v.Add(delta) }

// And is ordering.FetchBits and returns the old value.
func (s *Slot32) And(mask uint32) (old uint32) { return s.v.And(mask) }

// Or is ordering.FetchBits and returns the old value.
func (s *Slot32) Or(mask uint32) (old uint32) { return s.v.Or(mask) }

// Inner exposes the underlying atomic for callers that need direct access.
func (s *Slot32) Inner() *atomic.Uint32 { return &s.v }

type Slot64 struct {
	_ nocmp
	v atomic.Uint64
}

func New64(v uint64) *Slot64 {
	s := &Slot64{}
	s.v.Store(v)
	return s
}

func (s *Slot64) Load() uint64 { return s.v.Load() }

func (s *Slot64) Store(v uint64) { s.v.Store(v) }

func (s *Slot64) Swap(v uint64) (old uint64) { return s.v.Swap(v) }

func (s *Slot64) CompareAndSwap(old, new uint64) (swapped bool) {
	return s.v.CompareAndSwap(old, new)
}

func (s *Slot64) CompareAndSwapWeak(old, new uint64) (swapped bool) {
	return s.v.CompareAndSwap(old, new)
}

func (s *Slot64) CompareExchange(old, new uint64) (witness uint64, swapped bool) {
	return compareExchange[uint64](s, old, new)
}

func (s *Slot64) Add(delta uint64) (new uint64) { return s.v.Add(delta) }

func (s *Slot64) And(mask uint64) (old uint64) { return s.v.And(mask) }

func (s *Slot64) Or(mask uint64) (old uint64) { return s.v.Or(mask) }

func (s *Slot64) Inner() *atomic.Uint64 { return &s.v }

// compareExchange emulates a witness-returning compare-exchange. When the swap
// fails, the value is reloaded; if the reload happens to equal old again, the
// attempt is retried so a reported failure always carries a witness != old.
func compareExchange[W comparable](s Slot[W], old, new W) (witness W, swapped bool) {
	for {
		if s.CompareAndSwap(old, new) {
			return old, true
		}
		if witness = s.Load(); witness != old {
			return witness, false
		}
	}
}

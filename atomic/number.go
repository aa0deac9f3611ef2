package atomic

import (
	"strconv"
	"sync/atomic"
	"unsafe"

	"github.com/grpc-boot/atom/bitcodec"
	"github.com/grpc-boot/atom/cas"
	"github.com/grpc-boot/atom/slot"
	"golang.org/x/exp/constraints"
)

// Integer is an atomic integer of any width. The value is kept sign-extended
// in a 64-bit slot. Arithmetic wraps, as Go integer arithmetic does; FetchDiv
// by zero panics before anything is published.
//
// FetchAdd and friends take the relaxed-style path: they keep the counter
// exact but promise nothing about the visibility of other memory.
type Integer[T constraints.Integer] struct {
	_ nocmp
	s slot.Slot64
}

type (
	Int     = Integer[int]
	Int8    = Integer[int8]
	Int16   = Integer[int16]
	Int32   = Integer[int32]
	Int64   = Integer[int64]
	Uint    = Integer[uint]
	Uint8   = Integer[uint8]
	Uint16  = Integer[uint16]
	Uint32  = Integer[uint32]
	Uint64  = Integer[uint64]
	Uintptr = Integer[uintptr]
)

func NewInteger[T constraints.Integer](v T) *Integer[T] {
	i := &Integer[T]{}
	i.s.Store(i.codec().Encode(v))
	return i
}

func (i *Integer[T]) codec() bitcodec.Integer[T] { return bitcodec.Integer[T]{} }

// wide reports whether T fills the slot, so native 64-bit arithmetic already
// wraps at the right width.
func (i *Integer[T]) wide() bool {
	var zero T
	return unsafe.Sizeof(zero) == 8
}

func (i *Integer[T]) Load() T {
	return i.codec().Decode(i.s.Load())
}

func (i *Integer[T]) Store(v T) {
	i.s.Store(i.codec().Encode(v))
}

func (i *Integer[T]) Swap(v T) (old T) {
	return i.codec().Decode(i.s.Swap(i.codec().Encode(v)))
}

// CompareAndSet stores new if the cell holds expected. On failure it returns
// the value found instead.
func (i *Integer[T]) CompareAndSet(expected, new T) (actual T, swapped bool) {
	return cas.CompareAndSet[T, uint64](&i.s, i.codec(), expected, new)
}

// CompareAndSetWeak has the contract of CompareAndSet but may fail
// spuriously; use it inside a retry loop.
func (i *Integer[T]) CompareAndSetWeak(expected, new T) (actual T, swapped bool) {
	if i.s.CompareAndSwapWeak(i.codec().Encode(expected), i.codec().Encode(new)) {
		return expected, true
	}
	return i.Load(), false
}

// CompareAndExchange returns the value the cell held before the attempt;
// it equals expected exactly when the swap happened.
func (i *Integer[T]) CompareAndExchange(expected, new T) (witness T) {
	return cas.CompareAndExchange[T, uint64](&i.s, i.codec(), expected, new)
}

func (i *Integer[T]) CompareAndExchangeWeak(expected, new T) (witness T) {
	witness, _ = i.CompareAndSetWeak(expected, new)
	return witness
}

func (i *Integer[T]) FetchAdd(delta T) (old T) {
	if i.wide() {
		d := i.codec().Encode(delta)
		return i.codec().Decode(i.s.Add(d) - d)
	}
	return i.FetchUpdate(func(v T) T { return v + delta })
}

func (i *Integer[T]) AddAndGet(delta T) (new T) {
	return i.FetchAdd(delta) + delta
}

func (i *Integer[T]) FetchSub(delta T) (old T) {
	if i.wide() {
		d := i.codec().Encode(delta)
		return i.codec().Decode(i.s.Add(-d) + d)
	}
	return i.FetchUpdate(func(v T) T { return v - delta })
}

func (i *Integer[T]) SubAndGet(delta T) (new T) {
	return i.FetchSub(delta) - delta
}

func (i *Integer[T]) FetchInc() (old T) { return i.FetchAdd(1) }

func (i *Integer[T]) FetchDec() (old T) { return i.FetchSub(1) }

func (i *Integer[T]) IncrementAndGet() (new T) { return i.AddAndGet(1) }

func (i *Integer[T]) DecrementAndGet() (new T) { return i.SubAndGet(1) }

func (i *Integer[T]) FetchMul(factor T) (old T) {
	return i.FetchUpdate(func(v T) T { return v * factor })
}

func (i *Integer[T]) FetchDiv(divisor T) (old T) {
	return i.FetchUpdate(func(v T) T { return v / divisor })
}

// FetchAnd and FetchOr map onto the native instructions: and/or of two
// canonical words is canonical at every width.
func (i *Integer[T]) FetchAnd(mask T) (old T) {
	return i.codec().Decode(i.s.And(i.codec().Encode(mask)))
}

func (i *Integer[T]) FetchOr(mask T) (old T) {
	return i.codec().Decode(i.s.Or(i.codec().Encode(mask)))
}

func (i *Integer[T]) FetchXor(mask T) (old T) {
	return i.FetchUpdate(func(v T) T { return v ^ mask })
}

func (i *Integer[T]) FetchNot() (old T) {
	return i.FetchUpdate(func(v T) T { return ^v })
}

func (i *Integer[T]) FetchMax(v T) (old T) {
	return i.FetchUpdate(func(cur T) T { return max(cur, v) })
}

func (i *Integer[T]) FetchMin(v T) (old T) {
	return i.FetchUpdate(func(cur T) T { return min(cur, v) })
}

// FetchUpdate publishes f(old) and returns old. f may run more than once.
func (i *Integer[T]) FetchUpdate(f func(T) T) (old T) {
	return cas.FetchUpdate[T, uint64](&i.s, i.codec(), f)
}

func (i *Integer[T]) UpdateAndGet(f func(T) T) (new T) {
	return cas.UpdateAndGet[T, uint64](&i.s, i.codec(), f)
}

func (i *Integer[T]) FetchAccumulate(x T, f func(cur, x T) T) (old T) {
	return cas.FetchAccumulate[T, uint64](&i.s, i.codec(), x, f)
}

func (i *Integer[T]) AccumulateAndGet(x T, f func(cur, x T) T) (new T) {
	return cas.AccumulateAndGet[T, uint64](&i.s, i.codec(), x, f)
}

// Inner exposes the slot word. Writes through it must store canonical
// encodings (uint64 of the value) or later compare operations will miss.
func (i *Integer[T]) Inner() *atomic.Uint64 {
	return i.s.Inner()
}

func (i *Integer[T]) String() string {
	v := i.Load()
	var zero T
	if ^zero < zero {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatUint(uint64(v), 10)
}

func (i *Integer[T]) MarshalJSON() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Integer[T]) UnmarshalJSON(data []byte) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	i.Store(v)
	return nil
}

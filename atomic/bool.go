package atomic

import (
	"strconv"
	"sync/atomic"

	"github.com/grpc-boot/atom/bitcodec"
	"github.com/grpc-boot/atom/cas"
	"github.com/grpc-boot/atom/slot"
)

var boolCodec = bitcodec.Bool{}

type Bool struct {
	_ nocmp
	s slot.Slot32
}

func NewBool(v bool) *Bool {
	b := &Bool{}
	b.Store(v)
	return b
}

func (b *Bool) Load() bool {
	return boolCodec.Decode(b.s.Load())
}

func (b *Bool) Store(v bool) {
	b.s.Store(boolCodec.Encode(v))
}

func (b *Bool) Swap(v bool) (old bool) {
	return boolCodec.Decode(b.s.Swap(boolCodec.Encode(v)))
}

func (b *Bool) CompareAndSet(expected, new bool) (actual bool, swapped bool) {
	return cas.CompareAndSet[bool, uint32](&b.s, boolCodec, expected, new)
}

func (b *Bool) CompareAndSetWeak(expected, new bool) (actual bool, swapped bool) {
	if b.s.CompareAndSwapWeak(boolCodec.Encode(expected), boolCodec.Encode(new)) {
		return expected, true
	}
	return b.Load(), false
}

func (b *Bool) CompareAndExchange(expected, new bool) (witness bool) {
	return cas.CompareAndExchange[bool, uint32](&b.s, boolCodec, expected, new)
}

func (b *Bool) CompareAndExchangeWeak(expected, new bool) (witness bool) {
	witness, _ = b.CompareAndSetWeak(expected, new)
	return witness
}

// FetchSet stores true and returns the previous value.
func (b *Bool) FetchSet() (old bool) { return b.Swap(true) }

func (b *Bool) SetAndGet() bool {
	b.Store(true)
	return true
}

// FetchClear stores false and returns the previous value.
func (b *Bool) FetchClear() (old bool) { return b.Swap(false) }

func (b *Bool) ClearAndGet() bool {
	b.Store(false)
	return false
}

func (b *Bool) FetchNegate() (old bool) {
	return b.FetchUpdate(func(v bool) bool { return !v })
}

func (b *Bool) NegateAndGet() (new bool) {
	return !b.FetchNegate()
}

func (b *Bool) FetchAnd(v bool) (old bool) {
	return boolCodec.Decode(b.s.And(boolCodec.Encode(v)))
}

func (b *Bool) FetchOr(v bool) (old bool) {
	return boolCodec.Decode(b.s.Or(boolCodec.Encode(v)))
}

func (b *Bool) FetchXor(v bool) (old bool) {
	return b.FetchUpdate(func(cur bool) bool { return cur != v })
}

// CompareAndSetIfFalse stores new only if the flag is false. On failure the
// flag was true.
func (b *Bool) CompareAndSetIfFalse(new bool) (swapped bool) {
	_, swapped = b.CompareAndSet(false, new)
	return swapped
}

// CompareAndSetIfTrue stores new only if the flag is true.
func (b *Bool) CompareAndSetIfTrue(new bool) (swapped bool) {
	_, swapped = b.CompareAndSet(true, new)
	return swapped
}

func (b *Bool) FetchUpdate(f func(bool) bool) (old bool) {
	return cas.FetchUpdate[bool, uint32](&b.s, boolCodec, f)
}

func (b *Bool) UpdateAndGet(f func(bool) bool) (new bool) {
	return cas.UpdateAndGet[bool, uint32](&b.s, boolCodec, f)
}

// Inner exposes the slot word. Writes through it must store 0 or 1.
func (b *Bool) Inner() *atomic.Uint32 {
	return b.s.Inner()
}

func (b *Bool) String() string {
	return strconv.FormatBool(b.Load())
}

func (b *Bool) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Load())
}

func (b *Bool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	b.Store(v)
	return nil
}

package atomic

import (
	"strconv"
	"sync/atomic"

	"github.com/grpc-boot/atom/bitcodec"
	"github.com/grpc-boot/atom/cas"
	"github.com/grpc-boot/atom/slot"
)

var (
	f32Codec = bitcodec.Float32{}
	f64Codec = bitcodec.Float64{}
)

// Float32 is an atomic float32 stored as its bit pattern. There is no native
// float instruction, so every arithmetic operation spins on compare-and-swap.
//
// Compare operations match bit patterns, not IEEE values: a NaN matches a NaN
// with the same payload, and -0 does not match +0.
type Float32 struct {
	_ nocmp
	s slot.Slot32
}

func NewFloat32(v float32) *Float32 {
	f := &Float32{}
	f.Store(v)
	return f
}

func (f *Float32) Load() float32 { return f32Codec.Decode(f.s.Load()) }

func (f *Float32) Store(v float32) { f.s.Store(f32Codec.Encode(v)) }

func (f *Float32) Swap(v float32) (old float32) {
	return f32Codec.Decode(f.s.Swap(f32Codec.Encode(v)))
}

func (f *Float32) CompareAndSet(expected, new float32) (actual float32, swapped bool) {
	return cas.CompareAndSet[float32, uint32](&f.s, f32Codec, expected, new)
}

func (f *Float32) CompareAndSetWeak(expected, new float32) (actual float32, swapped bool) {
	if f.s.CompareAndSwapWeak(f32Codec.Encode(expected), f32Codec.Encode(new)) {
		return expected, true
	}
	return f.Load(), false
}

func (f *Float32) CompareAndExchange(expected, new float32) (witness float32) {
	return cas.CompareAndExchange[float32, uint32](&f.s, f32Codec, expected, new)
}

func (f *Float32) CompareAndExchangeWeak(expected, new float32) (witness float32) {
	witness, _ = f.CompareAndSetWeak(expected, new)
	return witness
}

func (f *Float32) FetchAdd(delta float32) (old float32) {
	return f.FetchUpdate(func(v float32) float32 { return v + delta })
}

func (f *Float32) AddAndGet(delta float32) (new float32) {
	return f.UpdateAndGet(func(v float32) float32 { return v + delta })
}

func (f *Float32) FetchSub(delta float32) (old float32) {
	return f.FetchUpdate(func(v float32) float32 { return v - delta })
}

func (f *Float32) SubAndGet(delta float32) (new float32) {
	return f.UpdateAndGet(func(v float32) float32 { return v - delta })
}

func (f *Float32) FetchMul(factor float32) (old float32) {
	return f.FetchUpdate(func(v float32) float32 { return v * factor })
}

func (f *Float32) FetchDiv(divisor float32) (old float32) {
	return f.FetchUpdate(func(v float32) float32 { return v / divisor })
}

// FetchMax and FetchMin follow the builtin max/min: a NaN on either side wins.
func (f *Float32) FetchMax(v float32) (old float32) {
	return f.FetchUpdate(func(cur float32) float32 { return max(cur, v) })
}

func (f *Float32) FetchMin(v float32) (old float32) {
	return f.FetchUpdate(func(cur float32) float32 { return min(cur, v) })
}

func (f *Float32) FetchUpdate(fn func(float32) float32) (old float32) {
	return cas.FetchUpdate[float32, uint32](&f.s, f32Codec, fn)
}

func (f *Float32) UpdateAndGet(fn func(float32) float32) (new float32) {
	return cas.UpdateAndGet[float32, uint32](&f.s, f32Codec, fn)
}

func (f *Float32) FetchAccumulate(x float32, fn func(cur, x float32) float32) (old float32) {
	return cas.FetchAccumulate[float32, uint32](&f.s, f32Codec, x, fn)
}

func (f *Float32) AccumulateAndGet(x float32, fn func(cur, x float32) float32) (new float32) {
	return cas.AccumulateAndGet[float32, uint32](&f.s, f32Codec, x, fn)
}

func (f *Float32) Inner() *atomic.Uint32 { return f.s.Inner() }

func (f *Float32) String() string {
	return strconv.FormatFloat(float64(f.Load()), 'g', -1, 32)
}

func (f *Float32) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Load())
}

func (f *Float32) UnmarshalJSON(data []byte) error {
	var v float32
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Store(v)
	return nil
}

// Float64 is Float32 for float64.
type Float64 struct {
	_ nocmp
	s slot.Slot64
}

func NewFloat64(v float64) *Float64 {
	f := &Float64{}
	f.Store(v)
	return f
}

func (f *Float64) Load() float64 { return f64Codec.Decode(f.s.Load()) }

func (f *Float64) Store(v float64) { f.s.Store(f64Codec.Encode(v)) }

func (f *Float64) Swap(v float64) (old float64) {
	return f64Codec.Decode(f.s.Swap(f64Codec.Encode(v)))
}

func (f *Float64) CompareAndSet(expected, new float64) (actual float64, swapped bool) {
	return cas.CompareAndSet[float64, uint64](&f.s, f64Codec, expected, new)
}

func (f *Float64) CompareAndSetWeak(expected, new float64) (actual float64, swapped bool) {
	if f.s.CompareAndSwapWeak(f64Codec.Encode(expected), f64Codec.Encode(new)) {
		return expected, true
	}
	return f.Load(), false
}

func (f *Float64) CompareAndExchange(expected, new float64) (witness float64) {
	return cas.CompareAndExchange[float64, uint64](&f.s, f64Codec, expected, new)
}

func (f *Float64) CompareAndExchangeWeak(expected, new float64) (witness float64) {
	witness, _ = f.CompareAndSetWeak(expected, new)
	return witness
}

func (f *Float64) FetchAdd(delta float64) (old float64) {
	return f.FetchUpdate(func(v float64) float64 { return v + delta })
}

func (f *Float64) AddAndGet(delta float64) (new float64) {
	return f.UpdateAndGet(func(v float64) float64 { return v + delta })
}

func (f *Float64) FetchSub(delta float64) (old float64) {
	return f.FetchUpdate(func(v float64) float64 { return v - delta })
}

func (f *Float64) SubAndGet(delta float64) (new float64) {
	return f.UpdateAndGet(func(v float64) float64 { return v - delta })
}

func (f *Float64) FetchMul(factor float64) (old float64) {
	return f.FetchUpdate(func(v float64) float64 { return v * factor })
}

func (f *Float64) FetchDiv(divisor float64) (old float64) {
	return f.FetchUpdate(func(v float64) float64 { return v / divisor })
}

func (f *Float64) FetchMax(v float64) (old float64) {
	return f.FetchUpdate(func(cur float64) float64 { return max(cur, v) })
}

func (f *Float64) FetchMin(v float64) (old float64) {
	return f.FetchUpdate(func(cur float64) float64 { return min(cur, v) })
}

func (f *Float64) FetchUpdate(fn func(float64) float64) (old float64) {
	return cas.FetchUpdate[float64, uint64](&f.s, f64Codec, fn)
}

func (f *Float64) UpdateAndGet(fn func(float64) float64) (new float64) {
	return cas.UpdateAndGet[float64, uint64](&f.s, f64Codec, fn)
}

func (f *Float64) FetchAccumulate(x float64, fn func(cur, x float64) float64) (old float64) {
	return cas.FetchAccumulate[float64, uint64](&f.s, f64Codec, x, fn)
}

func (f *Float64) AccumulateAndGet(x float64, fn func(cur, x float64) float64) (new float64) {
	return cas.AccumulateAndGet[float64, uint64](&f.s, f64Codec, x, fn)
}

func (f *Float64) Inner() *atomic.Uint64 { return f.s.Inner() }

func (f *Float64) String() string {
	return strconv.FormatFloat(f.Load(), 'g', -1, 64)
}

func (f *Float64) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Load())
}

func (f *Float64) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Store(v)
	return nil
}

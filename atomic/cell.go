package atomic

import "golang.org/x/exp/constraints"

// Atomic is the surface every cell shares. For Ref, V is *Handle[T] and the
// ownership rules documented on Ref apply.
type Atomic[V any] interface {
	Load() V
	Store(v V)
	Swap(v V) (old V)
	CompareAndSet(expected, new V) (actual V, swapped bool)
	CompareAndSetWeak(expected, new V) (actual V, swapped bool)
	CompareAndExchange(expected, new V) (witness V)
	CompareAndExchangeWeak(expected, new V) (witness V)
}

// Updatable cells publish a function of their current value.
type Updatable[V any] interface {
	Atomic[V]
	FetchUpdate(f func(V) V) (old V)
	UpdateAndGet(f func(V) V) (new V)
}

// Number is the arithmetic shared by integer and float cells.
type Number[V constraints.Integer | constraints.Float] interface {
	Updatable[V]
	FetchAdd(delta V) (old V)
	AddAndGet(delta V) (new V)
	FetchSub(delta V) (old V)
	SubAndGet(delta V) (new V)
	FetchMul(factor V) (old V)
	FetchDiv(divisor V) (old V)
	FetchMax(v V) (old V)
	FetchMin(v V) (old V)
	FetchAccumulate(x V, f func(cur, x V) V) (old V)
	AccumulateAndGet(x V, f func(cur, x V) V) (new V)
}

// Counter adds the unit steps and bit operations of integer cells.
type Counter[V constraints.Integer] interface {
	Number[V]
	FetchInc() (old V)
	FetchDec() (old V)
	IncrementAndGet() (new V)
	DecrementAndGet() (new V)
	FetchAnd(mask V) (old V)
	FetchOr(mask V) (old V)
	FetchXor(mask V) (old V)
	FetchNot() (old V)
}

var (
	_ Counter[int8]    = (*Int8)(nil)
	_ Counter[int32]   = (*Int32)(nil)
	_ Counter[int64]   = (*Int64)(nil)
	_ Counter[uint16]  = (*Uint16)(nil)
	_ Counter[uintptr] = (*Uintptr)(nil)
	_ Number[float32]  = (*Float32)(nil)
	_ Number[float64]  = (*Float64)(nil)
	_ Updatable[bool]  = (*Bool)(nil)

	_ Updatable[*Handle[int]] = (*Ref[int])(nil)
)

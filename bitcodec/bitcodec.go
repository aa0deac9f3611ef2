// Package bitcodec maps values to and from the unsigned words stored in a
// slot. Every codec is a bijection on bit patterns: Decode(Encode(v)) is
// bit-identical to v, NaN payloads and the sign of zero included. Equality of
// encoded values is therefore bit equality, not IEEE-754 equality.
package bitcodec

import (
	"math"

	"github.com/grpc-boot/atom/slot"
	"golang.org/x/exp/constraints"
)

type Codec[V any, W slot.Word] interface {
	Encode(v V) W
	Decode(w W) V
}

type Float32 struct{}

func (Float32) Encode(v float32) uint32 { return math.Float32bits(v) }

func (Float32) Decode(w uint32) float32 { return math.Float32frombits(w) }

type Float64 struct{}

func (Float64) Encode(v float64) uint64 { return math.Float64bits(v) }

func (Float64) Decode(w uint64) float64 { return math.Float64frombits(w) }

// Bool stores false as 0 and true as 1. Any non-zero word decodes to true,
// but only 0 and 1 are ever produced by Encode.
type Bool struct{}

func (Bool) Encode(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

func (Bool) Decode(w uint32) bool { return w != 0 }

// Integer widens T to 64 bits, sign-extending signed types. The word for a
// given value is unique, so compare-and-swap on words agrees with == on T.
type Integer[T constraints.Integer] struct{}

func (Integer[T]) Encode(v T) uint64 { return uint64(v) }

func (Integer[T]) Decode(w uint64) T { return T(w) }

// Canonical reports whether w is the encoding of some T.
func (c Integer[T]) Canonical(w uint64) bool { return c.Encode(c.Decode(w)) == w }

func SameBits32(a, b float32) bool { return math.Float32bits(a) == math.Float32bits(b) }

func SameBits64(a, b float64) bool { return math.Float64bits(a) == math.Float64bits(b) }

const (
	exp32   = 0x7f800000
	mant32  = 0x007fffff
	quiet32 = 0x00400000
	exp64   = 0x7ff0000000000000
	mant64  = 0x000fffffffffffff
	quiet64 = 0x0008000000000000
)

// NaN32 builds a float32 NaN carrying payload in its mantissa. A zero payload
// would encode infinity, so it yields the quiet canonical NaN instead.
func NaN32(payload uint32) float32 {
	m := payload & mant32
	if m == 0 {
		m = quiet32
	}
	return math.Float32frombits(exp32 | m)
}

// NaN64 is NaN32 for float64.
func NaN64(payload uint64) float64 {
	m := payload & mant64
	if m == 0 {
		m = quiet64
	}
	return math.Float64frombits(exp64 | m)
}

func IsCanonicalNaN32(v float32) bool { return math.Float32bits(v) == exp32|quiet32 }

func IsCanonicalNaN64(v float64) bool { return math.Float64bits(v) == exp64|quiet64 }

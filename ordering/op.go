package ordering

import (
	"strings"

	"github.com/pkg/errors"
)

// Op is a kind of cell operation that owns one row of a Policy.
type Op uint8

const (
	Load Op = iota
	Store
	Swap
	CompareSet
	CompareSetWeak
	// FetchArith covers native add/sub/inc/dec.
	FetchArith
	// FetchBits covers and/or/xor/not/max/min.
	FetchBits
	// FetchUpdate covers every loop driven by the CAS retry engine.
	FetchUpdate
	// Retain is the reference count increment on Ref.Load.
	Retain
	// Decrement is the reference count decrement on release.
	Decrement
	// Reclaim is the fence taken by the goroutine that drops the count to zero.
	Reclaim

	opCount
)

var ErrUnknownOp = errors.New("unknown operation kind")

var opNames = [opCount]string{
	Load:           "load",
	Store:          "store",
	Swap:           "swap",
	CompareSet:     "compare_set",
	CompareSetWeak: "compare_set_weak",
	FetchArith:     "fetch_arith",
	FetchBits:      "fetch_bits",
	FetchUpdate:    "fetch_update",
	Retain:         "retain",
	Decrement:      "decrement",
	Reclaim:        "reclaim",
}

func Ops() []Op {
	ops := make([]Op, 0, opCount)
	for op := Op(0); op < opCount; op++ {
		ops = append(ops, op)
	}
	return ops
}

func (op Op) String() string {
	if op < opCount {
		return opNames[op]
	}
	return "op(unknown)"
}

func ParseOp(name string) (Op, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for op, n := range opNames {
		if n == key {
			return Op(op), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownOp, "%q", name)
}

// hasFailure reports whether the op has a distinct failure ordering.
func (op Op) hasFailure() bool {
	return op == CompareSet || op == CompareSetWeak || op == FetchUpdate
}

// pureLoad reports whether the op only reads the slot.
func (op Op) pureLoad() bool {
	return op == Load
}

// pureStore reports whether the op only writes the slot.
func (op Op) pureStore() bool {
	return op == Store
}

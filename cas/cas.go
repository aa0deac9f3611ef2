// Package cas is the compare-and-swap retry engine behind every operation that
// has no single hardware instruction: functional update, accumulation, integer
// multiply/divide/max/min, and all float arithmetic.
//
// Each round observes the current word, computes a candidate from it, and
// publishes the candidate only if the word is still the observed one. A lost
// round starts again from the word that won. Nothing is published until a
// compare-and-swap succeeds, so a panic in the update function leaves the slot
// untouched.
//
// There is no bound on the number of rounds. Under sustained contention a
// caller can keep losing; the engine makes no starvation-freedom promise.
//
// Comparisons are on encoded words. For floats that means bit patterns: a NaN
// matches itself when its payload matches, and two NaNs with different
// payloads are different values.
package cas

import (
	"github.com/grpc-boot/atom/bitcodec"
	"github.com/grpc-boot/atom/slot"
)

// Loop is the engine core. observe returns the word a round starts from and
// may acquire resources tied to it; propose maps it to the candidate; discard,
// if set, is called for a lost round before the next observe. Loop returns the
// word that was replaced.
func Loop[W comparable](s slot.Slot[W], observe func() W, propose func(cur W) W, discard func(cur, candidate W)) W {
	for {
		cur := observe()
		candidate := propose(cur)
		if s.CompareAndSwap(cur, candidate) {
			return cur
		}
		if discard != nil {
			discard(cur, candidate)
		}
	}
}

// Update applies f to the raw word and returns the word it replaced.
func Update[W comparable](s slot.Slot[W], f func(W) W) (prev W) {
	return Loop(s, s.Load, f, nil)
}

// FetchUpdate publishes f(v) where v is the decoded current value, and returns v.
func FetchUpdate[V any, W slot.Word](s slot.Slot[W], c bitcodec.Codec[V, W], f func(V) V) (prev V) {
	w := Update(s, func(w W) W {
		return c.Encode(f(c.Decode(w)))
	})
	return c.Decode(w)
}

// UpdateAndGet is FetchUpdate returning the published value.
func UpdateAndGet[V any, W slot.Word](s slot.Slot[W], c bitcodec.Codec[V, W], f func(V) V) (next V) {
	var published W
	Update(s, func(w W) W {
		published = c.Encode(f(c.Decode(w)))
		return published
	})
	return c.Decode(published)
}

// FetchAccumulate publishes f(v, x) and returns v.
func FetchAccumulate[V any, W slot.Word](s slot.Slot[W], c bitcodec.Codec[V, W], x V, f func(cur, x V) V) (prev V) {
	return FetchUpdate(s, c, func(v V) V {
		return f(v, x)
	})
}

// AccumulateAndGet publishes f(v, x) and returns it.
func AccumulateAndGet[V any, W slot.Word](s slot.Slot[W], c bitcodec.Codec[V, W], x V, f func(cur, x V) V) (next V) {
	return UpdateAndGet(s, c, func(v V) V {
		return f(v, x)
	})
}

// CompareAndSet is a single strong attempt. On failure it returns the value
// that was found instead of expected.
func CompareAndSet[V any, W slot.Word](s slot.Slot[W], c bitcodec.Codec[V, W], expected, new V) (actual V, swapped bool) {
	e := c.Encode(expected)
	n := c.Encode(new)
	for {
		if s.CompareAndSwap(e, n) {
			return expected, true
		}
		// A failed swap whose reload still shows e raced with a writer that
		// restored it; that is not a real mismatch, so try again.
		if w := s.Load(); w != e {
			return c.Decode(w), false
		}
	}
}

// CompareAndExchange is CompareAndSet returning only the witness: expected on
// success, the conflicting value otherwise. Callers tell the two apart by
// comparing encoded words, never by ==, which NaN defeats.
func CompareAndExchange[V any, W slot.Word](s slot.Slot[W], c bitcodec.Codec[V, W], expected, new V) (witness V) {
	witness, _ = CompareAndSet(s, c, expected, new)
	return witness
}

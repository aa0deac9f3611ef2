package atomic

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBool_Load(t *testing.T) {
	var run Bool

	if run.Load() {
		t.Fatal("want false, got true")
	}

	run.Store(true)

	if !run.Load() {
		t.Fatal("want true, got false")
	}

	if run.Swap(false) != true {
		t.Fatal("want true, got false")
	}
	assert.Equal(t, "false", run.String())
}

func TestBool_Ops(t *testing.T) {
	b := NewBool(false)

	assert.False(t, b.FetchSet())
	assert.True(t, b.FetchClear())
	assert.True(t, b.SetAndGet())
	assert.False(t, b.ClearAndGet())

	assert.False(t, b.FetchNegate())
	assert.False(t, b.NegateAndGet())

	assert.False(t, b.FetchOr(true))
	assert.True(t, b.FetchAnd(false))
	assert.False(t, b.FetchXor(true))
	assert.True(t, b.FetchXor(true))
	assert.False(t, b.Load())

	actual, ok := b.CompareAndSet(true, false)
	assert.False(t, ok)
	assert.False(t, actual)

	assert.True(t, b.CompareAndSetIfFalse(true))
	assert.False(t, b.CompareAndSetIfFalse(true))
	assert.True(t, b.CompareAndSetIfTrue(false))
	assert.False(t, b.CompareAndSetIfTrue(false))

	assert.False(t, b.CompareAndExchange(false, true))
	assert.True(t, b.CompareAndExchangeWeak(false, true))
	_, ok = b.CompareAndSetWeak(true, false)
	assert.True(t, ok)
	assert.Equal(t, uint32(0), b.Inner().Load())
}

func TestBool_Negate(t *testing.T) {
	var b Bool
	var wg sync.WaitGroup

	// An even number of flips leaves the flag where it started.
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < numRounds; j++ {
				b.FetchNegate()
			}
		}()
	}
	wg.Wait()

	if b.Load() {
		t.Fatal("want false, got true")
	}
}

func TestAcquire_Acquire(t *testing.T) {
	var lock Acquire

	if !lock.Acquire() {
		t.Fatal("want true, got false")
	}

	if lock.Acquire() {
		t.Fatal("want false, got true")
	}

	lock.Release()

	if !lock.IsRelease() {
		t.Fatal("want true, got false")
	}
}

func TestAcquire_OneWinner(t *testing.T) {
	var (
		lock Acquire
		wins Int32
		wg   sync.WaitGroup
	)

	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			if lock.Acquire() {
				wins.FetchInc()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

package monitor

import (
	"github.com/grpc-boot/atom/atomic"

	"golang.org/x/sys/cpu"
)

// Metric is a counter. Hot counters sit on their own cache line so that
// neighbouring metrics bumped by other cores do not contend.
type Metric struct {
	name  string
	_     cpu.CacheLinePad
	value atomic.Uint64
	_     cpu.CacheLinePad
}

func (m *Metric) Name() string {
	return m.name
}

// AddInt64 adds val, which may be negative, with two's complement wrapping.
func (m *Metric) AddInt64(val int64) (newValue uint64) {
	return m.value.AddAndGet(uint64(val))
}

func (m *Metric) Add(val uint64) (newValue uint64) {
	return m.value.AddAndGet(val)
}

func (m *Metric) Set(val uint64) {
	m.value.Store(val)
}

func (m *Metric) Get() (val uint64) {
	return m.value.Load()
}

// Reset returns the count accumulated since the previous Reset.
func (m *Metric) Reset() (val uint64) {
	return m.value.Swap(0)
}

// Gauge holds the latest observation of a floating point quantity.
type Gauge struct {
	name  string
	value atomic.Float64
}

func (g *Gauge) Name() string {
	return g.name
}

func (g *Gauge) Set(val float64) {
	g.value.Store(val)
}

func (g *Gauge) Add(delta float64) (newValue float64) {
	return g.value.AddAndGet(delta)
}

// Max raises the gauge to val if val is larger, returning the previous value.
func (g *Gauge) Max(val float64) (old float64) {
	return g.value.FetchMax(val)
}

func (g *Gauge) Get() (val float64) {
	return g.value.Load()
}

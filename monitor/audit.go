package monitor

import "github.com/grpc-boot/atom/atomic"

// Audit counts reference payloads allocated and dropped, so tests and
// long-running processes can check that every handle was released.
type Audit struct {
	name      string
	allocated atomic.Int64
	dropped   atomic.Int64
}

func NewAudit(name string) *Audit {
	return &Audit{name: name}
}

func (a *Audit) Name() string {
	return a.name
}

// Track records one allocation and returns the option that records its drop.
// Pass it to exactly one atomic.NewHandle or atomic.NewRefOf call. then, if
// set, runs after the drop is counted.
func Track[T any](a *Audit, then ...func(v *T)) atomic.Option[T] {
	a.allocated.FetchInc()
	return atomic.WithDrop(func(v *T) {
		a.dropped.FetchInc()
		for _, fn := range then {
			fn(v)
		}
	})
}

func (a *Audit) Allocated() int64 {
	return a.allocated.Load()
}

func (a *Audit) Dropped() int64 {
	return a.dropped.Load()
}

// Live is the number of tracked payloads not yet dropped.
func (a *Audit) Live() int64 {
	return a.allocated.Load() - a.dropped.Load()
}

// Leaked reports whether any tracked payload is still alive. Only meaningful
// once every owner is expected to have released.
func (a *Audit) Leaked() bool {
	return a.Live() != 0
}

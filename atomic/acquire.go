package atomic

// Acquire is a non-blocking try-lock: Acquire succeeds for exactly one caller
// until Release.
type Acquire struct {
	held Bool
}

func (a *Acquire) Acquire() (acquired bool) {
	if a.held.Load() {
		return false
	}
	return a.held.CompareAndSetIfFalse(true)
}

func (a *Acquire) IsRelease() (release bool) {
	return !a.held.Load()
}

func (a *Acquire) Release() {
	a.held.Store(false)
}

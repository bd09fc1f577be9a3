package runtime

import (
	"runtime"
)

// Binder establishes and tears down per-thread state of the execution
// context. Detach is called only if Attach succeeded.
type Binder interface {
	Attach() error
	Detach()
}

// ThreadBinder pins the executing goroutine to its OS thread for the
// lifetime of the run.
type ThreadBinder struct{}

// Attach locks the goroutine to the current OS thread.
func (ThreadBinder) Attach() error {
	runtime.LockOSThread()
	return nil
}

// Detach unlocks the goroutine from OS thread.
func (ThreadBinder) Detach() {
	runtime.UnlockOSThread()
}

// NopBinder doesn't bind anything.
type NopBinder struct{}

// Attach does nothing.
func (NopBinder) Attach() error { return nil }

// Detach does nothing.
func (NopBinder) Detach() {}

// Spawner starts fn on a new execution context.
type Spawner func(fn func()) error

// Go starts fn in a new goroutine.
func Go(fn func()) error {
	go fn()
	return nil
}

package audiostream

import (
	"pipelined.dev/audiostream/internal/runtime"
	"pipelined.dev/audiostream/metric"
)

type (
	// Binder establishes per-thread state of the streaming goroutine.
	// Attach is called when goroutine starts, Detach when it exits.
	Binder = runtime.Binder
	// ThreadBinder locks streaming goroutine to its OS thread. It's the
	// default binder.
	ThreadBinder = runtime.ThreadBinder
	// NopBinder doesn't bind streaming goroutine.
	NopBinder = runtime.NopBinder
	// Spawner starts the streaming goroutine. It must not call fn if it
	// returns an error.
	Spawner = runtime.Spawner
)

// Option provides a way to set functional parameters to engine.
type Option func(*Engine)

// WithLogger sets logger to engine. If this option is not provided,
// silent logger is used.
func WithLogger(logger Logger) Option {
	return func(e *Engine) {
		e.log = logger
	}
}

// WithName sets name to engine. It's used in logs and as meter id.
func WithName(name string) Option {
	return func(e *Engine) {
		e.name = name
	}
}

// WithMetric adds meter of every session to provided metric.
func WithMetric(m *metric.Metric) Option {
	return func(e *Engine) {
		e.metric = m
	}
}

// WithBinder sets binder of streaming goroutine.
func WithBinder(b Binder) Option {
	return func(e *Engine) {
		e.binder = b
	}
}

// WithSpawner sets the way streaming goroutine is started.
func WithSpawner(s Spawner) Option {
	return func(e *Engine) {
		e.spawn = s
	}
}

// WithTermination sets a hook called once when the stream loop of a
// session exits. The reason is nil if the stream was stopped, wraps
// ErrShortWrite if the sink stopped accepting data or ErrPlay if it
// couldn't start. Hook is called on the streaming goroutine and must not
// call engine methods.
func WithTermination(hook func(reason error)) Option {
	return func(e *Engine) {
		e.terminated = hook
	}
}

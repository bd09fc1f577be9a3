package runtime

import (
	"context"
)

type (
	// Executor executes a single streaming iteration. Start is called
	// once before the first Execute. Flush is called once after the last
	// Execute, only if Start succeeded.
	Executor interface {
		Start(context.Context) error
		Execute(context.Context) error
		Flush(context.Context) error
	}

	// StartFunc is a closure that triggers executor start hook.
	StartFunc func(ctx context.Context) error
	// FlushFunc is a closure that triggers executor flush hook.
	FlushFunc func(ctx context.Context) error
	// ExecuteFunc is a closure that executes a single iteration.
	ExecuteFunc func(ctx context.Context) error
)

// Start calls the start hook.
func (fn StartFunc) Start(ctx context.Context) error {
	return callHook(ctx, fn)
}

// Flush calls the flush hook.
func (fn FlushFunc) Flush(ctx context.Context) error {
	return callHook(ctx, fn)
}

func callHook(ctx context.Context, hook func(context.Context) error) error {
	if hook == nil {
		return nil
	}
	return hook(ctx)
}

// Funcs composes an Executor out of closures. Nil hooks are no-op.
type Funcs struct {
	StartFunc
	ExecuteFunc
	FlushFunc
}

// Execute calls the execute closure.
func (f Funcs) Execute(ctx context.Context) error {
	return f.ExecuteFunc(ctx)
}

package runtime

import (
	"context"
	"fmt"
	"io"
)

// Run executes e on the calling goroutine until Execute returns an error.
// The goroutine is attached with b before anything else and detached on
// every exit path. io.EOF returned by Execute is a normal termination and
// is not reported.
//
//	attach -> start -> execute... -> flush -> detach
//
// If attach or start fails, nothing else is executed.
func Run(ctx context.Context, b Binder, e Executor) error {
	if b == nil {
		b = NopBinder{}
	}
	if err := b.Attach(); err != nil {
		return fmt.Errorf("error attaching executor: %w", err)
	}
	defer b.Detach()

	if err := e.Start(ctx); err != nil {
		return fmt.Errorf("error starting executor: %w", err)
	}

	var err error
	for err == nil {
		err = e.Execute(ctx)
	}
	if err == io.EOF {
		err = nil
	}

	if flushErr := e.Flush(ctx); flushErr != nil {
		return &ErrorRun{ErrExec: err, ErrFlush: flushErr}
	}
	return err
}

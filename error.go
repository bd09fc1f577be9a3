package audiostream

import (
	"errors"

	"pipelined.dev/audiostream/internal/runtime"
)

var (
	// ErrInvalidArgument is returned for bad format, channels, sizes or a
	// nil callback.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIllegalState is returned if engine method cannot be executed at
	// this moment.
	ErrIllegalState = errors.New("illegal state")
	// ErrInternal is returned if sink or streaming goroutine cannot be
	// created.
	ErrInternal = errors.New("internal error")
	// ErrShortWrite is the reason of termination when sink accepted less
	// data than requested.
	ErrShortWrite = errors.New("short write")
	// ErrPlay is the reason of termination when sink failed to play.
	ErrPlay = errors.New("sink play failed")
)

// RunError is passed to termination hook when both the stream loop and
// the sink shutdown failed. Is matches any of them.
type RunError = runtime.ErrorRun

// Result is the status code of engine operation.
type Result int

// Result codes.
const (
	Success Result = iota
	InvalidArgument
	IllegalState
	InternalError
)

func (r Result) String() string {
	switch r {
	case Success:
		return "SUCCESS"
	case InvalidArgument:
		return "INVALID_ARGUMENT"
	case IllegalState:
		return "ILLEGAL_STATE"
	case InternalError:
		return "INTERNAL_ERROR"
	}
	return "UNKNOWN"
}

// ResultOf maps error returned by engine into result code. Errors that
// don't wrap any engine error are reported as InternalError.
func ResultOf(err error) Result {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, ErrInvalidArgument):
		return InvalidArgument
	case errors.Is(err, ErrIllegalState):
		return IllegalState
	}
	return InternalError
}

// Package repeat allows to stream the same blocks into multiple sinks.
package repeat

import (
	"fmt"
	"strings"

	"pipelined.dev/audiostream"
)

// Opener opens all sinks with the same config. If any of them fails,
// those already opened are released.
type Opener []audiostream.Opener

// NewOpener returns opener of repeater sinks.
func NewOpener(openers ...audiostream.Opener) Opener {
	return Opener(openers)
}

// Open implements audiostream.Opener.
func (o Opener) Open(cfg audiostream.SinkConfig) (audiostream.Sink, error) {
	r := make(Repeater, 0, len(o))
	for i, opener := range o {
		s, err := opener.Open(cfg)
		if err != nil {
			_ = r.Release()
			return nil, fmt.Errorf("error opening sink %d: %w", i, err)
		}
		r = append(r, s)
	}
	return r, nil
}

// Repeater writes every block into all sinks. Write is complete only if
// all sinks accepted the whole block.
type Repeater []audiostream.Sink

// Play implements audiostream.Sink.
func (r Repeater) Play() error {
	return r.each(audiostream.Sink.Play)
}

// Pause implements audiostream.Sink.
func (r Repeater) Pause() error {
	return r.each(audiostream.Sink.Pause)
}

// Stop implements audiostream.Sink.
func (r Repeater) Stop() error {
	return r.each(audiostream.Sink.Stop)
}

// Release implements audiostream.Sink.
func (r Repeater) Release() error {
	return r.each(audiostream.Sink.Release)
}

// WriteInt16 implements audiostream.Sink.
func (r Repeater) WriteInt16(samples []int16) (int, error) {
	return r.write(len(samples), func(s audiostream.Sink) (int, error) {
		return s.WriteInt16(samples)
	})
}

// WriteFloat32 implements audiostream.Sink.
func (r Repeater) WriteFloat32(samples []float32) (int, error) {
	return r.write(len(samples), func(s audiostream.Sink) (int, error) {
		return s.WriteFloat32(samples)
	})
}

// WriteDirect implements audiostream.Sink. Buffer is rewound before
// every sink.
func (r Repeater) WriteDirect(buf *audiostream.DirectBuffer) (int, error) {
	return r.write(buf.Cap(), func(s audiostream.Sink) (int, error) {
		buf.Rewind()
		return s.WriteDirect(buf)
	})
}

// SupportsDirectBuffers returns true if all sinks support it.
func (r Repeater) SupportsDirectBuffers() bool {
	for _, s := range r {
		if !s.SupportsDirectBuffers() {
			return false
		}
	}
	return len(r) > 0
}

// write returns the least number accepted by sinks. Writes stop at the
// first failed sink.
func (r Repeater) write(n int, fn func(audiostream.Sink) (int, error)) (int, error) {
	accepted := n
	for i, s := range r {
		written, err := fn(s)
		if written < accepted {
			accepted = written
		}
		if err != nil {
			return accepted, fmt.Errorf("sink %d: %w", i, err)
		}
		if written < n {
			break
		}
	}
	return accepted, nil
}

// each calls fn for every sink and collects errors.
func (r Repeater) each(fn func(audiostream.Sink) error) error {
	var errs sinkErrors
	for i, s := range r {
		if err := fn(s); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// sinkErrors wraps errors of multiple sinks.
type sinkErrors []error

func (e sinkErrors) Error() string {
	s := make([]string, 0, len(e))
	for _, err := range e {
		s = append(s, err.Error())
	}
	return strings.Join(s, ",")
}

// Unwrap allows to match any of the errors.
func (e sinkErrors) Unwrap() []error {
	return e
}

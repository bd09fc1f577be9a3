package audiostream

import (
	"context"
	"fmt"
	"io"
	"time"

	"pipelined.dev/audiostream/metric"
)

// session is the executor of a single streaming run. It's owned by the
// streaming goroutine from Start until Flush.
type session struct {
	Config
	sink      Sink
	render    RenderFunc
	args      interface{}
	meter     *metric.Meter
	log       Logger
	name      string
	transport transport
}

// Start puts sink into playing state and allocates the transfer buffer.
func (s *session) Start(context.Context) error {
	if err := s.sink.Play(); err != nil {
		return fmt.Errorf("%w: %w", ErrPlay, err)
	}
	s.transport = newTransport(s.Config, s.sink.SupportsDirectBuffers())
	s.log.Debug(fmt.Sprintf("%v streaming %v at %d Hz", s.name, s.transport, s.SampleRate))
	return nil
}

// Execute renders one block and writes it to sink. io.EOF is returned if
// context is done.
func (s *session) Execute(ctx context.Context) error {
	if ctx.Err() != nil {
		return io.EOF
	}

	buf := s.transport.buffer()
	if s.meter != nil {
		renderedAt := time.Now()
		s.render(buf, s.Format, s.NumChannels, s.FramesPerBlock, s.args)
		s.meter.Render(time.Since(renderedAt))
	} else {
		s.render(buf, s.Format, s.NumChannels, s.FramesPerBlock, s.args)
	}

	accepted, requested, err := s.transport.write(s.sink)
	if err != nil {
		return fmt.Errorf("%w: accepted %d of %d: %w", ErrShortWrite, accepted, requested, err)
	}
	if accepted != requested {
		return fmt.Errorf("%w: accepted %d of %d", ErrShortWrite, accepted, requested)
	}
	s.transport.reset()

	s.meter.Block(int64(s.FramesPerBlock), int64(s.BlockBytes()))
	return nil
}

// Flush pauses and stops the sink.
func (s *session) Flush(context.Context) error {
	var errs flushErrors
	if err := s.sink.Pause(); err != nil {
		errs = append(errs, fmt.Errorf("error pausing sink: %w", err))
	}
	if err := s.sink.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("error stopping sink: %w", err))
	}
	return errs.ret()
}

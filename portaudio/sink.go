//go:build portaudio

package portaudio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"pipelined.dev/audiostream"
)

type (
	// Opener creates portaudio sinks with default output device.
	Opener struct{}

	// Sink writes blocks to blocking portaudio stream.
	Sink struct {
		stream   *portaudio.Stream
		int16s   []int16
		float32s []float32
		active   bool
	}
)

// Open implements audiostream.Opener. Portaudio is initialized for every
// sink and terminated when it's released.
func (Opener) Open(cfg audiostream.SinkConfig) (audiostream.Sink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("error initializing portaudio: %w", err)
	}
	s := Sink{}
	var buf interface{}
	size := cfg.FramesPerBlock * cfg.NumChannels
	switch cfg.Format {
	case audiostream.Int16:
		s.int16s = make([]int16, size)
		buf = &s.int16s
	case audiostream.Float32:
		s.float32s = make([]float32, size)
		buf = &s.float32s
	default:
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("%w: unsupported format %v", audiostream.ErrInvalidArgument, cfg.Format)
	}

	stream, err := portaudio.OpenDefaultStream(0, cfg.NumChannels, float64(cfg.SampleRate), cfg.FramesPerBlock, buf)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("error opening portaudio stream: %w", err)
	}
	s.stream = stream
	return &s, nil
}

// Play starts the stream.
func (s *Sink) Play() error {
	if s.active {
		return nil
	}
	if err := s.stream.Start(); err != nil {
		return err
	}
	s.active = true
	return nil
}

// Pause stops the stream after buffered blocks are played.
func (s *Sink) Pause() error {
	if !s.active {
		return nil
	}
	s.active = false
	return s.stream.Stop()
}

// Stop discards buffered blocks.
func (s *Sink) Stop() error {
	if !s.active {
		return nil
	}
	s.active = false
	return s.stream.Abort()
}

// Release closes the stream and terminates portaudio.
func (s *Sink) Release() error {
	err := s.stream.Close()
	if termErr := portaudio.Terminate(); err == nil {
		err = termErr
	}
	return err
}

// WriteInt16 implements audiostream.Sink.
func (s *Sink) WriteInt16(samples []int16) (int, error) {
	return s.write(len(samples), func(from, to int) {
		copy(s.int16s, samples[from:to])
	}, len(s.int16s))
}

// WriteFloat32 implements audiostream.Sink.
func (s *Sink) WriteFloat32(samples []float32) (int, error) {
	return s.write(len(samples), func(from, to int) {
		copy(s.float32s, samples[from:to])
	}, len(s.float32s))
}

// write passes n samples to stream in chunks of stream buffer size.
// Output underflow is not an error for continuous stream.
func (s *Sink) write(n int, fill func(from, to int), size int) (int, error) {
	if size == 0 {
		return 0, fmt.Errorf("%w: format mismatch", audiostream.ErrInvalidArgument)
	}
	written := 0
	for written+size <= n {
		fill(written, written+size)
		if err := s.stream.Write(); err != nil && err != portaudio.OutputUnderflowed {
			return written, err
		}
		written += size
	}
	return written, nil
}

// WriteDirect isn't supported.
func (s *Sink) WriteDirect(*audiostream.DirectBuffer) (int, error) {
	return 0, ErrDirectUnsupported
}

// SupportsDirectBuffers returns false.
func (s *Sink) SupportsDirectBuffers() bool {
	return false
}

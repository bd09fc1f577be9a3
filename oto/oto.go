// Package oto allows to play streams with the default output device
// using oto library.
package oto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"

	"pipelined.dev/audiostream"
)

// ErrContextMismatch is returned if sink is opened with format that
// differs from the one of existing context. Oto allows only one context
// per process, so it cannot be reinitialized.
var ErrContextMismatch = errors.New("oto context format mismatch")

type (
	// Opener creates oto sinks. Context is created when the first sink is
	// opened and is reused by the following ones.
	Opener struct {
		m       sync.Mutex
		context *oto.Context
		options oto.NewContextOptions
	}

	// Sink streams samples to oto player through a pipe. Player keeps
	// reading the pipe while it's playing.
	Sink struct {
		player  *oto.Player
		reader  *io.PipeReader
		writer  *io.PipeWriter
		scratch []byte
	}
)

// NewOpener returns new oto opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open implements audiostream.Opener.
func (o *Opener) Open(cfg audiostream.SinkConfig) (audiostream.Sink, error) {
	options, err := contextOptions(cfg)
	if err != nil {
		return nil, err
	}

	o.m.Lock()
	defer o.m.Unlock()
	if o.context == nil {
		ctx, ready, err := oto.NewContext(&options)
		if err != nil {
			return nil, fmt.Errorf("error creating oto context: %w", err)
		}
		<-ready
		o.context, o.options = ctx, options
	} else if !matches(o.options, options) {
		return nil, fmt.Errorf("%w: %d Hz %d channels", ErrContextMismatch, o.options.SampleRate, o.options.ChannelCount)
	}

	reader, writer := io.Pipe()
	player := o.context.NewPlayer(reader)
	player.SetBufferSize(cfg.BufferFrames * cfg.NumChannels * cfg.Format.BytesPerSample())
	return &Sink{
		player:  player,
		reader:  reader,
		writer:  writer,
		scratch: make([]byte, cfg.FramesPerBlock*cfg.NumChannels*cfg.Format.BytesPerSample()),
	}, nil
}

// contextOptions maps sink config into oto context options.
func contextOptions(cfg audiostream.SinkConfig) (oto.NewContextOptions, error) {
	options := oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.NumChannels,
		BufferSize:   audiostream.DurationOf(cfg.SampleRate, int64(cfg.BufferFrames)),
	}
	switch cfg.Format {
	case audiostream.Int16:
		options.Format = oto.FormatSignedInt16LE
	case audiostream.Float32:
		options.Format = oto.FormatFloat32LE
	default:
		return options, fmt.Errorf("%w: unsupported format %v", audiostream.ErrInvalidArgument, cfg.Format)
	}
	return options, nil
}

// matches checks if context with options a can play stream with options b.
func matches(a, b oto.NewContextOptions) bool {
	return a.SampleRate == b.SampleRate &&
		a.ChannelCount == b.ChannelCount &&
		a.Format == b.Format
}

// Play implements audiostream.Sink.
func (s *Sink) Play() error {
	s.player.Play()
	return s.player.Err()
}

// Pause implements audiostream.Sink.
func (s *Sink) Pause() error {
	s.player.Pause()
	return s.player.Err()
}

// Stop implements audiostream.Sink. Buffered data is kept by player.
func (s *Sink) Stop() error {
	return s.Pause()
}

// Release closes the pipe and the player.
func (s *Sink) Release() error {
	_ = s.writer.Close()
	err := s.player.Close()
	_ = s.reader.Close()
	return err
}

// WriteInt16 implements audiostream.Sink.
func (s *Sink) WriteInt16(samples []int16) (int, error) {
	b := encodeInt16(s.buffer(len(samples)*2), samples)
	n, err := s.writer.Write(b)
	return n / 2, err
}

// WriteFloat32 implements audiostream.Sink.
func (s *Sink) WriteFloat32(samples []float32) (int, error) {
	b := encodeFloat32(s.buffer(len(samples)*4), samples)
	n, err := s.writer.Write(b)
	return n / 4, err
}

// WriteDirect implements audiostream.Sink.
func (s *Sink) WriteDirect(buf *audiostream.DirectBuffer) (int, error) {
	n, err := buf.WriteTo(s.writer)
	return int(n), err
}

// SupportsDirectBuffers returns true if host byte order matches oto
// formats.
func (s *Sink) SupportsDirectBuffers() bool {
	return audiostream.HostLittleEndian()
}

func (s *Sink) buffer(size int) []byte {
	if cap(s.scratch) < size {
		s.scratch = make([]byte, size)
	}
	return s.scratch[:size]
}

func encodeInt16(b []byte, samples []int16) []byte {
	for i, v := range samples {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(v))
	}
	return b
}

func encodeFloat32(b []byte, samples []float32) []byte {
	for i, v := range samples {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

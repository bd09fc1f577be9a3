//go:build lame

package mp3

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/viert/lame"

	"pipelined.dev/audiostream"
	"pipelined.dev/audiostream/signal"
)

// Sink encodes stream into mp3 file. Float32 samples are converted to
// 16 bits before encoding.
type Sink struct {
	f       *os.File
	wr      *lame.LameWriter
	scratch []byte
}

// Open implements audiostream.Opener.
func (o *Opener) Open(cfg audiostream.SinkConfig) (audiostream.Sink, error) {
	if cfg.NumChannels > numChannels {
		return nil, fmt.Errorf("%w: mp3 supports up to %d channels", audiostream.ErrInvalidArgument, numChannels)
	}
	f, err := os.Create(o.path)
	if err != nil {
		return nil, err
	}
	wr := lame.NewWriter(f)
	wr.Encoder.SetBitrate(o.bitRate)
	wr.Encoder.SetQuality(o.quality)
	wr.Encoder.SetNumChannels(cfg.NumChannels)
	wr.Encoder.SetInSamplerate(cfg.SampleRate)
	wr.Encoder.SetMode(lame.JOINT_STEREO)
	wr.Encoder.SetVBR(lame.VBR_RH)
	wr.Encoder.InitParams()
	return &Sink{
		f:       f,
		wr:      wr,
		scratch: make([]byte, cfg.FramesPerBlock*cfg.NumChannels*bytesPerSample),
	}, nil
}

// Play does nothing.
func (s *Sink) Play() error { return nil }

// Pause does nothing.
func (s *Sink) Pause() error { return nil }

// Stop does nothing.
func (s *Sink) Stop() error { return nil }

// Release flushes encoder and closes the file.
func (s *Sink) Release() error {
	err := s.wr.Close()
	if closeErr := s.f.Close(); err == nil {
		err = closeErr
	}
	return err
}

// WriteInt16 implements audiostream.Sink.
func (s *Sink) WriteInt16(samples []int16) (int, error) {
	b := s.buffer(len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(v))
	}
	n, err := s.wr.Write(b)
	return n / bytesPerSample, err
}

// WriteFloat32 implements audiostream.Sink.
func (s *Sink) WriteFloat32(samples []float32) (int, error) {
	b := s.buffer(len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(signal.Int16(float64(v))))
	}
	n, err := s.wr.Write(b)
	return n / bytesPerSample, err
}

// WriteDirect isn't supported.
func (s *Sink) WriteDirect(*audiostream.DirectBuffer) (int, error) {
	return 0, ErrDirectUnsupported
}

// SupportsDirectBuffers returns false.
func (s *Sink) SupportsDirectBuffers() bool {
	return false
}

func (s *Sink) buffer(n int) []byte {
	size := n * bytesPerSample
	if cap(s.scratch) < size {
		s.scratch = make([]byte, size)
	}
	return s.scratch[:size]
}

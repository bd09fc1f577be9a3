// Package wav allows to record streams into wav files and to use wav
// files as producers.
package wav

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"pipelined.dev/audiostream"
	"pipelined.dev/audiostream/signal"
)

// Wav audio format tags.
const (
	formatPCM   = 1
	formatFloat = 3
)

var (
	// ErrUnsupportedBitDepth is returned when file has unsupported bit depth.
	ErrUnsupportedBitDepth = errors.New("only 8, 16, 24 and 32 bit depth is supported")
	// ErrInvalidFile is returned if file is not valid wav.
	ErrInvalidFile = errors.New("wav is not valid")
	// ErrDirectUnsupported is returned by direct writes.
	ErrDirectUnsupported = errors.New("wav sink doesn't support direct buffers")
)

type (
	// Opener creates wav sinks. Int16 streams are recorded as 16-bit PCM,
	// Float32 streams as 32-bit IEEE float.
	Opener struct {
		path string
		ws   io.WriteSeeker
	}

	// Sink encodes stream into wav. File is finalized when sink is
	// released.
	Sink struct {
		encoder *wav.Encoder
		closer  io.Closer
		ib      *audio.IntBuffer
	}
)

// NewOpener returns opener that writes to ws. The ws is not closed.
func NewOpener(ws io.WriteSeeker) *Opener {
	return &Opener{ws: ws}
}

// Create returns opener that creates a file at path.
func Create(path string) *Opener {
	return &Opener{path: path}
}

// Open implements audiostream.Opener.
func (o *Opener) Open(cfg audiostream.SinkConfig) (audiostream.Sink, error) {
	var format int
	switch cfg.Format {
	case audiostream.Int16:
		format = formatPCM
	case audiostream.Float32:
		format = formatFloat
	default:
		return nil, fmt.Errorf("%w: unsupported format %v", audiostream.ErrInvalidArgument, cfg.Format)
	}

	s := Sink{
		ib: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: cfg.NumChannels,
				SampleRate:  cfg.SampleRate,
			},
			Data:           make([]int, cfg.FramesPerBlock*cfg.NumChannels),
			SourceBitDepth: cfg.Format.BytesPerSample() * 8,
		},
	}
	ws := o.ws
	if o.path != "" {
		f, err := os.Create(o.path)
		if err != nil {
			return nil, err
		}
		ws, s.closer = f, f
	}
	s.encoder = wav.NewEncoder(ws, cfg.SampleRate, s.ib.SourceBitDepth, cfg.NumChannels, format)
	return &s, nil
}

// Play does nothing.
func (s *Sink) Play() error { return nil }

// Pause does nothing.
func (s *Sink) Pause() error { return nil }

// Stop does nothing.
func (s *Sink) Stop() error { return nil }

// Release finalizes wav and closes the file.
func (s *Sink) Release() error {
	err := s.encoder.Close()
	if s.closer != nil {
		if closeErr := s.closer.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

// WriteInt16 implements audiostream.Sink.
func (s *Sink) WriteInt16(samples []int16) (int, error) {
	data := s.data(len(samples))
	for i, v := range samples {
		data[i] = int(v)
	}
	if err := s.encoder.Write(s.ib); err != nil {
		return 0, err
	}
	return len(samples), nil
}

// WriteFloat32 implements audiostream.Sink. Float bits are passed to
// encoder as 32-bit integers.
func (s *Sink) WriteFloat32(samples []float32) (int, error) {
	data := s.data(len(samples))
	for i, v := range samples {
		data[i] = signal.FloatBits(v)
	}
	if err := s.encoder.Write(s.ib); err != nil {
		return 0, err
	}
	return len(samples), nil
}

// WriteDirect isn't supported.
func (s *Sink) WriteDirect(*audiostream.DirectBuffer) (int, error) {
	return 0, ErrDirectUnsupported
}

// SupportsDirectBuffers returns false.
func (s *Sink) SupportsDirectBuffers() bool {
	return false
}

func (s *Sink) data(n int) []int {
	if cap(s.ib.Data) < n {
		s.ib.Data = make([]int, n)
	}
	s.ib.Data = s.ib.Data[:n]
	return s.ib.Data
}

// Producer renders blocks decoded from wav. When the file is over,
// blocks are filled with silence and Done is closed.
type Producer struct {
	decoder     *wav.Decoder
	closer      io.Closer
	float       bool
	bitDepth    signal.BitDepth
	numChannels int
	ib          *audio.IntBuffer

	once sync.Once
	done chan struct{}
	err  error
}

// Open returns producer of the file at path.
func Open(path string) (*Producer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	p, err := NewProducer(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	p.closer = f
	return p, nil
}

// NewProducer returns producer that decodes wav from rs.
func NewProducer(rs io.ReadSeeker) (*Producer, error) {
	decoder := wav.NewDecoder(rs)
	if !decoder.IsValidFile() {
		return nil, ErrInvalidFile
	}
	bitDepth := signal.BitDepth(decoder.BitDepth)
	if !bitDepth.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	format := decoder.Format()
	return &Producer{
		decoder:     decoder,
		float:       decoder.WavAudioFormat == formatFloat && bitDepth == signal.BitDepth32,
		bitDepth:    bitDepth,
		numChannels: format.NumChannels,
		ib: &audio.IntBuffer{
			Format:         format,
			SourceBitDepth: int(bitDepth),
		},
		done: make(chan struct{}),
	}, nil
}

// SampleRate returns sample rate of the file.
func (p *Producer) SampleRate() int {
	return int(p.decoder.SampleRate)
}

// NumChannels returns number of channels in the file.
func (p *Producer) NumChannels() int {
	return p.numChannels
}

// Done is closed when all samples are rendered.
func (p *Producer) Done() <-chan struct{} {
	return p.done
}

// Err returns decoding error. It's valid after Done is closed.
func (p *Producer) Err() error {
	return p.err
}

// Close closes the file if producer was opened with Open.
func (p *Producer) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// Render is an audiostream.RenderFunc. Channels of the file are mapped
// to stream channels round-robin.
func (p *Producer) Render(buf audiostream.Buffer, format audiostream.SampleFormat, numChannels, numFrames int, _ interface{}) {
	size := numFrames * p.numChannels
	if cap(p.ib.Data) < size {
		p.ib.Data = make([]int, size)
	}
	p.ib.Data = p.ib.Data[:size]

	read := 0
	select {
	case <-p.done:
	default:
		n, err := p.decoder.PCMBuffer(p.ib)
		read = n / p.numChannels
		if err != nil || n < size {
			p.finish(err)
		}
	}

	int16s, float32s := buf.Int16(), buf.Float32()
	for i := 0; i < numFrames; i++ {
		for c := 0; c < numChannels; c++ {
			var v float64
			if i < read {
				v = p.value(p.ib.Data[i*p.numChannels+c%p.numChannels])
			}
			switch format {
			case audiostream.Int16:
				int16s[i*numChannels+c] = signal.Int16(v)
			case audiostream.Float32:
				float32s[i*numChannels+c] = float32(v)
			}
		}
	}
}

// value normalizes decoded sample into [-1, 1].
func (p *Producer) value(v int) float64 {
	if p.float {
		return float64(signal.FromFloatBits(v))
	}
	return p.bitDepth.Float(v)
}

func (p *Producer) finish(err error) {
	p.once.Do(func() {
		if err != io.EOF {
			p.err = err
		}
		close(p.done)
	})
}

// Package mp3 allows to use mp3 files as producers. Recording streams
// into mp3 requires lame build tag, otherwise opener returns
// ErrNotEnabled.
package mp3

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hajimehoshi/go-mp3"

	"pipelined.dev/audiostream"
	"pipelined.dev/audiostream/signal"
)

const (
	// decoded stream is always 16-bit stereo.
	numChannels    = 2
	bytesPerSample = 2
	bytesPerFrame  = numChannels * bytesPerSample
)

var (
	// ErrNotEnabled is returned if package is built without lame tag.
	ErrNotEnabled = errors.New("mp3 encoding is not enabled, build with lame tag")
	// ErrDirectUnsupported is returned by direct writes.
	ErrDirectUnsupported = errors.New("mp3 sink doesn't support direct buffers")
)

// Opener creates mp3 sinks which encode stream with lame.
type Opener struct {
	path    string
	bitRate int
	quality int
}

// Create returns opener that creates a file at path. Bit rate is in
// kbps, quality is in range from 0 (best) to 9 (worst).
func Create(path string, bitRate, quality int) *Opener {
	return &Opener{
		path:    path,
		bitRate: bitRate,
		quality: quality,
	}
}

// Producer renders blocks decoded from mp3. When the file is over,
// blocks are filled with silence and Done is closed.
type Producer struct {
	decoder *mp3.Decoder
	closer  io.Closer
	scratch []byte

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

// NewProducer returns producer that decodes mp3 from r.
func NewProducer(r io.Reader) (*Producer, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("error creating mp3 decoder: %w", err)
	}
	return &Producer{
		decoder: decoder,
		done:    make(chan struct{}),
	}, nil
}

// SampleRate returns sample rate of the file.
func (p *Producer) SampleRate() int {
	return p.decoder.SampleRate()
}

// NumChannels returns number of decoded channels.
func (p *Producer) NumChannels() int {
	return numChannels
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

// Render is an audiostream.RenderFunc.
func (p *Producer) Render(buf audiostream.Buffer, format audiostream.SampleFormat, channels, numFrames int, _ interface{}) {
	size := numFrames * bytesPerFrame
	if cap(p.scratch) < size {
		p.scratch = make([]byte, size)
	}
	p.scratch = p.scratch[:size]

	read := 0
	select {
	case <-p.done:
	default:
		n, err := io.ReadFull(p.decoder, p.scratch)
		read = n / bytesPerFrame
		if err != nil {
			p.finish(err)
		}
	}

	int16s, float32s := buf.Int16(), buf.Float32()
	for i := 0; i < numFrames; i++ {
		for c := 0; c < channels; c++ {
			var v int16
			if i < read {
				pos := i*bytesPerFrame + (c%numChannels)*bytesPerSample
				v = int16(uint16(p.scratch[pos]) | uint16(p.scratch[pos+1])<<8)
			}
			switch format {
			case audiostream.Int16:
				int16s[i*channels+c] = v
			case audiostream.Float32:
				float32s[i*channels+c] = signal.Float32(v)
			}
		}
	}
}

func (p *Producer) finish(err error) {
	p.once.Do(func() {
		if err != io.EOF && err != io.ErrUnexpectedEOF {
			p.err = err
		}
		close(p.done)
	})
}

package audiostream

import (
	"fmt"
	"time"
)

// SampleFormat identifies the layout of a single PCM sample.
type SampleFormat int

const (
	// Int16 is a signed 16-bit integer sample.
	Int16 SampleFormat = iota + 1
	// Float32 is a 32-bit IEEE float sample in [-1, 1].
	Float32
)

// supportedChannels is the only channel layout the engine streams.
const supportedChannels = 2

// BytesPerSample returns the size of one sample. Zero is returned for
// unknown formats.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case Int16:
		return 2
	case Float32:
		return 4
	}
	return 0
}

// Valid reports whether format is known to the engine.
func (f SampleFormat) Valid() bool {
	return f == Int16 || f == Float32
}

func (f SampleFormat) String() string {
	switch f {
	case Int16:
		return "s16"
	case Float32:
		return "f32"
	}
	return fmt.Sprintf("unknown(%d)", int(f))
}

// ParseSampleFormat converts the short name of a format into value.
// Accepted names are "s16" and "f32".
func ParseSampleFormat(s string) (SampleFormat, error) {
	switch s {
	case "s16", "int16":
		return Int16, nil
	case "f32", "float32":
		return Float32, nil
	}
	return 0, fmt.Errorf("%w: unknown sample format %q", ErrInvalidArgument, s)
}

// Config is the stream configuration. It is applied once with
// Engine.Configure and cannot be changed afterwards.
type Config struct {
	Format         SampleFormat
	SampleRate     int
	NumChannels    int
	FramesPerBlock int
	// BlockCount is the number of blocks the sink pre-buffers.
	BlockCount int
}

// Validate checks that the configuration can be streamed. All errors
// wrap ErrInvalidArgument.
func (c Config) Validate() error {
	if !c.Format.Valid() {
		return fmt.Errorf("%w: unsupported sample format %v", ErrInvalidArgument, c.Format)
	}
	if c.NumChannels != supportedChannels {
		return fmt.Errorf("%w: unsupported number of channels %d", ErrInvalidArgument, c.NumChannels)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive: %d", ErrInvalidArgument, c.SampleRate)
	}
	if c.FramesPerBlock <= 0 {
		return fmt.Errorf("%w: frames per block must be positive: %d", ErrInvalidArgument, c.FramesPerBlock)
	}
	if c.BlockCount <= 0 {
		return fmt.Errorf("%w: block count must be positive: %d", ErrInvalidArgument, c.BlockCount)
	}
	return nil
}

// BlockSamples returns the number of interleaved samples in one block.
func (c Config) BlockSamples() int {
	return c.FramesPerBlock * c.NumChannels
}

// BlockBytes returns the size of one block in bytes.
func (c Config) BlockBytes() int {
	return c.BlockSamples() * c.Format.BytesPerSample()
}

// BlockDuration returns nominal playback duration of one block.
func (c Config) BlockDuration() time.Duration {
	return DurationOf(c.SampleRate, int64(c.FramesPerBlock))
}

// SinkConfig returns the configuration the sink is opened with.
func (c Config) SinkConfig() SinkConfig {
	return SinkConfig{
		Format:         c.Format,
		SampleRate:     c.SampleRate,
		NumChannels:    c.NumChannels,
		FramesPerBlock: c.FramesPerBlock,
		BufferFrames:   c.FramesPerBlock * c.BlockCount,
	}
}

// DurationOf returns time duration of frames at provided sample rate.
func DurationOf(sampleRate int, frames int64) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(frames) / float64(sampleRate) * float64(time.Second))
}

package oto

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/stretchr/testify/assert"

	"pipelined.dev/audiostream"
)

func TestContextOptions(t *testing.T) {
	cfg := audiostream.SinkConfig{
		Format:         audiostream.Int16,
		SampleRate:     44100,
		NumChannels:    2,
		FramesPerBlock: 441,
		BufferFrames:   4410,
	}
	options, err := contextOptions(cfg)
	assert.NoError(t, err)
	assert.Equal(t, oto.FormatSignedInt16LE, options.Format)
	assert.Equal(t, 100*time.Millisecond, options.BufferSize)

	cfg.Format = audiostream.Float32
	float, err := contextOptions(cfg)
	assert.NoError(t, err)
	assert.Equal(t, oto.FormatFloat32LE, float.Format)
	assert.False(t, matches(options, float))

	cfg.BufferFrames = 8820
	larger, err := contextOptions(cfg)
	assert.NoError(t, err)
	assert.True(t, matches(float, larger), "buffer size doesn't matter")

	cfg.Format = 0
	_, err = contextOptions(cfg)
	assert.True(t, errors.Is(err, audiostream.ErrInvalidArgument))
}

func TestEncode(t *testing.T) {
	b := encodeInt16(make([]byte, 4), []int16{1, -2})
	assert.Equal(t, []byte{0x01, 0x00, 0xfe, 0xff}, b)

	b = encodeFloat32(make([]byte, 4), []float32{1})
	assert.Equal(t, math.Float32bits(1), uint32(b[0])|uint32(b[1])<<8|uint32(b[2])<<16|uint32(b[3])<<24)
}

func TestSinkBuffer(t *testing.T) {
	s := &Sink{scratch: make([]byte, 4)}
	assert.Equal(t, 2, len(s.buffer(2)))
	assert.Equal(t, 16, len(s.buffer(16)))
	assert.Equal(t, 16, cap(s.scratch))
}

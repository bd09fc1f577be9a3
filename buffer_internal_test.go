package audiostream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferViews(t *testing.T) {
	b := newBuffer(Int16, 2, 8)
	assert.Equal(t, 16, b.Len())
	assert.Equal(t, 16, len(b.Int16()))
	assert.Nil(t, b.Float32())
	assert.Equal(t, 32, len(b.Bytes()))
	assert.Equal(t, Int16, b.Format())
	assert.Equal(t, 2, b.NumChannels())
	assert.Equal(t, 8, b.NumFrames())

	b.Int16()[0] = 0x0102
	if HostLittleEndian() {
		assert.Equal(t, []byte{0x02, 0x01}, b.Bytes()[:2])
	} else {
		assert.Equal(t, []byte{0x01, 0x02}, b.Bytes()[:2])
	}

	f := newBuffer(Float32, 2, 4)
	assert.Equal(t, 8, len(f.Float32()))
	assert.Equal(t, 32, len(f.Bytes()))
	assert.Nil(t, f.Int16())
	f.Float32()[7] = 1
	assert.NotEqual(t, make([]byte, 4), f.Bytes()[28:], "views share memory")
}

func TestDirectBuffer(t *testing.T) {
	db := NewDirectBuffer([]byte{1, 2, 3, 4, 5})
	assert.Equal(t, 5, db.Cap())
	assert.Equal(t, 5, db.Len())

	p := make([]byte, 2)
	n, err := db.Read(p)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, db.Position())
	assert.Equal(t, []byte{3, 4, 5}, db.Bytes())

	var w bytes.Buffer
	written, err := db.WriteTo(&w)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), written)
	assert.Equal(t, []byte{3, 4, 5}, w.Bytes())
	assert.Equal(t, 0, db.Len())

	_, err = db.Read(p)
	assert.Equal(t, io.EOF, err)
	written, err = db.WriteTo(&w)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), written)

	db.Advance(10)
	assert.Equal(t, 5, db.Position())
	db.Rewind()
	assert.Equal(t, 0, db.Position())
	assert.Equal(t, 5, db.Cap())
}

func TestTransport(t *testing.T) {
	tests := []struct {
		format   SampleFormat
		direct   bool
		expected string
	}{
		{format: Int16, expected: "s16/managed"},
		{format: Float32, expected: "f32/managed"},
		{format: Int16, direct: true, expected: "s16/direct"},
		{format: Float32, direct: true, expected: "f32/direct"},
	}
	for _, test := range tests {
		cfg := Config{Format: test.format, SampleRate: 8000, NumChannels: 2, FramesPerBlock: 16, BlockCount: 2}
		tr := newTransport(cfg, test.direct)
		assert.Equal(t, test.expected, tr.String())
		assert.Equal(t, 32, tr.buffer().Len())
	}
	assert.Panics(t, func() {
		newTransport(Config{NumChannels: 2, FramesPerBlock: 1}, false)
	})
}

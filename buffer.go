package audiostream

import (
	"io"
	"unsafe"
)

// Buffer is a transfer block passed to the RenderFunc. It is allocated
// once per session and reused for every block. Int16, Float32 and Bytes
// are views of the same memory, only the view of the configured format
// is non-nil.
type Buffer struct {
	format      SampleFormat
	numChannels int
	numFrames   int
	int16s      []int16
	float32s    []float32
	bytes       []byte
}

// newBuffer allocates a block for numFrames interleaved frames of format.
// The memory is allocated as typed slice, so its alignment always matches
// the sample type.
func newBuffer(format SampleFormat, numChannels, numFrames int) Buffer {
	b := Buffer{
		format:      format,
		numChannels: numChannels,
		numFrames:   numFrames,
	}
	n := numChannels * numFrames
	switch format {
	case Int16:
		b.int16s = make([]int16, n)
		b.bytes = unsafe.Slice((*byte)(unsafe.Pointer(&b.int16s[0])), n*2)
	case Float32:
		b.float32s = make([]float32, n)
		b.bytes = unsafe.Slice((*byte)(unsafe.Pointer(&b.float32s[0])), n*4)
	}
	return b
}

// Int16 returns samples of Int16 buffer.
func (b Buffer) Int16() []int16 {
	return b.int16s
}

// Float32 returns samples of Float32 buffer.
func (b Buffer) Float32() []float32 {
	return b.float32s
}

// Bytes returns raw memory of the buffer in host byte order.
func (b Buffer) Bytes() []byte {
	return b.bytes
}

// Format returns sample format of the buffer.
func (b Buffer) Format() SampleFormat {
	return b.format
}

// NumChannels returns number of interleaved channels.
func (b Buffer) NumChannels() int {
	return b.numChannels
}

// NumFrames returns number of frames.
func (b Buffer) NumFrames() int {
	return b.numFrames
}

// Len returns number of samples in the buffer.
func (b Buffer) Len() int {
	return b.numChannels * b.numFrames
}

// DirectBuffer wraps raw memory of a Buffer for zero-copy handoff to sink.
// Sinks consume it from the current position, the engine rewinds it
// before the next block.
type DirectBuffer struct {
	data []byte
	pos  int
}

// NewDirectBuffer wraps data. The slice is not copied.
func NewDirectBuffer(data []byte) *DirectBuffer {
	return &DirectBuffer{data: data}
}

// Bytes returns unread part of the buffer.
func (b *DirectBuffer) Bytes() []byte {
	return b.data[b.pos:]
}

// Len returns number of unread bytes.
func (b *DirectBuffer) Len() int {
	return len(b.data) - b.pos
}

// Cap returns size of the wrapped memory.
func (b *DirectBuffer) Cap() int {
	return len(b.data)
}

// Position returns the position marker.
func (b *DirectBuffer) Position() int {
	return b.pos
}

// Advance moves position marker by n bytes.
func (b *DirectBuffer) Advance(n int) {
	b.pos += n
	if b.pos > len(b.data) {
		b.pos = len(b.data)
	}
}

// Rewind resets position marker to the start of buffer.
func (b *DirectBuffer) Rewind() {
	b.pos = 0
}

// Read implements io.Reader.
func (b *DirectBuffer) Read(p []byte) (int, error) {
	if b.Len() == 0 {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += n
	return n, nil
}

// WriteTo implements io.WriterTo. Unread bytes are passed to w without copy.
func (b *DirectBuffer) WriteTo(w io.Writer) (int64, error) {
	if b.Len() == 0 {
		return 0, nil
	}
	n, err := w.Write(b.data[b.pos:])
	b.Advance(n)
	return int64(n), err
}

// HostLittleEndian reports whether the host stores multi-byte samples in
// little-endian order. Sinks that consume Bytes as little-endian PCM
// should only support direct buffers when it's true.
func HostLittleEndian() bool {
	return hostLittleEndian
}

var hostLittleEndian = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

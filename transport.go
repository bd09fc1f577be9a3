package audiostream

import "fmt"

// transport hands the transfer buffer to the sink. It's selected once per
// session from the sample format and sink capabilities.
type transport interface {
	// buffer returns the block passed to the producer.
	buffer() Buffer
	// write passes the block to the sink. requested is the amount sink
	// must accept for write to be complete.
	write(Sink) (accepted, requested int, err error)
	// reset prepares the buffer for the next block.
	reset()
	String() string
}

type (
	// managedInt16 passes Int16 samples to sink which copies them.
	managedInt16 struct {
		buf Buffer
	}

	// managedFloat32 passes Float32 samples to sink which copies them.
	managedFloat32 struct {
		buf Buffer
	}

	// direct passes raw memory of the buffer to sink.
	direct struct {
		buf Buffer
		db  *DirectBuffer
	}
)

// newTransport allocates the transfer buffer and selects a transport for
// it.
func newTransport(cfg Config, directSupported bool) transport {
	buf := newBuffer(cfg.Format, cfg.NumChannels, cfg.FramesPerBlock)
	if directSupported {
		return &direct{
			buf: buf,
			db:  NewDirectBuffer(buf.Bytes()),
		}
	}
	switch cfg.Format {
	case Int16:
		return managedInt16{buf: buf}
	case Float32:
		return managedFloat32{buf: buf}
	}
	panic(fmt.Sprintf("unsupported format %v", cfg.Format))
}

func (t managedInt16) buffer() Buffer { return t.buf }

func (t managedInt16) write(s Sink) (int, int, error) {
	n, err := s.WriteInt16(t.buf.int16s)
	return n, len(t.buf.int16s), err
}

func (managedInt16) reset() {}

func (managedInt16) String() string { return "s16/managed" }

func (t managedFloat32) buffer() Buffer { return t.buf }

func (t managedFloat32) write(s Sink) (int, int, error) {
	n, err := s.WriteFloat32(t.buf.float32s)
	return n, len(t.buf.float32s), err
}

func (managedFloat32) reset() {}

func (managedFloat32) String() string { return "f32/managed" }

func (t *direct) buffer() Buffer { return t.buf }

func (t *direct) write(s Sink) (int, int, error) {
	n, err := s.WriteDirect(t.db)
	return n, t.db.Cap(), err
}

func (t *direct) reset() {
	t.db.Rewind()
}

func (t *direct) String() string {
	return t.buf.format.String() + "/direct"
}

// Package mock provides mocks for stream collaborators and allows to
// execute integration tests.
package mock

import (
	"errors"
	"sync"
	"time"

	"pipelined.dev/audiostream"
)

// ErrReleased is returned when released sink is used.
var ErrReleased = errors.New("sink is released")

// Sink states recorded in calls.
const (
	Play    = "play"
	Pause   = "pause"
	Stop    = "stop"
	Release = "release"
)

// Sink mocks up an audiostream.Sink interface. Exported fields must be
// set before the sink is used. Recorded values are safe to read while
// stream is running.
type Sink struct {
	// Direct enables direct buffer writes.
	Direct bool
	// Interval is the time each write takes.
	Interval time.Duration
	// ShortWriteAt is the index of the first write, starting from 1,
	// which is accepted only partially. Zero disables short writes.
	ShortWriteAt int
	Hooks

	mu sync.Mutex
	counter
	calls     []string
	lengths   []int
	positions []int
	last      []byte
	int16s    []int16
	float32s  []float32
	released  bool
}

// Hooks allows to mock sink errors.
type Hooks struct {
	ErrorOnPlay    error
	ErrorOnPause   error
	ErrorOnStop    error
	ErrorOnRelease error
	ErrorOnWrite   error
}

// Play implements audiostream.Sink.
func (m *Sink) Play() error {
	return m.call(Play, m.ErrorOnPlay)
}

// Pause implements audiostream.Sink.
func (m *Sink) Pause() error {
	return m.call(Pause, m.ErrorOnPause)
}

// Stop implements audiostream.Sink.
func (m *Sink) Stop() error {
	return m.call(Stop, m.ErrorOnStop)
}

// Release implements audiostream.Sink.
func (m *Sink) Release() error {
	err := m.call(Release, m.ErrorOnRelease)
	m.mu.Lock()
	m.released = true
	m.mu.Unlock()
	return err
}

func (m *Sink) call(name string, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return ErrReleased
	}
	m.calls = append(m.calls, name)
	return err
}

// WriteInt16 implements audiostream.Sink.
func (m *Sink) WriteInt16(samples []int16) (int, error) {
	return m.write(len(samples), 2, func(n int) {
		m.int16s = append(m.int16s[:0], samples[:n]...)
	})
}

// WriteFloat32 implements audiostream.Sink.
func (m *Sink) WriteFloat32(samples []float32) (int, error) {
	return m.write(len(samples), 4, func(n int) {
		m.float32s = append(m.float32s[:0], samples[:n]...)
	})
}

// WriteDirect implements audiostream.Sink. Buffer is consumed from its
// position, so it must be rewound between writes.
func (m *Sink) WriteDirect(buf *audiostream.DirectBuffer) (int, error) {
	m.mu.Lock()
	m.positions = append(m.positions, buf.Position())
	m.mu.Unlock()
	return m.write(buf.Len(), 1, func(n int) {
		m.last = append(m.last[:0], buf.Bytes()[:n]...)
		buf.Advance(n)
	})
}

// write accepts n units of provided size. Capture is called under lock
// with number of accepted units.
func (m *Sink) write(n, size int, capture func(int)) (int, error) {
	if m.Interval > 0 {
		time.Sleep(m.Interval)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return 0, ErrReleased
	}
	m.lengths = append(m.lengths, n)
	if m.ErrorOnWrite != nil {
		return 0, m.ErrorOnWrite
	}
	accepted := n
	if m.ShortWriteAt > 0 && m.writes+1 >= m.ShortWriteAt {
		accepted = n / 2
	}
	capture(accepted)
	m.advance(accepted * size)
	return accepted, nil
}

// SupportsDirectBuffers implements audiostream.Sink.
func (m *Sink) SupportsDirectBuffers() bool {
	return m.Direct
}

// Count returns number of writes and bytes written.
func (m *Sink) Count() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes, m.bytes
}

// Calls returns names of lifecycle calls in order.
func (m *Sink) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// State returns the last lifecycle call. Empty string is returned if
// sink wasn't used.
func (m *Sink) State() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return ""
	}
	return m.calls[len(m.calls)-1]
}

// Lengths returns requested length of every write.
func (m *Sink) Lengths() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.lengths...)
}

// Positions returns position of direct buffer before every direct write.
func (m *Sink) Positions() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.positions...)
}

// LastInt16 returns samples accepted by the last Int16 write.
func (m *Sink) LastInt16() []int16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int16(nil), m.int16s...)
}

// LastFloat32 returns samples accepted by the last Float32 write.
func (m *Sink) LastFloat32() []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float32(nil), m.float32s...)
}

// LastBytes returns bytes accepted by the last direct write.
func (m *Sink) LastBytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.last...)
}

// Opener mocks up an audiostream.Opener interface.
type Opener struct {
	// Sink is returned by Open. New sink is created if it's nil.
	Sink        *Sink
	ErrorOnOpen error

	mu     sync.Mutex
	opened int
	config audiostream.SinkConfig
}

// Open implements audiostream.Opener.
func (o *Opener) Open(cfg audiostream.SinkConfig) (audiostream.Sink, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ErrorOnOpen != nil {
		return nil, o.ErrorOnOpen
	}
	o.opened++
	o.config = cfg
	if o.Sink == nil {
		o.Sink = &Sink{}
	}
	return o.Sink, nil
}

// Opened returns number of opened sinks and the last config.
func (o *Opener) Opened() (int, audiostream.SinkConfig) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opened, o.config
}

// Producer mocks up a producer. It fills every block with Value.
type Producer struct {
	Value float64
	// Interval is the time each render takes.
	Interval time.Duration

	mu       sync.Mutex
	calls    int
	lengths  []int
	args     interface{}
	calledAt time.Time
	mismatch bool
}

// Render is an audiostream.RenderFunc.
func (p *Producer) Render(buf audiostream.Buffer, format audiostream.SampleFormat, numChannels, numFrames int, args interface{}) {
	if p.Interval > 0 {
		time.Sleep(p.Interval)
	}
	var n int
	switch format {
	case audiostream.Int16:
		samples := buf.Int16()
		v := int16(p.Value * 32767)
		for i := range samples {
			samples[i] = v
		}
		n = len(samples)
	case audiostream.Float32:
		samples := buf.Float32()
		v := float32(p.Value)
		for i := range samples {
			samples[i] = v
		}
		n = len(samples)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == 0 {
		p.calledAt = time.Now()
	}
	p.calls++
	p.lengths = append(p.lengths, n)
	p.args = args
	if n != numChannels*numFrames || buf.Len() != n || buf.Format() != format {
		p.mismatch = true
	}
}

// Calls returns number of render calls.
func (p *Producer) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Lengths returns number of samples rendered by every call.
func (p *Producer) Lengths() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.lengths...)
}

// Args returns args of the last call.
func (p *Producer) Args() interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.args
}

// FirstCall returns time of the first render call.
func (p *Producer) FirstCall() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calledAt
}

// Mismatch reports whether any call got buffer which doesn't match
// its format, channels and frames.
func (p *Producer) Mismatch() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mismatch
}

// Binder mocks up an audiostream.Binder interface.
type Binder struct {
	ErrorOnAttach error

	mu       sync.Mutex
	attached int
	detached int
}

// Attach implements audiostream.Binder.
func (b *Binder) Attach() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ErrorOnAttach != nil {
		return b.ErrorOnAttach
	}
	b.attached++
	return nil
}

// Detach implements audiostream.Binder.
func (b *Binder) Detach() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.detached++
}

// Count returns number of attach and detach calls.
func (b *Binder) Count() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attached, b.detached
}

// counter counts writes and bytes.
type counter struct {
	writes int
	bytes  int
}

// advance counter's metrics.
func (c *counter) advance(bytes int) {
	c.writes++
	c.bytes += bytes
}

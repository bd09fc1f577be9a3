// Package metric provides counters of running streams.
//
// Meters are created per stream session and registered in a Metric under
// the stream name. Counters are safe to read while stream is running.
package metric

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// BlockCounter measures number of blocks written to sink.
	BlockCounter = "Blocks"
	// FrameCounter measures number of frames written to sink.
	FrameCounter = "Frames"
	// ByteCounter measures number of bytes written to sink.
	ByteCounter = "Bytes"
	// StartCounter fixes when session started.
	StartCounter = "Start"
	// LatencyCounter measures time between two consequent blocks.
	LatencyCounter = "Latency"
	// RenderCounter measures how long the producer took to render the
	// last block.
	RenderCounter = "Render"
	// ElapsedCounter fixes time since session start.
	ElapsedCounter = "Elapsed"
	// DurationCounter counts playback duration of written frames.
	DurationCounter = "Duration"
)

// counters is a structure for metrics initialization.
var streamCounters = []string{
	BlockCounter,
	FrameCounter,
	ByteCounter,
	StartCounter,
	LatencyCounter,
	RenderCounter,
	ElapsedCounter,
	DurationCounter,
}

// Metric contains meters of all streams.
type Metric struct {
	m      sync.Mutex
	meters map[string]map[string]*atomic.Value
}

// Measure is a snapshot of full metric with all counters.
type Measure map[string]map[string]interface{}

// addCounters to the metric. If id matches with existing counters, those
// will be replaced with the new one.
func (m *Metric) addCounters(id string, counters ...string) map[string]*atomic.Value {
	m.m.Lock()
	defer m.m.Unlock()

	if m.meters == nil {
		m.meters = make(map[string]map[string]*atomic.Value)
	} else {
		delete(m.meters, id)
	}

	meter := make(map[string]*atomic.Value)
	for _, counter := range counters {
		meter[counter] = &atomic.Value{}
	}

	m.meters[id] = meter
	return meter
}

// Measure returns Metric's measures.
func (m *Metric) Measure() Measure {
	if m == nil {
		return nil
	}
	r := make(map[string]map[string]interface{})
	m.m.Lock()
	defer m.m.Unlock()

	for meterName, meter := range m.meters {
		meterValues := make(map[string]interface{})
		for counterName, counter := range meter {
			meterValues[counterName] = counter.Load()
		}
		r[meterName] = meterValues
	}
	return r
}

// Publish exposes Metric's measures as expvar variable with provided
// name. It panics if name is already published.
func (m *Metric) Publish(name string) {
	expvar.Publish(name, expvar.Func(func() interface{} {
		return m.Measure()
	}))
}

// Meter creates new meter with stream counters. Nil Metric returns nil
// meter which is safe to use.
func (m *Metric) Meter(id string, sampleRate int) *Meter {
	if m == nil {
		return nil
	}
	now := time.Now()
	meter := Meter{
		sampleRate: sampleRate,
		startedAt:  now,
		writtenAt:  now,
	}

	meter.counters = m.addCounters(id, streamCounters...)
	store(meter.counters, StartCounter, meter.startedAt)
	return &meter
}

// Meter contains all stream counters. It is not safe for concurrent use,
// only one goroutine should capture the values.
type Meter struct {
	counters   map[string]*atomic.Value
	sampleRate int
	startedAt  time.Time     // StartCounter
	blocks     int64         // BlockCounter
	frames     int64         // FrameCounter
	bytes      int64         // ByteCounter
	latency    time.Duration // LatencyCounter
	writtenAt  time.Time
	elapsed    time.Duration // ElapsedCounter
	duration   time.Duration // DurationCounter
}

// Block captures metrics after block is written.
func (m *Meter) Block(frames, bytes int64) *Meter {
	if m == nil {
		return nil
	}
	now := time.Now()
	m.blocks++
	m.frames += frames
	m.bytes += bytes
	m.latency = now.Sub(m.writtenAt)
	m.writtenAt = now
	m.elapsed = now.Sub(m.startedAt)
	m.duration = durationOf(m.sampleRate, m.frames)

	store(m.counters, BlockCounter, m.blocks)
	store(m.counters, FrameCounter, m.frames)
	store(m.counters, ByteCounter, m.bytes)
	store(m.counters, LatencyCounter, m.latency)
	store(m.counters, ElapsedCounter, m.elapsed)
	store(m.counters, DurationCounter, m.duration)
	return m
}

// Render captures duration of producer call.
func (m *Meter) Render(d time.Duration) *Meter {
	if m == nil {
		return nil
	}
	store(m.counters, RenderCounter, d)
	return m
}

// Store new counter value.
func store(m map[string]*atomic.Value, c string, v interface{}) {
	if counter, ok := m[c]; ok {
		counter.Store(v)
	}
}

func durationOf(sampleRate int, frames int64) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(frames) / float64(sampleRate) * float64(time.Second))
}

// String returns a printable form of counter value.
func String(v interface{}) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(v)
}

package audiostream_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"pipelined.dev/audiostream"
	"pipelined.dev/audiostream/log"
	"pipelined.dev/audiostream/metric"
	"pipelined.dev/audiostream/mock"
)

var errMock = errors.New("mock error")

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	waitFor = time.Second
	tick    = time.Millisecond
)

func config(format audiostream.SampleFormat, frames int) audiostream.Config {
	return audiostream.Config{
		Format:         format,
		SampleRate:     44100,
		NumChannels:    2,
		FramesPerBlock: frames,
		BlockCount:     4,
	}
}

// newEngine returns configured engine with mock sink.
func newEngine(t *testing.T, sink *mock.Sink, cfg audiostream.Config, options ...audiostream.Option) *audiostream.Engine {
	t.Helper()
	options = append([]audiostream.Option{audiostream.WithLogger(log.GetLogger())}, options...)
	e := audiostream.New(&mock.Opener{Sink: sink}, options...)
	err := e.Configure(cfg)
	assert.NoError(t, err)
	return e
}

func TestConfigure(t *testing.T) {
	opener := &mock.Opener{}
	e := audiostream.New(opener, audiostream.WithName("test"))
	assert.Equal(t, audiostream.Unconfigured, e.State())
	cfg := config(audiostream.Int16, 256)

	err := e.Configure(cfg)
	assert.NoError(t, err)
	assert.Equal(t, audiostream.Ready, e.State())
	assert.Equal(t, cfg, e.Config())
	opened, sinkConfig := opener.Opened()
	assert.Equal(t, 1, opened)
	assert.Equal(t, audiostream.SinkConfig{
		Format:         audiostream.Int16,
		SampleRate:     44100,
		NumChannels:    2,
		FramesPerBlock: 256,
		BufferFrames:   1024,
	}, sinkConfig)

	err = e.Configure(cfg)
	assert.True(t, errors.Is(err, audiostream.ErrIllegalState), "configure twice: %v", err)
	assert.Equal(t, audiostream.IllegalState, audiostream.ResultOf(err))
	opened, _ = opener.Opened()
	assert.Equal(t, 1, opened)
	assert.NoError(t, e.Close())
}

func TestConfigureInvalid(t *testing.T) {
	testInvalid := func(cfg audiostream.Config) func(*testing.T) {
		return func(t *testing.T) {
			opener := &mock.Opener{}
			e := audiostream.New(opener)
			err := e.Configure(cfg)
			assert.True(t, errors.Is(err, audiostream.ErrInvalidArgument), "unexpected error: %v", err)
			assert.Equal(t, audiostream.InvalidArgument, audiostream.ResultOf(err))
			assert.Equal(t, audiostream.Unconfigured, e.State())
			opened, _ := opener.Opened()
			assert.Equal(t, 0, opened, "sink must not be opened")
		}
	}
	valid := config(audiostream.Int16, 256)
	mono := valid
	mono.NumChannels = 1
	surround := valid
	surround.NumChannels = 6
	unknown := valid
	unknown.Format = 0
	noRate := valid
	noRate.SampleRate = 0
	noFrames := valid
	noFrames.FramesPerBlock = 0
	noBlocks := valid
	noBlocks.BlockCount = -1

	t.Run("mono", testInvalid(mono))
	t.Run("surround", testInvalid(surround))
	t.Run("unknown format", testInvalid(unknown))
	t.Run("zero sample rate", testInvalid(noRate))
	t.Run("zero frames", testInvalid(noFrames))
	t.Run("negative blocks", testInvalid(noBlocks))

	t.Run("nil opener", func(t *testing.T) {
		e := audiostream.New(nil)
		err := e.Configure(valid)
		assert.True(t, errors.Is(err, audiostream.ErrInvalidArgument))
	})
}

func TestConfigureOpenError(t *testing.T) {
	e := audiostream.New(&mock.Opener{ErrorOnOpen: errMock})
	err := e.Configure(config(audiostream.Float32, 128))
	assert.True(t, errors.Is(err, audiostream.ErrInternal))
	assert.True(t, errors.Is(err, errMock))
	assert.Equal(t, audiostream.InternalError, audiostream.ResultOf(err))
	assert.Equal(t, audiostream.Unconfigured, e.State())
}

func TestStartErrors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		e := audiostream.New(&mock.Opener{})
		p := &mock.Producer{}
		err := e.Start(p.Render, nil)
		assert.True(t, errors.Is(err, audiostream.ErrIllegalState))
		assert.Equal(t, audiostream.Unconfigured, e.State())
	})
	t.Run("nil callback", func(t *testing.T) {
		e := newEngine(t, &mock.Sink{}, config(audiostream.Int16, 64))
		err := e.Start(nil, nil)
		assert.True(t, errors.Is(err, audiostream.ErrInvalidArgument))
		assert.Equal(t, audiostream.Ready, e.State())
		assert.NoError(t, e.Close())
	})
	t.Run("spawn error", func(t *testing.T) {
		sink := &mock.Sink{}
		e := newEngine(t, sink, config(audiostream.Int16, 64),
			audiostream.WithSpawner(func(func()) error { return errMock }),
		)
		p := &mock.Producer{}
		err := e.Start(p.Render, nil)
		assert.True(t, errors.Is(err, audiostream.ErrInternal))
		assert.True(t, errors.Is(err, errMock))
		assert.Equal(t, audiostream.Ready, e.State())
		assert.Equal(t, 0, p.Calls())
		assert.NoError(t, e.Stop())
		assert.NoError(t, e.Close())
		assert.Equal(t, []string{mock.Release}, sink.Calls())
	})
	t.Run("start twice", func(t *testing.T) {
		e := newEngine(t, &mock.Sink{Interval: tick}, config(audiostream.Int16, 64))
		p := &mock.Producer{}
		assert.NoError(t, e.Start(p.Render, nil))
		err := e.Start(p.Render, nil)
		assert.True(t, errors.Is(err, audiostream.ErrIllegalState))
		assert.Equal(t, audiostream.Running, e.State())
		assert.NoError(t, e.Close())
	})
}

func TestStream(t *testing.T) {
	testStream := func(format audiostream.SampleFormat, direct bool) func(*testing.T) {
		return func(t *testing.T) {
			frames := 4410
			cfg := config(format, frames)
			sink := &mock.Sink{Direct: direct, Interval: tick}
			e := newEngine(t, sink, cfg)
			p := &mock.Producer{Value: 0.25}

			startedAt := time.Now()
			assert.NoError(t, e.Start(p.Render, "args"))
			assert.Eventually(t, func() bool { return p.Calls() >= 5 }, waitFor, tick)
			assert.NoError(t, e.Stop())
			assert.Equal(t, audiostream.Stopped, e.State())

			assert.True(t, p.FirstCall().Sub(startedAt) < cfg.BlockDuration(), "first call is late")
			assert.False(t, p.Mismatch())
			assert.Equal(t, "args", p.Args())
			for _, n := range p.Lengths() {
				assert.Equal(t, frames*2, n)
			}

			writes, bytes := sink.Count()
			assert.Equal(t, p.Calls(), writes)
			assert.Equal(t, writes*cfg.BlockBytes(), bytes)
			assert.Equal(t, []string{mock.Play, mock.Pause, mock.Stop}, sink.Calls())

			switch {
			case direct:
				for _, pos := range sink.Positions() {
					assert.Equal(t, 0, pos, "buffer must be rewound")
				}
				for _, n := range sink.Lengths() {
					assert.Equal(t, cfg.BlockBytes(), n)
				}
				assert.Equal(t, cfg.BlockBytes(), len(sink.LastBytes()))
			case format == audiostream.Int16:
				samples := sink.LastInt16()
				assert.Equal(t, frames*2, len(samples))
				value := 0.25
				assert.Equal(t, int16(value*32767), samples[0])
			case format == audiostream.Float32:
				samples := sink.LastFloat32()
				assert.Equal(t, frames*2, len(samples))
				assert.Equal(t, float32(0.25), samples[len(samples)-1])
			}
			assert.NoError(t, e.Close())
		}
	}

	t.Run("s16 managed", testStream(audiostream.Int16, false))
	t.Run("f32 managed", testStream(audiostream.Float32, false))
	t.Run("s16 direct", testStream(audiostream.Int16, true))
	t.Run("f32 direct", testStream(audiostream.Float32, true))
}

func TestRoundTrip(t *testing.T) {
	sink := &mock.Sink{Interval: tick}
	m := &metric.Metric{}
	e := newEngine(t, sink, config(audiostream.Int16, 256), audiostream.WithMetric(m), audiostream.WithName("roundtrip"))
	p := &mock.Producer{Value: 0.1}

	assert.NoError(t, e.Start(p.Render, nil))
	assert.Eventually(t, func() bool { return p.Calls() >= 10 }, waitFor, tick)
	assert.NoError(t, e.Stop())

	writes, bytes := sink.Count()
	assert.Equal(t, writes*256*2*2, bytes)
	measure := m.Measure()[e.String()]
	assert.Equal(t, int64(writes), measure[metric.BlockCounter])
	assert.Equal(t, int64(writes*256), measure[metric.FrameCounter])
	assert.Equal(t, int64(bytes), measure[metric.ByteCounter])
	assert.NotNil(t, measure[metric.RenderCounter])

	// restart keeps the sink.
	assert.NoError(t, e.Start(p.Render, nil))
	assert.Equal(t, audiostream.Running, e.State())
	assert.Eventually(t, func() bool { w, _ := sink.Count(); return w > writes }, waitFor, tick)
	assert.NoError(t, e.Close())
	assert.Equal(t, []string{
		mock.Play, mock.Pause, mock.Stop,
		mock.Play, mock.Pause, mock.Stop,
		mock.Release,
	}, sink.Calls())
}

func TestStop(t *testing.T) {
	e := newEngine(t, &mock.Sink{Interval: tick}, config(audiostream.Float32, 64))
	assert.NoError(t, e.Stop(), "stop before start")
	assert.Equal(t, audiostream.Ready, e.State())

	p := &mock.Producer{}
	assert.NoError(t, e.Start(p.Render, nil))
	assert.NoError(t, e.Stop())
	calls := p.Calls()
	assert.NoError(t, e.Stop())
	assert.Equal(t, audiostream.Stopped, e.State())
	time.Sleep(10 * tick)
	assert.Equal(t, calls, p.Calls(), "callbacks after stop")
	assert.NoError(t, e.Close())
}

func TestClose(t *testing.T) {
	sink := &mock.Sink{Interval: tick}
	e := newEngine(t, sink, config(audiostream.Int16, 64))
	p := &mock.Producer{}
	assert.NoError(t, e.Start(p.Render, nil))
	assert.Eventually(t, func() bool { return p.Calls() > 0 }, waitFor, tick)

	assert.NoError(t, e.Close())
	assert.Equal(t, audiostream.Closed, e.State())
	calls := p.Calls()
	time.Sleep(10 * tick)
	assert.Equal(t, calls, p.Calls(), "callbacks after close")

	assert.NoError(t, e.Close())
	assert.Equal(t, []string{mock.Play, mock.Pause, mock.Stop, mock.Release}, sink.Calls())

	err := e.Start(p.Render, nil)
	assert.True(t, errors.Is(err, audiostream.ErrIllegalState))
	err = e.Configure(config(audiostream.Int16, 64))
	assert.True(t, errors.Is(err, audiostream.ErrIllegalState))
}

func TestCloseReleaseError(t *testing.T) {
	e := newEngine(t, &mock.Sink{Hooks: mock.Hooks{ErrorOnRelease: errMock}}, config(audiostream.Int16, 64))
	err := e.Close()
	assert.True(t, errors.Is(err, audiostream.ErrInternal))
	assert.True(t, errors.Is(err, errMock))
	assert.Equal(t, audiostream.Closed, e.State())
}

func TestTermination(t *testing.T) {
	testTermination := func(sink *mock.Sink, binder audiostream.Binder, calls int, expected ...error) func(*testing.T) {
		return func(t *testing.T) {
			reasons := make(chan error, 1)
			options := []audiostream.Option{
				audiostream.WithTermination(func(reason error) { reasons <- reason }),
			}
			if binder != nil {
				options = append(options, audiostream.WithBinder(binder))
			}
			e := newEngine(t, sink, config(audiostream.Int16, 64), options...)
			p := &mock.Producer{}
			assert.NoError(t, e.Start(p.Render, nil))

			var reason error
			select {
			case reason = <-reasons:
			case <-time.After(waitFor):
				t.Fatal("stream didn't terminate")
			}
			for _, err := range expected {
				assert.True(t, errors.Is(reason, err), "unexpected reason: %v", reason)
			}
			assert.Equal(t, calls, p.Calls())
			assert.Equal(t, audiostream.Running, e.State())

			time.Sleep(10 * tick)
			assert.Equal(t, calls, p.Calls(), "callbacks after termination")
			assert.NoError(t, e.Stop())
			assert.Equal(t, audiostream.Stopped, e.State())
			assert.NoError(t, e.Close())
		}
	}

	t.Run("short write", func(t *testing.T) {
		sink := &mock.Sink{ShortWriteAt: 3}
		testTermination(sink, nil, 3, audiostream.ErrShortWrite)(t)
		writes, _ := sink.Count()
		assert.Equal(t, 3, writes)
		assert.Equal(t, []string{mock.Play, mock.Pause, mock.Stop, mock.Release}, sink.Calls())
	})
	t.Run("write error", func(t *testing.T) {
		sink := &mock.Sink{Hooks: mock.Hooks{ErrorOnWrite: errMock}}
		testTermination(sink, nil, 1, audiostream.ErrShortWrite, errMock)(t)
	})
	t.Run("play error", func(t *testing.T) {
		sink := &mock.Sink{Hooks: mock.Hooks{ErrorOnPlay: errMock}}
		testTermination(sink, nil, 0, audiostream.ErrPlay, errMock)(t)
		writes, _ := sink.Count()
		assert.Equal(t, 0, writes)
		assert.Equal(t, []string{mock.Play, mock.Release}, sink.Calls())
	})
	t.Run("flush error", func(t *testing.T) {
		sink := &mock.Sink{ShortWriteAt: 1, Hooks: mock.Hooks{ErrorOnStop: errMock}}
		testTermination(sink, nil, 1, audiostream.ErrShortWrite, errMock)(t)
	})
	t.Run("attach error", func(t *testing.T) {
		sink := &mock.Sink{}
		binder := &mock.Binder{ErrorOnAttach: errMock}
		testTermination(sink, binder, 0, errMock)(t)
		assert.Equal(t, []string{mock.Release}, sink.Calls())
		_, detached := binder.Count()
		assert.Equal(t, 0, detached)
	})
	t.Run("stop", func(t *testing.T) {
		reasons := make(chan error, 1)
		e := newEngine(t, &mock.Sink{Interval: tick}, config(audiostream.Int16, 64),
			audiostream.WithTermination(func(reason error) { reasons <- reason }),
		)
		p := &mock.Producer{}
		assert.NoError(t, e.Start(p.Render, nil))
		assert.NoError(t, e.Stop())
		assert.NoError(t, <-reasons)
		assert.NoError(t, e.Close())
	})
}

func TestBinder(t *testing.T) {
	binder := &mock.Binder{}
	e := newEngine(t, &mock.Sink{Interval: tick}, config(audiostream.Float32, 64), audiostream.WithBinder(binder))
	p := &mock.Producer{}
	for i := 0; i < 3; i++ {
		assert.NoError(t, e.Start(p.Render, nil))
		assert.NoError(t, e.Stop())
	}
	attached, detached := binder.Count()
	assert.Equal(t, 3, attached)
	assert.Equal(t, 3, detached)
	assert.NoError(t, e.Close())
}

func TestResult(t *testing.T) {
	assert.Equal(t, audiostream.Success, audiostream.ResultOf(nil))
	assert.Equal(t, audiostream.InternalError, audiostream.ResultOf(errMock))
	assert.Equal(t, audiostream.InternalError, audiostream.ResultOf(audiostream.ErrShortWrite))
	assert.Equal(t, "SUCCESS", audiostream.Success.String())
	assert.Equal(t, "INVALID_ARGUMENT", audiostream.InvalidArgument.String())
	assert.Equal(t, "ILLEGAL_STATE", audiostream.IllegalState.String())
	assert.Equal(t, "INTERNAL_ERROR", audiostream.InternalError.String())
	assert.Equal(t, "UNKNOWN", audiostream.Result(42).String())
}

func TestEngineString(t *testing.T) {
	e := audiostream.New(&mock.Opener{})
	assert.Equal(t, e.ID(), e.String())
	named := audiostream.New(&mock.Opener{}, audiostream.WithName("speaker"))
	assert.Equal(t, "speaker "+named.ID(), named.String())
	assert.NotEqual(t, e.ID(), named.ID())
}

package audiostream

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/xid"

	"pipelined.dev/audiostream/internal/runtime"
	"pipelined.dev/audiostream/metric"
)

// Engine keeps the output sink fed with blocks rendered by producer. It
// owns the sink, the streaming goroutine and the transfer buffer.
//
// Lifecycle methods are safe to call from multiple goroutines, they are
// serialized by the engine.
type Engine struct {
	uid        string
	name       string
	opener     Opener
	log        Logger
	metric     *metric.Metric
	binder     Binder
	spawn      Spawner
	terminated func(error)

	m      sync.Mutex
	state  State
	cfg    Config
	sink   Sink
	render RenderFunc
	args   interface{}
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a new engine and applies provided options. Sinks are
// created with opener. Returned engine is Unconfigured.
func New(opener Opener, options ...Option) *Engine {
	e := &Engine{
		uid:    newUID(),
		opener: opener,
		log:    defaultLogger,
		binder: ThreadBinder{},
		spawn:  runtime.Go,
	}
	for _, option := range options {
		option(e)
	}
	if e.log == nil {
		e.log = defaultLogger
	}
	if e.binder == nil {
		e.binder = NopBinder{}
	}
	if e.spawn == nil {
		e.spawn = runtime.Go
	}
	return e
}

// newUID returns new unique id value.
func newUID() string {
	return xid.New().String()
}

// Configure validates the configuration and creates the sink. The engine
// becomes Ready. It can be called only once.
func (e *Engine) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if e.opener == nil {
		return fmt.Errorf("%w: nil sink opener", ErrInvalidArgument)
	}

	e.m.Lock()
	defer e.m.Unlock()
	if e.state != Unconfigured {
		return fmt.Errorf("%w: cannot configure %v engine", ErrIllegalState, e.state)
	}

	sink, err := e.opener.Open(cfg.SinkConfig())
	if err != nil {
		return fmt.Errorf("%w: error opening sink: %w", ErrInternal, err)
	}
	if sink == nil {
		return fmt.Errorf("%w: opener returned nil sink", ErrInternal)
	}
	e.cfg = cfg
	e.sink = sink
	e.state = Ready
	e.log.Debug(fmt.Sprintf("%v configured: %v %d Hz %d channels %d frames x %d blocks",
		e, cfg.Format, cfg.SampleRate, cfg.NumChannels, cfg.FramesPerBlock, cfg.BlockCount))
	return nil
}

// Start launches the streaming goroutine and returns immediately. The
// producer fn is called with args for every block until Stop is called or
// the sink stops accepting data.
func (e *Engine) Start(fn RenderFunc, args interface{}) error {
	if fn == nil {
		return fmt.Errorf("%w: nil render func", ErrInvalidArgument)
	}

	e.m.Lock()
	defer e.m.Unlock()
	switch e.state {
	case Ready, Stopped:
	default:
		return fmt.Errorf("%w: cannot start %v engine", ErrIllegalState, e.state)
	}

	e.render, e.args = fn, args
	s := &session{
		Config: e.cfg,
		sink:   e.sink,
		render: fn,
		args:   args,
		meter:  e.metric.Meter(e.String(), e.cfg.SampleRate),
		log:    e.log,
		name:   e.String(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	if err := e.spawn(func() {
		e.stream(ctx, s, done)
	}); err != nil {
		cancel()
		e.render, e.args = nil, nil
		return fmt.Errorf("%w: error starting stream: %w", ErrInternal, err)
	}

	e.cancel, e.done = cancel, done
	e.state = Running
	e.log.Debug(fmt.Sprintf("%v started", e))
	return nil
}

// stream is the body of streaming goroutine.
func (e *Engine) stream(ctx context.Context, s *session, done chan<- struct{}) {
	defer close(done)
	err := runtime.Run(ctx, e.binder, s)
	if err != nil {
		e.log.Debug(fmt.Sprintf("%v stream terminated: %v", e, err))
	} else {
		e.log.Debug(fmt.Sprintf("%v stream stopped", e))
	}
	if e.terminated != nil {
		e.terminated(err)
	}
}

// Stop requests the streaming goroutine to exit and blocks until it
// does. Cancellation is observed between blocks, so it takes up to one
// producer call and one sink write. Stop is no-op if stream isn't
// running.
func (e *Engine) Stop() error {
	e.m.Lock()
	defer e.m.Unlock()
	return e.stop()
}

// stop must be called under lock.
func (e *Engine) stop() error {
	if e.done == nil {
		return nil
	}
	e.cancel()
	<-e.done

	e.cancel, e.done = nil, nil
	e.render, e.args = nil, nil
	e.state = Stopped
	e.log.Debug(fmt.Sprintf("%v stopped", e))
	return nil
}

// Close stops the stream if it's running and releases the sink. After
// Close returns, no producer calls are made. Consequent calls are no-op.
func (e *Engine) Close() error {
	e.m.Lock()
	defer e.m.Unlock()
	if e.state == Closed {
		return nil
	}
	_ = e.stop()

	var err error
	if e.sink != nil {
		if releaseErr := e.sink.Release(); releaseErr != nil {
			err = fmt.Errorf("%w: error releasing sink: %w", ErrInternal, releaseErr)
		}
		e.sink = nil
	}
	e.state = Closed
	e.log.Debug(fmt.Sprintf("%v closed", e))
	return err
}

// State returns current state of the engine.
func (e *Engine) State() State {
	e.m.Lock()
	defer e.m.Unlock()
	return e.state
}

// Config returns applied configuration. It's zero value until engine is
// configured.
func (e *Engine) Config() Config {
	e.m.Lock()
	defer e.m.Unlock()
	return e.cfg
}

// ID returns unique id of the engine.
func (e *Engine) ID() string {
	return e.uid
}

// String returns engine's name and id if name has value.
func (e *Engine) String() string {
	if e.name == "" {
		return e.uid
	}
	return fmt.Sprintf("%v %v", e.name, e.uid)
}

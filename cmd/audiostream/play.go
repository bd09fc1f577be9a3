package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"pipelined.dev/audiostream"
	"pipelined.dev/audiostream/log"
	"pipelined.dev/audiostream/metric"
	"pipelined.dev/audiostream/mp3"
	"pipelined.dev/audiostream/oto"
	"pipelined.dev/audiostream/portaudio"
	"pipelined.dev/audiostream/repeat"
	"pipelined.dev/audiostream/tone"
	"pipelined.dev/audiostream/wav"
)

type playCommand struct {
	configFile string
	flags      *flag.FlagSet
	// interrupt is closed to stop playback, nil means SIGINT.
	interrupt <-chan struct{}
}

// producer renders blocks. Done is nil if producer is infinite.
type producer struct {
	render     audiostream.RenderFunc
	done       <-chan struct{}
	sampleRate int
	close      func() error
}

func (cmd *playCommand) Name() string {
	return "play"
}

func (cmd *playCommand) Help() string {
	return "Stream tone or audio file to the sink"
}

func (cmd *playCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.configFile, "config", "", "path to config file")
	registerSettings(fs)
	cmd.flags = fs
}

func (cmd *playCommand) Run() error {
	s, err := loadSettings(cmd.configFile, cmd.flags)
	if err != nil {
		return err
	}
	logger, err := log.New(s.LogLevel)
	if err != nil {
		return err
	}

	p, err := newProducer(s)
	if err != nil {
		return err
	}
	defer p.close()
	opener, err := newOpener(s)
	if err != nil {
		return err
	}

	m := &metric.Metric{}
	reasons := make(chan error, 1)
	e := audiostream.New(opener,
		audiostream.WithLogger(logger),
		audiostream.WithName(cmd.Name()),
		audiostream.WithMetric(m),
		audiostream.WithTermination(func(reason error) { reasons <- reason }),
	)
	defer e.Close()

	cfg := audiostream.Config{
		Format:         s.Format,
		SampleRate:     p.sampleRate,
		NumChannels:    2,
		FramesPerBlock: s.Frames,
		BlockCount:     s.Blocks,
	}
	if err := e.Configure(cfg); err != nil {
		return err
	}
	if err := e.Start(p.render, nil); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"source":     s.Source,
		"sink":       s.Sink,
		"format":     cfg.Format,
		"sampleRate": cfg.SampleRate,
		"frames":     cfg.FramesPerBlock,
		"blocks":     cfg.BlockCount,
	}).Info("streaming")

	var timeout <-chan time.Time
	if s.Duration > 0 {
		timeout = time.After(s.Duration)
	}
	interrupt := cmd.interrupt
	if interrupt == nil {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		interrupt = ctx.Done()
	}

	var reason error
	select {
	case <-p.done:
		logger.Info("producer is done")
	case <-timeout:
		logger.Info("duration elapsed")
	case <-interrupt:
		logger.Info("interrupted")
	case reason = <-reasons:
		logger.WithError(reason).Info("stream terminated")
	}
	if err := e.Close(); err != nil {
		return err
	}
	printMeasure(logger, m.Measure())
	return reason
}

func newProducer(s settings) (producer, error) {
	switch s.Source {
	case "tone":
		g := tone.New(s.SampleRate, s.Frequency, s.Amplitude)
		return producer{
			render:     g.Render,
			sampleRate: s.SampleRate,
			close:      func() error { return nil },
		}, nil
	case "wav":
		p, err := wav.Open(s.In)
		if err != nil {
			return producer{}, err
		}
		return producer{
			render:     p.Render,
			done:       p.Done(),
			sampleRate: p.SampleRate(),
			close:      p.Close,
		}, nil
	case "mp3":
		p, err := mp3.Open(s.In)
		if err != nil {
			return producer{}, err
		}
		return producer{
			render:     p.Render,
			done:       p.Done(),
			sampleRate: p.SampleRate(),
			close:      p.Close,
		}, nil
	}
	return producer{}, fmt.Errorf("unknown source %q", s.Source)
}

// newOpener returns opener of the sink. If record is set, stream is also
// written into wav file.
func newOpener(s settings) (audiostream.Opener, error) {
	opener, err := sinkOpener(s)
	if err != nil || s.Record == "" {
		return opener, err
	}
	return repeat.NewOpener(opener, wav.Create(s.Record)), nil
}

func sinkOpener(s settings) (audiostream.Opener, error) {
	switch s.Sink {
	case "oto":
		return oto.NewOpener(), nil
	case "portaudio":
		return portaudio.NewOpener(), nil
	case "wav":
		if s.Out == "" {
			return nil, fmt.Errorf("missing -out for wav sink")
		}
		return wav.Create(s.Out), nil
	case "mp3":
		if s.Out == "" {
			return nil, fmt.Errorf("missing -out for mp3 sink")
		}
		return mp3.Create(s.Out, s.BitRate, s.Quality), nil
	}
	return nil, fmt.Errorf("unknown sink %q", s.Sink)
}

// printMeasure logs counters of every meter in stable order.
func printMeasure(logger *logrus.Logger, measure metric.Measure) {
	for name, counters := range measure {
		keys := make([]string, 0, len(counters))
		for key := range counters {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		fields := logrus.Fields{"stream": name}
		for _, key := range keys {
			fields[key] = metric.String(counters[key])
		}
		logger.WithFields(fields).Info("measure")
	}
}

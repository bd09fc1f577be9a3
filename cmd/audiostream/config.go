package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"pipelined.dev/audiostream"
)

// envPrefix is the prefix of environment variables, AUDIOSTREAM_FRAMES
// sets frames.
const envPrefix = "AUDIOSTREAM"

// settings of play command.
type settings struct {
	Source     string
	In         string
	Sink       string
	Out        string
	Record     string
	Format     audiostream.SampleFormat
	SampleRate int
	Frames     int
	Blocks     int
	Frequency  float64
	Amplitude  float64
	Duration   time.Duration
	LogLevel   string
	BitRate    int
	Quality    int
}

var defaults = map[string]interface{}{
	"source":     "tone",
	"in":         "",
	"sink":       "oto",
	"out":        "",
	"record":     "",
	"format":     "s16",
	"samplerate": 44100,
	"frames":     512,
	"blocks":     4,
	"frequency":  440.0,
	"amplitude":  0.5,
	"duration":   time.Duration(0),
	"loglevel":   "info",
	"bitrate":    192,
	"quality":    2,
}

func setDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// loadSettings merges defaults, config file, environment and flags
// explicitly set in fs. Latter take precedence.
func loadSettings(configFile string, fs *flag.FlagSet) (settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return settings{}, fmt.Errorf("error reading config %s: %w", configFile, err)
			}
		}
	}
	if fs != nil {
		fs.Visit(func(f *flag.Flag) {
			if _, ok := defaults[f.Name]; ok {
				v.Set(f.Name, f.Value.String())
			}
		})
	}

	format, err := audiostream.ParseSampleFormat(v.GetString("format"))
	if err != nil {
		return settings{}, err
	}
	return settings{
		Source:     v.GetString("source"),
		In:         v.GetString("in"),
		Sink:       v.GetString("sink"),
		Out:        v.GetString("out"),
		Record:     v.GetString("record"),
		Format:     format,
		SampleRate: v.GetInt("samplerate"),
		Frames:     v.GetInt("frames"),
		Blocks:     v.GetInt("blocks"),
		Frequency:  v.GetFloat64("frequency"),
		Amplitude:  v.GetFloat64("amplitude"),
		Duration:   v.GetDuration("duration"),
		LogLevel:   v.GetString("loglevel"),
		BitRate:    v.GetInt("bitrate"),
		Quality:    v.GetInt("quality"),
	}, nil
}

// registerSettings adds flags of all settings to fs.
func registerSettings(fs *flag.FlagSet) {
	fs.String("source", "", "producer: tone, wav or mp3 (default tone)")
	fs.String("in", "", "input file of wav and mp3 producers")
	fs.String("sink", "", "sink: oto, portaudio, wav or mp3 (default oto)")
	fs.String("out", "", "output file of wav and mp3 sinks")
	fs.String("record", "", "wav file to record the stream into while playing")
	fs.String("format", "", "sample format: s16 or f32 (default s16)")
	fs.String("samplerate", "", "sample rate of tone producer (default 44100)")
	fs.String("frames", "", "frames per block (default 512)")
	fs.String("blocks", "", "number of blocks buffered by sink (default 4)")
	fs.String("frequency", "", "frequency of tone in Hz (default 440)")
	fs.String("amplitude", "", "amplitude of tone (default 0.5)")
	fs.String("duration", "", "stream duration, zero plays until interrupted or producer is done")
	fs.String("loglevel", "", "log level (default info)")
	fs.String("bitrate", "", "bit rate of mp3 sink in kbps (default 192)")
	fs.String("quality", "", "quality of mp3 sink from 0 to 9 (default 2)")
}

//go:build !portaudio

package portaudio

import "pipelined.dev/audiostream"

// Opener returns ErrNotEnabled.
type Opener struct{}

// Open implements audiostream.Opener.
func (Opener) Open(audiostream.SinkConfig) (audiostream.Sink, error) {
	return nil, ErrNotEnabled
}

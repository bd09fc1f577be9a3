//go:build !lame

package mp3

import "pipelined.dev/audiostream"

// Open returns ErrNotEnabled.
func (o *Opener) Open(audiostream.SinkConfig) (audiostream.Sink, error) {
	return nil, ErrNotEnabled
}

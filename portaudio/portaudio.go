// Package portaudio allows to play streams with the default output
// device using portaudio library. It requires portaudio build tag,
// otherwise opener returns ErrNotEnabled.
package portaudio

import "errors"

var (
	// ErrNotEnabled is returned if package is built without portaudio tag.
	ErrNotEnabled = errors.New("portaudio is not enabled, build with portaudio tag")
	// ErrDirectUnsupported is returned by direct writes.
	ErrDirectUnsupported = errors.New("portaudio sink doesn't support direct buffers")
)

// NewOpener returns new portaudio opener.
func NewOpener() *Opener {
	return &Opener{}
}

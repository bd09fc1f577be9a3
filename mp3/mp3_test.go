package mp3_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/audiostream/mp3"
)

func TestInvalid(t *testing.T) {
	_, err := mp3.NewProducer(bytes.NewReader([]byte("not an mp3 file")))
	assert.Error(t, err)

	_, err = mp3.Open(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.Error(t, err)
}

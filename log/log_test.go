package log_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/audiostream/log"
)

func TestNew(t *testing.T) {
	l, err := log.New("warn")
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())

	_, err = log.New("loud")
	assert.Error(t, err)
}

func TestGetLogger(t *testing.T) {
	var l log.Logger = log.GetLogger()
	assert.NotNil(t, l)
}

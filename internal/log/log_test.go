package log_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"bennypowers.dev/spindle/internal/log"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(nil)
		log.SetLevel(log.LevelInfo)
	})
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)

	log.SetLevel(log.LevelInfo)
	log.Debug("quiet")
	log.Info("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")

	buf.Reset()
	log.SetLevel(log.LevelError)
	log.Warn("still quiet")
	log.Error("boom")
	assert.NotContains(t, buf.String(), "still quiet")
	assert.Contains(t, buf.String(), "boom")
}

func TestFormatIncludesPrefixAndLevel(t *testing.T) {
	buf := capture(t)
	log.SetLevel(log.LevelDebug)

	log.Debug("expanding %d imports", 3)
	assert.Equal(t, "[spindle] debug: expanding 3 imports\n", buf.String())
}

func TestNilOutputIsSafe(t *testing.T) {
	log.SetOutput(nil)
	defer log.SetOutput(nil)
	assert.NotPanics(t, func() { log.Info("dropped") })
}

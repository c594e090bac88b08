package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet_AttachesComponent(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(slog.NewJSONHandler(&buf, nil))

	log := Get("registry")
	log.Info("hello")

	assert.Contains(t, buf.String(), `"component":"registry"`)
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestSetLevel_FiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level}))
	SetLevel(slog.LevelWarn)
	defer SetLevel(slog.LevelInfo)

	log := Get("eventloop")
	log.Info("should be filtered")
	log.Warn("should appear")

	assert.NotContains(t, buf.String(), "should be filtered")
	assert.Contains(t, buf.String(), "should appear")
}

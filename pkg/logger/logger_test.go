package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	log.Debug("hidden")
	log.Info("plain message")
	log.Warn("careful")
	log.Error("broken")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "plain message")
	assert.Contains(t, out, colorYellow+"WARN careful")
	assert.Contains(t, out, colorRed+"ERROR broken")
}

func TestColorHandlerStorageHighlight(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, nil))

	log.Info("ingested document", "source", "minutes.pdf")

	assert.Contains(t, buf.String(), colorGreen+"INFO ingested document source=minutes.pdf")
}

func TestColorHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	handler := NewColorHandler(&buf, nil).
		WithGroup("http").
		WithAttrs([]slog.Attr{slog.String("component", "server")})
	log := slog.New(handler)

	log.Info("request handled", "status", 200)

	out := buf.String()
	assert.Contains(t, out, "http.component=server")
	assert.Contains(t, out, "http.status=200")
}

func TestColorHandlerEnabled(t *testing.T) {
	h := NewColorHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestNewLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, slog.LevelInfo, "json")
	log.Info("structured", "k", 10)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"msg":"structured"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("anything"))
}

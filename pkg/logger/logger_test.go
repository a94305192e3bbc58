package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelInfo)
	l.Debug("hidden")
	l.Info("loaded", "records", 3)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[txindex] loaded")
	assert.Contains(t, out, "records=3")
}

func TestNamedAndCtxArgs(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelDebug).Named("api")
	ctx := WithDefaultArgs(context.Background(), "remote", "127.0.0.1")
	l.WarnCtx(ctx, "slow search")
	assert.Contains(t, buf.String(), "[txindex/api] slow search")
	assert.Contains(t, buf.String(), "remote=127.0.0.1")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

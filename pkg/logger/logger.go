package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	DebugCtx(ctx context.Context, msg string, args ...any)
	InfoCtx(ctx context.Context, msg string, args ...any)
	WarnCtx(ctx context.Context, msg string, args ...any)
	ErrorCtx(ctx context.Context, msg string, args ...any)
}

type DefaultLogger struct {
	logger *slog.Logger
	prefix string
}

const prefix = "[txindex] "

func NewDefaultLogger(level slog.Level) *DefaultLogger {
	return New(os.Stderr, level)
}

func New(w io.Writer, level slog.Level) *DefaultLogger {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	return &DefaultLogger{logger: logger, prefix: prefix}
}

// Named returns a logger whose messages carry "[txindex/<component>] ".
func (d *DefaultLogger) Named(component string) *DefaultLogger {
	return &DefaultLogger{logger: d.logger, prefix: "[txindex/" + component + "] "}
}

// ParseLevel maps "debug", "info", "warn" and "error"; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func (d *DefaultLogger) Debug(msg string, args ...any) {
	d.logger.Debug(d.prefix+msg, args...)
}

func (d *DefaultLogger) Info(msg string, args ...any) {
	d.logger.Info(d.prefix+msg, args...)
}

func (d *DefaultLogger) Warn(msg string, args ...any) {
	d.logger.Warn(d.prefix+msg, args...)
}

func (d *DefaultLogger) Error(msg string, args ...any) {
	d.logger.Error(d.prefix+msg, args...)
}

var DefaultArgs int

func getDefaultArgs(ctx context.Context) []any {
	ctxargs := ctx.Value(&DefaultArgs)
	if ctxargs == nil {
		return nil
	}
	return ctxargs.([]any)
}

// WithDefaultArgs attaches key/value pairs appended to every *Ctx log call.
func WithDefaultArgs(ctx context.Context, args ...any) context.Context {
	dargs := append([]any{}, getDefaultArgs(ctx)...)
	dargs = append(dargs, args...)
	return context.WithValue(ctx, &DefaultArgs, dargs)
}

func (d *DefaultLogger) DebugCtx(ctx context.Context, msg string, args ...any) {
	args = append(args, getDefaultArgs(ctx)...)
	d.logger.DebugContext(ctx, d.prefix+msg, args...)
}

func (d *DefaultLogger) InfoCtx(ctx context.Context, msg string, args ...any) {
	args = append(args, getDefaultArgs(ctx)...)
	d.logger.InfoContext(ctx, d.prefix+msg, args...)
}

func (d *DefaultLogger) WarnCtx(ctx context.Context, msg string, args ...any) {
	args = append(args, getDefaultArgs(ctx)...)
	d.logger.WarnContext(ctx, d.prefix+msg, args...)
}

func (d *DefaultLogger) ErrorCtx(ctx context.Context, msg string, args ...any) {
	args = append(args, getDefaultArgs(ctx)...)
	d.logger.ErrorContext(ctx, d.prefix+msg, args...)
}

type nop struct{}

// Nop discards everything.
var Nop Logger = nop{}

func (nop) Debug(string, ...any)                     {}
func (nop) Info(string, ...any)                      {}
func (nop) Warn(string, ...any)                      {}
func (nop) Error(string, ...any)                     {}
func (nop) DebugCtx(context.Context, string, ...any) {}
func (nop) InfoCtx(context.Context, string, ...any)  {}
func (nop) WarnCtx(context.Context, string, ...any)  {}
func (nop) ErrorCtx(context.Context, string, ...any) {}

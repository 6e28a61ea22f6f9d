// Package logger provides a structured, levelled logger built on log/slog.
//
// The key extension over plain slog is WithCtx: it returns the logger the
// Logger middleware stored on the request context, already tagged with the
// request ID, so every line from a handler is correlated:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order created", "order_id", order.ID)
//	// → time=... level=INFO msg="order created" request_id=a1b2c3d4 order_id=42
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/tiffinbox/tiffin/config"
)

var L *slog.Logger

func init() {
	L = slog.New(baseHandler())
	slog.SetDefault(L)
}

func baseHandler() slog.Handler {
	opts := &slog.HandlerOptions{Level: level()}
	if config.IsProduction() {
		return slog.NewJSONHandler(os.Stdout, opts) // structured JSON for log aggregators
	}
	return slog.NewTextHandler(os.Stdout, opts)
}

func level() slog.Level {
	switch strings.ToLower(config.LogLevel()) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if config.IsProduction() {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// Configure rebuilds L from the loaded config. When LOG_MONGO_URI is set,
// warnings and errors are mirrored into the "logs" collection as well.
// The returned func flushes and disconnects the Mongo sink.
func Configure() (func(), error) {
	base := baseHandler()
	closeFn := func() {}

	if uri := config.LogMongoURI(); uri != "" {
		mh, err := NewMongoHandler(uri, config.LogMongoDB(), "logs")
		if err != nil {
			L = slog.New(base)
			slog.SetDefault(L)
			return closeFn, err
		}
		base = NewMultiHandler(base, &levelFilter{min: slog.LevelWarn, Handler: mh})
		closeFn = mh.Close
	}

	L = slog.New(base)
	slog.SetDefault(L)
	return closeFn, nil
}

// levelFilter drops records below min before they reach the wrapped handler.
type levelFilter struct {
	min slog.Level
	slog.Handler
}

func (f *levelFilter) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= f.min && f.Handler.Enabled(ctx, l)
}

func (f *levelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelFilter{min: f.min, Handler: f.Handler.WithAttrs(attrs)}
}

func (f *levelFilter) WithGroup(name string) slog.Handler {
	return &levelFilter{min: f.min, Handler: f.Handler.WithGroup(name)}
}

// ─────────────────────────────────────────────
// Context-aware logger
// ─────────────────────────────────────────────

type ctxKey struct{}

// WithCtx returns the per-request logger stored by InjectLogger, or L.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
// Called by the Logger middleware.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }

package multikey

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with store-specific helpers.
// This keeps field names consistent across operations.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // unreachable
	}))
}

// WithStore tags the logger with the store's key spaces.
func (l *Logger) WithStore(keySpaces []string) *Logger {
	return &Logger{
		Logger: l.Logger.With("key_spaces", keySpaces),
	}
}

// LogAdd logs an add operation.
func (l *Logger) LogAdd(ctx context.Context, id ID, keys int, err error) {
	if err != nil {
		l.DebugContext(ctx, "add rejected",
			"keys", keys,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "add completed",
		"id", id,
		"keys", keys,
	)
}

// LogUpdate logs a value replacement.
func (l *Logger) LogUpdate(ctx context.Context, keySpace string, err error) {
	if err != nil {
		l.DebugContext(ctx, "set rejected",
			"key_space", keySpace,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "set completed",
		"key_space", keySpace,
	)
}

// LogSetKey logs a key binding change.
func (l *Logger) LogSetKey(ctx context.Context, id ID, keySpace string, replaced bool, err error) {
	if err != nil {
		l.DebugContext(ctx, "set key rejected",
			"id", id,
			"key_space", keySpace,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "set key completed",
		"id", id,
		"key_space", keySpace,
		"replaced", replaced,
	)
}

// LogPop logs a cascading removal.
func (l *Logger) LogPop(ctx context.Context, id ID, keysRemoved int, err error) {
	if err != nil {
		l.DebugContext(ctx, "pop rejected",
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "pop completed",
		"id", id,
		"keys_removed", keysRemoved,
	)
}

// LogClear logs a clear operation.
func (l *Logger) LogClear(ctx context.Context, objects int) {
	l.DebugContext(ctx, "store cleared",
		"objects", objects,
	)
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, op string, objects int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"op", op,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot completed",
		"op", op,
		"objects", objects,
	)
}

package mixgo

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with mixgo-specific context.
// This provides structured logging with consistent field names.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
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
		Level: slog.Level(1000),
	}))
}

// WithRunID tags all records with the inference run id.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithGroupID adds a group field to the logger.
func (l *Logger) WithGroupID(group int) *Logger {
	return &Logger{
		Logger: l.Logger.With("group", group),
	}
}

// LogAdd logs a row assignment.
func (l *Logger) LogAdd(ctx context.Context, rowID uint64, group int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "add failed",
			"row_id", rowID,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "add completed",
			"row_id", rowID,
			"group", group,
		)
	}
}

// LogRemove logs a row removal.
func (l *Logger) LogRemove(ctx context.Context, rowID uint64, group int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove failed",
			"row_id", rowID,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remove completed",
			"row_id", rowID,
			"group", group,
		)
	}
}

// LogGroupCreated logs a new cluster being opened.
func (l *Logger) LogGroupCreated(ctx context.Context, group, groups int) {
	l.DebugContext(ctx, "group created",
		"group", group,
		"groups", groups,
	)
}

// LogGroupRemoved logs a cluster being dissolved. moved is the slot that
// was renumbered into group, or -1.
func (l *Logger) LogGroupRemoved(ctx context.Context, group, moved, groups int) {
	l.DebugContext(ctx, "group removed",
		"group", group,
		"moved_from", moved,
		"groups", groups,
	)
}

// LogProgress logs inference progress.
func (l *Logger) LogProgress(ctx context.Context, rows, groups int) {
	l.InfoContext(ctx, "inference progress",
		"rows", rows,
		"groups", groups,
	)
}

// LogInfer logs the end of an inference pass.
func (l *Logger) LogInfer(ctx context.Context, rows, groups int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "inference failed",
			"rows", rows,
			"groups", groups,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "inference completed",
			"rows", rows,
			"groups", groups,
		)
	}
}

// LogDump logs a groups and assignments dump.
func (l *Logger) LogDump(ctx context.Context, groupsName, assignName string, groups int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dump failed",
			"groups_out", groupsName,
			"assign_out", assignName,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "dump saved",
			"groups_out", groupsName,
			"assign_out", assignName,
			"groups", groups,
		)
	}
}

// LogLoad logs a groups and assignments load.
func (l *Logger) LogLoad(ctx context.Context, groupsName, assignName string, groups int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"groups_in", groupsName,
			"assign_in", assignName,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "load completed",
			"groups_in", groupsName,
			"assign_in", assignName,
			"groups", groups,
		)
	}
}

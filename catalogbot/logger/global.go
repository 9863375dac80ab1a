package logger

import (
	"log/slog"
	"time"
)

// LogCommand logs the end of a command or component interaction. Failures and timeouts log
// at error level, slow runs at warn.
func LogCommand(kind, name, status string, duration time.Duration, err error, attrs ...any) {
	attrs = append([]any{
		slog.String("type", "cmd"),
		slog.String("name", name),
		slog.String("status", status),
		slog.Duration("took", duration),
	}, attrs...)

	switch {
	case status == "timeout":
		slog.Error(kind+" timed out", append(attrs, slog.Any("error", err))...)
	case err != nil:
		slog.Error(kind+" failed", append(attrs, slog.Any("error", err))...)
	case status == "slow":
		slog.Warn(kind+" executed slowly", attrs...)
	default:
		slog.Info(kind+" completed", attrs...)
	}
}

// LogQuery logs one catalog query evaluation
func LogQuery(kind, query, outcome string, results int, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "query"),
		slog.String("name", kind),
		slog.String("query", query),
		slog.String("status", outcome),
		slog.Int("results", results),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Debug("Query rejected", append(attrs, slog.Any("error", err))...)
	} else {
		slog.Debug("Query evaluated", attrs...)
	}
}

// LogSystem logs lifecycle events such as startup and catalog reloads.
func LogSystem(msg string, attrs ...any) {
	slog.Info(msg, append([]any{slog.String("type", "sys")}, attrs...)...)
}

// LogError logs error events
func LogError(msg string, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "error"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(baseAttrs, attrs...)...)
}

package logger

import (
	"log/slog"
	"time"
)

// LogJob logs the outcome of one batch job run.
func LogJob(job string, guildID string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "job"),
		slog.String("name", job),
		slog.String("guild_id", guildID),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Error("Job failed", append(attrs, slog.Any("error", err))...)
	} else {
		slog.Info("Job completed", attrs...)
	}
}

// LogSystem logs system events
func LogSystem(msg string, attrs ...any) {
	baseAttrs := []any{slog.String("type", "sys")}
	slog.Info(msg, append(baseAttrs, attrs...)...)
}

// LogError logs error events
func LogError(msg string, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "error"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(baseAttrs, attrs...)...)
}

// README: Structured JSON logging with per-update request correlation.
package logging

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Setup installs a JSON slog handler as the default logger and returns a
// logger pre-tagged with service/env fields. Call once from main.
func Setup(service, env, level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	logger := slog.New(handler).With("service", service, "env", env)
	slog.SetDefault(logger)
	return logger
}

// NewRequestID mints a correlation id for one inbound chat update. All log
// lines produced while handling that update carry the same id.
func NewRequestID() string {
	return uuid.NewString()
}

// ForUpdate returns a logger carrying the correlation attributes for a
// single update: request id and chat id.
func ForUpdate(base *slog.Logger, requestID string, chatID int64) *slog.Logger {
	return base.With("request_id", requestID, "chat_id", chatID)
}

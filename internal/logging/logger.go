package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text handler.
func Init() {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// WithRequest returns a logger with outgoing-request fields attached.
// Use this for all logging on a single API round-trip.
func WithRequest(requestID, method, path string) *slog.Logger {
	return slog.With(
		"request_id", requestID,
		"method", method,
		"path", path,
	)
}

// WithStep returns a logger scoped to one onboarding wizard step.
func WithStep(logger *slog.Logger, step string) *slog.Logger {
	return logger.With("step", step)
}

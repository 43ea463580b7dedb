package logger

import (
	"io"
	"log/slog"
	"strings"

	"github.com/go-chi/httplog/v3"
)

// Schema is the request log field layout shared by the app logger and the
// HTTP request logger.
var Schema = httplog.SchemaECS

// New builds a JSON slog logger tagged with the app name and environment.
func New(w io.Writer, level, env string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: Schema.Concise(env != "production").ReplaceAttr,
	})
	return slog.New(handler).With(
		slog.String("app", "ems"),
		slog.String("env", env),
	)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RequestOptions configures httplog for the router.
func RequestOptions(level string) *httplog.Options {
	return &httplog.Options{
		Level:  ParseLevel(level),
		Schema: Schema,
	}
}

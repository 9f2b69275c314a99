package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cayecrypto/polymarket-btc-bot/internal/config"
	"github.com/google/uuid"
)

// Logger defines the interface for structured logging.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	// With returns a Logger that adds keysAndValues to every record.
	With(keysAndValues ...interface{}) Logger
}

// NewLogger creates a new Logger instance based on the provided configuration.
// It supports different logger types, currently only "slog" is implemented.
// Every record carries a launch_id shared by all loggers derived from it.
func NewLogger(cfg *config.Config) Logger {
	switch cfg.Log.Type {
	case "slog", "":
		return newSlogLogger(cfg).With("launch_id", uuid.NewString())
	default:
		panic("unsupported logger type: " + cfg.Log.Type)
	}
}

// NewWriterLogger creates a JSON logger writing to w, without a launch_id.
func NewWriterLogger(w io.Writer, level string) Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &SlogLogger{logger: slog.New(handler)}
}

// SlogLogger wraps an slog.Logger to implement the Logger interface.
type SlogLogger struct {
	logger *slog.Logger
}

// newSlogLogger creates a new SlogLogger with output to either console or file.
// File output is used when Log.ToFile is set, otherwise stdout.
func newSlogLogger(cfg *config.Config) Logger {
	var writer io.Writer

	if cfg.Log.ToFile {
		writer = setupFileWriter(cfg.Log.File)
	} else {
		writer = os.Stdout
	}

	return NewWriterLogger(writer, cfg.Log.Level)
}

// setupFileWriter creates a file writer for logging.
// It ensures the log directory exists and opens the file in append mode.
// If the file cannot be opened, it logs an error and returns os.Stdout.
func setupFileWriter(logFile string) io.Writer {
	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		slog.Error("Failed to create log directory", "error", err, "path", logDir)
		return os.Stdout
	}

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		slog.Error("Failed to open log file", "error", err, "path", logFile)
		return os.Stdout
	}

	return file
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs a message at Debug level with optional key-value pairs.
func (l *SlogLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

// Info logs a message at Info level with optional key-value pairs.
func (l *SlogLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

// Warn logs a message at Warn level with optional key-value pairs.
func (l *SlogLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}

// Error logs a message at Error level with optional key-value pairs.
func (l *SlogLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

// With returns a child logger carrying keysAndValues.
func (l *SlogLogger) With(keysAndValues ...interface{}) Logger {
	return &SlogLogger{logger: l.logger.With(keysAndValues...)}
}

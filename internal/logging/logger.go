package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"

	"axon/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level      string
	Format     string
	Console    io.Writer
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var consoleHandler slog.Handler
	switch format {
	case "json":
		consoleHandler = slog.NewJSONHandler(console, &slog.HandlerOptions{Level: level})
	case "console":
		consoleHandler = tint.NewHandler(console, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    !isTerminal(console),
		})
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	if strings.TrimSpace(opts.FilePath) == "" {
		return slog.New(consoleHandler), nil
	}

	rotating := &lumberjack.Logger{
		Filename:   opts.FilePath,
		MaxSize:    defaultInt(opts.MaxSizeMB, 50),
		MaxBackups: defaultInt(opts.MaxBackups, 5),
		MaxAge:     defaultInt(opts.MaxAgeDays, 60),
		Compress:   true,
	}
	fileHandler := slog.NewJSONHandler(rotating, &slog.HandlerOptions{Level: level})

	return slog.New(newFanoutHandler(consoleHandler, fileHandler)), nil
}

// NewFromConfig creates a logger using application config defaults.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console"})
	}

	var filePath string
	if cfg.Paths.LogDir != "" {
		if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		filePath = filepath.Join(cfg.Paths.LogDir, "axon.log")
	}

	return New(Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		FilePath:   filePath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.RetentionDays,
	})
}

// NewNop returns a logger that discards all records.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}

func defaultInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

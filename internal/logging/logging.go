package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options configures the global logger
type Options struct {
	Verbose bool
	// Format is "console" (default) or "json"
	Format  string
	NoColor bool
	Out     io.Writer
	// File, when set, receives a JSON copy of every event
	File io.Writer
}

// Setup initializes the global logger from opts
func Setup(opts Options) error {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	zerolog.SetGlobalLevel(level)

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	switch strings.ToLower(opts.Format) {
	case "", "console":
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
			NoColor:    opts.NoColor,
		}
	case "json":
	default:
		return fmt.Errorf("unknown log format %q", opts.Format)
	}

	writers := []io.Writer{out}
	if opts.File != nil {
		writers = append(writers, opts.File)
	}
	log.Logger = NewLogger(writers...)
	return nil
}

// NewLogger creates a new logger with optional writers
func NewLogger(writers ...io.Writer) zerolog.Logger {
	if len(writers) == 0 {
		return log.Logger
	}

	if len(writers) == 1 {
		return zerolog.New(writers[0]).With().Timestamp().Logger()
	}

	multi := zerolog.MultiLevelWriter(writers...)
	return zerolog.New(multi).With().Timestamp().Logger()
}

// WithComponent creates a logger with a component field
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

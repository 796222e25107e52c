// Package logging builds the zerolog loggers used across folio.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures a logger
type Options struct {
	Level string    // trace, debug, info, warn, error; empty means warn
	File  string    // When set, JSON lines are appended to this file
	Out   io.Writer // Console destination when File is empty; defaults to stderr
}

// ParseLevel maps a level name to a zerolog level, defaulting to warn
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zerolog.WarnLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.WarnLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	if level == zerolog.NoLevel {
		return zerolog.WarnLevel, nil
	}
	return level, nil
}

// New returns a logger for opts. The returned closer releases the log file,
// if any, and is never nil.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
		}
		logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
		return logger, f, nil
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	console := zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	logger := zerolog.New(console).Level(level).With().Timestamp().Logger()
	return logger, nopCloser{}, nil
}

// ForTUI returns a logger that never writes to the terminal: a file logger
// when file is set, otherwise a no-op logger.
func ForTUI(level, file string) (zerolog.Logger, io.Closer, error) {
	if file == "" {
		return zerolog.Nop(), nopCloser{}, nil
	}
	return New(Options{Level: level, File: file})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Package logging builds the application logger. The terminal belongs to the
// TUI, so log output goes to a size-rotated file.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation settings.
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Config describes where logs go and how the file is rotated.
// An empty File discards all output.
type Config struct {
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Writer returns the rotating file writer for c, or a no-op closer when no
// file is configured.
func (c Config) Writer() io.WriteCloser {
	if c.File == "" {
		return nopCloser{io.Discard}
	}
	return &lj.Logger{
		Filename:   c.File,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

// New builds a logfmt logger writing to c's file. The returned closer
// flushes and closes the file.
func New(c Config) (*log.Logger, io.Closer, error) {
	level := log.InfoLevel
	if strings.TrimSpace(c.Level) != "" {
		l, err := log.ParseLevel(c.Level)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "log level %q", c.Level)
		}
		level = l
	}

	w := c.Writer()
	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Formatter:       log.LogfmtFormatter,
		Prefix:          "stopwatch",
	})
	return logger, w, nil
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

func TestWriter_Defaults(t *testing.T) {
	w := Config{File: filepath.Join(t.TempDir(), "a.log")}.Writer()
	l, ok := w.(*lj.Logger)
	require.True(t, ok)
	require.Equal(t, DefaultMaxSizeMB, l.MaxSize)
	require.Equal(t, DefaultMaxBackups, l.MaxBackups)
	require.Equal(t, DefaultMaxAgeDays, l.MaxAge)
	require.False(t, l.Compress)
}

func TestWriter_Overrides(t *testing.T) {
	w := Config{File: "x.log", MaxSizeMB: 1, MaxBackups: 9, MaxAgeDays: 2, Compress: true}.Writer()
	l := w.(*lj.Logger)
	require.Equal(t, 1, l.MaxSize)
	require.Equal(t, 9, l.MaxBackups)
	require.Equal(t, 2, l.MaxAge)
	require.True(t, l.Compress)
}

func TestWriter_NoFileDiscards(t *testing.T) {
	w := Config{}.Writer()
	_, ok := w.(*lj.Logger)
	require.False(t, ok)
	n, err := w.Write([]byte("dropped"))
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.NoError(t, w.Close())
}

func TestNew_WritesStructuredLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "stopwatch.log")
	logger, closer, err := New(Config{File: path, Level: "debug"})
	require.NoError(t, err)

	logger.Debug("record started", "index", 3)
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "record started")
	require.Contains(t, string(b), "index=3")
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, _, err := New(Config{Level: "loud"})
	require.Error(t, err)
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stopwatch.log")
	logger, closer, err := New(Config{File: path, Level: "warn"})
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Warn("loud")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(b), "quiet")
	require.Contains(t, string(b), "loud")
}

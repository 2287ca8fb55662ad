package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"stopwatch_tui/internal/config"
	"stopwatch_tui/internal/location"
	"stopwatch_tui/internal/store"
	"stopwatch_tui/internal/timelog"
)

func withTempEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "history.db")
	t.Setenv("STOPWATCH_DB_PATH", db)
	t.Setenv("STOPWATCH_LOG_FILE", filepath.Join(dir, "stopwatch.log"))
	return db
}

func seed(t *testing.T, db string, records ...timelog.TimingRecord) {
	t.Helper()
	st, err := store.OpenSQLite(context.Background(), db)
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Save(context.Background(), records))
}

func closedRecord(startMs, stopMs int64, loc timelog.LocationTag) timelog.TimingRecord {
	r := timelog.NewRecord(time.UnixMilli(startMs), loc)
	stop := time.UnixMilli(stopMs)
	r.Stop = &stop
	r.StopLocation = timelog.Blocked
	return r
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestHistoryCommand_PrintsPage(t *testing.T) {
	db := withTempEnv(t)
	seed(t, db, closedRecord(0, 1500, timelog.Coordinates("1.0000, 2.0000")))

	out := run(t, "history", "--links")
	require.Contains(t, out, "00:00:01.50")
	require.Contains(t, out, "page 1 of 1")
	require.Contains(t, out, location.MapsURL("1.0000, 2.0000"))
}

func TestHistoryCommand_PageFlagClamps(t *testing.T) {
	db := withTempEnv(t)
	seed(t, db,
		closedRecord(0, 1000, timelog.Blocked),
		closedRecord(2000, 3000, timelog.Blocked),
		closedRecord(4000, 5000, timelog.Blocked),
	)

	out := run(t, "--page-size", "2", "history", "--page", "9")
	require.Contains(t, out, "page 2 of 2")
}

func TestHistoryCommand_Empty(t *testing.T) {
	withTempEnv(t)
	require.Contains(t, run(t, "history"), "No history yet.")
}

func TestResetCommand_ClearsHistory(t *testing.T) {
	db := withTempEnv(t)
	seed(t, db, closedRecord(0, 1500, timelog.Blocked))

	require.Contains(t, run(t, "reset"), "History cleared.")

	st, err := store.OpenSQLite(context.Background(), db)
	require.NoError(t, err)
	defer st.Close()
	got, err := st.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSetup_AbandonsUnfinishedRecord(t *testing.T) {
	db := withTempEnv(t)
	seed(t, db, timelog.NewRecord(time.UnixMilli(0), timelog.Blocked))

	out := run(t, "history")
	require.Contains(t, out, "abandoned")
}

func TestNewResolver(t *testing.T) {
	_, ok := newResolver(config.LocationConfig{Mode: config.LocationOff}).(location.Disabled)
	require.True(t, ok)

	s, ok := newResolver(config.LocationConfig{Mode: config.LocationStatic, Latitude: 1, Longitude: 2}).(location.Static)
	require.True(t, ok)
	require.Equal(t, location.Position{Latitude: 1, Longitude: 2}, s.Position)

	h, ok := newResolver(config.LocationConfig{Mode: config.LocationHTTP, Endpoint: "http://x"}).(*location.HTTP)
	require.True(t, ok)
	require.Equal(t, "http://x", h.Endpoint)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestAppClose_LogFileClosedLast(t *testing.T) {
	var logged, stderr bytes.Buffer
	var order []string
	a := &app{
		logger: log.New(&logged),
		closers: []io.Closer{
			closerFunc(func() error { order = append(order, "first"); return nil }),
			closerFunc(func() error { order = append(order, "db"); return errors.New("db busy") }),
		},
		logCloser: closerFunc(func() error {
			order = append(order, "log")
			return errors.New("disk full")
		}),
		errOut: &stderr,
	}

	a.Close()
	require.Equal(t, []string{"db", "first", "log"}, order)
	require.Contains(t, logged.String(), "db busy")
	require.NotContains(t, logged.String(), "disk full")
	require.Contains(t, stderr.String(), "close log file: disk full")
}

package internal

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stopwatch_tui/internal/clock"
	"stopwatch_tui/internal/location"
	"stopwatch_tui/internal/stopwatch"
	"stopwatch_tui/internal/timelog"
)

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	rightKey = tea.KeyMsg{Type: tea.KeyRight}
	leftKey  = tea.KeyMsg{Type: tea.KeyLeft}
	resetKey = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}
	quitKey  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
)

func newTestModel(t *testing.T, opts ...stopwatch.Option) (*Model, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.UnixMilli(0))
	sw := stopwatch.New(append([]stopwatch.Option{stopwatch.WithClock(clk), stopwatch.WithPageSize(2)}, opts...)...)
	m := NewModel(context.Background(), sw, Options{FrameInterval: time.Millisecond, PageSize: 2})
	return m, clk
}

// collect runs cmd and flattens batches into the messages they produce.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func press(m *Model, msg tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func TestModel_ToggleStartsFrameLoop(t *testing.T) {
	m, _ := newTestModel(t)
	require.Nil(t, m.Init())

	cmd := press(m, enterKey)
	require.True(t, m.sw.Running())
	require.NotNil(t, cmd)

	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	frame, ok := msgs[0].(frameMsg)
	require.True(t, ok)
	require.Equal(t, m.gen, frame.gen)

	_, next := m.Update(frame)
	require.NotNil(t, next, "running model reschedules its frame")
}

func TestModel_FramesStopWhenIdle(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, enterKey)
	frame := frameMsg{gen: m.gen}

	press(m, enterKey)
	require.False(t, m.sw.Running())

	_, next := m.Update(frame)
	require.Nil(t, next)
}

func TestModel_StaleGenerationIsDropped(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, enterKey)
	stale := frameMsg{gen: m.gen}

	press(m, enterKey)
	press(m, enterKey)
	require.True(t, m.sw.Running())

	_, next := m.Update(stale)
	require.Nil(t, next)
}

func TestModel_LocationLookupRoundTrip(t *testing.T) {
	res := location.Static{Position: location.Position{Latitude: 1.5, Longitude: -2.25}}
	m, _ := newTestModel(t, stopwatch.WithResolver(res))

	var loc *locationMsg
	for _, msg := range collect(press(m, enterKey)) {
		if lm, ok := msg.(locationMsg); ok {
			loc = &lm
		}
	}
	require.NotNil(t, loc)
	require.Equal(t, 0, loc.Index)

	m.Update(*loc)
	require.Equal(t, timelog.Coordinates("1.5000, -2.2500"), m.sw.Records()[0].StartLocation)
}

func TestModel_ResetCancelsFrames(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, enterKey)
	frame := frameMsg{gen: m.gen}

	press(m, resetKey)
	require.NoError(t, m.Err)
	require.Equal(t, 0, m.sw.Len())

	_, next := m.Update(frame)
	require.Nil(t, next)
}

func TestModel_PageNavigation(t *testing.T) {
	m, clk := newTestModel(t)
	for i := 0; i < 5; i++ {
		press(m, enterKey)
		clk.Advance(time.Second)
		press(m, enterKey)
	}
	require.Equal(t, 1, m.sw.Page().Page)

	press(m, leftKey)
	require.Equal(t, 1, m.sw.Page().Page)

	press(m, rightKey)
	press(m, rightKey)
	press(m, rightKey)
	require.Equal(t, 3, m.sw.Page().Page)
	require.Len(t, m.history.Rows(), 1)
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)
	cmd := press(m, quitKey)
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	require.True(t, ok)
}

func TestModel_ViewShowsReadoutAndHistory(t *testing.T) {
	m, clk := newTestModel(t)
	require.Contains(t, m.View(), "No history yet.")

	press(m, enterKey)
	clk.Advance(1500 * time.Millisecond)
	out := m.View()
	require.Contains(t, out, "00:00:01.50")
	require.Contains(t, out, "Running")

	press(m, enterKey)
	out = m.View()
	require.Contains(t, out, "00:00:01.50")
	require.Contains(t, out, "Stopped")
	require.Contains(t, out, "page 1 of 1")
	require.Contains(t, out, "Location blocked")
}

func TestHistoryRows(t *testing.T) {
	stop := time.UnixMilli(61_000)
	closed := timelog.NewRecord(time.UnixMilli(0), timelog.Coordinates("1.0000, 2.0000"))
	closed.Stop = &stop
	closed.StopLocation = timelog.Pending

	open := timelog.NewRecord(time.UnixMilli(70_000), timelog.Blocked)

	abandoned := timelog.NewRecord(time.UnixMilli(80_000), timelog.Blocked)
	abandoned.Abandoned = true

	rows := historyRows([]timelog.TimingRecord{closed, open, abandoned})
	require.Len(t, rows, 3)

	assert.Equal(t, "1.0000, 2.0000", rows[0][1])
	assert.Equal(t, "…", rows[0][3])
	assert.Equal(t, "00:01:01.00", rows[0][4])

	assert.Equal(t, "Location blocked", rows[1][1])
	assert.Equal(t, "", rows[1][2])
	assert.Equal(t, "", rows[1][4])

	assert.Equal(t, "abandoned", rows[2][2])
	assert.Equal(t, "", rows[2][4])
}

func TestLocationLinks(t *testing.T) {
	r := timelog.NewRecord(time.UnixMilli(0), timelog.Coordinates("1.0000, 2.0000"))
	r.StopLocation = timelog.Blocked
	links := LocationLinks([]timelog.TimingRecord{r})
	require.Len(t, links, 1)
	require.True(t, strings.HasSuffix(links[0], location.MapsURL("1.0000, 2.0000")))
}

func TestDialPoint(t *testing.T) {
	c, r := dialPoint(15, 7, 6, 0)
	assert.Equal(t, [2]int{15, 1}, [2]int{c, r})

	c, r = dialPoint(15, 7, 6, 15)
	assert.Equal(t, [2]int{27, 7}, [2]int{c, r})

	c, r = dialPoint(15, 7, 6, 30)
	assert.Equal(t, [2]int{15, 13}, [2]int{c, r})

	c, r = dialPoint(15, 7, 6, 45)
	assert.Equal(t, [2]int{3, 7}, [2]int{c, r})
}

func TestRenderDial_RestingHandsPointUp(t *testing.T) {
	lines := strings.Split(renderDial(0), "\n")
	require.Len(t, lines, dialRows)

	hub := []rune(lines[dialRows/2])
	require.Equal(t, '●', hub[dialCols/2])

	tip := []rune(lines[dialRows/2-int(secondsRadius)])
	require.Equal(t, '█', tip[dialCols/2])
}

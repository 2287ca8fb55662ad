package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"stopwatch_tui/internal/location"
	"stopwatch_tui/internal/page"
	"stopwatch_tui/internal/stopwatch"
	"stopwatch_tui/internal/timelog"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	timerDisplayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("69")).
				Bold(true)

	timerRunningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	navEnabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)
)

const recordTimeLayout = "Jan 02 15:04:05"

var historyColumns = []table.Column{
	{Title: "Start", Width: 15},
	{Title: "Start Location", Width: 20},
	{Title: "Stop", Width: 15},
	{Title: "Stop Location", Width: 20},
	{Title: "Elapsed", Width: 12},
}

func newHistoryTable(pageSize int) table.Model {
	if pageSize <= 0 {
		pageSize = page.DefaultSize
	}
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = lipgloss.NewStyle()

	return table.New(
		table.WithColumns(historyColumns),
		table.WithHeight(pageSize+2),
		table.WithFocused(false),
		table.WithStyles(s),
	)
}

func locationCell(tag timelog.LocationTag) string {
	if tag.IsPending() {
		return "…"
	}
	return tag.String()
}

// historyRows renders records as table rows. Open records leave the stop
// columns empty; abandoned ones say so.
func historyRows(records []timelog.TimingRecord) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		row := table.Row{
			r.Start.Local().Format(recordTimeLayout),
			locationCell(r.StartLocation),
			"", "", "",
		}
		switch {
		case r.Abandoned:
			row[2] = "abandoned"
		case r.Stop != nil:
			d, _ := r.Elapsed()
			row[2] = r.Stop.Local().Format(recordTimeLayout)
			row[3] = locationCell(r.StopLocation)
			row[4] = timelog.Format(d)
		}
		rows = append(rows, row)
	}
	return rows
}

// RenderHistory draws one page of history as a static table followed by the
// page indicator. Used outside the TUI.
func RenderHistory(v stopwatch.View, pageSize int) string {
	t := newHistoryTable(pageSize)
	t.SetRows(historyRows(v.Records))
	return t.View() + "\n" + pageLine(v)
}

// LocationLinks lists map links for every coordinate on the page.
func LocationLinks(records []timelog.TimingRecord) []string {
	var out []string
	for _, r := range records {
		for _, tag := range []timelog.LocationTag{r.StartLocation, r.StopLocation} {
			if tag.IsCoordinates() {
				out = append(out, fmt.Sprintf("%s  %s", tag, location.MapsURL(tag.String())))
			}
		}
	}
	return out
}

func pageLine(v stopwatch.View) string {
	if v.TotalPages == 0 {
		return inactiveStyle.Render("No history yet.")
	}
	prev := fmt.Sprintf("‹ %d", v.Page-1)
	if v.HasPrev {
		prev = navEnabledStyle.Render(prev)
	} else {
		prev = inactiveStyle.Render(strings.Repeat(" ", len([]rune(prev))))
	}
	next := fmt.Sprintf("%d ›", v.Page+1)
	if v.HasNext {
		next = navEnabledStyle.Render(next)
	} else {
		next = inactiveStyle.Render(strings.Repeat(" ", len([]rune(next))))
	}
	return fmt.Sprintf("%s   page %d of %d   %s", prev, v.Page, v.TotalPages, next)
}

// displayed is the duration shown on the face: live while running, the last
// finished record otherwise.
func (m *Model) displayed() time.Duration {
	if m.sw.Running() {
		return m.sw.Elapsed()
	}
	last, ok := m.sw.Last()
	if !ok {
		return 0
	}
	d, _ := last.Elapsed()
	return d
}

func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(80).Render("Stopwatch"))
	sb.WriteString("\n\n")

	elapsed := m.displayed()
	digital := timerDisplayStyle.Render(timelog.Format(elapsed))
	status := inactiveStyle.Render("Stopped")
	if m.sw.Running() {
		digital = timerRunningStyle.Render(timelog.Format(elapsed))
		status = runningStyle.Render("Running")
	}
	readout := fmt.Sprintf("%s\n\n%s", digital, status)

	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		boxStyle.Render(renderDial(elapsed)),
		"    ",
		readout,
	))
	sb.WriteString("\n\n")

	v := m.sw.Page()
	if v.TotalPages > 0 {
		sb.WriteString(m.history.View())
		sb.WriteString("\n")
	}
	sb.WriteString(pageLine(v))
	sb.WriteString("\n")

	if m.Err != nil {
		sb.WriteString(errStyle.Render("Error: " + m.Err.Error()))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))

	return sb.String()
}

package internal

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"stopwatch_tui/internal/location"
	"stopwatch_tui/internal/stopwatch"
)

// frameMsg asks for a redraw while running. gen ties it to one run so frames
// scheduled before a stop or reset are dropped.
type frameMsg struct {
	gen int
}

// locationMsg carries a finished location lookup back to Update.
type locationMsg location.Result

type Model struct {
	ctx    context.Context
	sw     *stopwatch.Stopwatch
	logger *log.Logger

	frame time.Duration
	gen   int

	keys    keyMap
	help    help.Model
	history table.Model

	Err   error
	width int
}

type Options struct {
	// FrameInterval is the redraw cadence while running.
	FrameInterval time.Duration
	PageSize      int
	Logger        *log.Logger
}

func NewModel(ctx context.Context, sw *stopwatch.Stopwatch, opts Options) *Model {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 16 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	m := &Model{
		ctx:     ctx,
		sw:      sw,
		logger:  opts.Logger,
		frame:   opts.FrameInterval,
		keys:    defaultKeyMap(),
		help:    help.New(),
		history: newHistoryTable(opts.PageSize),
	}
	m.refreshTable()
	return m
}

func (m *Model) Init() tea.Cmd {
	if m.sw.Running() {
		return m.tick()
	}
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if msg.gen != m.gen || !m.sw.Running() {
			return m, nil
		}
		return m, m.tick()
	case locationMsg:
		if m.sw.ApplyLocation(m.ctx, location.Result(msg)) {
			m.refreshTable()
		}
		m.Err = m.sw.PersistErr()
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	}
	return m, nil
}

func (m *Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.frame, func(time.Time) tea.Msg {
		return frameMsg{gen: gen}
	})
}

// resolve runs req off the event loop. The resolver is read here so the
// command never touches the controller.
func (m *Model) resolve(req *location.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	res := m.sw.Resolver()
	r := *req
	ctx := m.ctx
	return func() tea.Msg {
		return locationMsg(r.Resolve(ctx, res))
	}
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		return m, m.toggle()
	case key.Matches(msg, m.keys.Prev):
		if m.sw.PrevPage() {
			m.refreshTable()
		}
	case key.Matches(msg, m.keys.Next):
		if m.sw.NextPage() {
			m.refreshTable()
		}
	case key.Matches(msg, m.keys.Reset):
		m.gen++
		m.Err = m.sw.Reset(m.ctx)
		m.refreshTable()
	}
	return m, nil
}

func (m *Model) toggle() tea.Cmd {
	req, ok := m.sw.Toggle(m.ctx)
	if !ok {
		return nil
	}
	m.Err = m.sw.PersistErr()
	m.refreshTable()

	cmds := []tea.Cmd{m.resolve(req)}
	if m.sw.Running() {
		m.gen++
		cmds = append(cmds, m.tick())
	}
	return tea.Batch(cmds...)
}

func (m *Model) refreshTable() {
	m.history.SetRows(historyRows(m.sw.Page().Records))
}

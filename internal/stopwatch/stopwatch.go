// Package stopwatch is the controller that owns the timing state: the
// Idle/Running machine, the history log, the page cursor and the location
// capability. All methods must be called from a single goroutine; location
// lookups run elsewhere and come back through ApplyLocation.
package stopwatch

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"stopwatch_tui/internal/clock"
	"stopwatch_tui/internal/location"
	"stopwatch_tui/internal/page"
	"stopwatch_tui/internal/store"
	"stopwatch_tui/internal/timelog"
	"stopwatch_tui/internal/timer"
)

type Stopwatch struct {
	clock  clock.Clock
	timer  *timer.Timer
	log    timelog.Log
	cursor page.Cursor
	geo    *location.Capability
	store  store.Store
	logger *log.Logger

	persistErr error
}

type Option func(*Stopwatch)

func WithClock(c clock.Clock) Option {
	return func(s *Stopwatch) { s.clock = c }
}

// WithResolver enables location tagging. Without it every location field is
// recorded as blocked.
func WithResolver(r location.Resolver) Option {
	return func(s *Stopwatch) { s.geo = location.NewCapability(r) }
}

func WithStore(st store.Store) Option {
	return func(s *Stopwatch) { s.store = st }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Stopwatch) { s.logger = l }
}

func WithPageSize(n int) Option {
	return func(s *Stopwatch) { s.cursor = page.NewCursor(n) }
}

func New(opts ...Option) *Stopwatch {
	s := &Stopwatch{
		clock:  clock.System{},
		timer:  timer.New(),
		cursor: page.NewCursor(page.DefaultSize),
		geo:    location.NewCapability(nil),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load seeds the log from the store and returns the number of records
// restored. An unreadable snapshot is logged and treated as empty.
func (s *Stopwatch) Load(ctx context.Context) int {
	if s.store == nil {
		return 0
	}
	records, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("ignoring stored history", "err", err)
		s.log.Clear()
		return 0
	}

	abandoned := s.log.Restore(records)
	s.cursor.Reset()
	if abandoned > 0 {
		s.logger.Info("marked unfinished records abandoned", "count", abandoned)
		s.persist(ctx)
	}
	s.logger.Debug("history loaded", "records", len(records))
	return len(records)
}

func (s *Stopwatch) now() time.Time {
	return timelog.Millis(s.clock.Now())
}

func (s *Stopwatch) initialTag() timelog.LocationTag {
	if s.geo.Available() {
		return timelog.Pending
	}
	return timelog.Blocked
}

// Start begins timing a new record. It reports false, changing nothing, when
// already running. The returned request is nil when location is unavailable.
func (s *Stopwatch) Start(ctx context.Context) (*location.Request, bool) {
	if s.timer.Running() {
		return nil, false
	}

	at := s.now()
	rec := timelog.NewRecord(at, s.initialTag())
	if err := s.log.Append(rec); err != nil {
		s.logger.Error("start rejected", "err", err)
		return nil, false
	}
	s.timer.Start(at)
	s.persist(ctx)

	idx := s.log.Len() - 1
	s.logger.Info("stopwatch started", "index", idx, "at", at.UnixMilli())
	return s.request(idx, rec, location.StartField), true
}

// Stop closes the open record. It reports false when idle, changing nothing,
// or when the log had no record to close.
func (s *Stopwatch) Stop(ctx context.Context) (*location.Request, bool) {
	started, ok := s.timer.Stop()
	if !ok {
		return nil, false
	}

	at := s.now()
	if at.Before(started) {
		at = started
	}
	tag := s.initialTag()

	var closed timelog.TimingRecord
	err := s.log.UpdateLast(func(r *timelog.TimingRecord) {
		r.Stop = &at
		r.StopLocation = tag
		closed = *r
	})
	if err != nil {
		s.logger.Error("stop without an open record", "err", err)
		return nil, false
	}
	s.persist(ctx)

	idx := s.log.Len() - 1
	s.logger.Info("stopwatch stopped", "index", idx, "elapsed", timelog.Format(at.Sub(started)))
	return s.request(idx, closed, location.StopField), true
}

// Toggle starts when idle and stops when running.
func (s *Stopwatch) Toggle(ctx context.Context) (*location.Request, bool) {
	if s.timer.Running() {
		return s.Stop(ctx)
	}
	return s.Start(ctx)
}

func (s *Stopwatch) request(idx int, rec timelog.TimingRecord, field location.Field) *location.Request {
	if !s.geo.Available() {
		return nil
	}
	return &location.Request{Index: idx, RecordID: rec.ID, Field: field}
}

// Resolver returns the resolver to run requests against, or nil once the
// capability is gone.
func (s *Stopwatch) Resolver() location.Resolver {
	return s.geo.Resolver()
}

// ApplyLocation stores the outcome of a location request. Results whose
// record is no longer at the captured index are dropped. A denial disables
// location for the rest of the process and marks the field blocked.
func (s *Stopwatch) ApplyLocation(ctx context.Context, res location.Result) bool {
	rec, ok := s.log.At(res.Index)
	if !ok || rec.ID != res.RecordID {
		s.logger.Debug("dropping location for a record that is gone", "index", res.Index, "field", res.Field)
		return false
	}

	var tag timelog.LocationTag
	switch {
	case res.Denied():
		s.logger.Warn("location permission denied, disabling lookups", "err", res.Err)
		s.geo.Deny()
		tag = timelog.Blocked
	case !s.geo.Available():
		tag = timelog.Blocked
	case res.Err != nil:
		s.logger.Debug("location lookup failed", "index", res.Index, "field", res.Field, "err", res.Err)
		return false
	default:
		tag = timelog.Coordinates(location.FormatPosition(res.Position))
	}

	s.log.UpdateAt(res.Index, func(r *timelog.TimingRecord) {
		if res.Field == location.StopField {
			r.StopLocation = tag
		} else {
			r.StartLocation = tag
		}
	})
	s.persist(ctx)
	return true
}

// Reset empties the history, drops the stored snapshot and stops timing.
func (s *Stopwatch) Reset(ctx context.Context) error {
	s.timer.Reset()
	s.log.Clear()
	s.cursor.Reset()
	s.logger.Info("history reset")
	if s.store == nil {
		return nil
	}
	s.persistErr = s.store.Clear(ctx)
	if s.persistErr != nil {
		s.logger.Error("clear stored history", "err", s.persistErr)
	}
	return s.persistErr
}

func (s *Stopwatch) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	s.persistErr = s.store.Save(ctx, s.log.Snapshot())
	if s.persistErr != nil {
		s.logger.Error("save history", "err", s.persistErr)
	}
}

// PersistErr returns the error from the most recent save or clear.
func (s *Stopwatch) PersistErr() error {
	return s.persistErr
}

func (s *Stopwatch) Running() bool {
	return s.timer.Running()
}

func (s *Stopwatch) Phase() timer.Phase {
	return s.timer.Phase()
}

// Elapsed reads the clock on every call; zero when idle.
func (s *Stopwatch) Elapsed() time.Duration {
	return s.timer.Elapsed(s.clock.Now())
}

func (s *Stopwatch) Len() int {
	return s.log.Len()
}

// Last returns the newest record.
func (s *Stopwatch) Last() (timelog.TimingRecord, bool) {
	return s.log.Last()
}

// Records returns the history oldest first.
func (s *Stopwatch) Records() []timelog.TimingRecord {
	return s.log.Snapshot()
}

// View is one page of history, newest first, plus what a renderer needs to
// draw navigation controls.
type View struct {
	Records    []timelog.TimingRecord
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	Phase      timer.Phase
}

func (s *Stopwatch) totalPages() int {
	return page.TotalPages(s.log.Len(), s.cursor.Size)
}

func (s *Stopwatch) Page() View {
	total := s.totalPages()
	s.cursor.Clamp(total)
	return View{
		Records:    page.Paginate(s.log.Reversed(), s.cursor.Size, s.cursor.Page),
		Page:       s.cursor.Page,
		TotalPages: total,
		HasPrev:    s.cursor.HasPrev(),
		HasNext:    s.cursor.HasNext(total),
		Phase:      s.timer.Phase(),
	}
}

// GoTo jumps to page n, clamped to the available pages.
func (s *Stopwatch) GoTo(n int) {
	s.cursor.Page = n
	s.cursor.Clamp(s.totalPages())
}

func (s *Stopwatch) PrevPage() bool {
	return s.cursor.Prev()
}

func (s *Stopwatch) NextPage() bool {
	return s.cursor.Next(s.totalPages())
}

package timelog

import (
	"time"

	"github.com/google/uuid"
)

// BlockedMarker is stored in place of coordinates when location is unavailable.
const BlockedMarker = "Location blocked"

// LocationTag holds coordinates, the blocked marker, or nothing while the
// position is still being resolved.
type LocationTag string

const (
	Pending LocationTag = ""
	Blocked LocationTag = BlockedMarker
)

// Coordinates wraps an already formatted coordinate pair.
func Coordinates(s string) LocationTag {
	return LocationTag(s)
}

func (l LocationTag) IsPending() bool { return l == Pending }
func (l LocationTag) IsBlocked() bool { return l == Blocked }

// IsCoordinates reports whether the tag carries a resolved position.
func (l LocationTag) IsCoordinates() bool {
	return !l.IsPending() && !l.IsBlocked()
}

func (l LocationTag) String() string { return string(l) }

// TimingRecord represents one timed interval.
// Stop is nil while the interval is running.
type TimingRecord struct {
	ID            uuid.UUID
	Start         time.Time
	Stop          *time.Time
	StartLocation LocationTag
	StopLocation  LocationTag

	// Abandoned marks a record restored without a stop time. It is closed
	// but has no elapsed time.
	Abandoned bool
}

// NewRecord returns an open record starting at start.
func NewRecord(start time.Time, startLocation LocationTag) TimingRecord {
	return TimingRecord{
		ID:            uuid.New(),
		Start:         start,
		StartLocation: startLocation,
	}
}

// Open reports whether the record is still being timed.
func (r TimingRecord) Open() bool {
	return r.Stop == nil && !r.Abandoned
}

// Elapsed returns Stop-Start, or false when the record has no stop time.
func (r TimingRecord) Elapsed() (time.Duration, bool) {
	if r.Stop == nil {
		return 0, false
	}
	return r.Stop.Sub(r.Start), true
}

func (r TimingRecord) clone() TimingRecord {
	if r.Stop != nil {
		stop := *r.Stop
		r.Stop = &stop
	}
	return r
}

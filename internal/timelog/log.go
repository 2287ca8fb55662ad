// Package timelog holds the ordered history of timing records.
package timelog

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrEmptyLog marks an update against a log with no records.
	ErrEmptyLog = errors.New("history log is empty")

	// ErrOpenRecord marks an append while another record is still open.
	ErrOpenRecord = errors.New("history log already has an open record")
)

// Log is the chronological (oldest first) sequence of timing records.
// It is not safe for concurrent use; the owning controller serializes access.
type Log struct {
	records []TimingRecord
}

// Append adds rec to the end of the log. Appending while the last record is
// still open breaks the single-open-record invariant and is rejected as an
// assertion failure.
func (l *Log) Append(rec TimingRecord) error {
	if last, ok := l.Last(); ok && last.Open() {
		return errors.WithAssertionFailure(errors.Mark(
			errors.Newf("append record %s: record %s still open", rec.ID, last.ID),
			ErrOpenRecord,
		))
	}
	l.records = append(l.records, rec.clone())
	return nil
}

// UpdateLast applies fn to the most recently appended record.
func (l *Log) UpdateLast(fn func(*TimingRecord)) error {
	if len(l.records) == 0 {
		return errors.WithAssertionFailure(errors.Mark(errors.New("update last record: log is empty"), ErrEmptyLog))
	}
	fn(&l.records[len(l.records)-1])
	return nil
}

// UpdateAt applies fn to the record at index i. It returns false without
// calling fn when i is out of range, which happens when the log was cleared
// after the caller captured the index.
func (l *Log) UpdateAt(i int, fn func(*TimingRecord)) bool {
	if i < 0 || i >= len(l.records) {
		return false
	}
	fn(&l.records[i])
	return true
}

func (l *Log) Clear() {
	l.records = nil
}

func (l *Log) Len() int {
	return len(l.records)
}

// At returns a copy of the record at index i.
func (l *Log) At(i int) (TimingRecord, bool) {
	if i < 0 || i >= len(l.records) {
		return TimingRecord{}, false
	}
	return l.records[i].clone(), true
}

// Last returns a copy of the newest record.
func (l *Log) Last() (TimingRecord, bool) {
	if len(l.records) == 0 {
		return TimingRecord{}, false
	}
	return l.records[len(l.records)-1].clone(), true
}

// HasOpen reports whether the newest record is still open.
func (l *Log) HasOpen() bool {
	last, ok := l.Last()
	return ok && last.Open()
}

// Snapshot returns a deep copy in chronological order.
func (l *Log) Snapshot() []TimingRecord {
	out := make([]TimingRecord, len(l.records))
	for i, r := range l.records {
		out[i] = r.clone()
	}
	return out
}

// Reversed returns a deep copy with the newest record first.
func (l *Log) Reversed() []TimingRecord {
	n := len(l.records)
	out := make([]TimingRecord, n)
	for i, r := range l.records {
		out[n-1-i] = r.clone()
	}
	return out
}

// Restore replaces the log with records loaded from storage. Records that
// have no stop time are marked abandoned: a restored log never has an open
// record, since timing does not resume across restarts. It returns the
// number of records that were abandoned.
func (l *Log) Restore(records []TimingRecord) int {
	l.records = make([]TimingRecord, len(records))
	abandoned := 0
	for i, r := range records {
		r = r.clone()
		if r.Open() {
			r.Abandoned = true
			abandoned++
		}
		l.records[i] = r
	}
	return abandoned
}

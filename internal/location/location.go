// Package location resolves the coordinates attached to timing records.
//
// Resolution is best effort. A resolver either yields a Position, reports
// ErrDenied (which permanently disables the capability for the owning
// controller), or fails transiently, in which case the field stays pending.
// Nothing is retried.
package location

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

var (
	// ErrDenied is returned by a resolver when permission to read the
	// position was refused.
	ErrDenied = errors.New("location permission denied")

	// ErrUnavailable is returned by resolvers that have no position source.
	ErrUnavailable = errors.New("location unavailable")
)

type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FormatPosition renders p as "lat, lon" with four decimals.
func FormatPosition(p Position) string {
	return fmt.Sprintf("%.4f, %.4f", p.Latitude, p.Longitude)
}

const mapsSearchURL = "https://www.google.com/maps/search/"

// MapsURL links a formatted coordinate pair to a map search.
func MapsURL(coords string) string {
	if coords == "" {
		return ""
	}
	return mapsSearchURL + url.PathEscape(coords)
}

type Resolver interface {
	Resolve(ctx context.Context) (Position, error)
}

// Static always reports the same position.
type Static struct {
	Position Position
}

func (s Static) Resolve(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	return s.Position, nil
}

// Disabled stands in when the host has no position source at all.
type Disabled struct{}

func (Disabled) Resolve(context.Context) (Position, error) {
	return Position{}, ErrUnavailable
}

// Capability records whether location requests may still be issued.
// A single denial turns it off for the rest of the process.
type Capability struct {
	resolver Resolver
	denied   bool
}

// NewCapability wraps r. A nil or Disabled resolver yields a capability that
// is unavailable from the start.
func NewCapability(r Resolver) *Capability {
	if _, ok := r.(Disabled); ok {
		r = nil
	}
	return &Capability{resolver: r}
}

func (c *Capability) Available() bool {
	return c != nil && c.resolver != nil && !c.denied
}

func (c *Capability) Deny() {
	c.denied = true
}

func (c *Capability) Resolver() Resolver {
	if !c.Available() {
		return nil
	}
	return c.resolver
}

// Field selects which location of a record a request fills in.
type Field int

const (
	StartField Field = iota
	StopField
)

func (f Field) String() string {
	if f == StopField {
		return "stop"
	}
	return "start"
}

// Request targets one location field of the record at Index. The index is
// captured when the request is issued and does not follow later records;
// RecordID lets the receiver detect that the slot now holds another record.
type Request struct {
	Index    int
	RecordID uuid.UUID
	Field    Field
}

// Result is the outcome of a Request.
type Result struct {
	Request
	Position Position
	Err      error
}

func (r Result) Denied() bool {
	return errors.Is(r.Err, ErrDenied)
}

// Resolve runs the request against res. Errors are carried in the Result.
func (r Request) Resolve(ctx context.Context, res Resolver) Result {
	if res == nil {
		return Result{Request: r, Err: ErrUnavailable}
	}
	pos, err := res.Resolve(ctx)
	if err != nil {
		return Result{Request: r, Err: errors.Wrapf(err, "resolve %s location of record %d", r.Field, r.Index)}
	}
	return Result{Request: r, Position: pos}
}

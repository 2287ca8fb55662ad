package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"stopwatch_tui/internal/store/migrations"
	"stopwatch_tui/internal/timelog"
)

// SQLite implements Store on a single sqlite database file.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the database at path and applies
// pending migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty sqlite path")
	}
	if p != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, errors.Wrapf(err, "create directory for %s", p)
		}
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}
	_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout=3000;")

	s := &SQLite{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, migrations.FS)
	if err != nil {
		return errors.Wrap(err, "create migration provider")
	}
	if _, err := provider.Up(ctx); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	return nil
}

func (s *SQLite) Save(ctx context.Context, records []timelog.TimingRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin save")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM timing_records"); err != nil {
		return errors.Wrap(err, "clear previous snapshot")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO timing_records (seq, id, start_ms, stop_ms, start_location, stop_location, abandoned)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	for i, r := range records {
		var stop sql.NullInt64
		if r.Stop != nil {
			stop = sql.NullInt64{Int64: r.Stop.UnixMilli(), Valid: true}
		}
		abandoned := 0
		if r.Abandoned {
			abandoned = 1
		}
		if _, err := stmt.ExecContext(ctx,
			i, r.ID.String(), r.Start.UnixMilli(), stop,
			r.StartLocation.String(), r.StopLocation.String(), abandoned,
		); err != nil {
			return errors.Wrapf(err, "insert record %d", i)
		}
	}

	return errors.Wrap(tx.Commit(), "commit save")
}

func (s *SQLite) Load(ctx context.Context) ([]timelog.TimingRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, start_ms, stop_ms, start_location, stop_location, abandoned
		FROM timing_records
		ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "query records")
	}
	defer rows.Close()

	var records []timelog.TimingRecord
	for rows.Next() {
		var (
			id                string
			startMs           int64
			stopMs            sql.NullInt64
			startLoc, stopLoc string
			abandoned         int
		)
		if err := rows.Scan(&id, &startMs, &stopMs, &startLoc, &stopLoc, &abandoned); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "scan record"), ErrCorrupt)
		}

		rec := timelog.TimingRecord{
			Start:         time.UnixMilli(startMs),
			StartLocation: timelog.LocationTag(startLoc),
			StopLocation:  timelog.LocationTag(stopLoc),
			Abandoned:     abandoned != 0,
		}
		rec.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "record id %q", id), ErrCorrupt)
		}
		if stopMs.Valid {
			if stopMs.Int64 < startMs {
				return nil, errors.Mark(errors.Newf("record %s stops before it starts", id), ErrCorrupt)
			}
			stop := time.UnixMilli(stopMs.Int64)
			rec.Stop = &stop
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate records")
	}
	return records, nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM timing_records")
	return errors.Wrap(err, "clear records")
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

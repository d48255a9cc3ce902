// CLAUDE:SUMMARY SQLite journal of poll cycles (outcome, duration, detail) with a per-profile summary.
// Package journal records every poll cycle of a slotwatch run in SQLite.
// The default database is in-memory: nothing survives the process unless a
// file path is given.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/slotwatch/dbopen"
	"github.com/hazyhaar/slotwatch/idgen"
)

// Schema is the journal table layout.
const Schema = `
CREATE TABLE IF NOT EXISTS cycles (
	cycle_id    TEXT PRIMARY KEY,
	profile     TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	started_at  INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	outcome     TEXT NOT NULL,
	detail      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_cycles_profile ON cycles(profile, started_at);
`

// Outcome is how a cycle ended.
type Outcome string

const (
	Available   Outcome = "available"
	Unavailable Outcome = "unavailable"
	PageError   Outcome = "page_error"
	ConfigError Outcome = "config_error"
	Cancelled   Outcome = "cancelled"
	Failed      Outcome = "error"
)

// Cycle is one journal row.
type Cycle struct {
	ID        string
	Profile   string
	Seq       int
	StartedAt time.Time
	Duration  time.Duration
	Outcome   Outcome
	Detail    string
}

// Summary aggregates the cycles of one profile.
type Summary struct {
	Profile  string
	Cycles   int
	Outcomes map[Outcome]int
	First    time.Time
	Last     time.Time
}

// Journal writes cycles to an SQLite database.
type Journal struct {
	db     *sql.DB
	owned  bool
	newID  idgen.Generator
	logger *slog.Logger
}

// Option configures a Journal.
type Option func(*Journal)

// WithIDGenerator sets the cycle ID generator. Default: "cyc_" + UUIDv7.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(j *Journal) { j.newID = gen }
}

// WithLogger sets the logger used for write failures.
func WithLogger(l *slog.Logger) Option {
	return func(j *Journal) { j.logger = l }
}

// Open opens (or creates) the journal database at path. Use dbopen.Memory for
// a journal that lives only as long as the process.
func Open(path string, opts ...Option) (*Journal, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	j := New(db, opts...)
	j.owned = true
	return j, nil
}

// New wraps an already-open database. The schema must have been applied.
func New(db *sql.DB, opts ...Option) *Journal {
	j := &Journal{
		db:     db,
		newID:  idgen.Prefixed("cyc_", idgen.Default),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(j)
	}
	return j
}

// Record inserts a cycle and returns its ID.
func (j *Journal) Record(ctx context.Context, c Cycle) (string, error) {
	if c.ID == "" {
		c.ID = j.newID()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO cycles (cycle_id, profile, seq, started_at, duration_ms, outcome, detail)
		VALUES (?,?,?,?,?,?,?)`,
		c.ID, c.Profile, c.Seq, c.StartedAt.UnixMilli(), c.Duration.Milliseconds(),
		string(c.Outcome), c.Detail)
	if err != nil {
		return "", fmt.Errorf("journal: record: %w", err)
	}
	return c.ID, nil
}

// Log records a cycle and only logs failures. The poll loop never stops
// because the journal cannot be written.
func (j *Journal) Log(ctx context.Context, c Cycle) {
	if _, err := j.Record(ctx, c); err != nil {
		j.logger.Warn("journal: write failed", "error", err, "profile", c.Profile, "seq", c.Seq)
	}
}

// Cycles returns the cycles of a profile in order.
func (j *Journal) Cycles(ctx context.Context, profile string) ([]Cycle, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT cycle_id, profile, seq, started_at, duration_ms, outcome, detail
		FROM cycles WHERE profile = ? ORDER BY started_at, seq`, profile)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	var out []Cycle
	for rows.Next() {
		var c Cycle
		var started, dur int64
		var outcome string
		if err := rows.Scan(&c.ID, &c.Profile, &c.Seq, &started, &dur, &outcome, &c.Detail); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		c.StartedAt = time.UnixMilli(started)
		c.Duration = time.Duration(dur) * time.Millisecond
		c.Outcome = Outcome(outcome)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Summary aggregates the cycles recorded for profile.
func (j *Journal) Summary(ctx context.Context, profile string) (Summary, error) {
	s := Summary{Profile: profile, Outcomes: make(map[Outcome]int)}
	rows, err := j.db.QueryContext(ctx, `
		SELECT outcome, COUNT(*), MIN(started_at), MAX(started_at)
		FROM cycles WHERE profile = ? GROUP BY outcome`, profile)
	if err != nil {
		return s, fmt.Errorf("journal: summary: %w", err)
	}
	defer rows.Close()

	var first, last int64
	for rows.Next() {
		var outcome string
		var n int
		var lo, hi int64
		if err := rows.Scan(&outcome, &n, &lo, &hi); err != nil {
			return s, fmt.Errorf("journal: scan: %w", err)
		}
		s.Outcomes[Outcome(outcome)] = n
		s.Cycles += n
		if first == 0 || lo < first {
			first = lo
		}
		if hi > last {
			last = hi
		}
	}
	if err := rows.Err(); err != nil {
		return s, fmt.Errorf("journal: summary: %w", err)
	}
	if s.Cycles > 0 {
		s.First = time.UnixMilli(first)
		s.Last = time.UnixMilli(last)
	}
	return s, nil
}

// Close closes the database when the journal opened it.
func (j *Journal) Close() error {
	if !j.owned {
		return nil
	}
	return j.db.Close()
}

// Package store persists the append-only agent event log for the demo
// server. SQLite keeps the deployment single-binary; events are written
// once and replayed in insertion order.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver (no CGO required)

	"github.com/unneeks/stewardagent/internal/model"
)

var migrations = []struct {
	version int
	sql     string
}{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_versions (
    version     INTEGER PRIMARY KEY,
    applied_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS event_log (
    seq          INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id     TEXT NOT NULL DEFAULT '',
    timestamp    TEXT NOT NULL DEFAULT '',
    event_type   TEXT NOT NULL,
    entity_type  TEXT NOT NULL DEFAULT '',
    entity_id    TEXT NOT NULL,
    entity_name  TEXT NOT NULL DEFAULT '',
    context      TEXT NOT NULL DEFAULT '{}',
    metrics      TEXT NOT NULL DEFAULT '{}',
    explanation  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_event_log_type      ON event_log(event_type);
CREATE INDEX IF NOT EXISTS idx_event_log_entity_id ON event_log(entity_id);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS approvals (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    pr_id       TEXT NOT NULL,
    approved_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_approvals_pr_id ON approvals(pr_id);
`,
	},
}

// Store is the event-log persistence interface used by the server.
type Store interface {
	AppendEvent(ctx context.Context, ev model.Event) error
	Events(ctx context.Context) ([]model.Event, error)
	RecordApproval(ctx context.Context, prID string, at time.Time) error
	Approvals(ctx context.Context) ([]Approval, error)
	Reset(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Approval is one recorded fix acknowledgement.
type Approval struct {
	PRID       string    `json:"pr_id"`
	ApprovedAt time.Time `json:"approved_at"`
}

type sqliteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// WAL lets the poll handlers read while the simulator appends.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &sqliteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// migrate applies any unapplied migrations in order.
func (s *sqliteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_versions (
        version    INTEGER PRIMARY KEY,
        applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := s.db.QueryRow(`SELECT COUNT(*) FROM schema_versions WHERE version = ?`, m.version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.version, err)
		}
		if count > 0 {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := s.db.Exec(`INSERT INTO schema_versions(version) VALUES(?)`, m.version); err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
	}
	return nil
}

func (s *sqliteStore) Close() error { return s.db.Close() }

func (s *sqliteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *sqliteStore) AppendEvent(ctx context.Context, ev model.Event) error {
	contextJSON, err := marshalOr(ev.Context, "{}")
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}
	metricsJSON, err := marshalOr(ev.Metrics, "{}")
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO event_log(event_id, timestamp, event_type, entity_type, entity_id, entity_name, context, metrics, explanation)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.EventID, ev.Timestamp, ev.EventType, ev.EntityType, ev.EntityID, ev.EntityName,
		contextJSON, metricsJSON, ev.Explanation,
	)
	if err != nil {
		return fmt.Errorf("insert event %s: %w", ev.EventType, err)
	}
	return nil
}

// Events returns the full log in insertion order.
func (s *sqliteStore) Events(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT event_id, timestamp, event_type, entity_type, entity_id, entity_name, context, metrics, explanation
        FROM event_log ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var ev model.Event
		var contextJSON, metricsJSON string
		if err := rows.Scan(&ev.EventID, &ev.Timestamp, &ev.EventType, &ev.EntityType,
			&ev.EntityID, &ev.EntityName, &contextJSON, &metricsJSON, &ev.Explanation); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal([]byte(contextJSON), &ev.Context); err != nil {
			return nil, fmt.Errorf("decode context for %s: %w", ev.EventID, err)
		}
		if err := json.Unmarshal([]byte(metricsJSON), &ev.Metrics); err != nil {
			return nil, fmt.Errorf("decode metrics for %s: %w", ev.EventID, err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *sqliteStore) RecordApproval(ctx context.Context, prID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO approvals(pr_id, approved_at) VALUES(?, ?)`, prID, at.UTC())
	if err != nil {
		return fmt.Errorf("insert approval %s: %w", prID, err)
	}
	return nil
}

func (s *sqliteStore) Approvals(ctx context.Context) ([]Approval, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pr_id, approved_at FROM approvals ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query approvals: %w", err)
	}
	defer rows.Close()

	var out []Approval
	for rows.Next() {
		var a Approval
		if err := rows.Scan(&a.PRID, &a.ApprovedAt); err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Reset clears the log so the simulator can reseed from scratch.
func (s *sqliteStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM event_log`); err != nil {
		return fmt.Errorf("clear event_log: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM approvals`); err != nil {
		return fmt.Errorf("clear approvals: %w", err)
	}
	return nil
}

func marshalOr(v any, empty string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return empty, nil
	}
	return string(b), nil
}

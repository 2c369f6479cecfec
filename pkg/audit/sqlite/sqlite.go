// Package sqlite stores Fae render audit records in a SQLite database
// file, for single-process deployments that don't want to stand up a
// separate audit server.
//
// Grounded on the teacher's pkg/database/sqlite.go: a thin wrapper
// around database/sql with the pure-Go modernc.org/sqlite driver
// imported for its registration side effect.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
	"github.com/google/uuid"

	"github.com/fae-lang/fae/pkg/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS render_audit (
	id         TEXT PRIMARY KEY,
	template   TEXT NOT NULL,
	duration_ns INTEGER NOT NULL,
	error      TEXT,
	at         TIMESTAMP NOT NULL
);`

// Store implements audit.Store against a SQLite file.
type Store struct {
	db *sql.DB
}

// Open creates (if needed) the render_audit table at dsn and returns a
// Store backed by it. dsn may be a file path or ":memory:".
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("audit/sqlite: opening %s: %w", dsn, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit/sqlite: creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordRender implements audit.Store. A write failure is swallowed
// (audit logging must never turn a successful render into a failure).
func (s *Store) RecordRender(ctx context.Context, template string, duration time.Duration, renderErr error) {
	errText := ""
	if renderErr != nil {
		errText = renderErr.Error()
	}
	_, _ = s.db.ExecContext(ctx,
		`INSERT INTO render_audit (id, template, duration_ns, error, at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), template, duration.Nanoseconds(), errText, time.Now(),
	)
}

// Recent implements audit.Recent.
func (s *Store) Recent(ctx context.Context, limit int) ([]audit.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, template, duration_ns, error, at FROM render_audit ORDER BY at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []audit.Record
	for rows.Next() {
		var r audit.Record
		var durNs int64
		if err := rows.Scan(&r.ID, &r.Template, &durNs, &r.Err, &r.At); err != nil {
			return nil, err
		}
		r.Duration = time.Duration(durNs)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

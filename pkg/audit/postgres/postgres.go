// Package postgres stores Fae render audit records in PostgreSQL.
//
// Grounded on the teacher's pkg/database/postgres.go: database/sql with
// github.com/lib/pq imported for its driver-registration side effect,
// and $N positional placeholders.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/fae-lang/fae/pkg/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS render_audit (
	id          TEXT PRIMARY KEY,
	template    TEXT NOT NULL,
	duration_ns BIGINT NOT NULL,
	error       TEXT,
	at          TIMESTAMPTZ NOT NULL
);`

// Store implements audit.Store against a PostgreSQL database.
type Store struct {
	db *sql.DB
}

// Open connects to dsn (a postgres:// connection string) and ensures
// the render_audit table exists.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("audit/postgres: opening: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit/postgres: creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordRender implements audit.Store.
func (s *Store) RecordRender(ctx context.Context, template string, duration time.Duration, renderErr error) {
	errText := ""
	if renderErr != nil {
		errText = renderErr.Error()
	}
	_, _ = s.db.ExecContext(ctx,
		`INSERT INTO render_audit (id, template, duration_ns, error, at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), template, duration.Nanoseconds(), errText, time.Now(),
	)
}

// Recent implements audit.Recent.
func (s *Store) Recent(ctx context.Context, limit int) ([]audit.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, template, duration_ns, error, at FROM render_audit ORDER BY at DESC LIMIT $1`, limit)
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

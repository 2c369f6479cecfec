// Package mysql stores Fae render audit records in MySQL.
//
// Grounded on the teacher's pkg/database/mysql.go: database/sql with
// github.com/go-sql-driver/mysql imported for its driver-registration
// side effect.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/fae-lang/fae/pkg/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS render_audit (
	id          VARCHAR(36) PRIMARY KEY,
	template    VARCHAR(255) NOT NULL,
	duration_ns BIGINT NOT NULL,
	error       TEXT,
	at          DATETIME NOT NULL
);`

// Store implements audit.Store against a MySQL database.
type Store struct {
	db *sql.DB
}

// Open connects to dsn (a go-sql-driver/mysql DSN) and ensures the
// render_audit table exists.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("audit/mysql: opening: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit/mysql: creating schema: %w", err)
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

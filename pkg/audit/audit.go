// Package audit records one Record per Library.Render call, for
// after-the-fact inspection of what was rendered, how long it took,
// and whether it failed.
//
// Grounded on the teacher's pkg/database/handler.go (a thin Handler
// wrapping a driver-specific connection, constructed from a connection
// string via NewHandlerFromString) and pkg/mongodb/handler.go (the
// equivalent shape for a non-SQL backend). audit.Store is the common
// interface every backend in this package (and its sqlite/postgres/
// mysql/mongo subpackages) satisfies.
package audit

import (
	"context"
	"time"
)

// Record is one audited render.
type Record struct {
	ID       string
	Template string
	Duration time.Duration
	Err      string // empty when the render succeeded
	At       time.Time
}

// Store persists Records. Implementations must never let a storage
// failure propagate out of RecordRender: per the ambient error-handling
// convention, audit logging is best-effort and must not turn a
// successful render into a failed one.
type Store interface {
	RecordRender(ctx context.Context, template string, duration time.Duration, renderErr error)
	Close() error
}

// Recent is implemented by stores that can list their own history.
type Recent interface {
	Recent(ctx context.Context, limit int) ([]Record, error)
}

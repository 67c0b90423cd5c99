package dialect

import (
	"context"
	"database/sql"
	"fmt"
)

// Configurer is implemented by dialects that tune a freshly opened pool.
type Configurer interface {
	Configure(ctx context.Context, db *sql.DB) error
}

// ConnectionError reports a malformed descriptor or an unreachable backend.
type ConnectionError struct {
	Backend string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Backend, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Connect opens and verifies a connection pool for descriptor. An empty
// descriptor selects the dialect default. Every failure is a *ConnectionError.
func Connect(ctx context.Context, d Dialect, descriptor string) (*sql.DB, error) {
	dsn, err := d.DSN(descriptor)
	if err != nil {
		return nil, &ConnectionError{Backend: d.Name(), Err: err}
	}

	db, err := sql.Open(d.Driver(), dsn)
	if err != nil {
		return nil, &ConnectionError{Backend: d.Name(), Err: fmt.Errorf("failed to open database: %w", err)}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &ConnectionError{Backend: d.Name(), Err: fmt.Errorf("failed to connect to database: %w", err)}
	}

	if c, ok := d.(Configurer); ok {
		if err := c.Configure(ctx, db); err != nil {
			db.Close()
			return nil, &ConnectionError{Backend: d.Name(), Err: err}
		}
	}

	return db, nil
}

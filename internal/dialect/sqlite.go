package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/sqlkv/internal/codec"
)

// DefaultSQLitePath is the database file opened when no descriptor is given.
const DefaultSQLitePath = "pycoki.db"

// SQLite is the embedded file backend. The descriptor is a file path or a
// go-sqlite3 "file:" URI. Timestamps are stored as text.
type SQLite struct{}

func (SQLite) Name() string                      { return "sqlite" }
func (SQLite) Driver() string                    { return "sqlite3" }
func (SQLite) DefaultDescriptor() string         { return DefaultSQLitePath }
func (SQLite) Quote(ident string) string         { return quoteWith(ident, `"`, `"`) }
func (SQLite) Placeholder() sq.PlaceholderFormat { return sq.Question }

func (d SQLite) DSN(descriptor string) (string, error) {
	if strings.TrimSpace(descriptor) == "" {
		return d.DefaultDescriptor(), nil
	}
	return descriptor, nil
}

func (SQLite) ExistsQuery() string {
	return "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?"
}

func (SQLite) ExistsArgs(table, _ string) []any {
	return []any{table}
}

func (SQLite) CreateTable(table string, c Columns) string {
	return fmt.Sprintf(
		"CREATE TABLE %s (%s TEXT NOT NULL, %s TEXT NOT NULL, %s TEXT, %s TEXT, PRIMARY KEY (%s, %s))",
		table, c.Namespace, c.Key, c.Value, c.Timestamp, c.Namespace, c.Key,
	)
}

func (SQLite) Upsert(table string, c Columns) (string, error) {
	text, _, err := sq.Replace(table).
		Columns(c.Namespace, c.Key, c.Value, c.Timestamp).
		Values(nil, nil, nil, nil).
		PlaceholderFormat(sq.Question).
		ToSql()
	return text, err
}

// SetArgs formats the timestamp as text; SQLite has no native date-time type.
func (SQLite) SetArgs(namespace, key, value string, ts time.Time) []any {
	return []any{namespace, key, value, codec.FormatTime(ts)}
}

// Configure limits the pool to a single connection and sets a busy timeout.
// SQLite allows one writer at a time, and ":memory:" databases are per connection.
func (SQLite) Configure(ctx context.Context, db *sql.DB) error {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("failed to execute %q: %w", "PRAGMA busy_timeout = 5000", err)
	}
	return nil
}

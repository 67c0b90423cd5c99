package dialect

import (
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
)

// DefaultPostgresDSN is used when no descriptor is given.
const DefaultPostgresDSN = "host=localhost dbname=pycokidb sslmode=disable"

// Postgres is the client/server backend configured with a libpq DSN, passed
// to the driver unmodified.
type Postgres struct{}

func (Postgres) Name() string                      { return "postgres" }
func (Postgres) Driver() string                    { return "postgres" }
func (Postgres) DefaultDescriptor() string         { return DefaultPostgresDSN }
func (Postgres) Quote(ident string) string         { return quoteWith(ident, `"`, `"`) }
func (Postgres) Placeholder() sq.PlaceholderFormat { return sq.Dollar }

func (d Postgres) DSN(descriptor string) (string, error) {
	if strings.TrimSpace(descriptor) == "" {
		return d.DefaultDescriptor(), nil
	}
	return descriptor, nil
}

// ExistsQuery resolves the table name the way the unquoted DDL does: folded
// to lower case and looked up on the search_path.
func (Postgres) ExistsQuery() string {
	return "SELECT relname FROM pg_class WHERE relkind = 'r' AND oid = to_regclass(?::text)"
}

func (Postgres) ExistsArgs(table, _ string) []any {
	return []any{table}
}

func (Postgres) CreateTable(table string, c Columns) string {
	return fmt.Sprintf(
		"CREATE TABLE %s (%s VARCHAR(50) NOT NULL, %s VARCHAR(100) NOT NULL, %s VARCHAR(4000), %s TIMESTAMP WITH TIME ZONE, PRIMARY KEY (%s, %s))",
		table, c.Namespace, c.Key, c.Value, c.Timestamp, c.Namespace, c.Key,
	)
}

func (Postgres) Upsert(table string, c Columns) (string, error) {
	text, _, err := sq.Insert(table).
		Columns(c.Namespace, c.Key, c.Value, c.Timestamp).
		Values(nil, nil, nil, nil).
		Suffix(fmt.Sprintf(
			"ON CONFLICT (%s, %s) DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s",
			c.Namespace, c.Key, c.Value, c.Value, c.Timestamp, c.Timestamp,
		)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	return text, err
}

func (Postgres) SetArgs(namespace, key, value string, ts time.Time) []any {
	return []any{namespace, key, value, ts}
}

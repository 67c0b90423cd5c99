package dialect

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Op names one statement in the statement table.
type Op string

const (
	OpExists    Op = "exists"
	OpCreate    Op = "create"
	OpGet       Op = "get"
	OpGetAll    Op = "get_all"
	OpKeys      Op = "keys"
	OpSet       Op = "set"
	OpRemove    Op = "remove"
	OpRemoveAll Op = "remove_all"
)

// Ops lists every statement in rendering order.
var Ops = []Op{OpExists, OpCreate, OpGet, OpGetAll, OpKeys, OpSet, OpRemove, OpRemoveAll}

// DefaultTable is the physical table used when none is configured.
const DefaultTable = "pycoki"

// Naming selects the physical column names of the table.
type Naming int

const (
	// NamingPrefixed uses kv_namespace, kv_key, kv_value, kv_timestamp.
	NamingPrefixed Naming = iota
	// NamingPlain uses namespace, key, value, timestamp.
	NamingPlain
)

// ParseNaming accepts "prefixed"/"kv" and "plain".
func ParseNaming(s string) (Naming, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "prefixed", "kv", "kv_":
		return NamingPrefixed, nil
	case "plain", "unprefixed":
		return NamingPlain, nil
	default:
		return 0, fmt.Errorf("unknown column naming %q: must be prefixed or plain", s)
	}
}

func (n Naming) String() string {
	if n == NamingPlain {
		return "plain"
	}
	return "prefixed"
}

// Columns carries the four physical column names of the table.
type Columns struct {
	Namespace string
	Key       string
	Value     string
	Timestamp string
}

// Columns returns the unquoted column names for the scheme.
func (n Naming) Columns() Columns {
	if n == NamingPlain {
		return Columns{Namespace: "namespace", Key: "key", Value: "value", Timestamp: "timestamp"}
	}
	return Columns{Namespace: "kv_namespace", Key: "kv_key", Value: "kv_value", Timestamp: "kv_timestamp"}
}

func (c Columns) quoted(d Dialect) Columns {
	return Columns{
		Namespace: d.Quote(c.Namespace),
		Key:       d.Quote(c.Key),
		Value:     d.Quote(c.Value),
		Timestamp: d.Quote(c.Timestamp),
	}
}

// Dialect is the capability set one backend provides to the store.
type Dialect interface {
	// Name is the canonical backend name ("sqlite", "mysql", ...).
	Name() string
	// Driver is the database/sql driver name registered by the backend.
	Driver() string
	// DefaultDescriptor is used when Connect receives an empty descriptor.
	DefaultDescriptor() string
	// DSN converts a backend descriptor into the driver's data source name.
	DSN(descriptor string) (string, error)
	// Quote quotes a column identifier.
	Quote(ident string) string
	// Placeholder is the bind-parameter style of the backend.
	Placeholder() sq.PlaceholderFormat

	// ExistsQuery returns a query yielding at least one row iff the table
	// exists. Parameters use '?' and are rewritten by Build.
	ExistsQuery() string
	// ExistsArgs returns the parameters for ExistsQuery.
	ExistsArgs(table, schema string) []any
	// CreateTable returns the DDL for the table with quoted columns.
	CreateTable(table string, cols Columns) string
	// Upsert returns the insert-or-overwrite statement with final placeholders.
	Upsert(table string, cols Columns) (string, error)
	// SetArgs binds the upsert parameters in statement order.
	SetArgs(namespace, key, value string, ts time.Time) []any
}

// Statements is the rendered statement table for one dialect and table.
// It is immutable once built.
type Statements struct {
	Dialect string
	Table   string
	Naming  Naming
	Columns Columns

	sql map[Op]string
}

// SQL returns the statement text for op, or "" for an unknown op.
func (s *Statements) SQL(op Op) string {
	return s.sql[op]
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// ValidTable reports whether name is safe to interpolate as a table name.
func ValidTable(name string) bool {
	return identRe.MatchString(name)
}

// Build renders the statement table for d bound to table.
func Build(d Dialect, table string, naming Naming) (*Statements, error) {
	if table == "" {
		table = DefaultTable
	}
	if !ValidTable(table) {
		return nil, fmt.Errorf("build %s statements: invalid table name %q", d.Name(), table)
	}

	cols := naming.Columns()
	q := cols.quoted(d)
	ph := d.Placeholder()

	byKey := fmt.Sprintf("%s = ? AND %s = ?", q.Namespace, q.Key)
	byNamespace := fmt.Sprintf("%s = ?", q.Namespace)

	builders := map[Op]sq.Sqlizer{
		OpGet:       sq.Select(q.Value).From(table).Where(byKey).PlaceholderFormat(ph),
		OpGetAll:    sq.Select(q.Key, q.Value).From(table).Where(byNamespace).OrderBy(q.Key).PlaceholderFormat(ph),
		OpKeys:      sq.Select(q.Key).From(table).Where(byNamespace).OrderBy(q.Key).PlaceholderFormat(ph),
		OpRemove:    sq.Delete(table).Where(byKey).PlaceholderFormat(ph),
		OpRemoveAll: sq.Delete(table).Where(byNamespace).PlaceholderFormat(ph),
	}

	out := make(map[Op]string, len(Ops))
	for op, b := range builders {
		text, _, err := b.ToSql()
		if err != nil {
			return nil, fmt.Errorf("build %s %s: %w", d.Name(), op, err)
		}
		out[op] = text
	}

	exists, err := ph.ReplacePlaceholders(d.ExistsQuery())
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", d.Name(), OpExists, err)
	}
	out[OpExists] = exists
	out[OpCreate] = d.CreateTable(table, q)

	upsert, err := d.Upsert(table, q)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", d.Name(), OpSet, err)
	}
	out[OpSet] = upsert

	return &Statements{
		Dialect: d.Name(),
		Table:   table,
		Naming:  naming,
		Columns: cols,
		sql:     out,
	}, nil
}

var registry = map[string]Dialect{
	"sqlite":    SQLite{},
	"mysql":     MySQL{},
	"postgres":  Postgres{},
	"sqlserver": SQLServer{},
}

var aliases = map[string]string{
	"sqlite3":    "sqlite",
	"pgsql":      "postgres",
	"postgresql": "postgres",
	"pg":         "postgres",
	"mssql":      "sqlserver",
	"sqldb":      "sqlserver",
}

// Lookup returns the dialect registered under name or one of its aliases.
// An empty name selects sqlite.
func Lookup(name string) (Dialect, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		n = "sqlite"
	}
	if a, ok := aliases[n]; ok {
		n = a
	}
	d, ok := registry[n]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q: must be one of %v", name, Names())
	}
	return d, nil
}

// Names returns the canonical backend names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// quoteWith doubles any embedded closing character before wrapping.
func quoteWith(ident, open, close string) string {
	return open + strings.ReplaceAll(ident, close, close+close) + close
}

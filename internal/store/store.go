package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/sqlkv/internal/codec"
	"github.com/roach88/sqlkv/internal/dialect"
)

// DefaultNamespace is used when neither the store nor the call names one.
const DefaultNamespace = "__"

// Conn is the statement surface the store needs. *sql.DB, *sql.Conn, *sql.Tx
// and *sqlx.DB all satisfy it.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// txBeginner is implemented by connections the store may wrap in a
// transaction. A borrowed *sql.Tx is not one; its owner commits.
type txBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Options configures Open and New.
type Options struct {
	// Dialect selects the backend. Defaults to SQLite.
	Dialect dialect.Dialect
	// Descriptor is the backend connection descriptor. When set, Open
	// connects and the store owns the connection.
	Descriptor string
	// Conn is a caller-owned connection, used when Descriptor is empty.
	Conn Conn
	// Table is the physical table name. Defaults to dialect.DefaultTable.
	Table string
	// Naming selects the column naming scheme.
	Naming dialect.Naming
	// Namespace is the default namespace. Defaults to DefaultNamespace.
	Namespace string
	// Location is the zone rows are stamped in. Defaults to UTC.
	Location *time.Location
	// Schema scopes the MySQL table existence check. Empty means the
	// connection's current database.
	Schema string
	// InitTable creates the table on Open if it is missing. Failures are
	// logged, never returned.
	InitTable bool
	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
	// Metrics, when set, records operation counts and latencies.
	Metrics *Metrics
	// Now overrides the wall clock used to stamp rows.
	Now func() time.Time
}

// Store is a key-value handle bound to one backend connection.
type Store struct {
	conn   Conn
	owned  *sql.DB
	closed bool

	dialect   dialect.Dialect
	stmts     *dialect.Statements
	codec     *codec.Codec
	namespace string
	schema    string

	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time
}

// Open returns a store for opts. A non-empty Descriptor, or the absence of
// Conn, makes Open connect; connection failures are returned as
// *ConnectionError.
func Open(ctx context.Context, opts Options) (*Store, error) {
	s, err := newStore(opts)
	if err != nil {
		return nil, err
	}

	if opts.Descriptor != "" || opts.Conn == nil {
		db, err := dialect.Connect(ctx, s.dialect, opts.Descriptor)
		if err != nil {
			return nil, err
		}
		s.conn = db
		s.owned = db
	} else {
		s.conn = opts.Conn
	}

	s.log.Debug("store opened",
		zap.String("backend", s.dialect.Name()),
		zap.String("table", s.stmts.Table),
		zap.Bool("owned", s.owned != nil),
	)

	if opts.InitTable {
		if err := s.InitTable(ctx); err != nil {
			s.log.Error("failed to initialize table", zap.String("table", s.stmts.Table), zap.Error(err))
		}
	}
	return s, nil
}

// New wraps conn without connecting; the caller keeps ownership. A nil conn
// yields a store whose operations return ErrUnavailable unless a call
// supplies WithConn.
func New(conn Conn, opts Options) (*Store, error) {
	s, err := newStore(opts)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return s, nil
}

func newStore(opts Options) (*Store, error) {
	d := opts.Dialect
	if d == nil {
		d = dialect.SQLite{}
	}
	stmts, err := dialect.Build(d, opts.Table, opts.Naming)
	if err != nil {
		return nil, &ValidationError{Field: "table", Reason: err.Error()}
	}
	ns, err := normalizeNamespace(opts.Namespace, DefaultNamespace)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Store{
		dialect:   d,
		stmts:     stmts,
		codec:     codec.New(opts.Location),
		namespace: ns,
		schema:    opts.Schema,
		log:       log.With(zap.String("backend", d.Name())),
		metrics:   opts.Metrics,
		now:       now,
	}, nil
}

// Close releases the connection if the store opened it. Borrowed connections
// are left to their owner. Close is idempotent.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.owned == nil {
		s.log.Info("skipped closing borrowed connection")
		return nil
	}
	if err := s.owned.Close(); err != nil {
		return fmt.Errorf("close connection: %w", err)
	}
	return nil
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	return s.closed
}

// Owned reports whether the store opened its connection and will close it.
func (s *Store) Owned() bool {
	return s.owned != nil
}

// Conn returns the bound connection, or nil.
func (s *Store) Conn() Conn {
	return s.conn
}

// Dialect returns the backend dialect.
func (s *Store) Dialect() dialect.Dialect {
	return s.dialect
}

// Namespace returns the default namespace.
func (s *Store) Namespace() string {
	return s.namespace
}

// Statements returns the rendered statement table.
func (s *Store) Statements() *dialect.Statements {
	return s.stmts
}

// Location returns the zone rows are stamped in.
func (s *Store) Location() *time.Location {
	return s.codec.Location()
}

// CallOption overrides store defaults for one operation.
type CallOption func(*call)

type call struct {
	namespace string
	conn      Conn
}

// WithNamespace runs the operation in ns instead of the default namespace.
// An empty ns keeps the default.
func WithNamespace(ns string) CallOption {
	return func(c *call) {
		if ns != "" {
			c.namespace = ns
		}
	}
}

// WithConn runs the operation on conn instead of the bound connection.
func WithConn(conn Conn) CallOption {
	return func(c *call) {
		if conn != nil {
			c.conn = conn
		}
	}
}

// resolve applies opts and checks the store can run a statement.
func (s *Store) resolve(opts []CallOption) (call, error) {
	c := call{namespace: s.namespace, conn: s.conn}
	for _, opt := range opts {
		opt(&c)
	}
	if s.closed {
		return c, ErrClosed
	}
	if isNilConn(c.conn) {
		return c, ErrUnavailable
	}
	ns, err := normalizeNamespace(c.namespace, s.namespace)
	if err != nil {
		return c, err
	}
	c.namespace = ns
	return c, nil
}

func isNilConn(c Conn) bool {
	if c == nil {
		return true
	}
	switch v := c.(type) {
	case *sql.DB:
		return v == nil
	case *sql.Conn:
		return v == nil
	case *sql.Tx:
		return v == nil
	}
	return false
}

package store

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/sqlkv/internal/codec"
	"github.com/roach88/sqlkv/internal/dialect"
	"github.com/roach88/sqlkv/internal/record"
)

// InitTable creates the table if the existence check finds nothing. Check
// and create run in one transaction when the connection supports it.
func (s *Store) InitTable(ctx context.Context, opts ...CallOption) (err error) {
	defer s.track(dialect.OpCreate, time.Now(), &err)

	c, err := s.resolve(opts)
	if err != nil {
		return err
	}

	return s.mutate(ctx, c.conn, dialect.OpCreate, func(conn Conn) error {
		exists, err := s.tableExists(ctx, conn)
		if err != nil {
			return err
		}
		if exists {
			s.log.Debug("table exists", zap.String("table", s.stmts.Table))
			return nil
		}
		if _, err := conn.ExecContext(ctx, s.stmts.SQL(dialect.OpCreate)); err != nil {
			return &BackendError{Op: dialect.OpCreate, Err: err}
		}
		s.log.Info("created table", zap.String("table", s.stmts.Table))
		return nil
	})
}

func (s *Store) tableExists(ctx context.Context, conn Conn) (bool, error) {
	rows, err := conn.QueryContext(ctx, s.stmts.SQL(dialect.OpExists), s.dialect.ExistsArgs(s.stmts.Table, s.schema)...)
	if err != nil {
		return false, &BackendError{Op: dialect.OpExists, Err: err}
	}
	defer rows.Close()

	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, &BackendError{Op: dialect.OpExists, Err: err}
	}
	return found, nil
}

// Get returns the decoded value stored under key, or nil if no row matches.
func (s *Store) Get(ctx context.Context, key string, opts ...CallOption) (v any, err error) {
	defer s.track(dialect.OpGet, time.Now(), &err)

	text, found, err := s.fetch(ctx, key, opts)
	if err != nil || !found {
		return nil, err
	}

	v, err = s.codec.Decode(text)
	if err != nil {
		return nil, &SerializationError{Op: dialect.OpGet, Key: key, Err: err}
	}
	return v, nil
}

// GetInto decodes the value stored under key into dst. It returns
// ErrNotFound when no row matches or the stored value is absent.
func (s *Store) GetInto(ctx context.Context, key string, dst any, opts ...CallOption) (err error) {
	defer s.track(dialect.OpGet, time.Now(), &err)

	text, found, err := s.fetch(ctx, key, opts)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}

	if err := s.codec.DecodeInto(text, dst); err != nil {
		if errors.Is(err, codec.ErrEmpty) {
			return ErrNotFound
		}
		return &SerializationError{Op: dialect.OpGet, Key: key, Err: err}
	}
	return nil
}

// fetch reads the raw value text for key.
func (s *Store) fetch(ctx context.Context, key string, opts []CallOption) (string, bool, error) {
	c, err := s.resolve(opts)
	if err != nil {
		return "", false, err
	}
	key, err = normalizeKey(key)
	if err != nil {
		return "", false, err
	}

	rows, err := c.conn.QueryContext(ctx, s.stmts.SQL(dialect.OpGet), c.namespace, key)
	if err != nil {
		return "", false, &BackendError{Op: dialect.OpGet, Err: err}
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", false, &BackendError{Op: dialect.OpGet, Err: err}
		}
		return "", false, nil
	}

	rec, err := record.Scan(rows)
	if err != nil {
		return "", false, &BackendError{Op: dialect.OpGet, Err: err}
	}
	return rec.Value.String, true, nil
}

// GetAll returns every key in the namespace mapped to its decoded value. The
// map is empty, never nil, when the namespace has no rows.
func (s *Store) GetAll(ctx context.Context, opts ...CallOption) (out map[string]any, err error) {
	defer s.track(dialect.OpGetAll, time.Now(), &err)

	c, err := s.resolve(opts)
	if err != nil {
		return nil, err
	}

	rows, err := c.conn.QueryContext(ctx, s.stmts.SQL(dialect.OpGetAll), c.namespace)
	if err != nil {
		return nil, &BackendError{Op: dialect.OpGetAll, Err: err}
	}
	defer rows.Close()

	out = make(map[string]any)
	for rows.Next() {
		rec, err := record.Scan(rows)
		if err != nil {
			return nil, &BackendError{Op: dialect.OpGetAll, Err: err}
		}
		v, err := s.codec.Decode(rec.Value.String)
		if err != nil {
			return nil, &SerializationError{Op: dialect.OpGetAll, Key: rec.Key.String, Err: err}
		}
		out[rec.Key.String] = v
	}
	if err := rows.Err(); err != nil {
		return nil, &BackendError{Op: dialect.OpGetAll, Err: err}
	}
	return out, nil
}

// Keys lists the keys in the namespace in key order. The slice is empty,
// never nil, when the namespace has no rows.
func (s *Store) Keys(ctx context.Context, opts ...CallOption) (keys []string, err error) {
	defer s.track(dialect.OpKeys, time.Now(), &err)

	c, err := s.resolve(opts)
	if err != nil {
		return nil, err
	}

	rows, err := c.conn.QueryContext(ctx, s.stmts.SQL(dialect.OpKeys), c.namespace)
	if err != nil {
		return nil, &BackendError{Op: dialect.OpKeys, Err: err}
	}
	defer rows.Close()

	keys = []string{}
	for rows.Next() {
		rec, err := record.Scan(rows)
		if err != nil {
			return nil, &BackendError{Op: dialect.OpKeys, Err: err}
		}
		keys = append(keys, rec.Key.String)
	}
	if err := rows.Err(); err != nil {
		return nil, &BackendError{Op: dialect.OpKeys, Err: err}
	}
	return keys, nil
}

// Set encodes value and upserts it under key, stamped with the current time
// in the store's location.
func (s *Store) Set(ctx context.Context, key string, value any, opts ...CallOption) (err error) {
	defer s.track(dialect.OpSet, time.Now(), &err)

	c, err := s.resolve(opts)
	if err != nil {
		return err
	}
	key, err = normalizeKey(key)
	if err != nil {
		return err
	}

	text, stamp, err := s.codec.Encode(value, s.now())
	if err != nil {
		return &SerializationError{Op: dialect.OpSet, Key: key, Err: err}
	}
	if err := checkValue(text); err != nil {
		return err
	}

	args := s.dialect.SetArgs(c.namespace, key, text, stamp)
	return s.mutate(ctx, c.conn, dialect.OpSet, func(conn Conn) error {
		if _, err := conn.ExecContext(ctx, s.stmts.SQL(dialect.OpSet), args...); err != nil {
			return &BackendError{Op: dialect.OpSet, Err: err}
		}
		return nil
	})
}

// Remove deletes key. Removing a missing key succeeds.
func (s *Store) Remove(ctx context.Context, key string, opts ...CallOption) (err error) {
	defer s.track(dialect.OpRemove, time.Now(), &err)

	c, err := s.resolve(opts)
	if err != nil {
		return err
	}
	key, err = normalizeKey(key)
	if err != nil {
		return err
	}

	return s.mutate(ctx, c.conn, dialect.OpRemove, func(conn Conn) error {
		if _, err := conn.ExecContext(ctx, s.stmts.SQL(dialect.OpRemove), c.namespace, key); err != nil {
			return &BackendError{Op: dialect.OpRemove, Err: err}
		}
		return nil
	})
}

// RemoveAll deletes every row in the namespace.
func (s *Store) RemoveAll(ctx context.Context, opts ...CallOption) (err error) {
	defer s.track(dialect.OpRemoveAll, time.Now(), &err)

	c, err := s.resolve(opts)
	if err != nil {
		return err
	}

	return s.mutate(ctx, c.conn, dialect.OpRemoveAll, func(conn Conn) error {
		if _, err := conn.ExecContext(ctx, s.stmts.SQL(dialect.OpRemoveAll), c.namespace); err != nil {
			return &BackendError{Op: dialect.OpRemoveAll, Err: err}
		}
		return nil
	})
}

// mutate runs fn in a transaction when conn can begin one. Nothing is
// committed when fn fails.
func (s *Store) mutate(ctx context.Context, conn Conn, op dialect.Op, fn func(Conn) error) error {
	b, ok := conn.(txBeginner)
	if !ok {
		return fn(conn)
	}

	tx, err := b.BeginTx(ctx, nil)
	if err != nil {
		return &BackendError{Op: op, Err: err}
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Warn("rollback failed", zap.String("op", string(op)), zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return &BackendError{Op: op, Err: err}
	}
	return nil
}

func (s *Store) track(op dialect.Op, start time.Time, errp *error) {
	elapsed := time.Since(start)
	s.metrics.observe(s.dialect.Name(), op, elapsed, *errp)
	if ce := s.log.Check(zap.DebugLevel, "store operation"); ce != nil {
		ce.Write(
			zap.String("op", string(op)),
			zap.Duration("elapsed", elapsed),
			zap.Error(*errp),
		)
	}
}

package store

import (
	"context"

	"go.uber.org/multierr"

	"github.com/roach88/sqlkv/internal/dialect"
)

// OneShot configures the Get and Set convenience functions. Zero values pick
// the sqlite dialect, its default descriptor and the default namespace.
type OneShot struct {
	Dialect    dialect.Dialect
	Descriptor string
	Table      string
	Namespace  string
	Naming     dialect.Naming
	// SkipInit disables table creation before the operation. Creation
	// failures are logged by Open and never returned.
	SkipInit bool
	Options  Options
}

func (o OneShot) options() Options {
	opts := o.Options
	opts.Conn = nil
	if o.Dialect != nil {
		opts.Dialect = o.Dialect
	}
	if o.Descriptor != "" {
		opts.Descriptor = o.Descriptor
	}
	if o.Table != "" {
		opts.Table = o.Table
	}
	if o.Namespace != "" {
		opts.Namespace = o.Namespace
	}
	if o.Naming != dialect.NamingPrefixed {
		opts.Naming = o.Naming
	}
	opts.InitTable = !o.SkipInit
	return opts
}

// Get opens a store, reads key (or the whole namespace when key is empty),
// and closes the store.
func Get(ctx context.Context, key string, o OneShot) (v any, err error) {
	s, err := Open(ctx, o.options())
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, s.Close()) }()

	if key == "" {
		all, err := s.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		return all, nil
	}
	return s.Get(ctx, key)
}

// Set opens a store, writes value under key, and closes the store.
func Set(ctx context.Context, key string, value any, o OneShot) (err error) {
	s, err := Open(ctx, o.options())
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, s.Close()) }()

	return s.Set(ctx, key, value)
}

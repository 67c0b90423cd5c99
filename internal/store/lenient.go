package store

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// LenientStore never returns errors. Every failure, including a missing
// connection, is logged and reported as the operation's zero result: nil,
// an empty slice, or false.
type LenientStore struct {
	s   *Store
	log *zap.Logger
}

// Lenient wraps s in the log-and-return-falsy contract.
func Lenient(s *Store) *LenientStore {
	return &LenientStore{s: s, log: s.log}
}

// Store returns the wrapped store.
func (l *LenientStore) Store() *Store {
	return l.s
}

// InitTable provisions the table and reports whether it is in place.
func (l *LenientStore) InitTable(ctx context.Context, opts ...CallOption) bool {
	return l.ok("init_table", "", l.s.InitTable(ctx, opts...))
}

// Get returns the value under key, or the whole namespace as a
// map[string]any when key is empty. Missing keys and failures both yield nil.
func (l *LenientStore) Get(ctx context.Context, key string, opts ...CallOption) any {
	if key == "" {
		all, err := l.s.GetAll(ctx, opts...)
		if !l.ok("get_all", "", err) {
			return nil
		}
		return all
	}
	v, err := l.s.Get(ctx, key, opts...)
	if !l.ok("get", key, err) {
		return nil
	}
	return v
}

// Keys lists the namespace keys; failures yield an empty slice.
func (l *LenientStore) Keys(ctx context.Context, opts ...CallOption) []string {
	keys, err := l.s.Keys(ctx, opts...)
	if !l.ok("keys", "", err) {
		return []string{}
	}
	return keys
}

// Set stores value under key and reports success.
func (l *LenientStore) Set(ctx context.Context, key string, value any, opts ...CallOption) bool {
	return l.ok("set", key, l.s.Set(ctx, key, value, opts...))
}

// Remove deletes key, or every row in the namespace when key is empty.
func (l *LenientStore) Remove(ctx context.Context, key string, opts ...CallOption) bool {
	if key == "" {
		return l.ok("remove_all", "", l.s.RemoveAll(ctx, opts...))
	}
	return l.ok("remove", key, l.s.Remove(ctx, key, opts...))
}

// Close closes the wrapped store, logging any failure.
func (l *LenientStore) Close() {
	l.ok("close", "", l.s.Close())
}

func (l *LenientStore) ok(op, key string, err error) bool {
	if err == nil {
		return true
	}

	fields := []zap.Field{zap.String("op", op)}
	if key != "" {
		fields = append(fields, zap.String("key", key))
	}
	if errors.Is(err, ErrUnavailable) {
		l.log.Error(ErrUnavailable.Error(), fields...)
		return false
	}
	l.log.Error("store operation failed", append(fields, zap.Error(err))...)
	return false
}

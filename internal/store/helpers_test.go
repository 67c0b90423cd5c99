package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/sqlkv/internal/testutil"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// createTestStore opens an owned sqlite store in a temp dir with the table
// initialized and a deterministic clock.
func createTestStore(t *testing.T, mutate ...func(*Options)) (*Store, *testutil.DeterministicClock) {
	t.Helper()
	clock := testutil.NewDeterministicClock(testEpoch, time.Second)
	opts := Options{
		Descriptor: filepath.Join(t.TempDir(), "kv.db"),
		InitTable:  true,
		Logger:     zaptest.NewLogger(t),
		Now:        clock.Now,
	}
	for _, m := range mutate {
		m(&opts)
	}
	s, err := Open(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, clock
}

// observedLogger returns a logger recording entries at debug and above.
func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

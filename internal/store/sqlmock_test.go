package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-sql/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/roach88/sqlkv/internal/dialect"
	"github.com/roach88/sqlkv/internal/testutil"
)

// civilConverter lets civil.DateTime parameters reach the mock unchanged,
// as go-mssqldb accepts them natively.
type civilConverter struct{}

func (civilConverter) ConvertValue(v any) (driver.Value, error) {
	if dt, ok := v.(civil.DateTime); ok {
		return dt, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

type timeArg struct{ want time.Time }

func (a timeArg) Match(v driver.Value) bool {
	t, ok := v.(time.Time)
	return ok && t.Equal(a.want)
}

type civilArg struct{ want civil.DateTime }

func (a civilArg) Match(v driver.Value) bool {
	dt, ok := v.(civil.DateTime)
	return ok && dt == a.want
}

func createMockStore(t *testing.T, d dialect.Dialect, mutate ...func(*Options)) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.ValueConverterOption(civilConverter{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := testutil.NewDeterministicClock(testEpoch, time.Second)
	opts := Options{Dialect: d, Logger: zaptest.NewLogger(t), Now: clock.Now}
	for _, m := range mutate {
		m(&opts)
	}
	s, err := New(db, opts)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })
	return s, mock
}

func TestMock_InitTableCreatesMissingTable(t *testing.T) {
	s, mock := createMockStore(t, dialect.MySQL{})
	stmts := s.Statements()

	mock.ExpectBegin()
	mock.ExpectQuery(stmts.SQL(dialect.OpExists)).
		WithArgs("pycoki", nil).
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}))
	mock.ExpectExec(stmts.SQL(dialect.OpCreate)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, s.InitTable(context.Background()))
}

func TestMock_InitTableSkipsExistingTable(t *testing.T) {
	s, mock := createMockStore(t, dialect.MySQL{}, func(o *Options) { o.Schema = "kvdb" })
	stmts := s.Statements()

	mock.ExpectBegin()
	mock.ExpectQuery(stmts.SQL(dialect.OpExists)).
		WithArgs("pycoki", "kvdb").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("pycoki"))
	mock.ExpectCommit()

	require.NoError(t, s.InitTable(context.Background()))
}

func TestMock_PostgresMixedCaseTableInitTwice(t *testing.T) {
	s, mock := createMockStore(t, dialect.Postgres{}, func(o *Options) { o.Table = "KV" })
	stmts := s.Statements()
	assert.Equal(t, "SELECT relname FROM pg_class WHERE relkind = 'r' AND oid = to_regclass($1::text)", stmts.SQL(dialect.OpExists))

	mock.ExpectBegin()
	mock.ExpectQuery(stmts.SQL(dialect.OpExists)).
		WithArgs("KV").
		WillReturnRows(sqlmock.NewRows([]string{"relname"}))
	mock.ExpectExec(stmts.SQL(dialect.OpCreate)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(stmts.SQL(dialect.OpExists)).
		WithArgs("KV").
		WillReturnRows(sqlmock.NewRows([]string{"relname"}).AddRow("kv"))
	mock.ExpectCommit()

	require.NoError(t, s.InitTable(context.Background()))
	require.NoError(t, s.InitTable(context.Background()))
}

func TestMock_OpenSwallowsInitTableFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	stmts, err := dialect.Build(dialect.Postgres{}, "", dialect.NamingPrefixed)
	require.NoError(t, err)

	boom := errors.New("permission denied")
	mock.ExpectBegin()
	mock.ExpectQuery(stmts.SQL(dialect.OpExists)).WithArgs("pycoki").WillReturnError(boom)
	mock.ExpectRollback()

	log, logs := observedLogger()
	s, err := Open(context.Background(), Options{
		Dialect:   dialect.Postgres{},
		Conn:      db,
		InitTable: true,
		Logger:    log,
	})
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 1, logs.FilterMessage("failed to initialize table").Len())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMock_PostgresSetCommits(t *testing.T) {
	s, mock := createMockStore(t, dialect.Postgres{})

	mock.ExpectBegin()
	mock.ExpectExec(s.Statements().SQL(dialect.OpSet)).
		WithArgs(DefaultNamespace, "k", `{"a":1}`, timeArg{testEpoch}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Set(context.Background(), "k", map[string]int{"a": 1}))
}

func TestMock_SQLServerSetBindsCivilTimestamp(t *testing.T) {
	s, mock := createMockStore(t, dialect.SQLServer{}, func(o *Options) {
		o.Location = time.FixedZone("EST", -5*3600)
	})

	mock.ExpectBegin()
	mock.ExpectExec(s.Statements().SQL(dialect.OpSet)).
		WithArgs("ns", "k", `"v"`, civilArg{civil.DateTime{
			Date: civil.Date{Year: 2024, Month: time.March, Day: 1},
			Time: civil.Time{Hour: 7},
		}}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Set(context.Background(), "k", "v", WithNamespace("ns")))
}

func TestMock_MySQLSetBindsWallClockOfLocation(t *testing.T) {
	s, mock := createMockStore(t, dialect.MySQL{}, func(o *Options) {
		o.Location = time.FixedZone("JST", 9*3600)
	})

	mock.ExpectBegin()
	mock.ExpectExec(s.Statements().SQL(dialect.OpSet)).
		WithArgs(DefaultNamespace, "k", `"v"`, "2024-03-01 21:00:00").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Set(context.Background(), "k", "v"))
}

func TestMock_FailedStatementRollsBack(t *testing.T) {
	s, mock := createMockStore(t, dialect.Postgres{})
	boom := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectExec(s.Statements().SQL(dialect.OpRemove)).
		WithArgs(DefaultNamespace, "k").
		WillReturnError(boom)
	mock.ExpectRollback()

	err := s.Remove(context.Background(), "k")
	var berr *BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, dialect.OpRemove, berr.Op)
	assert.ErrorIs(t, err, boom)
}

func TestMock_CommitFailure(t *testing.T) {
	s, mock := createMockStore(t, dialect.MySQL{})
	boom := errors.New("lock wait timeout")

	mock.ExpectBegin()
	mock.ExpectExec(s.Statements().SQL(dialect.OpRemoveAll)).
		WithArgs(DefaultNamespace).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit().WillReturnError(boom)

	err := s.RemoveAll(context.Background())
	var berr *BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, dialect.OpRemoveAll, berr.Op)
	assert.ErrorIs(t, err, boom)
}

func TestMock_BeginFailure(t *testing.T) {
	s, mock := createMockStore(t, dialect.Postgres{})
	boom := errors.New("too many connections")

	mock.ExpectBegin().WillReturnError(boom)

	err := s.Set(context.Background(), "k", 1)
	var berr *BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, dialect.OpSet, berr.Op)
}

func TestMock_PostgresGet(t *testing.T) {
	s, mock := createMockStore(t, dialect.Postgres{})

	mock.ExpectQuery(s.Statements().SQL(dialect.OpGet)).
		WithArgs(DefaultNamespace, "k").
		WillReturnRows(sqlmock.NewRows([]string{"kv_value"}).AddRow(`{"a":1,"at":"2024-03-01 12:00:00 +0000"}`))

	got, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int64(1), "at": "2024-03-01 12:00:00 +0000"}, got)
}

func TestMock_QueryFailure(t *testing.T) {
	s, mock := createMockStore(t, dialect.SQLServer{})
	boom := errors.New("login failed")

	mock.ExpectQuery(s.Statements().SQL(dialect.OpGetAll)).
		WithArgs(DefaultNamespace).
		WillReturnError(boom)

	_, err := s.GetAll(context.Background())
	var berr *BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, dialect.OpGetAll, berr.Op)
}

func TestMock_SQLServerKeys(t *testing.T) {
	s, mock := createMockStore(t, dialect.SQLServer{})

	mock.ExpectQuery(s.Statements().SQL(dialect.OpKeys)).
		WithArgs(DefaultNamespace).
		WillReturnRows(sqlmock.NewRows([]string{"kv_key"}).AddRow("a").AddRow("b"))

	keys, err := s.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestMock_MySQLGetAllBytes(t *testing.T) {
	s, mock := createMockStore(t, dialect.MySQL{})

	mock.ExpectQuery(s.Statements().SQL(dialect.OpGetAll)).
		WithArgs(DefaultNamespace).
		WillReturnRows(sqlmock.NewRows([]string{"kv_key", "kv_value"}).
			AddRow([]byte("a"), []byte(`1`)).
			AddRow([]byte("b"), []byte(`"two"`)))

	all, err := s.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int64(1), "b": "two"}, all)
}

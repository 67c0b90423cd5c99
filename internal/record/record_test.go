package record

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_PrefixedColumns(t *testing.T) {
	r := Map(map[string]any{
		"kv_namespace": "ns",
		"kv_key":       []byte("k"),
		"kv_value":     `{"a":1}`,
	})

	assert.Equal(t, sql.NullString{String: "ns", Valid: true}, r.Namespace)
	assert.Equal(t, sql.NullString{String: "k", Valid: true}, r.Key)
	assert.Equal(t, sql.NullString{String: `{"a":1}`, Valid: true}, r.Value)
	assert.False(t, r.Timestamp.Valid)
}

func TestMap_PlainColumnsCaseInsensitive(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := Map(map[string]any{
		"Namespace": "ns",
		"KEY":       "k",
		"value":     "v",
		"timestamp": ts,
	})

	assert.Equal(t, "ns", r.Namespace.String)
	assert.Equal(t, "k", r.Key.String)
	assert.Equal(t, "v", r.Value.String)
	assert.Equal(t, sql.NullTime{Time: ts, Valid: true}, r.Timestamp)
}

func TestMap_TextTimestamps(t *testing.T) {
	r := Map(map[string]any{"kv_timestamp": "2024-03-01 21:00:00 +0900"})
	require.True(t, r.Timestamp.Valid)
	assert.True(t, r.Timestamp.Time.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))

	r = Map(map[string]any{"kv_timestamp": []byte("2024-03-01 21:00:00")})
	require.True(t, r.Timestamp.Valid)
	assert.Equal(t, time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC), r.Timestamp.Time)

	r = Map(map[string]any{"kv_timestamp": "last tuesday"})
	assert.False(t, r.Timestamp.Valid)

	r = Map(map[string]any{"kv_timestamp": nil})
	assert.False(t, r.Timestamp.Valid)
}

func TestMap_SubsetProjection(t *testing.T) {
	r := Map(map[string]any{"kv_key": "only"})

	assert.True(t, r.Key.Valid)
	assert.False(t, r.Namespace.Valid)
	assert.False(t, r.Value.Valid)
}

func TestMap_NullAndForeignTypes(t *testing.T) {
	r := Map(map[string]any{"kv_key": int64(42), "kv_value": nil})

	assert.Equal(t, "42", r.Key.String)
	assert.False(t, r.Value.Valid)
}

func TestMap_EmptyRow(t *testing.T) {
	assert.Equal(t, Record{}, Map(nil))
}

func TestScan_SQLiteRows(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "rec.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE kv (kv_namespace TEXT, kv_key TEXT, kv_value TEXT, kv_timestamp TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO kv VALUES ('ns', 'a', '1', '2024-03-01 12:00:00 +0000'), ('ns', 'b', NULL, NULL)`)
	require.NoError(t, err)

	rows, err := db.Query(`SELECT kv_key, kv_value, kv_timestamp FROM kv ORDER BY kv_key`)
	require.NoError(t, err)
	defer rows.Close()

	var got []Record
	for rows.Next() {
		r, err := Scan(rows)
		require.NoError(t, err)
		got = append(got, r)
	}
	require.NoError(t, rows.Err())
	require.Len(t, got, 2)

	assert.Equal(t, "a", got[0].Key.String)
	assert.Equal(t, "1", got[0].Value.String)
	assert.False(t, got[0].Namespace.Valid)
	require.True(t, got[0].Timestamp.Valid)
	assert.True(t, got[0].Timestamp.Time.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "b", got[1].Key.String)
	assert.False(t, got[1].Value.Valid)
	assert.False(t, got[1].Timestamp.Valid)
}

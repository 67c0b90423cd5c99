// Package record maps raw result rows onto the canonical key-value record.
//
// Statements may project any subset of the columns, and the physical column
// names follow either the kv_ prefixed or the plain naming scheme. Missing
// columns map to an invalid (absent) field, never an error.
package record

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/sqlkv/internal/codec"
)

// Record is one stored (namespace, key) entry. Fields with Valid=false were
// not part of the row.
type Record struct {
	Namespace sql.NullString
	Key       sql.NullString
	Value     sql.NullString
	Timestamp sql.NullTime
}

var (
	namespaceCols = []string{"kv_namespace", "namespace"}
	keyCols       = []string{"kv_key", "key"}
	valueCols     = []string{"kv_value", "value"}
	timestampCols = []string{"kv_timestamp", "timestamp"}
)

// Map converts a column-name keyed row into a Record. Column names are
// matched case-insensitively against both naming schemes.
func Map(row map[string]any) Record {
	folded := make(map[string]any, len(row))
	for k, v := range row {
		folded[strings.ToLower(k)] = v
	}
	return Record{
		Namespace: stringField(folded, namespaceCols),
		Key:       stringField(folded, keyCols),
		Value:     stringField(folded, valueCols),
		Timestamp: timeField(folded, timestampCols),
	}
}

// Scanner is the subset of *sql.Rows needed by Scan.
type Scanner interface {
	Columns() ([]string, error)
	Scan(dest ...any) error
	Err() error
}

// Scan reads the current row and maps it.
func Scan(rows Scanner) (Record, error) {
	row := make(map[string]any)
	if err := sqlx.MapScan(rows, row); err != nil {
		return Record{}, fmt.Errorf("scan record: %w", err)
	}
	return Map(row), nil
}

func lookup(row map[string]any, names []string) (any, bool) {
	for _, n := range names {
		if v, ok := row[n]; ok {
			return v, true
		}
	}
	return nil, false
}

func stringField(row map[string]any, names []string) sql.NullString {
	v, ok := lookup(row, names)
	if !ok || v == nil {
		return sql.NullString{}
	}
	switch val := v.(type) {
	case string:
		return sql.NullString{String: val, Valid: true}
	case []byte:
		return sql.NullString{String: string(val), Valid: true}
	default:
		return sql.NullString{String: fmt.Sprint(val), Valid: true}
	}
}

// timeField accepts native date-times as well as the text forms written by
// backends without one. Naive text is read as UTC.
func timeField(row map[string]any, names []string) sql.NullTime {
	v, ok := lookup(row, names)
	if !ok {
		return sql.NullTime{}
	}
	var text string
	switch val := v.(type) {
	case time.Time:
		return sql.NullTime{Time: val, Valid: true}
	case string:
		text = val
	case []byte:
		text = string(val)
	default:
		return sql.NullTime{}
	}
	t, err := codec.ParseTime(text, time.UTC)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

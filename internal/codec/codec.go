// Package codec serializes stored values to the text column and back.
//
// Values are encoded as JSON. Date-time values anywhere inside the value use
// a fixed text form instead of RFC 3339:
//
//	time.Time        2006-01-02 15:04:05 -0700
//	civil.DateTime   2006-01-02 15:04:05
//
// An absent value (nil, a nil pointer/map/slice, or "") encodes to the empty
// string, and both "" and "null" decode to nil.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/golang-sql/civil"
	jsoniter "github.com/json-iterator/go"
)

const (
	// AwareLayout formats timezone-aware timestamps.
	AwareLayout = "2006-01-02 15:04:05 -0700"
	// NaiveLayout formats timestamps without a zone.
	NaiveLayout = "2006-01-02 15:04:05"
)

// ErrEmpty is returned by DecodeInto when the stored text holds no value.
var ErrEmpty = errors.New("codec: empty value")

// Codec encodes values and row timestamps for one time zone.
// A Codec is safe for concurrent use.
type Codec struct {
	api jsoniter.API
	loc *time.Location
}

// New returns a Codec stamping rows in loc. A nil loc means UTC.
func New(loc *time.Location) *Codec {
	if loc == nil {
		loc = time.UTC
	}
	api := jsoniter.Config{
		EscapeHTML:             false,
		SortMapKeys:            true,
		UseNumber:              true,
		ValidateJsonRawMessage: true,
	}.Froze()
	api.RegisterExtension(&timeExtension{loc: loc})
	return &Codec{api: api, loc: loc}
}

// Location returns the zone used for row timestamps.
func (c *Codec) Location() *time.Location {
	return c.loc
}

// Encode serializes v and returns the row timestamp for a write at now.
func (c *Codec) Encode(v any, now time.Time) (string, time.Time, error) {
	stamp := now.In(c.loc)
	if isAbsent(v) {
		return "", stamp, nil
	}
	text, err := c.api.MarshalToString(v)
	if err != nil {
		return "", stamp, fmt.Errorf("encode value: %w", err)
	}
	return text, stamp, nil
}

// Decode parses text into generic Go values: map[string]any, []any, string,
// bool, int64 and float64. Timestamps come back in their text form; use
// DecodeInto with time.Time or civil.DateTime fields to parse them.
func (c *Codec) Decode(text string) (any, error) {
	if text == "" {
		return nil, nil
	}
	var v any
	if err := c.api.UnmarshalFromString(text, &v); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return revive(v), nil
}

// DecodeInto parses text into dst. Timestamp fields accept both layouts.
func (c *Codec) DecodeInto(text string, dst any) error {
	if text == "" || text == "null" {
		return ErrEmpty
	}
	if err := c.api.UnmarshalFromString(text, dst); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	return nil
}

// FormatTime renders t in the aware layout.
func FormatTime(t time.Time) string {
	return t.Format(AwareLayout)
}

// FormatDateTime renders dt in the naive layout.
func FormatDateTime(dt civil.DateTime) string {
	return dt.In(time.UTC).Format(NaiveLayout)
}

// ParseTime accepts the aware layout, the naive layout (interpreted in loc)
// and RFC 3339. Offsets are kept as fixed zones, independent of the host's
// local zone.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(AwareLayout, s); err == nil {
		return fixed(t), nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(NaiveLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: unrecognized layout", s)
	}
	return fixed(t), nil
}

// fixed replaces the time.Local that time.Parse picks for offsets matching
// the host zone.
func fixed(t time.Time) time.Time {
	if t.Location() != time.Local {
		return t
	}
	_, offset := t.Zone()
	if offset == 0 {
		return t.In(time.UTC)
	}
	return t.In(time.FixedZone("", offset))
}

func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// revive walks a decoded tree converting json.Number to int64 or float64.
func revive(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, elem := range val {
			val[k] = revive(elem)
		}
		return val
	case []any:
		for i, elem := range val {
			val[i] = revive(elem)
		}
		return val
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return string(val)
	default:
		return v
	}
}

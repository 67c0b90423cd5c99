package codec

import (
	"testing"
	"time"

	"github.com/golang-sql/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jst = time.FixedZone("JST", 9*60*60)

func TestEncode_AbsentValues(t *testing.T) {
	c := New(nil)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var nilMap map[string]any
	var nilPtr *struct{}
	for name, v := range map[string]any{
		"nil":       nil,
		"empty":     "",
		"nil map":   nilMap,
		"nil ptr":   nilPtr,
		"nil slice": []int(nil),
	} {
		t.Run(name, func(t *testing.T) {
			text, _, err := c.Encode(v, now)
			require.NoError(t, err)
			assert.Equal(t, "", text)
		})
	}
}

func TestEncode_ZeroValuesArePreserved(t *testing.T) {
	c := New(nil)
	now := time.Now()

	text, _, err := c.Encode(0, now)
	require.NoError(t, err)
	assert.Equal(t, "0", text)

	text, _, err = c.Encode(false, now)
	require.NoError(t, err)
	assert.Equal(t, "false", text)

	text, _, err = c.Encode(map[string]any{}, now)
	require.NoError(t, err)
	assert.Equal(t, "{}", text)
}

func TestEncode_StampUsesLocation(t *testing.T) {
	c := New(jst)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	_, stamp, err := c.Encode("x", now)
	require.NoError(t, err)
	assert.Equal(t, jst, stamp.Location())
	assert.Equal(t, 21, stamp.Hour())
	assert.True(t, stamp.Equal(now))
}

func TestEncode_SortedKeysNoHTMLEscaping(t *testing.T) {
	c := New(nil)

	text, _, err := c.Encode(map[string]any{"b": "<x>", "a": 1}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":"<x>"}`, text)
}

func TestEncode_TimeLayouts(t *testing.T) {
	c := New(nil)

	type event struct {
		At    time.Time      `json:"at"`
		Local civil.DateTime `json:"local"`
	}
	v := event{
		At:    time.Date(2024, 1, 2, 3, 4, 5, 0, jst),
		Local: civil.DateTime{Date: civil.Date{Year: 2024, Month: time.January, Day: 2}, Time: civil.Time{Hour: 3, Minute: 4, Second: 5}},
	}

	text, _, err := c.Encode(v, time.Now())
	require.NoError(t, err)
	assert.Equal(t, `{"at":"2024-01-02 03:04:05 +0900","local":"2024-01-02 03:04:05"}`, text)
}

func TestEncode_NestedTimeInGenericValue(t *testing.T) {
	c := New(nil)
	at := time.Date(2023, 12, 31, 23, 59, 58, 0, time.UTC)

	text, _, err := c.Encode(map[string]any{"items": []any{at}}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, `{"items":["2023-12-31 23:59:58 +0000"]}`, text)
}

func TestDecode_Empty(t *testing.T) {
	c := New(nil)

	v, err := c.Decode("")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = c.Decode("null")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDecode_Numbers(t *testing.T) {
	c := New(nil)

	v, err := c.Decode(`{"i":9007199254740993,"f":1.5}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"i": int64(9007199254740993), "f": 1.5}, v)
}

func TestDecode_Invalid(t *testing.T) {
	c := New(nil)

	_, err := c.Decode(`{"a":`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode value")
}

func TestRoundTrip(t *testing.T) {
	c := New(nil)
	at := time.Date(2024, 2, 29, 8, 30, 0, 0, jst)
	naive := civil.DateTimeOf(time.Date(2024, 2, 29, 8, 30, 0, 0, time.UTC))

	in := map[string]any{
		"text":   "hi",
		"count":  int64(3),
		"ratio":  0.25,
		"ok":     true,
		"tags":   []any{"a", "b"},
		"nested": map[string]any{"at": at, "naive": naive},
	}

	text, _, err := c.Encode(in, time.Now())
	require.NoError(t, err)

	out, err := c.Decode(text)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"text":  "hi",
		"count": int64(3),
		"ratio": 0.25,
		"ok":    true,
		"tags":  []any{"a", "b"},
		"nested": map[string]any{
			"at":    "2024-02-29 08:30:00 +0900",
			"naive": "2024-02-29 08:30:00",
		},
	}, out)
}

func TestRoundTrip_TimestampShapedStrings(t *testing.T) {
	c := New(nil)

	for _, in := range []any{
		"2024-01-02 03:04:05",
		"2024-01-02 03:04:05 +0000",
		map[string]any{"note": "2024-01-02 03:04:05 +0000"},
		[]any{"2024-01-02 03:04:05", "2024-01-02 03:04:05 -0700"},
	} {
		text, _, err := c.Encode(in, time.Now())
		require.NoError(t, err)

		out, err := c.Decode(text)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestDecodeInto_Typed(t *testing.T) {
	c := New(jst)

	type event struct {
		Name  string         `json:"name"`
		At    time.Time      `json:"at"`
		Naive time.Time      `json:"naive"`
		Local civil.DateTime `json:"local"`
	}

	var ev event
	err := c.DecodeInto(`{"name":"launch","at":"2024-01-02 03:04:05 +0000","naive":"2024-01-02 03:04:05","local":"2024-01-02 03:04:05"}`, &ev)
	require.NoError(t, err)

	assert.Equal(t, "launch", ev.Name)
	assert.True(t, ev.At.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.True(t, ev.Naive.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, jst)))
	assert.Equal(t, civil.DateTimeOf(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)), ev.Local)
}

func TestDecodeInto_Empty(t *testing.T) {
	c := New(nil)
	var dst map[string]any

	assert.ErrorIs(t, c.DecodeInto("", &dst), ErrEmpty)
	assert.ErrorIs(t, c.DecodeInto("null", &dst), ErrEmpty)
}

func TestDecode_PlainStringsStayStrings(t *testing.T) {
	c := New(nil)

	v, err := c.Decode(`["2024-01-02","not a time at all, 25 chr"]`)
	require.NoError(t, err)
	assert.Equal(t, []any{"2024-01-02", "not a time at all, 25 chr"}, v)
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("2024-01-02T03:04:05Z", nil)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))

	_, err = ParseTime("yesterday", nil)
	assert.Error(t, err)
}

func TestParseTime_IndependentOfHostZone(t *testing.T) {
	host := time.Local
	time.Local = time.FixedZone("HOST", 9*3600)
	t.Cleanup(func() { time.Local = host })

	got, err := ParseTime("2024-01-02 03:04:05 +0900", nil)
	require.NoError(t, err)
	assert.NotSame(t, time.Local, got.Location())
	_, offset := got.Zone()
	assert.Equal(t, 9*3600, offset)

	time.Local = time.UTC
	got, err = ParseTime("2024-01-02 03:04:05 +0000", nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())

	got, err = ParseTime("2024-01-02T03:04:05Z", nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())
}

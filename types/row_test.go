package types_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxshaw/dbmodel/types"
)

func TestNormalizeRow(t *testing.T) {
	row := types.NormalizeRow(map[string]any{"name": []byte("bob"), "age": int64(7), "note": nil})

	assert.Equal(t, "bob", row["name"])
	assert.Equal(t, int64(7), row["age"])
	assert.True(t, row.Has("note"))
	assert.False(t, row.Has("missing"))
}

func TestRowAccessors(t *testing.T) {
	row := types.Row{"id": int64(3), "price": "9.5", "active": int64(1), "name": "x"}

	assert.Equal(t, 3, row.Int("id"))
	assert.Equal(t, int64(3), row.Int64("id"))
	assert.Equal(t, "3", row.String("id"))
	assert.InDelta(t, 9.5, row.Float64("price"), 0.0001)
	assert.True(t, row.Bool("active"))
	assert.Equal(t, "x", row.String("name"))
}

func TestRowTime(t *testing.T) {
	row := types.Row{"created_at": "2024-03-01 10:20:30"}

	got, err := row.Time("created_at")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 20, 30, 0, time.Local), got)

	now := time.Now()
	row["created_at"] = now
	got, err = row.Time("created_at")
	require.NoError(t, err)
	assert.Equal(t, now, got)
}

func TestRowsPluckAndKeyBy(t *testing.T) {
	rows := types.Rows{
		{"id": int64(1), "name": "a"},
		{"id": int64(2), "name": "b"},
	}

	assert.Equal(t, []any{"a", "b"}, rows.Pluck("name"))

	byID := rows.KeyBy("id")
	require.Len(t, byID, 2)
	assert.Equal(t, "b", byID["2"]["name"])
}

type profile struct {
	Tags []string `json:"tags"`
}

func TestJSON(t *testing.T) {
	j, err := types.NewJSON(profile{Tags: []string{"a", "b"}})
	require.NoError(t, err)

	v, err := j.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"tags":["a","b"]}`, v)

	row := types.Row{"profile": v}
	got, err := types.DecodeJSON[profile](row, "profile")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Tags)

	empty, err := types.DecodeJSON[profile](types.Row{}, "profile")
	require.NoError(t, err)
	assert.Nil(t, empty.Tags)
}

func TestDateTime(t *testing.T) {
	var dt types.DateTime
	require.NoError(t, dt.Scan("2024-03-01 10:20:30"))

	v, err := dt.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 10:20:30", v)
	assert.Equal(t, `"2024-03-01 10:20:30"`, dt.String())
	assert.False(t, dt.IsZero())
}

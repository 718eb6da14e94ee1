package qb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxshaw/dbmodel/qb"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		fields   string
		clauses  qb.Clauses
		sort     string
		limit    string
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "bare",
			wantSQL: "SELECT * FROM user",
		},
		{
			name:     "where",
			fields:   "id,name",
			clauses:  qb.Clauses{Where: []qb.Condition{qb.Eq("age", 18)}},
			wantSQL:  "SELECT id,name FROM user WHERE age = ?",
			wantArgs: []any{18},
		},
		{
			name: "append only",
			clauses: qb.Clauses{
				Append:     []string{"(a = ? OR b = ?)"},
				AppendArgs: []any{1, 2},
			},
			wantSQL:  "SELECT * FROM user WHERE (a = ? OR b = ?)",
			wantArgs: []any{1, 2},
		},
		{
			name:   "everything",
			fields: "user.id, count(*) AS n",
			clauses: qb.Clauses{
				Joins:      []qb.Join{{Type: qb.LeftJoin, Table: "orders", Left: "orders.user_id", Op: "=", Right: "user.id"}},
				Where:      []qb.Condition{qb.Eq("user.status", 1), qb.In("user.level", []int{2, 3}).Or()},
				Append:     []string{"AND user.created_at > ?"},
				AppendArgs: []any{"2024-01-01"},
				GroupBy:    []string{"user.id"},
				Having:     []qb.Condition{qb.Gt("n", 5)},
			},
			sort:  "n desc",
			limit: "0, 10",
			wantSQL: "SELECT user.id, count(*) AS n FROM user LEFT JOIN orders ON orders.user_id = user.id " +
				"WHERE user.status = ? OR user.level IN (?, ?) AND user.created_at > ? " +
				"GROUP BY user.id HAVING n > ? ORDER BY n desc LIMIT 0, 10",
			wantArgs: []any{1, 2, 3, "2024-01-01", 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sq, args, err := qb.Select("user", tt.fields, tt.clauses, tt.sort, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sq)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestWrite(t *testing.T) {
	values := qb.Set("name", "a").Set("age", 5)

	tests := []struct {
		verb qb.Verb
		want string
	}{
		{verb: qb.InsertVerb, want: "INSERT INTO t SET name = ?, age = ?"},
		{verb: qb.ReplaceVerb, want: "REPLACE INTO t SET name = ?, age = ?"},
		{verb: qb.InsertIgnoreVerb, want: "INSERT IGNORE INTO t SET name = ?, age = ?"},
	}

	for _, tt := range tests {
		t.Run(string(tt.verb), func(t *testing.T) {
			sq, args, err := qb.Write(tt.verb, "t", values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sq)
			assert.Equal(t, []any{"a", 5}, args)
		})
	}

	_, _, err := qb.Write(qb.InsertVerb, "t", nil)
	assert.ErrorIs(t, err, qb.ErrUsage)
}

func TestUpdate(t *testing.T) {
	sq, args, err := qb.Update("t", qb.Set("age", 6), qb.Clauses{Where: []qb.Condition{qb.Eq("age", 1)}})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE t SET age = ? WHERE age = ?", sq)
	assert.Equal(t, []any{6, 1}, args)

	sq, args, err = qb.Update("t", qb.Set("age", 6), qb.Clauses{})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE t SET age = ?", sq)
	assert.Equal(t, []any{6}, args)
}

func TestDelete(t *testing.T) {
	sq, args, err := qb.Delete("t", qb.Clauses{
		Where:      []qb.Condition{qb.Eq("id", 3)},
		Append:     []string{"AND deleted_at IS NULL"},
		AppendArgs: nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM t WHERE id = ? AND deleted_at IS NULL", sq)
	assert.Equal(t, []any{3}, args)
}

func TestIncrementDecrement(t *testing.T) {
	c := qb.Clauses{Where: []qb.Condition{qb.Eq("id", 7)}}

	sq, args, err := qb.Increment("goods", "stock", 2, c)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE goods SET stock = stock + 2 WHERE id = ?", sq)
	assert.Equal(t, []any{7}, args)

	sq, args, err = qb.Decrement("goods", "stock", 3, c)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE goods SET stock = IF(stock >= 3, stock - 3, 0) WHERE id = ?", sq)
	assert.Equal(t, []any{7}, args)
}

func TestJoin(t *testing.T) {
	j := qb.Join{Type: "inner", Table: "b", Left: "a.id", Op: "=", Right: "b.a_id"}
	assert.Equal(t, "INNER JOIN b ON a.id = b.a_id", j.String())

	j = qb.Join{Table: "b", Left: "a.id", Right: "b.a_id"}
	assert.Equal(t, "LEFT JOIN b ON a.id = b.a_id", j.String())
}

func TestClausesIsEmpty(t *testing.T) {
	assert.True(t, qb.Clauses{}.IsEmpty())
	assert.False(t, qb.Clauses{GroupBy: []string{"a"}}.IsEmpty())
}

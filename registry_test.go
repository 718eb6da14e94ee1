package dbmodel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()

	r := NewRegistry(map[string]Config{
		DefaultConnection: {Driver: "sqlite", DBName: ":memory:"},
		"broken":          {Driver: "mysql", DBName: "x"},
	}, WithLogger(zaptest.NewLogger(t)))

	a, err := r.Connection(ctx, "")
	require.NoError(t, err)
	b, err := r.Connection(ctx, DefaultConnection)
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = r.Connection(ctx, "nope")
	assert.ErrorIs(t, err, ErrConfigNotFound)

	_, err = r.Connection(ctx, "broken")
	assert.Equal(t, CodeConfigMissing, CodeOf(err))

	m, err := r.Model(ctx, Definition{Table: "user"})
	require.NoError(t, err)
	_, err = m.Exec(ctx, "CREATE TABLE user (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)
	_, err = m.Exec(ctx, "INSERT INTO user (name) VALUES (?)", "ann")
	require.NoError(t, err)

	row, err := m.GetRowByID(ctx, 1, "name")
	require.NoError(t, err)
	assert.Equal(t, "ann", row.String("name"))

	require.NoError(t, r.Close())

	c, err := r.Connection(ctx, "")
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	require.NoError(t, r.Close())
}

func TestInferTableName(t *testing.T) {
	tests := map[string]string{
		"UserModel":        "user",
		"UserOrderModel":   "user_order",
		"model.OrderModel": "order",
		"Account":          "account",
		"ModelHistory":     "model_history",
	}

	for in, want := range tests {
		assert.Equal(t, want, InferTableName(in), in)
	}
}

type articleModel struct {
	ArticleID int64  `db:"article_id;pk=auto"`
	Title     string `db:"title"`
	Body      string
	Draft     bool `db:"-"`
	internal  string
}

type tagged struct{}

func (tagged) Definition() Definition {
	return Definition{Table: "tags", PrimaryKey: "tag_id"}
}

func TestDefinitionOf(t *testing.T) {
	def := DefinitionOf(&articleModel{})
	assert.Equal(t, Definition{
		Table:      "article",
		PrimaryKey: "article_id",
		Columns:    []string{"article_id", "title", "body"},
	}, def)

	assert.Equal(t, "tags", DefinitionOf(tagged{}).Table)
}

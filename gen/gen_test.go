package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const models = `package model

import "github.com/maxshaw/dbmodel"

type UserOrderModel struct {
	ID     int64 ` + "`db:\"id;pk=auto\"`" + `
	Amount int64 ` + "`db:\"amount\"`" + `
	Note   string
	Skip   string ` + "`db:\"-\"`" + `
	secret string
}

type Account struct {
	UID  int64 ` + "`db:\"uid;pk\"`" + `
	Name string
}

type Legacy struct {
	Key string
}

func (*Legacy) TableName() string { return "legacy_items" }

type Helper struct {
	Name string
}

type CachedModel struct {
	ID int64
}

func (CachedModel) Definition() dbmodel.Definition {
	return dbmodel.Definition{Table: "cached"}
}
`

func writeModels(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models.go"), []byte(models), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models_test.go"), []byte("package model\n\ntype FakeModel struct{}\n"), 0o644))
	return dir
}

func TestGenerate(t *testing.T) {
	dir := writeModels(t)

	res, err := Generate(Options{Dir: dir, Connection: "shop"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, DefaultOutput), res.File)
	assert.Equal(t, "model", res.Package)
	assert.Equal(t, []Model{
		{Name: "Account", Table: "account", PrimaryKey: "uid", Columns: []string{"uid", "name"}},
		{Name: "Legacy", Table: "legacy_items", PrimaryKey: "id", Columns: []string{"key"}},
		{Name: "UserOrderModel", Table: "user_order", PrimaryKey: "id", Columns: []string{"id", "amount", "note"}},
	}, res.Models)

	src, err := os.ReadFile(res.File)
	require.NoError(t, err)

	out := string(src)
	assert.Contains(t, out, "// Code generated by dbmodel gen. DO NOT EDIT.")
	assert.Contains(t, out, `"github.com/maxshaw/dbmodel"`)
	assert.Contains(t, out, "func (UserOrderModel) Definition() dbmodel.Definition {")
	assert.Regexp(t, `Table:\s+"user_order"`, out)
	assert.Regexp(t, `Connection:\s+"shop"`, out)
	assert.Regexp(t, `Columns:\s+\[\]string\{"id", "amount", "note"\}`, out)
	assert.NotContains(t, out, "CachedModel")
	assert.NotContains(t, out, "Helper")
	assert.NotContains(t, out, "FakeModel")

	// The generated file is not scanned on the next run.
	again, err := Generate(Options{Dir: dir})
	require.NoError(t, err)
	assert.Len(t, again.Models, 3)

	src, err = os.ReadFile(again.File)
	require.NoError(t, err)
	assert.NotContains(t, string(src), "Connection:")
}

func TestGenerate_Errors(t *testing.T) {
	_, err := Generate(Options{Dir: t.TempDir()})
	assert.ErrorContains(t, err, "is empty")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.go"), []byte("package x\n\ntype Helper struct{ A int }\n"), 0o644))

	_, err = Generate(Options{Dir: dir})
	assert.ErrorContains(t, err, "no models found")
}

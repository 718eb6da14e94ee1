package dbmodel

import (
	"context"

	"github.com/maxshaw/dbmodel/qb"
)

// Insert writes one row and returns the affected row count. The generated
// id is available from LastInsertID afterwards.
func (m *Model) Insert(ctx context.Context, values qb.Values) (int64, error) {
	return m.write(ctx, qb.InsertVerb, values)
}

func (m *Model) Replace(ctx context.Context, values qb.Values) (int64, error) {
	return m.write(ctx, qb.ReplaceVerb, values)
}

func (m *Model) InsertIgnore(ctx context.Context, values qb.Values) (int64, error) {
	return m.write(ctx, qb.InsertIgnoreVerb, values)
}

// InsertStruct inserts the db-tagged fields of s. A zero `pk=auto` field is left out.
func (m *Model) InsertStruct(ctx context.Context, s any) (int64, error) {
	values, err := qb.FromStruct(s)
	if err != nil {
		return 0, usage(err)
	}
	return m.Insert(ctx, values)
}

func (m *Model) write(ctx context.Context, verb qb.Verb, values qb.Values) (int64, error) {
	if m.def.Table == "" {
		return 0, newError(CodeUsage, nil, "model has no table")
	}

	query, args, err := m.dialect().Write(verb, m.def.Table, values)
	if err != nil {
		return 0, usage(err)
	}

	return m.exec.Exec(ctx, query, args...)
}

package dbmodel

import (
	"context"
	"reflect"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/maxshaw/dbmodel/qb"
	"github.com/maxshaw/dbmodel/types"
)

func (m *Model) JoinTable(typ qb.JoinType, table, left, op, right string) *Model {
	m.clauses.Joins = append(m.clauses.Joins, qb.Join{Type: typ, Table: table, Left: left, Op: op, Right: right})
	return m
}

func (m *Model) LeftJoin(table, left, op, right string) *Model {
	return m.JoinTable(qb.LeftJoin, table, left, op, right)
}

func (m *Model) InnerJoin(table, left, op, right string) *Model {
	return m.JoinTable(qb.InnerJoin, table, left, op, right)
}

func (m *Model) RightJoin(table, left, op, right string) *Model {
	return m.JoinTable(qb.RightJoin, table, left, op, right)
}

// Condition appends one where condition. The first condition of a statement
// never renders its boolean keyword.
func (m *Model) Condition(b qb.Bool, field, op string, value any) *Model {
	if field == "" {
		return m.fail(newError(CodeUsage, nil, "where field is empty"))
	}
	m.clauses.Where = append(m.clauses.Where, qb.Condition{Bool: b, Field: field, Op: op, Value: value})
	return m
}

// Conditions appends conditions built with the qb constructors.
func (m *Model) Conditions(conds ...qb.Condition) *Model {
	for _, c := range conds {
		m.Condition(c.Bool, c.Field, c.Op, c.Value)
	}
	return m
}

func (m *Model) Where(field string, value any) *Model {
	return m.Condition(qb.And, field, "=", value)
}

func (m *Model) WhereOp(field, op string, value any) *Model {
	return m.Condition(qb.And, field, op, value)
}

func (m *Model) AndWhere(field string, value any) *Model {
	return m.Condition(qb.And, field, "=", value)
}

func (m *Model) AndWhereOp(field, op string, value any) *Model {
	return m.Condition(qb.And, field, op, value)
}

func (m *Model) OrWhere(field string, value any) *Model {
	return m.Condition(qb.Or, field, "=", value)
}

func (m *Model) OrWhereOp(field, op string, value any) *Model {
	return m.Condition(qb.Or, field, op, value)
}

// WhereArgs takes the loose (field, value), (bool|field, field|op, value) or
// (bool, field, op, value) forms. Any other shape is recorded as a usage
// error and returned by the next terminal call.
func (m *Model) WhereArgs(args ...any) *Model {
	c, err := qb.Parse(args...)
	if err != nil {
		return m.fail(err)
	}
	m.clauses.Where = append(m.clauses.Where, c)
	return m
}

// AppendWhere adds a raw fragment after the where conditions. Its args bind
// after the condition args.
func (m *Model) AppendWhere(fragment string, args ...any) *Model {
	if fragment = strings.TrimSpace(fragment); fragment == "" {
		return m
	}
	m.clauses.Append = append(m.clauses.Append, fragment)
	m.clauses.AppendArgs = append(m.clauses.AppendArgs, args...)
	return m
}

func (m *Model) HavingCondition(b qb.Bool, field, op string, value any) *Model {
	if field == "" {
		return m.fail(newError(CodeUsage, nil, "having field is empty"))
	}
	m.clauses.Having = append(m.clauses.Having, qb.Condition{Bool: b, Field: field, Op: op, Value: value})
	return m
}

func (m *Model) Having(field string, value any) *Model {
	return m.HavingCondition(qb.And, field, "=", value)
}

func (m *Model) HavingOp(field, op string, value any) *Model {
	return m.HavingCondition(qb.And, field, op, value)
}

func (m *Model) AndHaving(field string, value any) *Model {
	return m.HavingCondition(qb.And, field, "=", value)
}

func (m *Model) AndHavingOp(field, op string, value any) *Model {
	return m.HavingCondition(qb.And, field, op, value)
}

func (m *Model) OrHaving(field string, value any) *Model {
	return m.HavingCondition(qb.Or, field, "=", value)
}

func (m *Model) OrHavingOp(field, op string, value any) *Model {
	return m.HavingCondition(qb.Or, field, op, value)
}

func (m *Model) HavingArgs(args ...any) *Model {
	c, err := qb.Parse(args...)
	if err != nil {
		return m.fail(err)
	}
	m.clauses.Having = append(m.clauses.Having, c)
	return m
}

// GroupBy accepts column names or comma separated lists of them.
func (m *Model) GroupBy(fields ...string) *Model {
	m.clauses.GroupBy = append(m.clauses.GroupBy, splitFields(fields...)...)
	return m
}

// MakeQuery renders the select for the accumulated state and resets it.
// Empty fields select *; sort and limit are copied verbatim after ORDER BY
// and LIMIT.
func (m *Model) MakeQuery(fields, sort, limit string) (string, []any, error) {
	c, err := m.take()
	if err != nil {
		return "", nil, err
	}

	query, args, err := qb.Select(m.def.Table, fields, c, sort, limit)
	return query, args, usage(err)
}

func (m *Model) GetRows(ctx context.Context, fields, sort, limit string) (types.Rows, error) {
	query, args, err := m.MakeQuery(fields, sort, limit)
	if err != nil {
		return nil, err
	}
	return m.exec.Query(ctx, query, args...)
}

// GetRowsByKey indexes the result by primary key. fields must include it.
func (m *Model) GetRowsByKey(ctx context.Context, fields, sort, limit string) (map[string]types.Row, error) {
	query, args, err := m.MakeQuery(fields, sort, limit)
	if err != nil {
		return nil, err
	}
	return m.exec.GetRowsByKey(ctx, m.def.PrimaryKey, query, args...)
}

func (m *Model) GetRow(ctx context.Context, fields string) (types.Row, error) {
	query, args, err := m.MakeQuery(fields, "", "")
	if err != nil {
		return nil, err
	}
	return m.exec.GetRow(ctx, query, args...)
}

func (m *Model) GetOne(ctx context.Context, field string) (any, error) {
	query, args, err := m.MakeQuery(field, "", "")
	if err != nil {
		return nil, err
	}
	return m.exec.GetOne(ctx, query, args...)
}

func (m *Model) GetCount(ctx context.Context) (int64, error) {
	one, err := m.GetOne(ctx, "COUNT(*)")
	if err != nil {
		return 0, err
	}
	return cast.ToInt64E(one)
}

// Pluck returns one column of every matching row.
func (m *Model) Pluck(ctx context.Context, field string) ([]any, error) {
	rows, err := m.GetRows(ctx, field, "", "")
	if err != nil {
		return nil, err
	}
	return rows.Pluck(field), nil
}

func (m *Model) GetRowByID(ctx context.Context, id any, fields string) (types.Row, error) {
	return m.Where(m.def.PrimaryKey, id).GetRow(ctx, fields)
}

func (m *Model) GetFieldByID(ctx context.Context, id any, field string) (any, error) {
	return m.Where(m.def.PrimaryKey, id).GetOne(ctx, field)
}

// GetRowsByIDs takes a comma separated string or a slice of ids. No ids
// gives an empty result without touching the database.
func (m *Model) GetRowsByIDs(ctx context.Context, ids any, fields string) (types.Rows, error) {
	list := idList(ids)
	if len(list) == 0 {
		_, err := m.take()
		if err != nil {
			return nil, err
		}
		return types.Rows{}, nil
	}
	return m.Condition(qb.And, m.def.PrimaryKey, "IN", list).GetRows(ctx, fields, "", "")
}

// Columns lists the table columns minus excepts. The Definition answers when
// it carries columns, the database otherwise.
func (m *Model) Columns(ctx context.Context, excepts ...string) ([]string, error) {
	cols := m.def.Columns
	if len(cols) == 0 {
		if m.def.Table == "" {
			return nil, newError(CodeUsage, nil, "model has no table")
		}

		query, args, col := m.dialect().Columns(m.def.Table)

		rows, err := m.exec.Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		cols = lo.Map(rows, func(r types.Row, _ int) string {
			return r.String(col)
		})
	}

	return lo.Without(cols, excepts...), nil
}

func splitFields(fields ...string) []string {
	var out []string
	for _, f := range fields {
		for _, p := range strings.Split(f, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func idList(ids any) []any {
	switch v := ids.(type) {
	case nil:
		return nil
	case string:
		return lo.Map(splitFields(v), func(s string, _ int) any { return s })
	case []byte:
		return idList(string(v))
	}

	rv := reflect.ValueOf(ids)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{ids}
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

package dbmodel

import (
	"context"

	"github.com/maxshaw/dbmodel/qb"
)

// Update sets values on every row matching the accumulated conditions and
// returns the affected row count. Without conditions it updates the whole table.
func (m *Model) Update(ctx context.Context, values qb.Values) (int64, error) {
	c, err := m.take()
	if err != nil {
		return 0, err
	}

	query, args, err := qb.Update(m.def.Table, values, c)
	if err != nil {
		return 0, usage(err)
	}

	return m.exec.Exec(ctx, query, args...)
}

// Delete removes every row matching the accumulated conditions.
func (m *Model) Delete(ctx context.Context) (int64, error) {
	c, err := m.take()
	if err != nil {
		return 0, err
	}

	query, args, err := qb.Delete(m.def.Table, c)
	if err != nil {
		return 0, usage(err)
	}

	return m.exec.Exec(ctx, query, args...)
}

func (m *Model) UpdateByID(ctx context.Context, id any, values qb.Values) (int64, error) {
	return m.Where(m.def.PrimaryKey, id).Update(ctx, values)
}

func (m *Model) DeleteByID(ctx context.Context, id any) (int64, error) {
	return m.Where(m.def.PrimaryKey, id).Delete(ctx)
}

// Increase adds delta to field on the row with the given id.
func (m *Model) Increase(ctx context.Context, id any, field string, delta int64) (int64, error) {
	return m.step(ctx, id, field, delta, qb.Increment)
}

// Decrease subtracts delta from field on the row with the given id. The
// result never goes below zero.
func (m *Model) Decrease(ctx context.Context, id any, field string, delta int64) (int64, error) {
	return m.step(ctx, id, field, delta, m.dialect().Decrement)
}

type stepFunc func(table, field string, delta int64, c qb.Clauses) (string, []any, error)

func (m *Model) step(ctx context.Context, id any, field string, delta int64, render stepFunc) (int64, error) {
	if field == "" {
		m.fail(newError(CodeUsage, nil, "step field is empty"))
	}
	if delta < 0 {
		m.fail(newError(CodeUsage, nil, "step delta must not be negative, got %d", delta))
	}

	c, err := m.Where(m.def.PrimaryKey, id).take()
	if err != nil {
		return 0, err
	}

	query, args, err := render(m.def.Table, field, delta, c)
	if err != nil {
		return 0, usage(err)
	}

	return m.exec.Exec(ctx, query, args...)
}

package dbmodel

import (
	"context"

	"github.com/pkg/errors"

	"github.com/maxshaw/dbmodel/types"
)

// Exec runs a raw statement on the model's connection. The accumulated state is left alone.
func (m *Model) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return m.exec.Exec(ctx, query, args...)
}

func (m *Model) Query(ctx context.Context, query string, args ...any) (types.Rows, error) {
	return m.exec.Query(ctx, query, args...)
}

func (m *Model) LastInsertID() int64 {
	return m.exec.LastInsertID()
}

func (m *Model) LastSQL() string {
	return m.exec.LastSQL()
}

func (m *Model) BeginTransaction(ctx context.Context) error {
	return m.exec.Begin(ctx)
}

func (m *Model) Commit() error {
	return m.exec.Commit()
}

func (m *Model) Rollback() error {
	return m.exec.Rollback()
}

// Transaction runs fn inside a transaction on the model's connection.
func (m *Model) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return transaction(ctx, m.exec, fn)
}

// transaction rolls back when fn returns an error or panics and commits otherwise.
func transaction(ctx context.Context, exec Executor, fn func(ctx context.Context) error) error {
	if err := exec.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = exec.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx); err != nil {
		if rbErr := exec.Rollback(); rbErr != nil {
			return errors.Wrapf(rbErr, "rollback after %v", err)
		}
		return err
	}

	return exec.Commit()
}

// Package dbmodel is a small Active-Record style data-access layer: a
// Connection wrapping one database handle per configuration name, and a Model
// that accumulates where/join/group/having state, renders one statement with
// its bind list, runs it through the Connection and then forgets the state.
package dbmodel

import (
	"context"

	"go.uber.org/zap"

	"github.com/maxshaw/dbmodel/types"
)

// Executor is the part of a Connection a Model runs its statements through.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (types.Rows, error)
	GetRowsByKey(ctx context.Context, key, query string, args ...any) (map[string]types.Row, error)
	GetRow(ctx context.Context, query string, args ...any) (types.Row, error)
	GetOne(ctx context.Context, query string, args ...any) (any, error)

	LastInsertID() int64
	LastSQL() string

	// Driver is the database/sql driver name; it selects the write dialect.
	Driver() string

	Begin(ctx context.Context) error
	Commit() error
	Rollback() error
}

// Definer is implemented by model types that know their own table.
type Definer interface {
	Definition() Definition
}

type options struct {
	logger *zap.Logger
}

type Option func(*options)

// WithLogger sets the logger statements are reported to. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

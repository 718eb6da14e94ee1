package dbmodel

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Registry opens at most one Connection per configuration name and closes
// them all on Close. Create it at startup and pass it to whatever builds models.
type Registry struct {
	configs map[string]Config
	opts    []Option

	mu    sync.Mutex
	conns map[string]*Connection
}

func NewRegistry(configs map[string]Config, opts ...Option) *Registry {
	return &Registry{
		configs: configs,
		opts:    opts,
		conns:   make(map[string]*Connection),
	}
}

// Connection returns the connection for name, opening it on first use.
func (r *Registry) Connection(ctx context.Context, name string) (*Connection, error) {
	if name == "" {
		name = DefaultConnection
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.conns[name]; ok {
		return conn, nil
	}

	cfg, ok := r.configs[name]
	if !ok {
		return nil, newError(CodeConfigNotFound, nil, "database config %q is not defined", name)
	}

	conn, err := Open(ctx, cfg, r.opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "database config %q", name)
	}

	r.conns[name] = conn
	return conn, nil
}

// Model binds def to the connection it names.
func (r *Registry) Model(ctx context.Context, def Definition) (*Model, error) {
	conn, err := r.Connection(ctx, def.Connection)
	if err != nil {
		return nil, err
	}
	return NewModel(conn, def), nil
}

// Close closes every opened connection. The registry can be reused afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	for name, conn := range r.conns {
		err = multierr.Append(err, errors.Wrapf(conn.Close(), "close %q", name))
		delete(r.conns, name)
	}
	return err
}

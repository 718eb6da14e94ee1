package dbmodel

import (
	"slices"

	"github.com/maxshaw/dbmodel/qb"
)

// Definition is everything a Model needs to know about its table. It is
// computed once, by hand, with DefinitionOf, or by the gen tool.
type Definition struct {
	Table      string
	PrimaryKey string

	// Connection is the configuration name in a Registry; empty means "default".
	Connection string

	// Columns, when set, answers Model.Columns without asking the database.
	Columns []string
}

// Model accumulates the clauses of one statement at a time. Every terminal
// call (MakeQuery and everything built on it, Update, Delete, Increase,
// Decrease) consumes the accumulated state and leaves the model empty, even
// when it fails. A Model is not safe for concurrent use.
type Model struct {
	exec Executor
	def  Definition

	clauses qb.Clauses
	err     error
}

func NewModel(exec Executor, def Definition) *Model {
	if def.PrimaryKey == "" {
		def.PrimaryKey = "id"
	}
	return &Model{exec: exec, def: def}
}

func (m *Model) Table() string {
	return m.def.Table
}

func (m *Model) PrimaryKey() string {
	return m.def.PrimaryKey
}

func (m *Model) Definition() Definition {
	return m.def
}

// Clauses returns a copy of the state accumulated so far.
func (m *Model) Clauses() qb.Clauses {
	c := m.clauses
	return qb.Clauses{
		Joins:      slices.Clone(c.Joins),
		Where:      slices.Clone(c.Where),
		Append:     slices.Clone(c.Append),
		AppendArgs: slices.Clone(c.AppendArgs),
		GroupBy:    slices.Clone(c.GroupBy),
		Having:     slices.Clone(c.Having),
	}
}

// Err is the first error recorded while accumulating, if any.
func (m *Model) Err() error {
	return m.err
}

// Reset drops the accumulated state and any recorded error.
func (m *Model) Reset() *Model {
	m.clauses = qb.Clauses{}
	m.err = nil
	return m
}

func (m *Model) dialect() qb.Dialect {
	return qb.DialectOf(m.exec.Driver())
}

func (m *Model) fail(err error) *Model {
	if m.err == nil {
		m.err = usage(err)
	}
	return m
}

// take hands over the accumulated state and the recorded error, and resets the model.
func (m *Model) take() (qb.Clauses, error) {
	c, err := m.clauses, m.err
	m.Reset()

	if err == nil && m.def.Table == "" {
		err = newError(CodeUsage, nil, "model has no table")
	}

	return c, err
}

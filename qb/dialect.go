package qb

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnsupported is wrapped when a statement has no form in a dialect.
var ErrUnsupported = errors.New("qb: unsupported by dialect")

// Dialect picks the write syntax of a driver. Selects, updates and deletes
// render the same everywhere.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// DialectOf maps a database/sql driver name to its dialect. Unknown drivers get MySQL.
func DialectOf(driver string) Dialect {
	switch driver {
	case string(Postgres):
		return Postgres
	case string(SQLite):
		return SQLite
	default:
		return MySQL
	}
}

// Write renders an insert-family statement. MySQL keeps the
// "<VERB> INTO t SET a = ?" form; the others use a column list.
func (d Dialect) Write(verb Verb, table string, values Values) (string, []any, error) {
	if d == MySQL {
		return Write(verb, table, values)
	}

	if len(values) == 0 {
		return "", nil, errors.Wrapf(ErrUsage, "%s without values", verb)
	}

	var prefix, suffix string
	switch {
	case verb == InsertVerb:
		prefix = "INSERT"
	case verb == InsertIgnoreVerb && d == SQLite:
		prefix = "INSERT OR IGNORE"
	case verb == InsertIgnoreVerb && d == Postgres:
		prefix, suffix = "INSERT", "ON CONFLICT DO NOTHING"
	case verb == ReplaceVerb && d == SQLite:
		prefix = "REPLACE"
	default:
		return "", nil, errors.Wrapf(ErrUnsupported, "%s on %s", verb, d)
	}

	holders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")

	return join(prefix+" INTO "+table, "("+strings.Join(values.Columns(), ", ")+")",
		"VALUES ("+holders+")", suffix), values.Args(), nil
}

// Decrement never takes field below zero.
func (d Dialect) Decrement(table, field string, delta int64, c Clauses) (string, []any, error) {
	if d == MySQL {
		return Decrement(table, field, delta, c)
	}

	n := strconv.FormatInt(delta, 10)
	return step(table, field+" = CASE WHEN "+field+" >= "+n+" THEN "+field+" - "+n+" ELSE 0 END", c)
}

// Columns renders the statement listing the columns of table, and the result
// column holding each name.
func (d Dialect) Columns(table string) (string, []any, string) {
	switch d {
	case SQLite:
		return "PRAGMA table_info(" + table + ")", nil, "name"
	case Postgres:
		return "SELECT column_name FROM information_schema.columns WHERE table_name = ? ORDER BY ordinal_position",
			[]any{table}, "column_name"
	default:
		return "DESCRIBE " + table, nil, "Field"
	}
}

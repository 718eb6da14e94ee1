package qb

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Clauses is the accumulated state of one statement.
type Clauses struct {
	Joins      []Join
	Where      []Condition
	Append     []string
	AppendArgs []any
	GroupBy    []string
	Having     []Condition
}

func (c Clauses) IsEmpty() bool {
	return len(c.Joins) == 0 && len(c.Where) == 0 && len(c.Append) == 0 &&
		len(c.AppendArgs) == 0 && len(c.GroupBy) == 0 && len(c.Having) == 0
}

// WhereSQL renders "WHERE <conditions> <appended>", or "" when both are empty.
// Args are the condition args followed by the appended args.
func (c Clauses) WhereSQL() (string, []any, error) {
	cond, args, err := Build(c.Where...)
	if err != nil {
		return "", nil, err
	}

	where := strings.TrimSpace(cond + " " + strings.Join(c.Append, " "))
	if where == "" {
		return "", nil, nil
	}

	return "WHERE " + where, append(args, c.AppendArgs...), nil
}

func (c Clauses) HavingSQL() (string, []any, error) {
	cond, args, err := Build(c.Having...)
	if err != nil || cond == "" {
		return "", nil, err
	}
	return "HAVING " + cond, args, nil
}

func (c Clauses) GroupBySQL() string {
	if len(c.GroupBy) == 0 {
		return ""
	}
	return "GROUP BY " + strings.Join(c.GroupBy, ", ")
}

func (c Clauses) JoinSQL() string {
	return strings.Join(lo.Map(c.Joins, func(j Join, _ int) string { return j.String() }), " ")
}

// Select renders
//
//	SELECT <fields> FROM <table> <joins> WHERE .. GROUP BY .. HAVING .. ORDER BY <sort> LIMIT <limit>
//
// omitting every clause whose source is empty. fields defaults to "*".
func Select(table, fields string, c Clauses, sort, limit string) (string, []any, error) {
	if fields = strings.TrimSpace(fields); fields == "" {
		fields = "*"
	}

	where, args, err := c.WhereSQL()
	if err != nil {
		return "", nil, err
	}

	having, havingArgs, err := c.HavingSQL()
	if err != nil {
		return "", nil, err
	}

	var order, lim string
	if sort = strings.TrimSpace(sort); sort != "" {
		order = "ORDER BY " + sort
	}
	if limit = strings.TrimSpace(limit); limit != "" {
		lim = "LIMIT " + limit
	}

	sq := join("SELECT "+fields, "FROM "+table, c.JoinSQL(), where, c.GroupBySQL(), having, order, lim)

	return sq, append(args, havingArgs...), nil
}

type Verb string

const (
	InsertVerb       Verb = "INSERT"
	ReplaceVerb      Verb = "REPLACE"
	InsertIgnoreVerb Verb = "INSERT IGNORE"
)

// Write renders "<VERB> INTO <table> SET a = ?, b = ?".
func Write(verb Verb, table string, values Values) (string, []any, error) {
	if len(values) == 0 {
		return "", nil, errors.Wrapf(ErrUsage, "%s without values", verb)
	}

	pairs, args := values.Assignments()

	return string(verb) + " INTO " + table + " SET " + pairs, args, nil
}

// Update renders "UPDATE <table> SET .. WHERE ..". Assignment args come first.
func Update(table string, values Values, c Clauses) (string, []any, error) {
	if len(values) == 0 {
		return "", nil, errors.Wrap(ErrUsage, "UPDATE without values")
	}

	where, whereArgs, err := c.WhereSQL()
	if err != nil {
		return "", nil, err
	}

	pairs, args := values.Assignments()

	return join("UPDATE "+table, "SET "+pairs, where), append(args, whereArgs...), nil
}

func Delete(table string, c Clauses) (string, []any, error) {
	where, args, err := c.WhereSQL()
	if err != nil {
		return "", nil, err
	}
	return join("DELETE FROM "+table, where), args, nil
}

// Increment renders "UPDATE <table> SET f = f + delta WHERE ..".
func Increment(table, field string, delta int64, c Clauses) (string, []any, error) {
	d := strconv.FormatInt(delta, 10)
	return step(table, field+" = "+field+" + "+d, c)
}

// Decrement never takes field below zero: a delta larger than the current
// value sets it to 0.
func Decrement(table, field string, delta int64, c Clauses) (string, []any, error) {
	d := strconv.FormatInt(delta, 10)
	return step(table, field+" = IF("+field+" >= "+d+", "+field+" - "+d+", 0)", c)
}

func step(table, set string, c Clauses) (string, []any, error) {
	where, args, err := c.WhereSQL()
	if err != nil {
		return "", nil, err
	}
	return join("UPDATE "+table, "SET "+set, where), args, nil
}

func join(parts ...string) string {
	return strings.Join(lo.Filter(parts, func(s string, _ int) bool { return s != "" }), " ")
}

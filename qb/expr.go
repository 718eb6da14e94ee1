package qb

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// ErrUsage is wrapped by every error caused by a builder call that cannot be
// rendered into valid SQL.
var ErrUsage = errors.New("qb: invalid usage")

// Bool is the keyword joining a condition to the one before it.
type Bool string

const (
	And Bool = "AND"
	Or  Bool = "OR"
)

// Condition is one comparison: Field Op Value, joined to its predecessor by Bool.
// A slice or array Value (other than []byte) renders as a placeholder group.
type Condition struct {
	Bool  Bool
	Field string
	Op    string
	Value any
}

func (c Condition) Build(first bool) (string, []any, error) {
	holder, args, err := placeholders(c.Value)
	if err != nil {
		return "", nil, errors.Wrapf(err, "condition on %q", c.Field)
	}

	var sb strings.Builder

	if !first {
		b := c.Bool
		if b == "" {
			b = And
		}
		sb.WriteString(string(b))
		sb.WriteString(" ")
	}

	op := c.Op
	if op == "" {
		op = "="
	}

	sb.WriteString(c.Field)
	sb.WriteString(" ")
	sb.WriteString(op)
	sb.WriteString(" ")
	sb.WriteString(holder)

	return sb.String(), args, nil
}

// Build renders conds in order. The first fragment never carries its join keyword.
func Build(conds ...Condition) (string, []any, error) {
	var (
		parts = make([]string, 0, len(conds))
		args  []any
	)

	for i, c := range conds {
		out, condArgs, err := c.Build(i == 0)
		if err != nil {
			return "", nil, err
		}

		parts = append(parts, out)
		args = append(args, condArgs...)
	}

	return strings.Join(parts, " "), args, nil
}

func placeholders(v any) (string, []any, error) {
	rv := reflect.ValueOf(v)
	if !isSequence(rv) {
		return "?", []any{v}, nil
	}

	n := rv.Len()
	if n == 0 {
		return "", nil, errors.Wrap(ErrUsage, "empty value list")
	}

	args := make([]any, n)
	for i := 0; i < n; i++ {
		args[i] = rv.Index(i).Interface()
	}

	return "(" + strings.Repeat("?, ", n-1) + "?)", args, nil
}

func isSequence(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Type().Elem().Kind() != reflect.Uint8
	}
	return false
}

package qb

import (
	"strings"

	"github.com/pkg/errors"
)

func Eq(col string, val any) Condition {
	return Condition{Bool: And, Field: col, Op: "=", Value: val}
}

func Neq(col string, val any) Condition {
	return Condition{Bool: And, Field: col, Op: "<>", Value: val}
}

func Gt(col string, val any) Condition {
	return Condition{Bool: And, Field: col, Op: ">", Value: val}
}

func Lt(col string, val any) Condition {
	return Condition{Bool: And, Field: col, Op: "<", Value: val}
}

func Gte(col string, val any) Condition {
	return Condition{Bool: And, Field: col, Op: ">=", Value: val}
}

func Lte(col string, val any) Condition {
	return Condition{Bool: And, Field: col, Op: "<=", Value: val}
}

// In expects a slice or array; each element gets its own placeholder.
func In(col string, vals any) Condition {
	return Condition{Bool: And, Field: col, Op: "IN", Value: vals}
}

func NotIn(col string, vals any) Condition {
	return Condition{Bool: And, Field: col, Op: "NOT IN", Value: vals}
}

func Like(col string, val string) Condition {
	return Condition{Bool: And, Field: col, Op: "LIKE", Value: "%" + val + "%"}
}

// Or returns c joined to its predecessor with OR.
func (c Condition) Or() Condition {
	c.Bool = Or
	return c
}

// Parse normalizes the positional condition forms:
//
//	(field, value)               AND field = value
//	("and"|"or", field, value)   <bool> field = value
//	(field, op, value)           AND field op value
//	(bool, field, op, value)     <bool> field op value
func Parse(args ...any) (Condition, error) {
	switch len(args) {
	case 2:
		field, err := str(args[0], "field")
		if err != nil {
			return Condition{}, err
		}
		return Condition{Bool: And, Field: field, Op: "=", Value: args[1]}, nil

	case 3:
		if b, ok := boolOf(args[0], false); ok {
			field, err := str(args[1], "field")
			if err != nil {
				return Condition{}, err
			}
			return Condition{Bool: b, Field: field, Op: "=", Value: args[2]}, nil
		}

		field, err := str(args[0], "field")
		if err != nil {
			return Condition{}, err
		}
		op, err := str(args[1], "operator")
		if err != nil {
			return Condition{}, err
		}
		return Condition{Bool: And, Field: field, Op: op, Value: args[2]}, nil

	case 4:
		b, ok := boolOf(args[0], true)
		if !ok {
			return Condition{}, errors.Wrapf(ErrUsage, "unknown boolean %v", args[0])
		}
		field, err := str(args[1], "field")
		if err != nil {
			return Condition{}, err
		}
		op, err := str(args[2], "operator")
		if err != nil {
			return Condition{}, err
		}
		return Condition{Bool: b, Field: field, Op: op, Value: args[3]}, nil
	}

	return Condition{}, errors.Wrapf(ErrUsage, "variable count must be 2, 3 or 4, got %d", len(args))
}

// boolOf only accepts the literal lowercase keywords unless loose is set,
// so a column that happens to be named AND is still usable as a field.
func boolOf(v any, loose bool) (Bool, bool) {
	switch b := v.(type) {
	case Bool:
		return b, b == And || b == Or
	case string:
		if loose {
			b = strings.ToLower(b)
		}
		switch b {
		case "and":
			return And, true
		case "or":
			return Or, true
		}
	}
	return "", false
}

func str(v any, what string) (string, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", errors.Wrapf(ErrUsage, "%s must be a non-empty string, got %T", what, v)
	}
	return s, nil
}

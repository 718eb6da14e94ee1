package qb

import (
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Value is one column assignment of an INSERT or UPDATE.
type Value struct {
	Column string
	Arg    any
}

// Values keeps assignments in the order their placeholders are rendered.
type Values []Value

func Set(col string, arg any) Values {
	return Values{{Column: col, Arg: arg}}
}

// Set replaces the assignment for col, or appends it when absent.
func (v Values) Set(col string, arg any) Values {
	for i := range v {
		if v[i].Column == col {
			v[i].Arg = arg
			return v
		}
	}
	return append(v, Value{Column: col, Arg: arg})
}

func (v Values) Columns() []string {
	return lo.Map(v, func(a Value, _ int) string { return a.Column })
}

func (v Values) Args() []any {
	return lo.Map(v, func(a Value, _ int) any { return a.Arg })
}

// Assignments renders "a = ?, b = ?" with the args in the same order.
func (v Values) Assignments() (string, []any) {
	pairs := lo.Map(v, func(a Value, _ int) string { return a.Column + " = ?" })
	return strings.Join(pairs, ", "), v.Args()
}

// FromMap sorts by column name, maps carry no order of their own.
func FromMap(m map[string]any) Values {
	keys := lo.Keys(m)
	sort.Strings(keys)

	values := make(Values, 0, len(keys))
	for _, k := range keys {
		values = append(values, Value{Column: k, Arg: m[k]})
	}
	return values
}

// FromStruct reads exported fields in declaration order. The column comes from
// the first part of the `db` tag, falling back to the lower-cased field name.
// `db:"-"` skips a field and a zero `pk=auto` field is left to the database.
func FromStruct(s any) (Values, error) {
	rv := reflect.Indirect(reflect.ValueOf(s))
	if rv.Kind() != reflect.Struct {
		return nil, errors.Wrapf(ErrUsage, "expected a struct, got %T", s)
	}

	var (
		rt     = rv.Type()
		values Values
	)

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("db")
		if tag == "-" {
			continue
		}

		col, opts := ParseTag(tag)
		if col == "" {
			col = strings.ToLower(sf.Name)
		}

		fv := rv.Field(i)
		if opts["pk"] == "auto" && fv.IsZero() {
			continue
		}

		values = append(values, Value{Column: col, Arg: fv.Interface()})
	}

	return values, nil
}

// ParseTag splits `db:"col;pk=auto;..."` into the column and its options.
func ParseTag(tag string) (string, map[string]string) {
	var (
		col  string
		opts = make(map[string]string)
	)

	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		k, v, ok := strings.Cut(part, "=")
		switch {
		case ok:
			opts[k] = v
		case k == "pk":
			opts[k] = ""
		default:
			col = k
		}
	}

	return col, opts
}

// Snake inserts an underscore before every interior upper-case letter and
// lower-cases the result: UserOrder -> user_order.
func Snake(name string) string {
	var sb strings.Builder
	for i, c := range name {
		if unicode.IsUpper(c) {
			if i > 0 {
				sb.WriteByte('_')
			}
			c = unicode.ToLower(c)
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

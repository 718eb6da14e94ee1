package dbmodel

import (
	"reflect"
	"strings"

	"github.com/maxshaw/dbmodel/qb"
)

// InferTableName derives a table from a model type name: a trailing "Model"
// is dropped, an underscore goes before every interior upper-case letter and
// the result is lower-cased. UserOrderModel gives user_order.
func InferTableName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return qb.Snake(strings.TrimSuffix(name, "Model"))
}

// DefinitionOf computes a Definition from a model value. A Definer answers for
// itself; otherwise the table comes from the type name, the primary key from
// the field tagged `db:"col;pk"` (default "id") and the columns from the
// struct fields.
func DefinitionOf(v any) Definition {
	if d, ok := v.(Definer); ok {
		return d.Definition()
	}

	rt := reflect.TypeOf(v)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil {
		return Definition{PrimaryKey: "id"}
	}

	def := Definition{Table: InferTableName(rt.Name()), PrimaryKey: "id"}
	if rt.Kind() != reflect.Struct {
		return def
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		tag := sf.Tag.Get("db")
		if !sf.IsExported() || tag == "-" {
			continue
		}

		col, opts := qb.ParseTag(tag)
		if col == "" {
			col = strings.ToLower(sf.Name)
		}
		if _, ok := opts["pk"]; ok {
			def.PrimaryKey = col
		}

		def.Columns = append(def.Columns, col)
	}

	return def
}

// Package types holds the values returned by a Connection.
package types

import (
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// Row maps column names to the values the driver returned for them.
type Row map[string]any

type Rows []Row

// NormalizeRow copies m, turning []byte into string.
func NormalizeRow(m map[string]any) Row {
	row := make(Row, len(m))
	for k, v := range m {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		row[k] = v
	}
	return row
}

func (r Row) Has(col string) bool {
	_, ok := r[col]
	return ok
}

func (r Row) String(col string) string {
	return cast.ToString(r[col])
}

func (r Row) Int(col string) int {
	return cast.ToInt(r[col])
}

func (r Row) Int64(col string) int64 {
	return cast.ToInt64(r[col])
}

func (r Row) Float64(col string) float64 {
	return cast.ToFloat64(r[col])
}

func (r Row) Bool(col string) bool {
	return cast.ToBool(r[col])
}

// Time accepts time.Time values as well as MySQL DATETIME strings.
func (r Row) Time(col string) (time.Time, error) {
	switch v := r[col].(type) {
	case time.Time:
		return v, nil
	case string:
		if t, err := time.ParseInLocation(time.DateTime, v, time.Local); err == nil {
			return t, nil
		}
	}
	return cast.ToTimeE(r[col])
}

// Pluck collects col from every row, keeping row order.
func (rs Rows) Pluck(col string) []any {
	return lo.Map(rs, func(r Row, _ int) any { return r[col] })
}

// KeyBy indexes the rows by the string form of col. Later rows win on duplicates.
func (rs Rows) KeyBy(col string) map[string]Row {
	return lo.KeyBy(rs, func(r Row) string { return cast.ToString(r[col]) })
}

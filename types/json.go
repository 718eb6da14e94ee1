package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
)

// JSON binds T as a JSON document and scans one back.
type JSON[T any] struct {
	bytes []byte
	value *T
}

func NewJSON[T any](v T) (JSON[T], error) {
	b, err := json.Marshal(v)
	if err != nil {
		return JSON[T]{}, errors.Wrap(err, "types: encode json")
	}
	return JSON[T]{bytes: b, value: &v}, nil
}

func (j *JSON[T]) Get() *T {
	return j.value
}

func (j *JSON[T]) UnmarshalJSON(b []byte) (err error) {
	if b == nil {
		j.bytes, j.value = nil, nil
		return nil
	}

	var v T
	if err = json.Unmarshal(b, &v); err != nil {
		j.bytes, j.value = nil, nil
	} else {
		var dst = make([]byte, len(b))
		_ = copy(dst, b)
		j.bytes, j.value = dst, &v
	}

	return
}

func (j JSON[T]) MarshalJSON() ([]byte, error) {
	if j.bytes == nil {
		return []byte("null"), nil
	}
	return j.bytes, nil
}

func (j *JSON[T]) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return j.UnmarshalJSON(v)
	case string:
		return j.UnmarshalJSON([]byte(v))
	}
	j.bytes, j.value = nil, nil
	return nil
}

func (j JSON[T]) Value() (driver.Value, error) {
	if j.bytes == nil {
		return nil, nil
	}
	return string(j.bytes), nil
}

// DecodeJSON reads a JSON column of r into a T.
func DecodeJSON[T any](r Row, col string) (T, error) {
	var j JSON[T]
	if err := j.Scan(r[col]); err != nil {
		var zero T
		return zero, errors.Wrapf(err, "types: decode json column %q", col)
	}
	if j.value == nil {
		var zero T
		return zero, nil
	}
	return *j.value, nil
}

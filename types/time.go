package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// DateTime is a time bound and printed in MySQL DATETIME layout.
type DateTime time.Time

func (t DateTime) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t *DateTime) UnmarshalJSON(b []byte) (err error) {
	s := strings.Trim(string(b), `"`)
	nt, err := time.ParseInLocation(time.DateTime, s, time.Local)
	*t = DateTime(nt)
	return
}

func (t DateTime) MarshalJSON() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t DateTime) String() string {
	return fmt.Sprintf("%q", time.Time(t).Format(time.DateTime))
}

func (t DateTime) Value() (driver.Value, error) {
	return time.Time(t).Format(time.DateTime), nil
}

func (t *DateTime) Scan(value any) error {
	if s, ok := value.(string); ok {
		nt, err := time.ParseInLocation(time.DateTime, s, time.Local)
		if err == nil {
			*t = DateTime(nt)
			return nil
		}
	}

	nt, err := cast.ToTimeE(value)
	if err != nil {
		return err
	}
	*t = DateTime(nt)
	return nil
}

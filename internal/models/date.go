package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage layout of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day, serialized as YYYY-MM-DD.
type Date time.Time

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return Date(t), nil
}

// Time exposes the underlying time value.
func (d Date) Time() time.Time { return time.Time(d) }

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return time.Time(d).IsZero() }

// Before reports whether d falls on an earlier day than other.
func (d Date) Before(other Date) bool { return time.Time(d).Before(time.Time(other)) }

// After reports whether d falls on a later day than other.
func (d Date) After(other Date) bool { return time.Time(d).After(time.Time(other)) }

// Equal compares calendar days.
func (d Date) Equal(other Date) bool { return time.Time(d).Equal(time.Time(other)) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return time.Time(d).Format(DateLayout)
}

// Ptr returns a pointer to a copy of d.
func (d Date) Ptr() *Date { return &d }

// MarshalJSON encodes the date as "YYYY-MM-DD" or null when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD", an empty string or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
	case string:
		parsed, err := ParseDate(firstDay(v))
		if err != nil {
			return err
		}
		*d = parsed
	case []byte:
		parsed, err := ParseDate(firstDay(string(v)))
		if err != nil {
			return err
		}
		*d = parsed
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func firstDay(raw string) string {
	if len(raw) > len(DateLayout) {
		return raw[:len(DateLayout)]
	}
	return raw
}

// Package calendar provides a date without a time-of-day component.
package calendar

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

const Layout = "2006-01-02"

// parseLayout also takes single-digit months and days, as in 2024-1-5.
const parseLayout = "2006-1-2"

const day = 24 * time.Hour

// Date is a calendar date held as UTC midnight. It is stored as TEXT in
// YYYY-MM-DD form, so string order in the database is chronological order.
type Date struct {
	t time.Time
}

func New(year int, month time.Month, dayOfMonth int) Date {
	return Date{t: time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)}
}

// FromTime keeps the year, month and day of t as seen in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return New(y, m, d)
}

func Today(now time.Time) Date {
	return FromTime(now)
}

func Parse(value string) (Date, error) {
	t, err := time.Parse(parseLayout, value)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return FromTime(t), nil
}

func MustParse(value string) Date {
	d, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Time() time.Time { return d.t }

func (d Date) Year() int { return d.t.Year() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(Layout)
}

func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DaysUntil returns the whole number of days from d to other; negative when
// other is earlier.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t) / day)
}

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

func (d Date) After(other Date) bool { return d.t.After(other.t) }

func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

func (d Date) Compare(other Date) int { return d.t.Compare(other.t) }

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case time.Time:
		*d = FromTime(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into calendar.Date", value)
	}
}

// scanString also accepts timestamps so that rows written by other tools with
// a time component still load.
func (d *Date) scanString(value string) error {
	if i := strings.IndexAny(value, " T"); i >= 0 {
		value = value[:i]
	}
	parsed, err := Parse(value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (Date) GormDataType() string {
	return "text"
}

package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

const dateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day or zone. It persists as a SQL
// date and serialises as YYYY-MM-DD.
type Date civil.Date

// NewDate builds a Date from its parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date(civil.Date{Year: year, Month: month, Day: day})
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(value string) (Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(value))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return Date(d), nil
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return Date(civil.DateOf(t))
}

// Today returns the current calendar day in loc.
func Today(now time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

func (d Date) cd() civil.Date { return civil.Date(d) }

func (d Date) IsZero() bool { return d.cd().IsZero() }
func (d Date) IsValid() bool { return d.cd().IsValid() }
func (d Date) String() string { return d.cd().String() }
func (d Date) AddDays(n int) Date { return Date(d.cd().AddDays(n)) }

// DaysSince returns the signed number of days from s to d.
func (d Date) DaysSince(s Date) int { return d.cd().DaysSince(s.cd()) }

func (d Date) Before(other Date) bool { return d.cd().Before(other.cd()) }
func (d Date) After(other Date) bool { return d.cd().After(other.cd()) }
func (d Date) Equal(other Date) bool { return d == other }

// SameMonth reports whether both dates fall in the same calendar month.
func (d Date) SameMonth(other Date) bool {
	return d.cd().Year == other.cd().Year && d.cd().Month == other.cd().Month
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return d.cd().In(loc)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(data []byte) error {
	parsed, err := ParseDate(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner. Drivers hand back time.Time for DATE columns,
// raw text otherwise.
func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = Date(civil.Date{Year: v.Year(), Month: v.Month(), Day: v.Day()})
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("date: unsupported scan type %T", value)
	}
}

func (d *Date) scanString(raw string) error {
	raw = strings.TrimSpace(raw)
	if len(raw) > len(dateLayout) {
		raw = raw[:len(dateLayout)]
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GormDataType declares the column type for gorm migrations.
func (Date) GormDataType() string {
	return "date"
}

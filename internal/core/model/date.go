package model

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Date is a partially known calendar date. A zero part is unknown.
type Date struct {
	Year  int
	Month int
	Day   int
}

func (d Date) HasYear() bool  { return d.Year > 0 }
func (d Date) HasMonth() bool { return d.Month > 0 }
func (d Date) HasDay() bool   { return d.Day > 0 }

// Time converts a date with known year and month, defaulting a missing day
// to the first of the month. A day past the end of the month is rejected.
func (d Date) Time() (time.Time, bool) {
	if !d.HasYear() || !d.HasMonth() {
		return time.Time{}, false
	}
	day := d.Day
	if day == 0 {
		day = 1
	}
	t := time.Date(d.Year, time.Month(d.Month), day, 0, 0, 0, 0, time.UTC)
	if int(t.Month()) != d.Month {
		return time.Time{}, false
	}
	return t, true
}

// Compare orders dates by year, month and day; unknown parts sort first.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return sign(d.Year - o.Year)
	case d.Month != o.Month:
		return sign(d.Month - o.Month)
	default:
		return sign(d.Day - o.Day)
	}
}

// DaysBetween returns the absolute number of days between a and b.
func DaysBetween(a, b Date) (int, bool) {
	ta, ok := a.Time()
	if !ok {
		return 0, false
	}
	tb, ok := b.Time()
	if !ok {
		return 0, false
	}
	days := int(ta.Sub(tb).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days, true
}

// ParseDate builds a Date from register fields. Placeholders and
// malformed values leave the corresponding part unknown.
func ParseDate(day, month, year string) Date {
	d := Date{
		Year:  parsePart(year, 1, 9999),
		Month: parsePart(month, 1, 12),
		Day:   parsePart(day, 1, 31),
	}
	if d.HasDay() && d.HasMonth() && d.Day > daysIn(d.Year, d.Month) {
		d.Day = 0
	}
	return d
}

// daysIn is the length of month in year; an unknown year allows 29 February.
func daysIn(year, month int) int {
	if year == 0 {
		year = 2000
	}
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseSlashDate parses the "dd/mm/yyyy" form used for dates of birth.
func ParseSlashDate(s string) Date {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return Date{}
	}
	return ParseDate(parts[0], parts[1], parts[2])
}

func parsePart(s string, lo, hi int) int {
	if IsMissing(s) {
		return 0
	}
	v, err := cast.ToIntE(strings.TrimLeft(strings.TrimSpace(s), "0"))
	if err != nil || v < lo || v > hi {
		return 0
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

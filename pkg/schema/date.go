package schema

import (
	"fmt"
	stdtime "time"
)

// Date keeps track of a calendar day.
// It is meant for simple recognition of days, not datetime arithmetic.
// Inputs are trusted; no range validation happens here.
type Date struct {
	year   int
	month  int
	day    int
	frozen bool
}

func NewDate(year, month, day int) *Date {
	return &Date{year: year, month: month, day: day}
}

func DateFromTimestamp(t stdtime.Time) *Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

func Today() *Date {
	return DateFromTimestamp(stdtime.Now())
}

func (d *Date) Year() int  { return d.year }
func (d *Date) Month() int { return d.month }
func (d *Date) Day() int   { return d.day }

func (d *Date) SetYear(v int) error {
	if d.frozen {
		return ErrFrozen
	}
	d.year = v
	return nil
}

func (d *Date) SetMonth(v int) error {
	if d.frozen {
		return ErrFrozen
	}
	d.month = v
	return nil
}

func (d *Date) SetDay(v int) error {
	if d.frozen {
		return ErrFrozen
	}
	d.day = v
	return nil
}

func (d *Date) Freeze()      { d.frozen = true }
func (d *Date) Frozen() bool { return d.frozen }

func (d *Date) String() string {
	return fmt.Sprintf("Date(year=%d month=%d day=%d)", d.year, d.month, d.day)
}

// DateTime pairs a Date with a Time.
type DateTime struct {
	date *Date
	time *Time
}

func NewDateTime(date *Date, t *Time) *DateTime {
	return &DateTime{date: date, time: t}
}

func DateTimeNow() *DateTime {
	return NewDateTime(Today(), Now())
}

func (dt *DateTime) Date() *Date { return dt.date }
func (dt *DateTime) Time() *Time { return dt.time }

func (dt *DateTime) String() string {
	return fmt.Sprintf("DateTime(date=%v time=%v)", dt.date, dt.time)
}

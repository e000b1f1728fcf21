package schema

import (
	"errors"
	"fmt"
	"math"
	stdtime "time"
)

// ErrFrozen is returned by setters on frozen values.
var ErrFrozen = errors.New("schema: value is frozen")

// Time keeps track of a point in time as seconds (into a day, or any other
// origin the caller chooses).
type Time struct {
	seconds float64
	frozen  bool
}

func NewTime(seconds float64) *Time {
	return &Time{seconds: seconds}
}

// FromUnits builds a Time from hours, minutes and seconds.
func FromUnits(hours, minutes int, seconds float64) *Time {
	return NewTime(float64(hours)*3600 + float64(minutes)*60 + seconds)
}

// FromTimestamp converts a wall-clock timestamp to seconds into its local day.
func FromTimestamp(t stdtime.Time) *Time {
	hh, mm, ss := t.Clock()
	return NewTime(float64(hh)*3600 + float64(mm)*60 + float64(ss))
}

// Now is the current local time of day.
func Now() *Time {
	return FromTimestamp(stdtime.Now())
}

func (t *Time) Seconds() float64 { return t.seconds }
func (t *Time) Days() float64    { return t.seconds / 86400 }
func (t *Time) Hours() float64   { return t.seconds / 3600 }
func (t *Time) Minutes() float64 { return t.seconds / 60 }

func (t *Time) Milliseconds() float64 { return t.seconds * 1e3 }
func (t *Time) Microseconds() float64 { return t.seconds * 1e6 }
func (t *Time) Nanoseconds() float64  { return t.seconds * 1e9 }

func (t *Time) SetSeconds(v float64) error { return t.set(v) }
func (t *Time) SetDays(v float64) error    { return t.set(v * 86400) }
func (t *Time) SetHours(v float64) error   { return t.set(v * 3600) }
func (t *Time) SetMinutes(v float64) error { return t.set(v * 60) }

func (t *Time) set(seconds float64) error {
	if t.frozen {
		return ErrFrozen
	}
	t.seconds = seconds
	return nil
}

// ToUnits splits the time into hours, minutes and remaining seconds.
func (t *Time) ToUnits() (hours, minutes int, seconds float64) {
	m := math.Floor(t.seconds / 60)
	seconds = t.seconds - m*60
	hours = int(m) / 60
	minutes = int(m) % 60
	return
}

// Duration converts the stored seconds to a time.Duration.
func (t *Time) Duration() stdtime.Duration {
	return stdtime.Duration(t.seconds * float64(stdtime.Second))
}

func (t *Time) Freeze()      { t.frozen = true }
func (t *Time) Frozen() bool { return t.frozen }

func (t *Time) String() string {
	return fmt.Sprintf("%g", t.seconds)
}

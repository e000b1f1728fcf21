package schema

import stdtime "time"

// IsLeap reports whether the given year is a leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// MonthRange returns the weekday of the first day of the month (Monday=0)
// and the number of days in the month.
func MonthRange(year, month int) (firstWeekday, numDays int) {
	first := stdtime.Date(year, stdtime.Month(month), 1, 0, 0, 0, 0, stdtime.UTC)
	// time.Weekday has Sunday=0; shift to Monday=0.
	firstWeekday = (int(first.Weekday()) + 6) % 7
	numDays = stdtime.Date(year, stdtime.Month(month)+1, 0, 0, 0, 0, 0, stdtime.UTC).Day()
	return
}

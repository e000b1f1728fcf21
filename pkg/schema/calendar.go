package schema

import "fmt"

// Due marks when an Event is expected to end.
type Due struct {
	date *Date
	time *Time
}

func NewDue(date *Date, t *Time) *Due {
	return &Due{date: date, time: t}
}

func (d *Due) Date() *Date { return d.date }
func (d *Due) Time() *Time { return d.time }

func (d *Due) String() string {
	return fmt.Sprintf("Due(date=%v time=%v)", d.date, d.time)
}

// Event is a named entry on a Day with a start time and an optional due time.
type Event struct {
	name string
	date *Date
	time *Time
	due  *Due
}

func NewEvent(name string, date *Date, t *Time, due *Due) *Event {
	return &Event{name: name, date: date, time: t, due: due}
}

func (e *Event) Name() string { return e.name }
func (e *Event) Date() *Date  { return e.date }
func (e *Event) Time() *Time  { return e.time }
func (e *Event) Due() *Due    { return e.due }

// Duration is the scheduled length in seconds; zero when no due time is set.
func (e *Event) Duration() float64 {
	if e.due == nil {
		return 0
	}
	return e.due.Time().Seconds() - e.time.Seconds()
}

func (e *Event) String() string {
	return fmt.Sprintf("Event(name=%s date=%v time=%v due=%v)", e.name, e.date, e.time, e.due)
}

// Day is a named calendar day filled with events.
type Day struct {
	name   string
	year   int
	month  int
	day    int
	week   *Week
	date   *Date
	events map[*Event]struct{}
}

func NewDay(name string, year, month, day int, week *Week) *Day {
	return &Day{
		name:   name,
		year:   year,
		month:  month,
		day:    day,
		week:   week,
		date:   NewDate(year, month, day),
		events: map[*Event]struct{}{},
	}
}

func (d *Day) Name() string { return d.name }
func (d *Day) Year() int    { return d.year }
func (d *Day) Month() int   { return d.month }
func (d *Day) Day() int     { return d.day }
func (d *Day) Week() *Week  { return d.week }
func (d *Day) Date() *Date  { return d.date }

func (d *Day) Events() []*Event {
	out := make([]*Event, 0, len(d.events))
	for e := range d.events {
		out = append(out, e)
	}
	return out
}

func (d *Day) Add(e *Event)    { d.events[e] = struct{}{} }
func (d *Day) Remove(e *Event) { delete(d.events, e) }
func (d *Day) Clear()          { clear(d.events) }

// NewEvent creates an event on this day and registers it.
func (d *Day) NewEvent(name string, t *Time, due *Due) *Event {
	e := NewEvent(name, d.date, t, due)
	d.Add(e)
	return e
}

func (d *Day) String() string {
	return fmt.Sprintf("Day(year=%d month=%d day=%d)", d.year, d.month, d.day)
}

// Week is a numbered week filled with days.
type Week struct {
	number   int
	year     int
	month    int
	days     map[*Day]struct{}
	monthObj *Month
}

func NewWeek(number, year, month int, days []*Day, monthObj *Month) *Week {
	w := &Week{number: number, year: year, month: month, days: map[*Day]struct{}{}, monthObj: monthObj}
	for _, d := range days {
		w.days[d] = struct{}{}
	}
	return w
}

func (w *Week) Number() int         { return w.number }
func (w *Week) Year() int           { return w.year }
func (w *Week) Month() int          { return w.month }
func (w *Week) MonthObject() *Month { return w.monthObj }

func (w *Week) Days() []*Day {
	out := make([]*Day, 0, len(w.days))
	for d := range w.days {
		out = append(out, d)
	}
	return out
}

func (w *Week) Add(d *Day)    { w.days[d] = struct{}{} }
func (w *Week) Remove(d *Day) { delete(w.days, d) }
func (w *Week) Clear()        { clear(w.days) }

func (w *Week) NewDay(name string, day int) *Day {
	d := NewDay(name, w.year, w.month, day, w)
	w.Add(d)
	return d
}

func (w *Week) DaysByName() map[string]*Day {
	out := make(map[string]*Day, len(w.days))
	for d := range w.days {
		out[d.Name()] = d
	}
	return out
}

func (w *Week) DaysByNumber() map[int]*Day {
	out := make(map[int]*Day, len(w.days))
	for d := range w.days {
		out[d.Day()] = d
	}
	return out
}

// Month is a named month filled with weeks.
type Month struct {
	name    string
	year    int
	month   int
	weeks   map[*Week]struct{}
	yearObj *Year
}

func NewMonth(name string, year, month int, yearObj *Year) *Month {
	return &Month{name: name, year: year, month: month, weeks: map[*Week]struct{}{}, yearObj: yearObj}
}

func (m *Month) Name() string      { return m.name }
func (m *Month) Year() int         { return m.year }
func (m *Month) Month() int        { return m.month }
func (m *Month) YearObject() *Year { return m.yearObj }

// SupposedCount returns (first weekday, number of days) for this month.
func (m *Month) SupposedCount() (firstWeekday, numDays int) {
	return MonthRange(m.year, m.month)
}

func (m *Month) Weeks() []*Week {
	out := make([]*Week, 0, len(m.weeks))
	for w := range m.weeks {
		out = append(out, w)
	}
	return out
}

func (m *Month) Add(w *Week)    { m.weeks[w] = struct{}{} }
func (m *Month) Remove(w *Week) { delete(m.weeks, w) }
func (m *Month) Clear()         { clear(m.weeks) }

func (m *Month) NewWeek(number int, days []*Day) *Week {
	w := NewWeek(number, m.year, m.month, days, m)
	m.Add(w)
	return w
}

// Year contains months.
type Year struct {
	year   int
	months map[*Month]struct{}
}

func NewYear(year int, months []*Month) *Year {
	y := &Year{year: year, months: map[*Month]struct{}{}}
	for _, m := range months {
		y.months[m] = struct{}{}
	}
	return y
}

func (y *Year) Number() int  { return y.year }
func (y *Year) IsLeap() bool { return IsLeap(y.year) }

func (y *Year) Months() []*Month {
	out := make([]*Month, 0, len(y.months))
	for m := range y.months {
		out = append(out, m)
	}
	return out
}

func (y *Year) Add(m *Month)    { y.months[m] = struct{}{} }
func (y *Year) Remove(m *Month) { delete(y.months, m) }
func (y *Year) Clear()          { clear(y.months) }

func (y *Year) NewMonth(name string, month int) *Month {
	m := NewMonth(name, y.year, month, y)
	y.Add(m)
	return m
}

func (y *Year) MonthsByName() map[string]*Month {
	out := make(map[string]*Month, len(y.months))
	for m := range y.months {
		out[m.Name()] = m
	}
	return out
}

func (y *Year) MonthsByNumber() map[int]*Month {
	out := make(map[int]*Month, len(y.months))
	for m := range y.months {
		out[m.Month()] = m
	}
	return out
}

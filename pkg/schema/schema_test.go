package schema

import (
	"errors"
	"testing"
	stdtime "time"
)

func TestTimeUnits(t *testing.T) {
	tm := FromUnits(1, 30, 15.5)
	if got := tm.Seconds(); got != 5415.5 {
		t.Fatalf("Seconds = %g, want 5415.5", got)
	}
	if got := tm.Minutes(); got != 5415.5/60 {
		t.Fatalf("Minutes = %g", got)
	}
	if got := tm.Hours(); got != 5415.5/3600 {
		t.Fatalf("Hours = %g", got)
	}
	if got := tm.Milliseconds(); got != 5415500 {
		t.Fatalf("Milliseconds = %g", got)
	}

	hh, mm, ss := tm.ToUnits()
	if hh != 1 || mm != 30 || ss != 15.5 {
		t.Fatalf("ToUnits = (%d, %d, %g), want (1, 30, 15.5)", hh, mm, ss)
	}
}

func TestTimeSetters(t *testing.T) {
	tm := NewTime(0)
	if err := tm.SetMinutes(2); err != nil {
		t.Fatalf("SetMinutes: %v", err)
	}
	if tm.Seconds() != 120 {
		t.Fatalf("Seconds = %g, want 120", tm.Seconds())
	}
	if err := tm.SetHours(1); err != nil {
		t.Fatalf("SetHours: %v", err)
	}
	if tm.Seconds() != 3600 {
		t.Fatalf("Seconds = %g, want 3600", tm.Seconds())
	}

	tm.Freeze()
	if !tm.Frozen() {
		t.Fatal("Frozen should report true after Freeze")
	}
	if err := tm.SetSeconds(1); !errors.Is(err, ErrFrozen) {
		t.Fatalf("SetSeconds on frozen = %v, want ErrFrozen", err)
	}
	if tm.Seconds() != 3600 {
		t.Fatal("frozen value must not change")
	}
}

func TestTimeDuration(t *testing.T) {
	tm := NewTime(1.5)
	if got := tm.Duration(); got != 1500*stdtime.Millisecond {
		t.Fatalf("Duration = %v, want 1.5s", got)
	}
}

func TestFromTimestamp(t *testing.T) {
	wall := stdtime.Date(2024, 3, 10, 14, 45, 30, 0, stdtime.UTC)
	tm := FromTimestamp(wall)
	if got := tm.Seconds(); got != 14*3600+45*60+30 {
		t.Fatalf("Seconds = %g", got)
	}
}

func TestDateSetters(t *testing.T) {
	d := NewDate(2024, 2, 29)
	if d.Year() != 2024 || d.Month() != 2 || d.Day() != 29 {
		t.Fatalf("date = %v", d)
	}
	if err := d.SetDay(28); err != nil || d.Day() != 28 {
		t.Fatalf("SetDay = %v, day = %d", err, d.Day())
	}
	d.Freeze()
	if err := d.SetYear(2025); !errors.Is(err, ErrFrozen) {
		t.Fatalf("SetYear on frozen = %v, want ErrFrozen", err)
	}
}

func TestIsLeap(t *testing.T) {
	cases := []struct {
		year int
		want bool
	}{
		{2024, true},
		{2023, false},
		{2000, true},
		{1900, false},
		{2400, true},
	}
	for _, c := range cases {
		if got := IsLeap(c.year); got != c.want {
			t.Fatalf("IsLeap(%d) = %v, want %v", c.year, got, c.want)
		}
	}
}

func TestMonthRange(t *testing.T) {
	// February 2024 starts on a Thursday (Monday=0 → 3) and has 29 days.
	first, days := MonthRange(2024, 2)
	if first != 3 || days != 29 {
		t.Fatalf("MonthRange(2024, 2) = (%d, %d), want (3, 29)", first, days)
	}
	// September 2025 starts on a Monday and has 30 days.
	first, days = MonthRange(2025, 9)
	if first != 0 || days != 30 {
		t.Fatalf("MonthRange(2025, 9) = (%d, %d), want (0, 30)", first, days)
	}
}

func TestEventDuration(t *testing.T) {
	date := NewDate(2024, 6, 1)
	start := FromUnits(9, 0, 0)
	due := NewDue(date, FromUnits(10, 30, 0))
	e := NewEvent("standup", date, start, due)
	if got := e.Duration(); got != 5400 {
		t.Fatalf("Duration = %g, want 5400", got)
	}

	open := NewEvent("open-ended", date, start, nil)
	if got := open.Duration(); got != 0 {
		t.Fatalf("Duration without due = %g, want 0", got)
	}
}

func TestDayEvents(t *testing.T) {
	d := NewDay("Saturday", 2024, 6, 1, nil)
	e := d.NewEvent("lunch", FromUnits(12, 0, 0), nil)
	if len(d.Events()) != 1 {
		t.Fatalf("Events = %d, want 1", len(d.Events()))
	}
	if e.Date() != d.Date() {
		t.Fatal("event should share the day's date")
	}
	d.Remove(e)
	if len(d.Events()) != 0 {
		t.Fatal("Remove left the event behind")
	}
	d.Add(e)
	d.Clear()
	if len(d.Events()) != 0 {
		t.Fatal("Clear left events behind")
	}
}

func TestWeekLookups(t *testing.T) {
	w := NewWeek(23, 2024, 6, nil, nil)
	sat := w.NewDay("Saturday", 1)
	sun := w.NewDay("Sunday", 2)

	byName := w.DaysByName()
	if byName["Saturday"] != sat || byName["Sunday"] != sun {
		t.Fatalf("DaysByName = %v", byName)
	}
	byNum := w.DaysByNumber()
	if byNum[1] != sat || byNum[2] != sun {
		t.Fatalf("DaysByNumber = %v", byNum)
	}
	if sat.Week() != w {
		t.Fatal("day should point back at its week")
	}

	w.Remove(sun)
	if len(w.Days()) != 1 {
		t.Fatalf("Days after Remove = %d, want 1", len(w.Days()))
	}
}

func TestMonthAndYear(t *testing.T) {
	y := NewYear(2024, nil)
	if !y.IsLeap() {
		t.Fatal("2024 should be leap")
	}
	feb := y.NewMonth("February", 2)
	jun := y.NewMonth("June", 6)

	if y.MonthsByName()["February"] != feb {
		t.Fatal("MonthsByName lookup failed")
	}
	if y.MonthsByNumber()[6] != jun {
		t.Fatal("MonthsByNumber lookup failed")
	}
	if feb.YearObject() != y {
		t.Fatal("month should point back at its year")
	}

	first, days := feb.SupposedCount()
	if first != 3 || days != 29 {
		t.Fatalf("SupposedCount = (%d, %d), want (3, 29)", first, days)
	}

	w := feb.NewWeek(5, nil)
	if w.MonthObject() != feb || len(feb.Weeks()) != 1 {
		t.Fatal("NewWeek should register the week on its month")
	}

	y.Remove(jun)
	if len(y.Months()) != 1 {
		t.Fatalf("Months after Remove = %d, want 1", len(y.Months()))
	}
}

package profile

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tempo/pkg/resolve"
)

func TestMethodStats(t *testing.T) {
	env := NewEnvironment()
	m := env.Track("work")

	for i := 0; i < 3; i++ {
		stop := m.Begin()
		time.Sleep(5 * time.Millisecond)
		stop(nil)
	}

	if got := m.TotalCalls(); got != 3 {
		t.Fatalf("TotalCalls = %d, want 3", got)
	}
	if m.TotalDuration() < 15*time.Millisecond {
		t.Fatalf("TotalDuration = %v, want >= 15ms", m.TotalDuration())
	}
	if m.MinDuration() <= 0 || m.MinDuration() > m.MaxDuration() {
		t.Fatalf("min/max = %v/%v", m.MinDuration(), m.MaxDuration())
	}
	if m.AvgDuration() < m.MinDuration() || m.AvgDuration() > m.MaxDuration() {
		t.Fatalf("avg %v outside [min, max]", m.AvgDuration())
	}
	if m.CallsPerSecond() <= 0 {
		t.Fatal("CallsPerSecond should be positive after calls")
	}
	if m.Last() == nil || m.Last().Err != nil {
		t.Fatalf("Last = %+v", m.Last())
	}

	m.Reset()
	if m.TotalCalls() != 0 || m.Last() != nil || len(m.History()) != 0 {
		t.Fatal("Reset left data behind")
	}
}

func TestBeginRecordsError(t *testing.T) {
	env := NewEnvironment()
	m := env.Track("flaky")
	boom := errors.New("boom")
	stop := m.Begin()
	stop(boom)
	if last := m.Last(); last == nil || !errors.Is(last.Err, boom) {
		t.Fatalf("Last = %+v, want recorded error", m.Last())
	}
}

func TestEnvironmentAggregates(t *testing.T) {
	env := NewEnvironment()
	a := env.Track("a")
	b := env.Track("b")

	stop := a.Begin()
	time.Sleep(2 * time.Millisecond)
	stop(nil)
	stop = b.Begin()
	time.Sleep(2 * time.Millisecond)
	stop(nil)

	if got := env.TotalCalls(); got != 2 {
		t.Fatalf("TotalCalls = %d, want 2", got)
	}
	if env.TotalDuration() < env.MaxDuration() {
		t.Fatal("TotalDuration must cover the slowest call")
	}
	if env.MinDuration() <= 0 {
		t.Fatal("MinDuration should be positive after calls")
	}

	hist := env.History()
	if len(hist) != 2 {
		t.Fatalf("History = %d entries, want 2", len(hist))
	}
	if hist[0].Start > hist[1].Start {
		t.Fatal("History must be ordered by start offset")
	}

	env.Remove(a)
	if got := env.TotalCalls(); got != 1 {
		t.Fatalf("TotalCalls after Remove = %d, want 1", got)
	}
	env.Clear()
	if env.TotalCalls() != 0 {
		t.Fatal("Clear left methods behind")
	}
}

func TestInstrument(t *testing.T) {
	env := NewEnvironment()
	pm := env.Track("answer")
	fn := Instrument(pm, func(ctx context.Context) (int, error) {
		return 42, nil
	})

	rt := resolve.NewRuntime()
	m := resolve.NewMethod(fn, resolve.WithRuntime(rt))
	v, err := m.Call(context.Background())
	if err != nil || v != 42 {
		t.Fatalf("Call = (%d, %v)", v, err)
	}
	if pm.TotalCalls() != 1 {
		t.Fatalf("instrumented call not recorded: %d", pm.TotalCalls())
	}
}

func TestResetGlobal(t *testing.T) {
	old := Global()
	fresh := ResetGlobal()
	if fresh == old {
		t.Fatal("ResetGlobal should install a new environment")
	}
	if Global() != fresh {
		t.Fatal("Global should return the new environment")
	}
}

func TestRenderTableAlignment(t *testing.T) {
	out := RenderTable(
		[]string{"Name", "Value"},
		[][]string{
			{"alpha", "1.50"},
			{"b", "22.00"},
		},
		" | ", false,
	)
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Name ") {
		t.Fatalf("header = %q, name column should be left-aligned", lines[0])
	}
	if !strings.Contains(lines[0], " Value") {
		t.Fatalf("header = %q, numeric column should be right-aligned", lines[0])
	}
	if !strings.HasPrefix(lines[1], "=") || len(lines[1]) != len(lines[0]) {
		t.Fatalf("divider %q should match header width %d", lines[1], len(lines[0]))
	}
	if !strings.HasSuffix(lines[2], " 1.50") {
		t.Fatalf("row = %q, numbers should be right-aligned", lines[2])
	}
}

func TestRenderTableEmpty(t *testing.T) {
	out := RenderTable([]string{"A"}, nil, " | ", false)
	if !strings.Contains(out, "(no entries)") {
		t.Fatalf("empty table missing placeholder:\n%s", out)
	}
}

func TestRenderTableColorHeader(t *testing.T) {
	out := RenderTable([]string{"A"}, [][]string{{"x"}}, " | ", true)
	if !strings.HasPrefix(out, "\033[1;36m") {
		t.Fatal("color header missing ANSI prefix")
	}
}

func TestTotalLogTruncation(t *testing.T) {
	env := NewEnvironment()
	m := env.Track("burst")
	for i := 0; i < 12; i++ {
		m.Begin()(nil)
	}
	out := TotalLog(env, 10, false)
	if !strings.Contains(out, "+2 others...") {
		t.Fatalf("missing truncation note:\n%s", out)
	}
	full := TotalLog(env, 20, false)
	if strings.Contains(full, "others...") {
		t.Fatal("no truncation note expected when everything fits")
	}
}

func TestOverviewLogColumns(t *testing.T) {
	env := NewEnvironment()
	env.Track("only")
	out := OverviewLog(env, false)
	for _, col := range []string{"Name", "Creation", "Total calls"} {
		if !strings.Contains(out, col) {
			t.Fatalf("missing column %q:\n%s", col, out)
		}
	}
	if !strings.Contains(out, "only") {
		t.Fatalf("missing method row:\n%s", out)
	}
}

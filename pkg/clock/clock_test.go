package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"tempo/pkg/resolve"
)

func TestTickProcessesIndexOnce(t *testing.T) {
	c := New()
	var fired atomic.Int32
	c.Schedule(0, func() { fired.Add(1) })

	c.Tick()
	c.Tick() // same tick index, must be a no-op
	if got := fired.Load(); got != 1 {
		t.Fatalf("fired %d times, want exactly 1", got)
	}
	if c.Len() != 0 {
		t.Fatalf("Len = %d after firing, want 0", c.Len())
	}
}

func TestFiresOnceAtDueSecond(t *testing.T) {
	c := New(WithInterval(0.05), WithQuantum(10*time.Millisecond))
	var fired atomic.Int32
	firedAt := make(chan float64, 1)

	due := c.Now() + 0.15
	c.Schedule(due, func() {
		fired.Add(1)
		firedAt <- c.Now()
	})

	c.Start()
	defer func() {
		c.Stop()
		c.Join(time.Second)
	}()
	if !c.WaitForScheduler(time.Second) {
		t.Fatal("scheduler never came up")
	}

	select {
	case at := <-firedAt:
		if at < due {
			t.Fatalf("fired at %gs, before due %gs", at, due)
		}
		if at > due+0.5 {
			t.Fatalf("fired at %gs, too long after due %gs", at, due)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback never fired")
	}

	// Give the loop a few more ticks; the callback must not fire again.
	time.Sleep(150 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("fired %d times, want exactly 1", got)
	}
}

func TestPastDueFiresOnNextTick(t *testing.T) {
	c := New()
	var fired atomic.Int32
	c.Schedule(-5, func() { fired.Add(1) })
	c.Tick()
	if fired.Load() != 1 {
		t.Fatal("past-due callback should fire on the next processed tick")
	}
}

func TestRemoveBeforeFire(t *testing.T) {
	c := New()
	k := c.Schedule(3600, func() { t.Error("removed callback fired") })
	if !c.Remove(k) {
		t.Fatal("Remove should report the key as present")
	}
	if c.Remove(k) {
		t.Fatal("second Remove should be a no-op")
	}
	if c.Has(k) {
		t.Fatal("Has should be false after Remove")
	}
	c.Tick()
}

func TestUpdateSwapsCallback(t *testing.T) {
	c := New()
	var old, repl atomic.Int32
	k := c.Schedule(0, func() { old.Add(1) })
	if !c.Update(k, func() { repl.Add(1) }) {
		t.Fatal("Update should succeed while registered")
	}
	c.Tick()
	if old.Load() != 0 || repl.Load() != 1 {
		t.Fatalf("old=%d repl=%d, want 0/1", old.Load(), repl.Load())
	}
	if c.Update(k, func() {}) {
		t.Fatal("Update after firing should fail")
	}
}

func TestPanickingCallbackIsIsolated(t *testing.T) {
	sunk := make(chan error, 1)
	c := New(WithErrorSink(func(_ Key, err error) { sunk <- err }))

	var healthy atomic.Int32
	c.Schedule(0, func() { panic("bad callback") })
	c.Schedule(0.0001, func() { healthy.Add(1) })

	c.Tick()

	select {
	case err := <-sunk:
		if err == nil {
			t.Fatal("sink received nil error")
		}
	default:
		t.Fatal("panic never reached the error sink")
	}
	if healthy.Load() != 1 {
		t.Fatal("a panicking callback starved its sibling")
	}
}

func TestStartStopJoinRestart(t *testing.T) {
	c := New(WithQuantum(10 * time.Millisecond))

	c.Start()
	c.Start() // idempotent
	if !c.WaitForScheduler(time.Second) {
		t.Fatal("scheduler never came up")
	}
	if !c.Running() {
		t.Fatal("Running should be true after Start")
	}

	start := time.Now()
	c.Stop()
	if d := time.Since(start); d > 100*time.Millisecond {
		t.Fatalf("Stop blocked for %v", d)
	}
	if !c.Join(time.Second) {
		t.Fatal("Join timed out after Stop")
	}

	// The loop restarts cleanly.
	c.Start()
	if !c.WaitForScheduler(time.Second) {
		t.Fatal("scheduler did not restart")
	}
	c.Stop()
	if !c.Join(time.Second) {
		t.Fatal("Join timed out after restart")
	}
}

func TestJoinWithoutStart(t *testing.T) {
	c := New()
	if !c.Join(0) {
		t.Fatal("Join on a never-started clock should succeed immediately")
	}
	if c.WaitForScheduler(10 * time.Millisecond) {
		t.Fatal("WaitForScheduler should fail on a never-started clock")
	}
}

func TestLoopTrackedInRuntime(t *testing.T) {
	rt := resolve.NewRuntime()
	c := New(WithQuantum(10*time.Millisecond), WithClockRuntime(rt))
	c.Start()
	if !c.WaitForScheduler(time.Second) {
		t.Fatal("scheduler never came up")
	}
	c.Stop()
	rep := rt.CleanupAll(time.Second)
	if rep.Joined != 1 {
		t.Fatalf("Joined = %d, want the clock loop", rep.Joined)
	}
}

func TestNowMonotonic(t *testing.T) {
	c := New()
	a := c.Now()
	time.Sleep(5 * time.Millisecond)
	b := c.Now()
	if b <= a {
		t.Fatalf("Now went from %g to %g, want strictly increasing", a, b)
	}
	if c.Day() != 0 {
		t.Fatalf("Day = %d for a fresh clock, want 0", c.Day())
	}
}

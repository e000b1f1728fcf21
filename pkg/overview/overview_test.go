package overview

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"tempo/pkg/clock"
	"tempo/pkg/resolve"
)

func fastClock(rt *resolve.Runtime) *clock.Clock {
	return clock.New(
		clock.WithInterval(0.05),
		clock.WithQuantum(10*time.Millisecond),
		clock.WithClockRuntime(rt),
	)
}

func TestLoadFiresAndRecords(t *testing.T) {
	rt := resolve.NewRuntime()
	ov := New(WithClock(fastClock(rt)), WithOverviewRuntime(rt))
	defer ov.Teardown(time.Second)

	ov.Scan(nil)
	when := ov.Clock().Now() + 0.1
	p := ov.Load("quick", when, func(ctx context.Context) (any, error) {
		return 7, nil
	})

	rec, err := p.Wait(2 * time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if rec == nil {
		t.Fatal("no record after firing")
	}
	if rec.Value != 7 {
		t.Fatalf("Value = %v, want 7", rec.Value)
	}
	if rec.Skew() < 0 {
		t.Fatalf("Skew = %g, a firing cannot start before its schedule", rec.Skew())
	}
	if rec.Duration() < 0 {
		t.Fatalf("Duration = %g, want non-negative", rec.Duration())
	}
	if p.Calls() != 1 {
		t.Fatalf("Calls = %d, want 1", p.Calls())
	}
}

func TestNeverPendingWaitsImmediately(t *testing.T) {
	rt := resolve.NewRuntime()
	ov := New(WithClock(fastClock(rt)), WithOverviewRuntime(rt))
	defer ov.Teardown(time.Second)

	p := ov.Load("inert", Never, func(ctx context.Context) (any, error) {
		return "unused", nil
	})
	if p.Expected() {
		t.Fatal("Never pending must not be expected")
	}

	start := time.Now()
	rec, err := p.Wait(5 * time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if rec != nil {
		t.Fatalf("record = %v before any call, want nil", rec)
	}
	if d := time.Since(start); d > 100*time.Millisecond {
		t.Fatalf("Wait on a Never pending took %v, should be immediate", d)
	}
}

func TestNeverPendingManualCall(t *testing.T) {
	rt := resolve.NewRuntime()
	ov := New(WithClock(fastClock(rt)), WithOverviewRuntime(rt))
	defer ov.Teardown(time.Second)

	p := ov.Load("manual", Never, func(ctx context.Context) (any, error) {
		return 42, nil
	})
	v, err := p.Call()
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v != 42 {
		t.Fatalf("Call value = %v, want 42", v)
	}
	rec, err := p.Wait(time.Second)
	if err != nil || rec == nil {
		t.Fatalf("Wait after Call = (%v, %v), want the record", rec, err)
	}
}

func TestCallWithoutFunc(t *testing.T) {
	rt := resolve.NewRuntime()
	ov := New(WithClock(fastClock(rt)), WithOverviewRuntime(rt))
	defer ov.Teardown(time.Second)

	p := ov.Load("empty", Never, nil)
	if _, err := p.Call(); !errors.Is(err, ErrNoFunc) {
		t.Fatalf("Call = %v, want ErrNoFunc", err)
	}
}

func TestRecordArithmetic(t *testing.T) {
	rec := &Record{Scheduled: 2, Start: 2.5, End: 3.25}
	if got := rec.Skew(); got != 0.5 {
		t.Fatalf("Skew = %g, want 0.5", got)
	}
	if got := rec.Duration(); got != 0.75 {
		t.Fatalf("Duration = %g, want 0.75", got)
	}
}

func TestWaitAllKeepsRegistrationOrder(t *testing.T) {
	rt := resolve.NewRuntime()
	ov := New(WithClock(fastClock(rt)), WithOverviewRuntime(rt))
	defer ov.Teardown(time.Second)

	ov.Scan(nil)
	ov.Load("inert", Never, nil)
	ov.Load("quick", ov.Clock().Now()+0.05, func(ctx context.Context) (any, error) {
		return "ok", nil
	})
	ov.Load("late", ov.Clock().Now()+3600, func(ctx context.Context) (any, error) {
		return "never seen", nil
	})

	recs := ov.WaitAll(500 * time.Millisecond)
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	if recs[0] != nil {
		t.Fatal("inert pending should yield a nil record")
	}
	if recs[1] == nil || recs[1].Value != "ok" {
		t.Fatalf("quick pending record = %v", recs[1])
	}
	if recs[2] != nil {
		t.Fatal("a pending past its wait budget should yield a nil record")
	}
}

func TestTrackExtra(t *testing.T) {
	rt := resolve.NewRuntime()
	ov := New(WithClock(fastClock(rt)), WithOverviewRuntime(rt))
	defer ov.Teardown(time.Second)

	m := resolve.NewMethod(func(ctx context.Context) (int, error) {
		time.Sleep(20 * time.Millisecond)
		return 1, nil
	}, resolve.WithRuntime(rt))
	r := m.Go(context.Background())
	ov.TrackExtra(r)

	ov.WaitAll(time.Second)
	if !r.Done() {
		t.Fatal("WaitAll returned before the extra handle settled")
	}
}

func TestRunLifecycle(t *testing.T) {
	rt := resolve.NewRuntime()
	ov := New(WithClock(fastClock(rt)), WithOverviewRuntime(rt))

	recs := ov.Run(func(o *Overview) {
		o.Load("job", o.Clock().Now()+0.05, func(ctx context.Context) (any, error) {
			return "done", nil
		})
	}, 2*time.Second, time.Second)

	if len(recs) != 1 || recs[0] == nil {
		t.Fatalf("records = %v, want one settled record", recs)
	}
	if ov.Clock().Running() {
		t.Fatal("clock still running after Run")
	}
}

func TestConcludeSummary(t *testing.T) {
	rt := resolve.NewRuntime()
	ov := New(WithClock(fastClock(rt)), WithOverviewRuntime(rt))

	res := ov.Scan(func(o *Overview) {
		o.Load("good", o.Clock().Now()+0.05, func(ctx context.Context) (any, error) {
			return 1, nil
		})
		o.Load("bad", o.Clock().Now()+0.05, func(ctx context.Context) (any, error) {
			return nil, errors.New("deliberate")
		})
	})

	s := res.Conclude(2*time.Second, time.Second)
	if s.Fired != 2 {
		t.Fatalf("Fired = %d, want 2", s.Fired)
	}
	if s.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", s.Failed)
	}
	if s.Skipped != 0 {
		t.Fatalf("Skipped = %d, want 0", s.Skipped)
	}
}

func TestTeardownDisarmsBorrowedClock(t *testing.T) {
	rt := resolve.NewRuntime()
	clk := fastClock(rt)
	ov := New(WithClock(clk), WithOverviewRuntime(rt))

	ov.Scan(nil)
	var fired atomic.Bool
	p := ov.Load("later", clk.Now()+0.3, func(ctx context.Context) (any, error) {
		fired.Store(true)
		return nil, nil
	})

	ov.Teardown(time.Second)
	if ov.Active() {
		t.Fatal("overview should be inactive after Teardown")
	}
	if n := clk.Len(); n != 0 {
		t.Fatalf("clock still holds %d entries after Teardown", n)
	}
	if p.Expected() {
		t.Fatal("pending should be disarmed after Teardown")
	}

	// Re-arming through a torn-down overview must be a no-op.
	ov.Keep(p, clk.Now()+0.05)
	if clk.Len() != 0 {
		t.Fatal("Keep re-registered work after Teardown")
	}

	// Even if the clock's owner restarts it, nothing of ours may fire.
	clk.Start()
	time.Sleep(500 * time.Millisecond)
	clk.Stop()
	clk.Join(time.Second)
	if fired.Load() {
		t.Fatal("job fired after its overview was torn down")
	}
	rt.CleanupAll(time.Second)
}

func TestLoadAfterTeardownStaysUnarmed(t *testing.T) {
	rt := resolve.NewRuntime()
	clk := fastClock(rt)
	ov := New(WithClock(clk), WithOverviewRuntime(rt))
	ov.Teardown(time.Second)

	p := ov.Load("late-comer", clk.Now()+0.05, func(ctx context.Context) (any, error) {
		return nil, nil
	})
	if p.Expected() {
		t.Fatal("a torn-down overview must not arm new pendings")
	}
	if clk.Len() != 0 {
		t.Fatal("late registration reached the clock")
	}
}

func TestScanWaitTearsDown(t *testing.T) {
	rt := resolve.NewRuntime()
	ov := New(WithClock(fastClock(rt)), WithOverviewRuntime(rt))

	res := ov.Scan(func(o *Overview) {
		o.Load("job", o.Clock().Now()+0.05, func(ctx context.Context) (any, error) {
			return "done", nil
		})
	})
	recs := res.Wait(2 * time.Second)
	if len(recs) != 1 || recs[0] == nil {
		t.Fatalf("records = %v, want one settled record", recs)
	}
	if ov.Clock().Running() {
		t.Fatal("clock still running after Wait")
	}
	if ov.Active() {
		t.Fatal("overview still active after Wait")
	}
}

func TestTrackExtraDedupes(t *testing.T) {
	rt := resolve.NewRuntime()
	ov := New(WithClock(fastClock(rt)), WithOverviewRuntime(rt))
	defer ov.Teardown(time.Second)

	m := resolve.NewMethod(func(ctx context.Context) (int, error) {
		return 1, nil
	}, resolve.WithRuntime(rt))
	r := m.Go(context.Background())
	ov.TrackExtra(r)
	ov.TrackExtra(r)
	ov.TrackExtra(nil)

	ov.mu.Lock()
	n := len(ov.extras)
	ov.mu.Unlock()
	if n != 1 {
		t.Fatalf("tracked %d extras, want 1", n)
	}
}

func TestLoadSpec(t *testing.T) {
	rt := resolve.NewRuntime()
	ov := New(WithClock(fastClock(rt)), WithOverviewRuntime(rt))
	defer ov.Teardown(time.Second)

	if _, err := ov.LoadSpec("bad", "not a cron line", nil); err == nil {
		t.Fatal("bogus cron spec should not parse")
	}

	ov.Scan(nil)
	p, err := ov.LoadSpec("every-second", "@every 1s", func(ctx context.Context) (any, error) {
		return "tick", nil
	})
	if err != nil {
		t.Fatalf("LoadSpec: %v", err)
	}
	rec, err := p.Wait(3 * time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if rec == nil || rec.Value != "tick" {
		t.Fatalf("record = %v, want the first firing", rec)
	}
	// Cron pendings re-arm themselves after a firing.
	if !p.Expected() {
		t.Fatal("cron pending should stay armed")
	}
}

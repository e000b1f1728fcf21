package overview

import (
	"sync"
	"time"

	"tempo/internal/eventbus"
	"tempo/pkg/logx"
)

// Result is the in-flight view of one scan. Wait collects records; Conclude
// additionally tears the overview down and summarizes.
type Result struct {
	ov *Overview

	once sync.Once
	recs []*Record
}

// Scan starts the clock, waits for the scheduler to come up, and lets init
// register work. The returned Result is how callers collect the outcome.
func (o *Overview) Scan(init func(*Overview)) *Result {
	o.clk.Start()
	o.clk.WaitForScheduler(time.Second)
	if init != nil {
		init(o)
	}
	return &Result{ov: o}
}

// Wait collects records for every tracked pending, giving each its own
// budget, then tears the overview down with the default budget, so a bare
// Scan(init).Wait(...) never leaks a running clock. Safe to call repeatedly;
// collection runs once and teardown is idempotent.
func (r *Result) Wait(perItem time.Duration) []*Record {
	recs := r.collect(perItem)
	r.ov.End()
	return recs
}

// collect runs WaitAll exactly once and caches the records.
func (r *Result) collect(perItem time.Duration) []*Record {
	r.once.Do(func() {
		r.recs = r.ov.WaitAll(perItem)
		if r.ov.bus != nil {
			r.ov.bus.Publish(eventbus.Event{
				Type: eventbus.TypeScanDone,
				Data: map[string]any{"records": len(r.recs)},
			})
		}
	})
	return r.recs
}

// Summary aggregates a finished scan.
type Summary struct {
	Expected int
	Fired    int
	Failed   int
	Skipped  int

	TotalDuration float64
	MeanSkew      float64
}

// Conclude waits for everything, tears the overview down, and returns the
// aggregate view of what happened.
func (r *Result) Conclude(perItem, teardown time.Duration) Summary {
	recs := r.collect(perItem)
	r.ov.Teardown(teardown)

	var s Summary
	var skew float64
	for _, rec := range recs {
		if rec == nil {
			s.Skipped++
			continue
		}
		s.Fired++
		if rec.Err != nil {
			s.Failed++
		}
		s.TotalDuration += rec.Duration()
		skew += rec.Skew()
	}
	items, _ := r.ov.snapshot()
	for _, p := range items {
		if p.Expected() {
			s.Expected++
		}
	}
	if s.Fired > 0 {
		s.MeanSkew = skew / float64(s.Fired)
	}
	if !r.ov.log.IsZero() {
		r.ov.log.Info("scan concluded",
			logx.Int("fired", s.Fired),
			logx.Int("failed", s.Failed),
			logx.Int("skipped", s.Skipped),
			logx.Float64("mean_skew_s", s.MeanSkew),
		)
	}
	return s
}

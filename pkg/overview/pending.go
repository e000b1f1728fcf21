package overview

import (
	"fmt"
	"sync"
	"time"

	cron "github.com/robfig/cron/v3"

	"tempo/internal/eventbus"
	"tempo/pkg/clock"
	"tempo/pkg/logx"
)

// Record is the trace of one firing.
// All times are clock seconds.
type Record struct {
	Scheduled float64
	Start     float64
	End       float64
	Value     any
	Err       error
}

// Skew is how late the firing started relative to its scheduled second.
func (r *Record) Skew() float64 { return r.Start - r.Scheduled }

// Duration is how long the job ran.
func (r *Record) Duration() float64 { return r.End - r.Start }

func (r *Record) String() string {
	return fmt.Sprintf("Record(scheduled=%g start=%g end=%g err=%v)", r.Scheduled, r.Start, r.End, r.Err)
}

// Pending is one tracked registration: a job, its firing time, and the
// record of what happened. The done channel closes on the first firing;
// recurring pendings keep updating the latest record afterwards.
type Pending struct {
	name      string
	scheduled float64
	expected  bool
	fn        Job
	ov        *Overview
	key       clock.Key
	respec    cron.Schedule

	mu       sync.Mutex
	rec      *Record
	calls    int
	totalDur float64
	done     chan struct{}
	once     sync.Once
}

func (p *Pending) Name() string { return p.name }

// Expected reports whether the pending is armed to fire on the clock.
func (p *Pending) Expected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.expected
}

// Scheduled is the clock second the next (or last) firing was armed for.
func (p *Pending) Scheduled() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scheduled
}

// Calls is how many times the job has run.
func (p *Pending) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// TotalDuration is the summed run time of every firing, in seconds.
func (p *Pending) TotalDuration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalDur
}

// Record returns the latest record, nil before the first firing.
func (p *Pending) Record() *Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rec
}

// Wait blocks until the pending has fired at least once or the budget runs
// out. Pendings loaded with Never return immediately with whatever record a
// manual Call may have produced; a timeout returns ErrWaitTimeout.
func (p *Pending) Wait(timeout time.Duration) (*Record, error) {
	if !p.Expected() {
		return p.Record(), nil
	}
	if timeout < 0 {
		<-p.done
		return p.Record(), nil
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-p.done:
		return p.Record(), nil
	case <-t.C:
		return nil, ErrWaitTimeout
	}
}

// Call runs the job right now on the calling goroutine, recording the firing
// exactly like a scheduled one. Calling a pending that has no function is a
// protocol error.
func (p *Pending) Call() (any, error) {
	if p.fn == nil {
		return nil, ErrNoFunc
	}
	rec := p.fire(p.ov.clk.Now())
	return rec.Value, rec.Err
}

// fire runs the job and records the outcome. scheduled is the second this
// particular firing was armed for.
func (p *Pending) fire(scheduled float64) *Record {
	clk := p.ov.clk
	start := clk.Now()

	var (
		v   any
		err error
	)
	if p.fn == nil {
		err = ErrNoFunc
	} else {
		v, err = p.fn(p.ov.ctx)
	}
	end := clk.Now()

	rec := &Record{Scheduled: scheduled, Start: start, End: end, Value: v, Err: err}

	p.mu.Lock()
	p.rec = rec
	p.calls++
	p.totalDur += rec.Duration()
	p.mu.Unlock()
	p.once.Do(func() { close(p.done) })

	p.settle(rec)
	p.recur()
	return rec
}

// settle pushes the record to the store, bus and log.
func (p *Pending) settle(rec *Record) {
	o := p.ov
	if o.store != nil {
		if serr := o.store.AppendRecord(o.ctx, p.name, rec); serr != nil && !o.log.IsZero() {
			o.log.Warn("record not persisted", logx.String("name", p.name), logx.Err(serr))
		}
	}
	if o.bus != nil {
		o.bus.Publish(eventbus.Event{
			Type: eventbus.TypeCallbackFired,
			Data: map[string]any{"name": p.name, "ok": rec.Err == nil},
		})
	}
	if !o.log.IsZero() {
		o.log.Debug("pending fired",
			logx.String("name", p.name),
			logx.Float64("skew_s", rec.Skew()),
			logx.Float64("duration_s", rec.Duration()),
			logx.Err(rec.Err),
		)
	}
}

// recur re-arms cron-backed pendings for their next occurrence.
func (p *Pending) recur() {
	if p.respec == nil {
		return
	}
	clk := p.ov.clk
	due := clk.Now() + time.Until(p.respec.Next(time.Now())).Seconds()
	p.rearm(due)
}

// rearm schedules one more firing at `when`. A torn-down overview never
// re-arms; the clock is borrowed and must come back empty.
func (p *Pending) rearm(when float64) {
	o := p.ov
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.active {
		return
	}
	k := o.clk.Schedule(when, func() { p.fire(when) })
	p.mu.Lock()
	p.scheduled = when
	p.expected = true
	p.key = k
	p.mu.Unlock()
}

// disarm unregisters the pending from the clock. Called with the overview
// lock held, during teardown.
func (p *Pending) disarm(clk *clock.Clock) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.expected {
		clk.Remove(p.key)
		p.expected = false
	}
}

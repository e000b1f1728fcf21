// Package overview coordinates scheduled jobs end to end: register work on a
// clock, let it fire, wait for everything in order, then tear the machinery
// down within a budget.
package overview

import (
	"context"
	"errors"
	"sync"
	"time"

	cron "github.com/robfig/cron/v3"

	"tempo/internal/eventbus"
	"tempo/pkg/clock"
	"tempo/pkg/logx"
	"tempo/pkg/resolve"
)

// Never is the sentinel for jobs registered without a firing time. Waiting on
// them returns immediately; they only run when called by hand.
const Never = -1

var (
	// ErrNoFunc reports a pending invoked without a function attached.
	ErrNoFunc = errors.New("overview: pending has no function attached")
	// ErrWaitTimeout reports that a pending did not fire within the wait budget.
	ErrWaitTimeout = errors.New("overview: wait timed out")
)

// Job is the unit of scheduled work.
type Job func(ctx context.Context) (any, error)

// Waiter is anything whose completion can be awaited with a budget.
// *resolve.Resolve implements it.
type Waiter interface {
	Wait(timeout time.Duration) (bool, error)
}

// RecordStore persists completed records. Implementations must tolerate
// concurrent appends.
type RecordStore interface {
	AppendRecord(ctx context.Context, name string, rec *Record) error
}

var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Overview owns a clock and a runtime and tracks every pending registered
// through it, in registration order.
type Overview struct {
	clk   *clock.Clock
	rt    *resolve.Runtime
	log   logx.Logger
	bus   eventbus.Bus
	store RecordStore

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	active bool
	items  []*Pending
	extras []Waiter
}

type OverviewOption func(*Overview)

func WithClock(c *clock.Clock) OverviewOption {
	return func(o *Overview) { o.clk = c }
}

func WithOverviewRuntime(rt *resolve.Runtime) OverviewOption {
	return func(o *Overview) { o.rt = rt }
}

func WithOverviewLogger(l logx.Logger) OverviewOption {
	return func(o *Overview) { o.log = l }
}

func WithOverviewBus(b eventbus.Bus) OverviewOption {
	return func(o *Overview) { o.bus = b }
}

// WithStore persists every completed record through s.
func WithStore(s RecordStore) OverviewOption {
	return func(o *Overview) { o.store = s }
}

func New(opts ...OverviewOption) *Overview {
	o := &Overview{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.rt == nil {
		o.rt = resolve.Default()
	}
	if o.clk == nil {
		o.clk = clock.New(
			clock.WithClockLogger(o.log),
			clock.WithClockBus(o.bus),
			clock.WithClockRuntime(o.rt),
		)
	}
	o.ctx, o.cancel = context.WithCancel(context.Background())
	o.active = true
	return o
}

// Active reports whether the overview still arms work on the clock.
// Teardown clears it for good.
func (o *Overview) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// Clock exposes the underlying clock, mainly so callers can read its time.
func (o *Overview) Clock() *clock.Clock { return o.clk }

// Load registers fn to fire when the clock reaches `when` seconds.
// Passing Never keeps the pending inert: it is tracked, never scheduled, and
// waiting on it returns immediately.
func (o *Overview) Load(name string, when float64, fn Job) *Pending {
	return o.load(name, when, fn, nil)
}

// load registers a pending; sched, when present, makes it recur. Arming
// happens under the overview lock so a concurrent Teardown can never leave a
// stray entry behind on the clock.
func (o *Overview) load(name string, when float64, fn Job, sched cron.Schedule) *Pending {
	p := &Pending{
		name:      name,
		scheduled: when,
		fn:        fn,
		ov:        o,
		respec:    sched,
		done:      make(chan struct{}),
	}
	o.mu.Lock()
	if o.active && when != Never {
		p.expected = true
		p.key = o.clk.Schedule(when, func() { p.fire(when) })
	}
	o.items = append(o.items, p)
	o.mu.Unlock()

	if !o.log.IsZero() {
		o.log.Debug("pending loaded",
			logx.String("name", name),
			logx.Float64("when_s", when),
			logx.Bool("expected", p.Expected()),
		)
	}
	return p
}

// LoadSpec registers fn on a cron schedule ("*/5 * * * *", "@hourly", ...).
// The spec is evaluated against wall time, mapped onto the clock's timeline,
// and re-registered after every firing, so the pending keeps recurring until
// teardown.
func (o *Overview) LoadSpec(name, spec string, fn Job) (*Pending, error) {
	sched, err := cronParser.Parse(spec)
	if err != nil {
		return nil, err
	}
	due := o.clk.Now() + time.Until(sched.Next(time.Now())).Seconds()
	return o.load(name, due, fn, sched), nil
}

// TrackExtra adds an out-of-band handle to wait for during WaitAll.
// Tracking the same handle twice is a no-op.
func (o *Overview) TrackExtra(w Waiter) {
	if w == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, have := range o.extras {
		if have == w {
			return
		}
	}
	o.extras = append(o.extras, w)
}

// Keep re-arms a pending for one more firing at `when`. Useful for jobs
// registered as one-shots that turn out to need another round.
func (o *Overview) Keep(p *Pending, when float64) {
	p.rearm(when)
}

func (o *Overview) snapshot() ([]*Pending, []Waiter) {
	o.mu.Lock()
	defer o.mu.Unlock()
	items := make([]*Pending, len(o.items))
	copy(items, o.items)
	extras := make([]Waiter, len(o.extras))
	copy(extras, o.extras)
	return items, extras
}

// WaitAll waits for every tracked pending and extra, in registration order,
// giving each one its own budget. Pendings loaded with Never are skipped.
// Records are returned in the same order, with nil entries for pendings that
// were skipped or timed out.
func (o *Overview) WaitAll(perItem time.Duration) []*Record {
	items, extras := o.snapshot()
	out := make([]*Record, len(items))
	for i, p := range items {
		rec, err := p.Wait(perItem)
		if err != nil && !o.log.IsZero() {
			o.log.Warn("pending not settled", logx.String("name", p.name), logx.Err(err))
		}
		out[i] = rec
	}
	for _, w := range extras {
		if ok, err := w.Wait(perItem); !ok && !o.log.IsZero() {
			o.log.Warn("extra handle not settled", logx.Err(err))
		}
	}
	return out
}

// Teardown deactivates the overview, unregisters every armed entry from the
// clock, stops and joins the loop, and cleans up the runtime within the
// given budget. The clock itself is only borrowed: once torn down, none of
// this overview's work can fire again even if its owner restarts it.
// Idempotent; later calls are cheap no-ops.
func (o *Overview) Teardown(timeout time.Duration) resolve.CleanupReport {
	o.cancel()
	o.mu.Lock()
	if o.active {
		o.active = false
		for _, p := range o.items {
			p.disarm(o.clk)
		}
	}
	o.mu.Unlock()
	o.clk.Stop()
	o.clk.Join(timeout)
	rep := o.rt.CleanupAll(timeout)
	if !o.log.IsZero() {
		o.log.Debug("overview teardown",
			logx.Int("joined", rep.Joined),
			logx.Int("abandoned", rep.Abandoned),
		)
	}
	return rep
}

// End is Teardown with a small default budget.
func (o *Overview) End() resolve.CleanupReport {
	return o.Teardown(5 * time.Second)
}

// Run is the whole lifecycle in one call: start the clock, let init register
// work, wait for everything, tear down. Returns the records from WaitAll.
func (o *Overview) Run(init func(*Overview), perItem, teardown time.Duration) []*Record {
	res := o.Scan(init)
	recs := res.collect(perItem)
	o.Teardown(teardown)
	return recs
}

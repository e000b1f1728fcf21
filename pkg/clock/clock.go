// Package clock implements a polling tick scheduler over a monotonic origin.
//
// Time is expressed as float64 seconds elapsed since the clock was created.
// Callbacks are registered for a due second and fired at most once, on the
// first processed tick whose time has reached them. The loop deliberately
// polls on a fixed quantum instead of arming per-callback timers; the
// registry stays trivially mutable while the loop runs.
package clock

import (
	"fmt"
	"sync"
	"time"

	"tempo/internal/eventbus"
	"tempo/pkg/logx"
	"tempo/pkg/resolve"
)

const (
	// DefaultInterval is the tick width in seconds.
	DefaultInterval = 1.0
	// DefaultQuantum is how often the loop polls for a new tick.
	DefaultQuantum = 100 * time.Millisecond
)

// Key identifies a registered callback. The due second is baked into the key
// so two registrations for the same instant remain distinct.
type Key struct {
	Seq uint64
	Due float64
}

func (k Key) String() string { return fmt.Sprintf("cb#%d@%gs", k.Seq, k.Due) }

// Callback runs on the scheduler goroutine. It must not call back into the
// Clock's Stop or Join.
type Callback func()

// ErrorSink receives callback panics converted to errors.
type ErrorSink func(key Key, err error)

// Clock is a restartable polling scheduler.
type Clock struct {
	interval float64
	quantum  time.Duration
	origin   time.Time

	log     logx.Logger
	errLog  logx.Logger
	bus     eventbus.Bus
	sink    ErrorSink
	rt      *resolve.Runtime

	mu       sync.Mutex
	seq      uint64
	cbs      map[Key]Callback
	lastTick int64

	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	readyCh chan struct{}
}

type ClockOption func(*Clock)

// WithInterval sets the tick width in seconds.
func WithInterval(seconds float64) ClockOption {
	return func(c *Clock) {
		if seconds > 0 {
			c.interval = seconds
		}
	}
}

// WithQuantum sets the loop's polling period.
func WithQuantum(d time.Duration) ClockOption {
	return func(c *Clock) {
		if d > 0 {
			c.quantum = d
		}
	}
}

func WithClockLogger(l logx.Logger) ClockOption {
	return func(c *Clock) { c.log = l }
}

func WithClockBus(b eventbus.Bus) ClockOption {
	return func(c *Clock) { c.bus = b }
}

// WithErrorSink replaces the default (rate-limited log) destination for
// callback failures.
func WithErrorSink(sink ErrorSink) ClockOption {
	return func(c *Clock) { c.sink = sink }
}

// WithClockRuntime tracks the scheduler goroutine in rt, so a global
// CleanupAll joins it after Stop.
func WithClockRuntime(rt *resolve.Runtime) ClockOption {
	return func(c *Clock) { c.rt = rt }
}

func New(opts ...ClockOption) *Clock {
	c := &Clock{
		interval: DefaultInterval,
		quantum:  DefaultQuantum,
		origin:   time.Now(),
		cbs:      map[Key]Callback{},
		lastTick: -1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	// Callback failures can repeat every tick; keep the log bounded.
	c.errLog = c.log.Limit(5)
	if c.sink == nil {
		c.sink = func(key Key, err error) {
			c.errLog.Error("callback failed", logx.String("key", key.String()), logx.Err(err))
		}
	}
	return c
}

// Now returns seconds elapsed since the clock's origin. The reading is
// monotonic; wall-clock adjustments don't affect it.
func (c *Clock) Now() float64 { return time.Since(c.origin).Seconds() }

// Seconds is the whole number of elapsed seconds.
func (c *Clock) Seconds() int64 { return int64(c.Now()) }

// Day is the number of whole days elapsed since the origin.
func (c *Clock) Day() int { return int(c.Now() / 86400) }

// Interval returns the tick width in seconds.
func (c *Clock) Interval() float64 { return c.interval }

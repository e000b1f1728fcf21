package clock

import (
	"fmt"
	"sort"
	"time"

	"tempo/internal/eventbus"
	"tempo/pkg/logx"
)

// Start launches the scheduler goroutine. It is idempotent while running and
// may be called again after Stop+Join to restart the loop. Tick dedup state
// survives a restart, so no tick is ever processed twice.
func (c *Clock) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	c.readyCh = make(chan struct{})
	stop, done, ready := c.stopCh, c.doneCh, c.readyCh
	c.mu.Unlock()

	run := func() { c.loop(stop, done, ready) }
	if c.rt != nil {
		c.rt.Go("clock.loop", run)
	} else {
		go run()
	}
	if !c.log.IsZero() {
		c.log.Debug("clock started",
			logx.Float64("interval_s", c.interval),
			logx.Duration("quantum", c.quantum),
		)
	}
}

// Stop signals the loop to exit without waiting for it. Safe to call more
// than once, and before Start.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	close(c.stopCh)
}

// Join blocks until the loop goroutine exits or the timeout elapses.
// A negative timeout waits indefinitely. Returns true once the loop is gone;
// a clock that was never started joins immediately.
func (c *Clock) Join(timeout time.Duration) bool {
	c.mu.Lock()
	done := c.doneCh
	c.mu.Unlock()
	if done == nil {
		return true
	}
	if timeout < 0 {
		<-done
		return true
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}

// WaitForScheduler blocks until the loop goroutine is live, so callers can
// schedule knowing ticks are being processed. Returns false on timeout or if
// the clock was never started.
func (c *Clock) WaitForScheduler(timeout time.Duration) bool {
	c.mu.Lock()
	ready := c.readyCh
	c.mu.Unlock()
	if ready == nil {
		return false
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-ready:
		return true
	case <-t.C:
		return false
	}
}

// Running reports whether the loop has been started and not yet stopped.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Clock) loop(stop, done, ready chan struct{}) {
	defer close(done)
	close(ready)
	t := time.NewTicker(c.quantum)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			c.Tick()
		}
	}
}

type firing struct {
	key Key
	cb  Callback
}

// Tick processes the current tick index exactly once: if this index was
// already handled (by the loop or a manual call), it returns immediately.
// Otherwise every registration whose due second has passed is unregistered
// and fired, oldest due first.
func (c *Clock) Tick() {
	now := c.Now()
	idx := int64(now / c.interval)

	c.mu.Lock()
	if idx <= c.lastTick {
		c.mu.Unlock()
		return
	}
	c.lastTick = idx

	var due []firing
	for k, cb := range c.cbs {
		if k.Due <= now {
			due = append(due, firing{key: k, cb: cb})
		}
	}
	for _, f := range due {
		delete(c.cbs, f.key)
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].key.Due != due[j].key.Due {
			return due[i].key.Due < due[j].key.Due
		}
		return due[i].key.Seq < due[j].key.Seq
	})
	for _, f := range due {
		c.fire(f.key, f.cb)
	}
}

// fire runs one callback, converting a panic into an error for the sink.
// One bad callback never takes the loop down or starves its siblings.
func (c *Clock) fire(key Key, cb Callback) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("clock: callback %s panicked: %v", key, p)
			c.sink(key, err)
			if c.bus != nil {
				c.bus.Publish(eventbus.Event{
					Type: eventbus.TypeCallbackFailed,
					Data: map[string]any{"key": key.String(), "error": err.Error()},
				})
			}
		}
	}()
	cb()
	if c.bus != nil {
		c.bus.Publish(eventbus.Event{
			Type: eventbus.TypeCallbackFired,
			Data: map[string]any{"key": key.String()},
		})
	}
}

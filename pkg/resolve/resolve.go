package resolve

import (
	"sync"
	"time"

	"tempo/internal/eventbus"
)

// How often a background watcher checks the wrapped method.
const watchInterval = 50 * time.Millisecond

// Resolve is a one-shot handle for an eventual result. It starts empty and is
// published at most once with either a value or an error; every later publish
// attempt is ignored.
//
// All methods are safe for concurrent use.
type Resolve[T any] struct {
	method *Method[T]

	mu     sync.Mutex
	val    T
	err    error
	hasVal bool
	done   chan struct{}

	watch sync.Once
	unit  *unit
}

// Method returns the method this handle belongs to, or nil for detached use.
func (r *Resolve[T]) Method() *Method[T] { return r.method }

// Done reports whether the handle has been published.
func (r *Resolve[T]) Done() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Err returns the captured failure, if any. Nil while unpublished.
func (r *Resolve[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Wait blocks until the handle is published or the timeout elapses.
// A negative timeout waits indefinitely; zero polls without blocking.
// The bool reports whether the handle was published; the error is the
// captured invocation failure, if one was published.
func (r *Resolve[T]) Wait(timeout time.Duration) (bool, error) {
	switch {
	case timeout < 0:
		<-r.done
	case timeout == 0:
		select {
		case <-r.done:
		default:
			return false, nil
		}
	default:
		t := time.NewTimer(timeout)
		defer t.Stop()
		select {
		case <-r.done:
		case <-t.C:
			return false, nil
		}
	}
	r.mu.Lock()
	err := r.err
	r.mu.Unlock()
	return true, err
}

// Result waits like Wait and returns the value. When the deadline elapses
// first it returns ErrTimeout; a captured invocation failure is returned
// as-is.
func (r *Resolve[T]) Result(timeout time.Duration) (T, error) {
	var zero T
	ok, err := r.Wait(timeout)
	if !ok {
		return zero, ErrTimeout
	}
	if err != nil {
		return zero, err
	}
	r.mu.Lock()
	v := r.val
	r.mu.Unlock()
	return v, nil
}

// Peek returns the captured value without blocking. Handles of best-effort
// methods may adopt the method's most recent successful result when they were
// never published directly; everything else reports absent until published.
// A handle published with a failure always reports absent.
func (r *Resolve[T]) Peek() (T, bool) {
	var zero T

	r.mu.Lock()
	if r.hasVal {
		v := r.val
		r.mu.Unlock()
		return v, true
	}
	r.mu.Unlock()

	if r.Done() {
		// Published with a failure.
		return zero, false
	}

	if r.method != nil && r.method.cfg.bestEffort && r.method.Complete() {
		if v, ok := r.method.Last(); ok {
			r.publish(v, nil)
			return v, true
		}
	}
	return zero, false
}

// StartCapture starts a background watcher that polls the wrapped method and
// attempts a Peek once the method reports completion. Repeated calls are
// no-ops; the watcher also gives up as soon as the handle is published by
// other means.
func (r *Resolve[T]) StartCapture() {
	if r.method == nil {
		return
	}
	r.watch.Do(func() {
		rt := r.method.cfg.rt
		u := rt.track(r.method.label()+".watch", KindWatcher)
		go func() {
			defer rt.release(u)
			t := time.NewTicker(watchInterval)
			defer t.Stop()
			for {
				select {
				case <-r.done:
					return
				case <-t.C:
				}
				if r.method.Complete() {
					r.Peek()
					return
				}
			}
		}()
	})
}

// publish records the outcome exactly once. Later calls return false.
func (r *Resolve[T]) publish(v T, err error) bool {
	r.mu.Lock()
	select {
	case <-r.done:
		r.mu.Unlock()
		return false
	default:
	}
	if err != nil {
		r.err = err
	} else {
		r.val = v
		r.hasVal = true
	}
	close(r.done)
	r.mu.Unlock()

	if r.method != nil && r.method.cfg.bus != nil {
		r.method.cfg.bus.Publish(eventbus.Event{
			Type: eventbus.TypeResolvePublished,
			Data: map[string]any{
				"method": r.method.label(),
				"ok":     err == nil,
			},
		})
	}
	return true
}

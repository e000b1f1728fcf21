// Package profile records call timings per method and renders plain-text
// reports. It is intrusive-free: wrap a function with Instrument (or bracket
// a region with Begin) and read the stats later.
package profile

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Environment is a set of tracked methods sharing one start instant, so call
// offsets are comparable across methods.
type Environment struct {
	start time.Time

	mu      sync.Mutex
	methods []*Method
}

func NewEnvironment() *Environment {
	return &Environment{start: time.Now()}
}

var global atomic.Pointer[Environment]

func init() { global.Store(NewEnvironment()) }

// Global returns the process-wide environment.
func Global() *Environment { return global.Load() }

// ResetGlobal replaces the process-wide environment with a fresh one.
// Existing methods keep recording into the abandoned one.
func ResetGlobal() *Environment {
	env := NewEnvironment()
	global.Store(env)
	return env
}

// Track registers a new named method in the environment.
func (e *Environment) Track(name string) *Method {
	m := &Method{name: name, env: e, createdAt: time.Now()}
	e.mu.Lock()
	e.methods = append(e.methods, m)
	e.mu.Unlock()
	return m
}

// Methods returns the tracked methods in registration order.
func (e *Environment) Methods() []*Method {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Method, len(e.methods))
	copy(out, e.methods)
	return out
}

// Remove drops a method from the environment. Its recorded data is gone from
// aggregate views but the method itself keeps working.
func (e *Environment) Remove(m *Method) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, cur := range e.methods {
		if cur == m {
			e.methods = append(e.methods[:i], e.methods[i+1:]...)
			return
		}
	}
}

// Clear drops all methods.
func (e *Environment) Clear() {
	e.mu.Lock()
	e.methods = nil
	e.mu.Unlock()
}

// TotalCalls sums calls across all tracked methods.
func (e *Environment) TotalCalls() int {
	n := 0
	for _, m := range e.Methods() {
		n += m.TotalCalls()
	}
	return n
}

// TotalDuration sums run time across all tracked methods.
func (e *Environment) TotalDuration() time.Duration {
	var d time.Duration
	for _, m := range e.Methods() {
		d += m.TotalDuration()
	}
	return d
}

// MinDuration is the fastest single call across methods, 0 when nothing ran.
func (e *Environment) MinDuration() time.Duration {
	var best time.Duration
	seen := false
	for _, m := range e.Methods() {
		if m.TotalCalls() == 0 {
			continue
		}
		d := m.MinDuration()
		if !seen || d < best {
			best = d
			seen = true
		}
	}
	return best
}

// MaxDuration is the slowest single call across methods.
func (e *Environment) MaxDuration() time.Duration {
	var worst time.Duration
	for _, m := range e.Methods() {
		if d := m.MaxDuration(); d > worst {
			worst = d
		}
	}
	return worst
}

// AvgDuration is the mean call duration across all calls of all methods.
func (e *Environment) AvgDuration() time.Duration {
	calls := e.TotalCalls()
	if calls == 0 {
		return 0
	}
	return e.TotalDuration() / time.Duration(calls)
}

// History merges every method's calls, ordered by start offset.
func (e *Environment) History() []*Call {
	var out []*Call
	for _, m := range e.Methods() {
		out = append(out, m.History()...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Start is the environment's origin instant.
func (e *Environment) Start() time.Time { return e.start }

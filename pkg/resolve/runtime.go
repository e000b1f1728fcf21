package resolve

import (
	"sync"
	"sync/atomic"
	"time"
	"weak"

	"tempo/internal/eventbus"
	"tempo/pkg/logx"
)

// Kinds of tracked units.
const (
	KindSpawn   = "spawn"
	KindWatcher = "watcher"
	KindThread  = "thread"
)

// unit is the bookkeeping record for one background goroutine.
// The runtime only holds it weakly; the goroutine (and the handle it serves)
// keep it alive for as long as joining it is meaningful.
type unit struct {
	name    string
	kind    string
	started time.Time
	done    chan struct{}
	once    sync.Once
}

func (u *unit) finish() { u.once.Do(func() { close(u.done) }) }

func (u *unit) finished() bool {
	select {
	case <-u.done:
		return true
	default:
		return false
	}
}

type kindStats struct {
	started  uint64
	finished uint64
}

// Runtime tracks spawned goroutines without owning them.
//
// Registration is weak: once a goroutine finishes and nothing references its
// handle anymore, the record becomes collectable and CleanupAll skips it.
// A Runtime never prevents a handle from being garbage collected.
type Runtime struct {
	log logx.Logger
	bus eventbus.Bus

	mu    sync.Mutex
	units []weak.Pointer[unit]
	stats map[string]*kindStats

	cleanups atomic.Uint64
}

type RuntimeOption func(*Runtime)

func WithRuntimeLogger(l logx.Logger) RuntimeOption {
	return func(rt *Runtime) { rt.log = l }
}

func WithRuntimeBus(b eventbus.Bus) RuntimeOption {
	return func(rt *Runtime) { rt.bus = b }
}

func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{stats: map[string]*kindStats{}}
	for _, opt := range opts {
		if opt != nil {
			opt(rt)
		}
	}
	return rt
}

var defaultRT atomic.Pointer[Runtime]

func init() { defaultRT.Store(NewRuntime()) }

// Default returns the process-wide runtime used when no explicit one is set.
func Default() *Runtime { return defaultRT.Load() }

// ResetDefault replaces the process-wide runtime with a fresh one and returns
// it. Units tracked by the previous runtime are forgotten, not joined.
func ResetDefault(opts ...RuntimeOption) *Runtime {
	rt := NewRuntime(opts...)
	defaultRT.Store(rt)
	return rt
}

func (rt *Runtime) track(name, kind string) *unit {
	u := &unit{name: name, kind: kind, started: time.Now(), done: make(chan struct{})}
	rt.mu.Lock()
	rt.units = append(rt.units, weak.Make(u))
	st := rt.stats[kind]
	if st == nil {
		st = &kindStats{}
		rt.stats[kind] = st
	}
	st.started++
	rt.mu.Unlock()
	return u
}

func (rt *Runtime) release(u *unit) {
	u.finish()
	rt.mu.Lock()
	if st := rt.stats[u.kind]; st != nil {
		st.finished++
	}
	rt.mu.Unlock()
}

// Go runs fn on a tracked goroutine so CleanupAll can join it later.
func (rt *Runtime) Go(name string, fn func()) {
	u := rt.track(name, KindThread)
	go func() {
		defer rt.release(u)
		fn()
	}()
}

// Snapshot is a point-in-time view of runtime bookkeeping.
type Snapshot struct {
	Live     int
	ByKind   map[string]int
	Started  map[string]uint64
	Finished map[string]uint64
	Cleanups uint64
}

func (rt *Runtime) Snapshot() Snapshot {
	snap := Snapshot{
		ByKind:   map[string]int{},
		Started:  map[string]uint64{},
		Finished: map[string]uint64{},
		Cleanups: rt.cleanups.Load(),
	}

	rt.mu.Lock()
	kept := rt.units[:0]
	for _, wp := range rt.units {
		u := wp.Value()
		if u == nil {
			continue
		}
		kept = append(kept, wp)
		if !u.finished() {
			snap.Live++
			snap.ByKind[u.kind]++
		}
	}
	rt.units = kept
	for k, st := range rt.stats {
		snap.Started[k] = st.started
		snap.Finished[k] = st.finished
	}
	rt.mu.Unlock()

	return snap
}

// CleanupReport summarizes one CleanupAll pass.
type CleanupReport struct {
	Joined    int
	Abandoned int
	Collected int
}

// CleanupAll joins every tracked unit that is still reachable, then forgets
// the whole set. Calling it again immediately is a cheap no-op.
//
// Timeout semantics:
//   - negative: wait indefinitely for each unit
//   - zero: poll once, never block
//   - positive: one shared budget for the whole pass, spent in tracking order
//
// Units that already finished or were garbage collected cost nothing.
func (rt *Runtime) CleanupAll(timeout time.Duration) CleanupReport {
	rt.mu.Lock()
	pending := rt.units
	rt.units = nil
	rt.mu.Unlock()

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	var rep CleanupReport
	for _, wp := range pending {
		u := wp.Value()
		if u == nil {
			rep.Collected++
			continue
		}
		if u.finished() {
			rep.Joined++
			continue
		}
		switch {
		case timeout < 0:
			<-u.done
			rep.Joined++
		case timeout == 0:
			rep.Abandoned++
		default:
			left := time.Until(deadline)
			if left <= 0 {
				rep.Abandoned++
				continue
			}
			t := time.NewTimer(left)
			select {
			case <-u.done:
				t.Stop()
				rep.Joined++
			case <-t.C:
				rep.Abandoned++
			}
		}
	}

	rt.cleanups.Add(1)
	if rt.bus != nil {
		rt.bus.Publish(eventbus.Event{
			Type: eventbus.TypeCleanupDone,
			Data: rep,
		})
	}
	if !rt.log.IsZero() {
		rt.log.Debug("runtime cleanup",
			logx.Int("joined", rep.Joined),
			logx.Int("abandoned", rep.Abandoned),
			logx.Int("collected", rep.Collected),
		)
	}
	return rep
}

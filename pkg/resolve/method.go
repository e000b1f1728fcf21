package resolve

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"tempo/internal/eventbus"
	"tempo/pkg/logx"
)

// Func is the shape of everything a Method can wrap.
type Func[T any] func(ctx context.Context) (T, error)

type settings struct {
	name       string
	bestEffort bool
	rt         *Runtime
	log        logx.Logger
	bus        eventbus.Bus
}

type Option func(*settings)

func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithBestEffort allows unpublished handles of this method to adopt the
// method's most recent successful result when peeked or watched. Without it,
// a handle only ever observes the invocation it was created for.
func WithBestEffort() Option {
	return func(s *settings) { s.bestEffort = true }
}

func WithRuntime(rt *Runtime) Option {
	return func(s *settings) { s.rt = rt }
}

func WithLogger(l logx.Logger) Option {
	return func(s *settings) { s.log = l }
}

func WithBus(b eventbus.Bus) Option {
	return func(s *settings) { s.bus = b }
}

// Method wraps a function for synchronous or fire-and-forget invocation.
//
// The completion flag and last-result cache describe the method as a whole,
// not a particular invocation; per-invocation state lives on the Resolve
// returned by Go.
type Method[T any] struct {
	fn  Func[T]
	cfg settings

	mu      sync.Mutex
	last    T
	hasLast bool

	complete atomic.Bool
}

func NewMethod[T any](fn Func[T], opts ...Option) *Method[T] {
	var cfg settings
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.rt == nil {
		cfg.rt = Default()
	}
	return &Method[T]{fn: fn, cfg: cfg}
}

func (m *Method[T]) Name() string { return m.cfg.name }

func (m *Method[T]) label() string {
	if m.cfg.name != "" {
		return m.cfg.name
	}
	return "method"
}

// Complete reports whether the most recent invocation has finished. It is
// false before the first invocation and while one is in flight.
func (m *Method[T]) Complete() bool { return m.complete.Load() }

// Last returns the most recent successful result. A failed invocation clears
// the cache.
func (m *Method[T]) Last() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.hasLast
}

// Call invokes the wrapped function on the calling goroutine.
func (m *Method[T]) Call(ctx context.Context) (T, error) {
	m.complete.Store(false)
	v, err := m.invoke(ctx)
	m.noteResult(v, err)
	m.complete.Store(true)
	return v, err
}

// Go invokes the wrapped function on a fresh goroutine and returns a handle
// that is published with the outcome. Each call gets its own handle;
// concurrent calls never share or swap results.
func (m *Method[T]) Go(ctx context.Context) *Resolve[T] {
	r := m.NewResolve()
	u := m.cfg.rt.track(m.label(), KindSpawn)
	r.unit = u
	go func() {
		defer m.cfg.rt.release(u)
		m.runInto(ctx, r)
	}()
	return r
}

// NewResolve returns a handle attached to this method but not bound to any
// particular invocation. Combine with StartCapture (and WithBestEffort) to
// pick up whatever result the method produces next.
func (m *Method[T]) NewResolve() *Resolve[T] {
	return &Resolve[T]{method: m, done: make(chan struct{})}
}

func (m *Method[T]) runInto(ctx context.Context, r *Resolve[T]) {
	m.complete.Store(false)
	v, err := m.invoke(ctx)
	// The handle first: a caller blocked in Wait sees the outcome before the
	// method-level cache and flag move.
	r.publish(v, err)
	m.noteResult(v, err)
	m.complete.Store(true)
}

func (m *Method[T]) invoke(ctx context.Context) (v T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("resolve: %s panicked: %v", m.label(), p)
		}
	}()
	return m.fn(ctx)
}

func (m *Method[T]) noteResult(v T, err error) {
	m.mu.Lock()
	if err != nil {
		var zero T
		m.last = zero
		m.hasLast = false
	} else {
		m.last = v
		m.hasLast = true
	}
	m.mu.Unlock()

	if err != nil && !m.cfg.log.IsZero() {
		m.cfg.log.Warn("invocation failed", logx.String("method", m.label()), logx.Err(err))
	}
}

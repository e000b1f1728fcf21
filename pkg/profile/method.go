package profile

import (
	"context"
	"sync"
	"time"

	"tempo/pkg/resolve"
)

// Call is one recorded invocation. Start and End are offsets from the
// environment's origin.
type Call struct {
	Method *Method
	Start  time.Duration
	End    time.Duration
	Err    error
}

func (c *Call) Duration() time.Duration { return c.End - c.Start }

// Method accumulates timing data for one named callable.
type Method struct {
	name string
	env  *Environment

	mu         sync.Mutex
	createdAt  time.Time
	last       *Call
	history    []*Call
	totalDur   time.Duration
	totalCalls int
}

func (m *Method) Name() string      { return m.name }
func (m *Method) Env() *Environment { return m.env }

func (m *Method) CreatedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createdAt
}

// Begin starts timing a call; invoke the returned func to record it.
func (m *Method) Begin() func(err error) {
	start := time.Since(m.env.start)
	return func(err error) {
		end := time.Since(m.env.start)
		m.record(&Call{Method: m, Start: start, End: end, Err: err})
	}
}

func (m *Method) record(c *Call) {
	m.mu.Lock()
	m.last = c
	m.history = append(m.history, c)
	m.totalDur += c.Duration()
	m.totalCalls++
	m.mu.Unlock()
}

// Last returns the most recent call, nil before the first.
func (m *Method) Last() *Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func (m *Method) History() []*Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Call, len(m.history))
	copy(out, m.history)
	return out
}

func (m *Method) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalCalls
}

func (m *Method) TotalDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalDur
}

func (m *Method) AvgDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.totalCalls == 0 {
		return 0
	}
	return m.totalDur / time.Duration(m.totalCalls)
}

func (m *Method) MinDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best time.Duration
	for i, c := range m.history {
		if d := c.Duration(); i == 0 || d < best {
			best = d
		}
	}
	return best
}

func (m *Method) MaxDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	var worst time.Duration
	for _, c := range m.history {
		if d := c.Duration(); d > worst {
			worst = d
		}
	}
	return worst
}

// CallsPerSecond is the call rate since the method was created.
func (m *Method) CallsPerSecond() float64 {
	elapsed := time.Since(m.CreatedAt()).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(m.TotalCalls()) / elapsed
}

// Reset wipes recorded data and restarts the creation clock.
func (m *Method) Reset() {
	m.mu.Lock()
	m.last = nil
	m.history = nil
	m.totalDur = 0
	m.totalCalls = 0
	m.createdAt = time.Now()
	m.mu.Unlock()
}

// Instrument wraps fn so every invocation is recorded on m. The wrapped
// function is drop-in compatible with resolve.NewMethod.
func Instrument[T any](m *Method, fn resolve.Func[T]) resolve.Func[T] {
	return func(ctx context.Context) (T, error) {
		stop := m.Begin()
		v, err := fn(ctx)
		stop(err)
		return v, err
	}
}

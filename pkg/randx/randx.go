// Package randx provides weighted random selection with both direct and
// fire-and-forget variants. The threaded variants hand back a resolve handle
// so random draws can run off the calling goroutine.
package randx

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"tempo/pkg/resolve"
)

// ErrNoCandidates is returned when a selection has nothing to pick from.
var ErrNoCandidates = errors.New("randx: no candidates to pick from")

// Object pairs a candidate value with its relative selection weight.
type Object[T any] struct {
	Value  T
	Chance float64
}

// Prep builds an Object; chance <= 0 falls back to weight 1.
func Prep[T any](v T, chance float64) Object[T] {
	if chance <= 0 {
		chance = 1
	}
	return Object[T]{Value: v, Chance: chance}
}

// Rand is a seedable random source safe for concurrent use.
type Rand struct {
	mu  sync.Mutex
	src *rand.Rand
	rt  *resolve.Runtime
}

type RandOption func(*Rand)

// WithRandRuntime tracks threaded draws in rt instead of the default runtime.
func WithRandRuntime(rt *resolve.Runtime) RandOption {
	return func(r *Rand) { r.rt = rt }
}

func New(opts ...RandOption) *Rand {
	r := &Rand{src: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.rt == nil {
		r.rt = resolve.Default()
	}
	return r
}

// NewSeeded returns a deterministic source, for reproducible draws.
func NewSeeded(seed uint64, opts ...RandOption) *Rand {
	r := New(opts...)
	r.src = rand.New(rand.NewPCG(seed, seed))
	return r
}

func (r *Rand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Float64()
}

// Scaled returns a uniform value in [0, max).
func (r *Rand) Scaled(max float64) float64 {
	return r.Float64() * max
}

func (r *Rand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.IntN(n)
}

// Between returns a uniform value in [a, b] inclusive.
func (r *Rand) Between(a, b int) int {
	if b < a {
		a, b = b, a
	}
	return a + r.IntN(b-a+1)
}

// Choice picks one item uniformly.
func Choice[T any](r *Rand, items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrNoCandidates
	}
	return items[r.IntN(len(items))], nil
}

// Weighted picks one object proportionally to its chance.
func Weighted[T any](r *Rand, objs []Object[T]) (T, error) {
	var zero T
	total := 0.0
	for _, o := range objs {
		if o.Chance > 0 {
			total += o.Chance
		}
	}
	if total <= 0 {
		return zero, ErrNoCandidates
	}
	target := r.Float64() * total
	acc := 0.0
	for _, o := range objs {
		if o.Chance <= 0 {
			continue
		}
		acc += o.Chance
		if target < acc {
			return o.Value, nil
		}
	}
	// Float rounding can leave target == total; last valid candidate wins.
	for i := len(objs) - 1; i >= 0; i-- {
		if objs[i].Chance > 0 {
			return objs[i].Value, nil
		}
	}
	return zero, ErrNoCandidates
}

// GoFloat64 draws on a background goroutine.
func GoFloat64(r *Rand) *resolve.Resolve[float64] {
	m := resolve.NewMethod(func(ctx context.Context) (float64, error) {
		return r.Float64(), nil
	}, resolve.WithName("randx.float64"), resolve.WithRuntime(r.rt))
	return m.Go(context.Background())
}

// GoBetween draws a uniform int in [a, b] on a background goroutine.
func GoBetween(r *Rand, a, b int) *resolve.Resolve[int] {
	m := resolve.NewMethod(func(ctx context.Context) (int, error) {
		return r.Between(a, b), nil
	}, resolve.WithName("randx.between"), resolve.WithRuntime(r.rt))
	return m.Go(context.Background())
}

// GoChoice picks uniformly on a background goroutine.
func GoChoice[T any](r *Rand, items []T) *resolve.Resolve[T] {
	m := resolve.NewMethod(func(ctx context.Context) (T, error) {
		return Choice(r, items)
	}, resolve.WithName("randx.choice"), resolve.WithRuntime(r.rt))
	return m.Go(context.Background())
}

// GoWeighted picks proportionally on a background goroutine.
func GoWeighted[T any](r *Rand, objs []Object[T]) *resolve.Resolve[T] {
	m := resolve.NewMethod(func(ctx context.Context) (T, error) {
		return Weighted(r, objs)
	}, resolve.WithName("randx.weighted"), resolve.WithRuntime(r.rt))
	return m.Go(context.Background())
}

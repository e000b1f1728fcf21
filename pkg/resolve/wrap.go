package resolve

import (
	"sync"
	"time"
)

// Wrapped carries a value together with its creation time and an optional
// freeze latch. Once frozen, setters fail with ErrFrozen; freezing is
// one-way.
type Wrapped[T any] struct {
	mu      sync.Mutex
	value   T
	created time.Time
	frozen  bool
}

func Wrap[T any](v T) *Wrapped[T] {
	return &Wrapped[T]{value: v, created: time.Now()}
}

func (w *Wrapped[T]) Value() T {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

func (w *Wrapped[T]) Set(v T) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.frozen {
		return ErrFrozen
	}
	w.value = v
	return nil
}

func (w *Wrapped[T]) CreatedAt() time.Time { return w.created }

// Age is the time elapsed since the value was wrapped.
func (w *Wrapped[T]) Age() time.Duration { return time.Since(w.created) }

func (w *Wrapped[T]) Freeze() {
	w.mu.Lock()
	w.frozen = true
	w.mu.Unlock()
}

func (w *Wrapped[T]) Frozen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frozen
}

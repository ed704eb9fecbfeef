package service

import (
	"sync"
	"sync/atomic"
)

// Lazy builds a value once, on first use, and shares it afterwards.
// A failed build is not cached; the next Get tries again.
type Lazy[T any] struct {
	build func() (T, error)
	mu    sync.Mutex
	done  atomic.Bool
	value T
}

// NewLazy creates a Lazy around build
func NewLazy[T any](build func() (T, error)) *Lazy[T] {
	return &Lazy[T]{build: build}
}

// Get returns the value, building it if needed
func (l *Lazy[T]) Get() (T, error) {
	if l.done.Load() {
		return l.value, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done.Load() {
		return l.value, nil
	}

	v, err := l.build()
	if err != nil {
		var zero T
		return zero, err
	}
	l.value = v
	l.done.Store(true)
	return v, nil
}

// Ready reports whether the value has been built
func (l *Lazy[T]) Ready() bool {
	return l.done.Load()
}

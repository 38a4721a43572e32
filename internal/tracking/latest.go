package tracking

import "sync"

// Latest holds the most recent value published by a producer. Each publish
// replaces the previous value; consumers read whatever is current.
type Latest[T any] struct {
	mu    sync.RWMutex
	value T
	seq   uint64
}

// Store publishes v.
func (l *Latest[T]) Store(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.value = v
	l.seq++
}

// Load returns the current value and its sequence number. The sequence
// increases by one per Store, so callers can tell a fresh sample from a reused one.
func (l *Latest[T]) Load() (T, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.seq
}

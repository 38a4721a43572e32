package tracking

import (
	"errors"
	"sync"
)

// ErrSourceUnavailable marks a tracking source that failed to initialize.
var ErrSourceUnavailable = errors.New("tracking source unavailable")

// State is the lifecycle of a tracking source.
type State string

const (
	Uninitialized State = "uninitialized"
	Ready         State = "ready"
	Failed        State = "failed"
)

// Status is a snapshot of a source's lifecycle.
type Status struct {
	State State  `json:"state"`
	Error string `json:"error,omitempty"`
}

// IsReady reports whether samples from the source can be trusted.
func (s Status) IsReady() bool {
	return s.State == Ready
}

// Lifecycle tracks Uninitialized -> Ready | Failed. Readers poll Status; the
// tick path never waits on it.
type Lifecycle struct {
	mu     sync.RWMutex
	status Status
}

// NewLifecycle returns a lifecycle in the Uninitialized state.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{status: Status{State: Uninitialized}}
}

// MarkReady moves the lifecycle to Ready.
func (l *Lifecycle) MarkReady() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = Status{State: Ready}
}

// MarkFailed moves the lifecycle to Failed with a user-facing message.
func (l *Lifecycle) MarkFailed(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = Status{State: Failed, Error: message}
}

// Reset returns the lifecycle to Uninitialized.
func (l *Lifecycle) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = Status{State: Uninitialized}
}

// Status returns the current lifecycle snapshot.
func (l *Lifecycle) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// Err returns ErrSourceUnavailable wrapped with the failure message, or nil
// when the source has not failed.
func (l *Lifecycle) Err() error {
	st := l.Status()
	if st.State != Failed {
		return nil
	}
	if st.Error == "" {
		return ErrSourceUnavailable
	}
	return &sourceError{message: st.Error}
}

type sourceError struct {
	message string
}

func (e *sourceError) Error() string { return e.message }

func (e *sourceError) Unwrap() error { return ErrSourceUnavailable }

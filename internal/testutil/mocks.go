package testutil

import (
	"sync"
	"time"
)

// Recorder collects the callbacks of an observer so tests can assert on the
// exact sequence of events a signal delivered. It is safe for concurrent use
// because several sources emit from timer goroutines.
type Recorder[T any] struct {
	mu        sync.Mutex
	values    []T
	times     []time.Time
	errs      []error
	completes int
	notify    chan struct{}
}

// NewRecorder creates an empty Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{notify: make(chan struct{}, 1)}
}

// Next records a value along with its arrival time.
func (r *Recorder[T]) Next(v T) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.times = append(r.times, time.Now())
	r.mu.Unlock()
	r.poke()
}

// Error records an error event.
func (r *Recorder[T]) Error(err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
	r.poke()
}

// Complete records a completion event.
func (r *Recorder[T]) Complete() {
	r.mu.Lock()
	r.completes++
	r.mu.Unlock()
	r.poke()
}

func (r *Recorder[T]) poke() {
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Values returns a copy of the recorded values.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

// Times returns a copy of the arrival times of recorded values.
func (r *Recorder[T]) Times() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Time(nil), r.times...)
}

// Errors returns a copy of the recorded errors.
func (r *Recorder[T]) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// Completions returns how many times Complete was called.
func (r *Recorder[T]) Completions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completes
}

// Len returns the number of recorded values.
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// WaitFor blocks until cond holds or timeout elapses and reports whether cond held.
func (r *Recorder[T]) WaitFor(cond func(*Recorder[T]) bool, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		if cond(r) {
			return true
		}
		select {
		case <-r.notify:
		case <-timer.C:
			return cond(r)
		}
	}
}

// WaitForCompletion blocks until Complete has been recorded or timeout elapses.
func (r *Recorder[T]) WaitForCompletion(timeout time.Duration) bool {
	return r.WaitFor(func(r *Recorder[T]) bool { return r.Completions() > 0 }, timeout)
}

package signal

import (
	"reflect"
	"sync"
	"time"
)

// Every combinator returns a new Signal whose mount subscribes to its
// upstream and whose unmount releases that subscription. State such as an
// accumulator is created inside mount, so it starts over when the combinator
// is remounted after all of its subscribers left.

// forward builds a derived signal that subscribes to src with the observer
// returned by observe. observe runs once per mount.
func forward[T, U any](name string, src *Signal[T], observe func(down Observer[U]) Observer[T]) *Signal[U] {
	return derived(name, func(down Observer[U]) func() {
		return src.Subscribe(observe(down)).Unsubscribe
	})
}

// Map returns a signal emitting f(v) for every value v of src.
func Map[T, U any](src *Signal[T], f func(T) U) *Signal[U] {
	return forward("map", src, func(down Observer[U]) Observer[T] {
		return Observer[T]{
			Next:     func(v T) { down.Next(f(v)) },
			Error:    down.Error,
			Complete: down.Complete,
		}
	})
}

// Map returns a signal emitting f(v) for every value v of s.
func (s *Signal[T]) Map(f func(T) T) *Signal[T] {
	return Map(s, f)
}

// Filter returns a signal emitting the values of src for which predicate holds.
func Filter[T any](src *Signal[T], predicate func(T) bool) *Signal[T] {
	return forward("filter", src, func(down Observer[T]) Observer[T] {
		return Observer[T]{
			Next: func(v T) {
				if predicate(v) {
					down.Next(v)
				}
			},
			Error:    down.Error,
			Complete: down.Complete,
		}
	})
}

// Filter returns a signal emitting the values of s for which predicate holds.
func (s *Signal[T]) Filter(predicate func(T) bool) *Signal[T] {
	return Filter(s, predicate)
}

// Tap returns a signal that calls the slots of observer for every event of
// src before forwarding the event unchanged.
func Tap[T any](src *Signal[T], observer Observer[T]) *Signal[T] {
	return forward("tap", src, func(down Observer[T]) Observer[T] {
		return Observer[T]{
			Next: func(v T) {
				observer.next(v)
				down.Next(v)
			},
			Error: func(err error) {
				observer.error(err)
				down.Error(err)
			},
			Complete: func() {
				observer.complete()
				down.Complete()
			},
		}
	})
}

// Tap returns a signal that calls observer for every event of s before forwarding it.
func (s *Signal[T]) Tap(observer Observer[T]) *Signal[T] {
	return Tap(s, observer)
}

// Take returns a signal emitting the first n values of src, then completing
// and releasing src. A non-positive n completes on mount.
func Take[T any](src *Signal[T], n int) *Signal[T] {
	return derived("take", func(down Observer[T]) func() {
		if n <= 0 {
			down.Complete()
			return nil
		}

		var (
			mu   sync.Mutex
			seen int
			done bool
		)
		stopped := func() bool {
			mu.Lock()
			defer mu.Unlock()
			return done
		}

		return src.SubscribeWith(func(sub *Subscription[T]) Observer[T] {
			return Observer[T]{
				Next: func(v T) {
					mu.Lock()
					if done {
						mu.Unlock()
						return
					}
					seen++
					last := seen == n
					done = last
					mu.Unlock()

					down.Next(v)
					if last {
						down.Complete()
						sub.Unsubscribe()
					}
				},
				Error: func(err error) {
					if !stopped() {
						down.Error(err)
					}
				},
				Complete: func() {
					mu.Lock()
					already := done
					done = true
					mu.Unlock()
					if !already {
						down.Complete()
					}
				},
			}
		}).Unsubscribe
	})
}

// Take returns a signal emitting the first n values of s, then completing.
func (s *Signal[T]) Take(n int) *Signal[T] {
	return Take(s, n)
}

// Delay returns a signal that re-emits every value and the completion of src
// d later, preserving their order. Errors are forwarded immediately. Pending
// deliveries are cancelled when the delayed signal is unmounted. A negative d
// is treated as zero.
func Delay[T any](src *Signal[T], d time.Duration) *Signal[T] {
	if d < 0 {
		d = 0
	}
	return derived("delay", func(down Observer[T]) func() {
		q := &delayQueue[T]{delay: d, down: down}
		sub := src.Subscribe(Observer[T]{
			Next:     func(v T) { q.push(delayed[T]{value: v}) },
			Error:    down.Error,
			Complete: func() { q.push(delayed[T]{complete: true}) },
		})
		return func() {
			sub.Unsubscribe()
			q.stop()
		}
	})
}

// Delay returns a signal that re-emits the values and completion of s d later.
func (s *Signal[T]) Delay(d time.Duration) *Signal[T] {
	return Delay(s, d)
}

type delayed[T any] struct {
	due      time.Time
	value    T
	complete bool
}

// delayQueue holds the deliveries of one mount of a delayed signal. A single
// timer chain drains it, so deliveries leave in arrival order.
type delayQueue[T any] struct {
	delay time.Duration
	down  Observer[T]

	mu      sync.Mutex
	pending []delayed[T]
	timer   *time.Timer // non-nil while a drain chain is active
	stopped bool
}

func (q *delayQueue[T]) push(item delayed[T]) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return
	}
	item.due = time.Now().Add(q.delay)
	q.pending = append(q.pending, item)
	if q.timer == nil {
		q.timer = time.AfterFunc(q.delay, q.drain)
	}
}

func (q *delayQueue[T]) drain() {
	q.mu.Lock()
	for !q.stopped && len(q.pending) > 0 {
		head := q.pending[0]
		if wait := time.Until(head.due); wait > 0 {
			q.timer = time.AfterFunc(wait, q.drain)
			q.mu.Unlock()
			return
		}
		q.pending[0] = delayed[T]{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		if head.complete {
			q.down.Complete()
		} else {
			q.down.Next(head.value)
		}

		q.mu.Lock()
	}
	q.timer = nil
	q.mu.Unlock()
}

func (q *delayQueue[T]) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopped = true
	q.pending = nil
	if q.timer != nil {
		q.timer.Stop()
	}
}

// StateMachine returns a signal driven by step. For every value of src, step
// receives the current state, the value and the downstream emitter, may emit
// any number of values or errors, and returns the next state. The state
// starts at seed on every mount. Completion and errors of src are forwarded;
// nothing is emitted automatically at completion.
func StateMachine[T, S, U any](src *Signal[T], step func(state S, value T, emit Observer[U]) S, seed S) *Signal[U] {
	return forward("state_machine", src, func(down Observer[U]) Observer[T] {
		state := seed
		var gate serial
		return Observer[T]{
			Next: func(v T) {
				gate.do(func() { state = step(state, v, down) })
			},
			Error: func(err error) {
				gate.do(func() { down.Error(err) })
			},
			Complete: func() {
				gate.do(down.Complete)
			},
		}
	})
}

// Fold returns a signal that accumulates the values of src with f, starting
// from seed, and emits the accumulator once when src completes, followed by
// completion.
func Fold[T, A any](src *Signal[T], f func(acc A, value T) A, seed A) *Signal[A] {
	return forward("fold", src, func(down Observer[A]) Observer[T] {
		acc := seed
		var gate serial
		return Observer[T]{
			Next: func(v T) {
				gate.do(func() { acc = f(acc, v) })
			},
			Error: func(err error) {
				gate.do(func() { down.Error(err) })
			},
			Complete: func() {
				gate.do(func() {
					down.Next(acc)
					down.Complete()
				})
			},
		}
	})
}

// Scan returns a signal that emits seed when mounted and then the running
// accumulation of the values of src with f.
func Scan[T, A any](src *Signal[T], f func(acc A, value T) A, seed A) *Signal[A] {
	return derived("scan", func(down Observer[A]) func() {
		acc := seed
		var gate serial
		gate.do(func() { down.Next(acc) })
		return src.Subscribe(Observer[T]{
			Next: func(v T) {
				gate.do(func() {
					acc = f(acc, v)
					down.Next(acc)
				})
			},
			Error: func(err error) {
				gate.do(func() { down.Error(err) })
			},
			Complete: func() {
				gate.do(down.Complete)
			},
		}).Unsubscribe
	})
}

type dedupeState[T any] struct {
	prev T
	seen bool
}

// DedupeWith returns a signal that drops every value of src that equal
// reports as a duplicate of the value before it. The first value is always
// emitted.
func DedupeWith[T any](src *Signal[T], equal func(prev, next T) bool) *Signal[T] {
	return StateMachine(src, func(st dedupeState[T], v T, emit Observer[T]) dedupeState[T] {
		if !st.seen || !equal(st.prev, v) {
			emit.Next(v)
		}
		return dedupeState[T]{prev: v, seen: true}
	}, dedupeState[T]{})
}

// Dedupe returns a signal that drops consecutive structurally equal values of src.
func Dedupe[T any](src *Signal[T]) *Signal[T] {
	return DedupeWith(src, func(prev, next T) bool {
		return reflect.DeepEqual(prev, next)
	})
}

// Dedupe returns a signal that drops consecutive structurally equal values of s.
func (s *Signal[T]) Dedupe() *Signal[T] {
	return Dedupe(s)
}

// DedupeWith returns a signal that drops values equal reports as duplicates of their predecessor.
func (s *Signal[T]) DedupeWith(equal func(prev, next T) bool) *Signal[T] {
	return DedupeWith(s, equal)
}

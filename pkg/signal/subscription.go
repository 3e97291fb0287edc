package signal

import (
	"sync"
	"sync/atomic"
)

// Subscription is a live registration of one Observer on one Signal.
type Subscription[T any] struct {
	observer Observer[T]
	owner    *Signal[T]
	active   atomic.Bool
	once     sync.Once
	dispose  func()
}

func newSubscription[T any](owner *Signal[T], observer Observer[T]) *Subscription[T] {
	sub := &Subscription[T]{observer: observer, owner: owner}
	sub.active.Store(true)
	sub.dispose = func() { owner.remove(sub) }
	return sub
}

// Unsubscribe removes the subscription from its signal. The last
// unsubscribe of a signal releases the signal's source. Calling it more than
// once, from any goroutine or from inside one of the observer's own callbacks,
// has the same effect as calling it once.
func (s *Subscription[T]) Unsubscribe() {
	s.once.Do(func() {
		s.active.Store(false)
		s.dispose()
	})
}

// discard deactivates the subscription without touching its signal's
// registry. Later Unsubscribe calls have no effect.
func (s *Subscription[T]) discard() {
	s.once.Do(func() {
		s.active.Store(false)
	})
}

// Active reports whether the subscription still receives events.
func (s *Subscription[T]) Active() bool {
	return s.active.Load()
}

// Signal returns the signal this subscription belongs to.
func (s *Subscription[T]) Signal() *Signal[T] {
	return s.owner
}

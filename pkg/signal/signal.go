package signal

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/vnykmshr/signalflow/pkg/common/validation"
)

// MountFunc acquires the source of a Signal. It receives an emitter whose
// callbacks broadcast to every current subscriber and returns an optional
// function that releases the source. A nil unmount is allowed.
type MountFunc[T any] func(emit Observer[T]) (unmount func())

// Config holds configuration for a Signal.
type Config struct {
	// Name identifies the signal in logs and metrics.
	Name string

	// Logger receives lifecycle debug logs and observer panic reports.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// OnPanic is called with the recovered value when an observer callback
	// panics. Delivery to the remaining subscribers continues either way.
	OnPanic func(recovered interface{})
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Name: "signal",
	}
}

const (
	kindNext     = "next"
	kindError    = "error"
	kindComplete = "complete"
)

// Signal is a multicast stream of values with a lazily acquired source.
//
// The mount function runs when the subscriber count goes from zero to one and
// the unmount function it returned runs when the count drops back to zero.
// Every event emitted while mounted is delivered synchronously, in
// subscription order, to the subscriptions registered at the moment of
// emission. A subscription removed during a broadcast is skipped for the rest
// of that broadcast; one added during a broadcast only sees later events.
//
// A Signal is safe for concurrent use.
type Signal[T any] struct {
	mount  MountFunc[T]
	config Config
	logger *slog.Logger
	instr  atomic.Pointer[instrumentation]

	mu       sync.Mutex
	subs     []*Subscription[T] // replaced, never mutated in place
	settling bool
	mounted  bool
	gen      uint64
	unmount  func()
}

// New creates a Signal from a mount function using the default configuration.
// It returns an error matching errors.ErrType if mount is nil.
func New[T any](mount MountFunc[T]) (*Signal[T], error) {
	return NewWithConfig(DefaultConfig(), mount)
}

// NewWithConfig creates a Signal with the given configuration.
// It returns an error matching errors.ErrType if mount is nil.
func NewWithConfig[T any](config Config, mount MountFunc[T]) (*Signal[T], error) {
	if err := validation.ValidateFunc("signal", "mount", mount); err != nil {
		return nil, err
	}
	return newSignal(config, mount), nil
}

// MustNew is like New but panics if mount is nil.
func MustNew[T any](mount MountFunc[T]) *Signal[T] {
	s, err := New(mount)
	if err != nil {
		panic(err)
	}
	return s
}

func newSignal[T any](config Config, mount MountFunc[T]) *Signal[T] {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Signal[T]{
		mount:  mount,
		config: config,
		logger: logger,
	}
}

// derived builds the signal returned by a combinator.
func derived[T any](name string, mount MountFunc[T]) *Signal[T] {
	return newSignal(Config{Name: name}, mount)
}

// Name returns the configured name of the signal.
func (s *Signal[T]) Name() string {
	return s.config.Name
}

// Subscribe registers observer and returns its Subscription. The first
// subscription mounts the signal.
func (s *Signal[T]) Subscribe(observer Observer[T]) *Subscription[T] {
	sub := newSubscription(s, observer)
	s.register(sub)
	return sub
}

// SubscribeWith is like Subscribe but builds the observer from the
// subscription it is registered under, so the observer can unsubscribe
// itself even from events emitted while the signal is mounting.
func (s *Signal[T]) SubscribeWith(build func(sub *Subscription[T]) Observer[T]) *Subscription[T] {
	var zero Observer[T]
	sub := newSubscription(s, zero)
	sub.observer = build(sub)
	s.register(sub)
	return sub
}

func (s *Signal[T]) register(sub *Subscription[T]) {
	s.mu.Lock()
	if !sub.Active() {
		s.mu.Unlock()
		return
	}
	subs := make([]*Subscription[T], len(s.subs), len(s.subs)+1)
	copy(subs, s.subs)
	s.subs = append(subs, sub)
	s.instrumentation().subscribers(len(s.subs))
	start := s.claimSettle()
	s.mu.Unlock()

	if start {
		s.settle(sub)
	}
}

// SubscribeNext registers a values-only observer.
func (s *Signal[T]) SubscribeNext(next func(value T)) *Subscription[T] {
	return s.Subscribe(NextFunc(next))
}

// SubscribeFunc registers an observer built from three optional callbacks.
func (s *Signal[T]) SubscribeFunc(next func(value T), err func(error), complete func()) *Subscription[T] {
	return s.Subscribe(ObserverFunc(next, err, complete))
}

// Subscribers returns the number of active subscriptions.
func (s *Signal[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Mounted reports whether the signal currently holds its source.
func (s *Signal[T]) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

func (s *Signal[T]) remove(sub *Subscription[T]) {
	s.mu.Lock()
	subs, ok := without(s.subs, sub)
	if !ok {
		s.mu.Unlock()
		return
	}
	s.subs = subs
	s.instrumentation().subscribers(len(s.subs))
	start := s.claimSettle()
	s.mu.Unlock()

	if start {
		s.settle(nil)
	}
}

// without returns a copy of subs lacking sub, and whether sub was present.
func without[T any](subs []*Subscription[T], sub *Subscription[T]) ([]*Subscription[T], bool) {
	for i, candidate := range subs {
		if candidate == sub {
			rest := make([]*Subscription[T], 0, len(subs)-1)
			rest = append(rest, subs[:i]...)
			return append(rest, subs[i+1:]...), true
		}
	}
	return subs, false
}

// claimSettle reports whether the caller must run settle. Only one goroutine
// settles at a time; transitions requested meanwhile are picked up by it.
// s.mu must be held.
func (s *Signal[T]) claimSettle() bool {
	if s.settling || (len(s.subs) > 0) == s.mounted {
		return false
	}
	s.settling = true
	return true
}

// settle mounts or unmounts until the mounted state matches whether there
// are subscribers. trigger is the subscription whose registration started
// the settle, or nil when a removal did.
func (s *Signal[T]) settle(trigger *Subscription[T]) {
	mounting := false
	defer func() {
		if r := recover(); r != nil {
			s.abortSettle(trigger, mounting)
			panic(r)
		}
	}()

	for {
		s.mu.Lock()
		want := len(s.subs) > 0
		if want == s.mounted {
			s.settling = false
			s.mu.Unlock()
			return
		}

		if want {
			s.gen++
			gen := s.gen
			s.mounted = true
			s.mu.Unlock()

			s.logger.Debug("signal mounting", "signal", s.config.Name, "generation", gen)
			s.instrumentation().mounted()
			mounting = true
			unmount := s.mount(s.emitter(gen))
			mounting = false

			s.mu.Lock()
			s.unmount = unmount
			s.mu.Unlock()
			continue
		}

		unmount := s.unmount
		s.unmount = nil
		s.mounted = false
		gen := s.gen
		s.mu.Unlock()

		if unmount != nil {
			unmount()
		}
		s.instrumentation().unmounted()
		s.logger.Debug("signal unmounted", "signal", s.config.Name, "generation", gen)
	}
}

// abortSettle releases the settle baton after a panic. A panic in mount
// leaves the signal unmounted, invalidates the emitter handed to that mount
// and drops the triggering subscription, whose caller never receives it.
func (s *Signal[T]) abortSettle(trigger *Subscription[T], mounting bool) {
	if mounting && trigger != nil {
		trigger.discard()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settling = false
	if !mounting {
		return
	}
	s.mounted = false
	s.unmount = nil
	s.gen++
	if trigger != nil {
		if subs, ok := without(s.subs, trigger); ok {
			s.subs = subs
			s.instrumentation().subscribers(len(s.subs))
		}
	}
}

// emitter returns the broadcast handlers handed to one mount. Events emitted
// after that mount has been released are dropped.
func (s *Signal[T]) emitter(gen uint64) Observer[T] {
	return Observer[T]{
		Next: func(value T) {
			s.broadcast(gen, kindNext, value, nil)
		},
		Error: func(err error) {
			var zero T
			s.broadcast(gen, kindError, zero, err)
		},
		Complete: func() {
			var zero T
			s.broadcast(gen, kindComplete, zero, nil)
		},
	}
}

func (s *Signal[T]) snapshot(gen uint64) ([]*Subscription[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted || s.gen != gen {
		return nil, false
	}
	return s.subs, true
}

func (s *Signal[T]) broadcast(gen uint64, kind string, value T, err error) {
	subs, ok := s.snapshot(gen)
	if !ok {
		return
	}
	s.instrumentation().event(kind)
	for _, sub := range subs {
		if !sub.Active() {
			continue
		}
		s.dispatch(sub, kind, value, err)
	}
}

func (s *Signal[T]) dispatch(sub *Subscription[T], kind string, value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.reportPanic(kind, r)
		}
	}()

	switch kind {
	case kindNext:
		sub.observer.next(value)
	case kindError:
		sub.observer.error(err)
	case kindComplete:
		sub.observer.complete()
	}
}

func (s *Signal[T]) reportPanic(kind string, recovered interface{}) {
	s.instrumentation().panicked()
	s.logger.Error("observer panicked",
		"signal", s.config.Name,
		"event", kind,
		"panic", fmt.Sprint(recovered),
		"stack", string(debug.Stack()),
	)
	if s.config.OnPanic != nil {
		s.config.OnPanic(recovered)
	}
}

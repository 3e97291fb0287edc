package signal

import (
	"context"
	"sync"
	"time"

	gfcontext "github.com/vnykmshr/signalflow/pkg/common/context"
	"github.com/vnykmshr/signalflow/pkg/common/validation"
)

// Empty returns a signal that completes as soon as it is mounted.
func Empty[T any]() *Signal[T] {
	return derived("empty", func(emit Observer[T]) func() {
		emit.Complete()
		return nil
	})
}

// Of returns a signal that emits value and completes when mounted.
func Of[T any](value T) *Signal[T] {
	return derived("of", func(emit Observer[T]) func() {
		emit.Next(value)
		emit.Complete()
		return nil
	})
}

// FromSlice returns a signal that emits the elements of values in order and
// completes, every time it is mounted. values is copied.
func FromSlice[T any](values []T) *Signal[T] {
	items := append([]T(nil), values...)
	return derived("slice", func(emit Observer[T]) func() {
		for _, v := range items {
			emit.Next(v)
		}
		emit.Complete()
		return nil
	})
}

// FromCallback adapts an error-first callback API. On mount fn is called with
// a callback; a non-nil error is emitted as an error, otherwise the value is
// emitted followed by completion. Only the first call of the callback per
// mount has an effect.
func FromCallback[T any](fn func(callback func(value T, err error))) (*Signal[T], error) {
	if err := validation.ValidateFunc("signal", "callback", fn); err != nil {
		return nil, err
	}
	return derived("callback", func(emit Observer[T]) func() {
		var once sync.Once
		fn(func(value T, err error) {
			once.Do(func() {
				if err != nil {
					emit.Error(err)
					return
				}
				emit.Next(value)
				emit.Complete()
			})
		})
		return nil
	}), nil
}

// EventSource is an event emitter whose registration returns its own removal
// function.
type EventSource[T any] interface {
	On(event string, handler func(T)) (off func())
}

// Listener is a handler registered with an EventTarget. Targets identify
// listeners by pointer.
type Listener[T any] struct {
	Handle func(T)
}

// EventTarget is an event emitter with separate add and remove calls.
type EventTarget[T any] interface {
	AddEventListener(event string, listener *Listener[T])
	RemoveEventListener(event string, listener *Listener[T])
}

// FromEventSource returns a signal of the named events of source. The handler
// is registered on mount and removed on unmount.
func FromEventSource[T any](source EventSource[T], event string) (*Signal[T], error) {
	if err := validation.ValidateNotNil("signal", "source", source); err != nil {
		return nil, err
	}
	return derived("event_source", func(emit Observer[T]) func() {
		return source.On(event, emit.Next)
	}), nil
}

// FromEventTarget returns a signal of the named events of target. A listener
// is added on mount and removed on unmount.
func FromEventTarget[T any](target EventTarget[T], event string) (*Signal[T], error) {
	if err := validation.ValidateNotNil("signal", "target", target); err != nil {
		return nil, err
	}
	return derived("event_target", func(emit Observer[T]) func() {
		listener := &Listener[T]{Handle: emit.Next}
		target.AddEventListener(event, listener)
		return func() {
			target.RemoveEventListener(event, listener)
		}
	}), nil
}

// FromFuture runs fn in a goroutine on every mount and emits its result: the
// value followed by completion, or the error. The context passed to fn is
// cancelled on unmount, after which its result is discarded.
func FromFuture[T any](fn func(ctx context.Context) (T, error)) (*Signal[T], error) {
	if err := validation.ValidateFunc("signal", "future", fn); err != nil {
		return nil, err
	}
	return derived("future", func(emit Observer[T]) func() {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			value, err := fn(ctx)
			if gfcontext.IsCanceled(ctx) {
				return
			}
			if err != nil {
				emit.Error(err)
				return
			}
			emit.Next(value)
			emit.Complete()
		}()
		return cancel
	}), nil
}

// FromChannel returns a signal of the values received from ch. It completes
// when ch is closed. Receiving stops on unmount; values not yet received stay
// in ch for the next mount.
func FromChannel[T any](ch <-chan T) (*Signal[T], error) {
	if err := validation.ValidateNotNil("signal", "channel", ch); err != nil {
		return nil, err
	}
	return derived("channel", func(emit Observer[T]) func() {
		stop := make(chan struct{})
		go func() {
			for {
				select {
				case <-stop:
					return
				case v, ok := <-ch:
					if !ok {
						emit.Complete()
						return
					}
					emit.Next(v)
				}
			}
		}()
		return func() { close(stop) }
	}), nil
}

// Interval returns a signal that emits one element of values every period,
// starting one period after mount, and completes right after the last one.
func Interval[T any](period time.Duration, values []T) (*Signal[T], error) {
	if err := validation.ValidatePositiveDuration("signal", "period", period); err != nil {
		return nil, err
	}
	items := append([]T(nil), values...)
	return derived("interval", func(emit Observer[T]) func() {
		stop := make(chan struct{})
		go func() {
			ticker := time.NewTicker(period)
			defer ticker.Stop()
			for _, v := range items {
				select {
				case <-stop:
					return
				case <-ticker.C:
					emit.Next(v)
				}
			}
			emit.Complete()
		}()
		return func() { close(stop) }
	}), nil
}

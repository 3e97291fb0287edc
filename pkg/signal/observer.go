package signal

// Observer receives the events of a Signal. Each slot is optional; a nil slot
// is skipped when the corresponding event is broadcast.
type Observer[T any] struct {
	Next     func(value T)
	Error    func(err error)
	Complete func()
}

// NextFunc returns an Observer that only handles values.
func NextFunc[T any](next func(value T)) Observer[T] {
	return Observer[T]{Next: next}
}

// ObserverFunc returns an Observer from three optional callbacks.
func ObserverFunc[T any](next func(value T), err func(error), complete func()) Observer[T] {
	return Observer[T]{Next: next, Error: err, Complete: complete}
}

func (o Observer[T]) next(v T) {
	if o.Next != nil {
		o.Next(v)
	}
}

func (o Observer[T]) error(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

func (o Observer[T]) complete() {
	if o.Complete != nil {
		o.Complete()
	}
}

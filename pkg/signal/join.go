package signal

import "sync"

// completion counts distinct upstream completions of a join. Each upstream
// index is counted at most once, so an upstream completing twice cannot
// finish the join early.
type completion struct {
	mu    sync.Mutex
	done  []bool
	count int
}

func newCompletion(n int) *completion {
	return &completion{done: make([]bool, n)}
}

// complete marks upstream i as completed and reports whether that made every
// upstream complete.
func (c *completion) complete(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done[i] {
		return false
	}
	c.done[i] = true
	c.count++
	return c.count == len(c.done)
}

// upstreams returns self followed by others with stable indices.
func upstreams[T any](self *Signal[T], others []*Signal[T]) []*Signal[T] {
	all := make([]*Signal[T], 0, len(others)+1)
	all = append(all, self)
	return append(all, others...)
}

func unsubscribeAll[T any](subs []*Subscription[T]) func() {
	return func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}
}

// Merge returns a signal emitting every value and error of self and others as
// they arrive. It completes once, after every one of them has completed.
func Merge[T any](self *Signal[T], others ...*Signal[T]) *Signal[T] {
	srcs := upstreams(self, others)
	return derived("merge", func(down Observer[T]) func() {
		done := newCompletion(len(srcs))
		subs := make([]*Subscription[T], 0, len(srcs))
		for i, src := range srcs {
			subs = append(subs, src.Subscribe(Observer[T]{
				Next:  down.Next,
				Error: down.Error,
				Complete: func() {
					if done.complete(i) {
						down.Complete()
					}
				},
			}))
		}
		return unsubscribeAll(subs)
	})
}

// Merge returns a signal emitting the events of s and others as they arrive.
func (s *Signal[T]) Merge(others ...*Signal[T]) *Signal[T] {
	return Merge(s, others...)
}

// zipState is the per-mount buffer of a zip: one FIFO of pending values per
// upstream. Only the goroutine draining gate touches it.
type zipState[T any] struct {
	pending [][]T
}

func (z *zipState[T]) push(i int, v T) ([]T, bool) {
	z.pending[i] = append(z.pending[i], v)
	for _, queue := range z.pending {
		if len(queue) == 0 {
			return nil, false
		}
	}
	round := make([]T, len(z.pending))
	for j, queue := range z.pending {
		round[j] = queue[0]
		var zero T
		queue[0] = zero
		z.pending[j] = queue[1:]
	}
	return round, true
}

// Zip returns a signal that pairs the values of self and others by position.
// The n-th emission holds the n-th value of self at index 0 followed by the
// n-th value of each of others. Values that arrive before the rest of their
// round are held. The signal completes once, after every upstream has
// completed; a round still missing values at that point is discarded.
func Zip[T any](self *Signal[T], others ...*Signal[T]) *Signal[[]T] {
	srcs := upstreams(self, others)
	return derived("zip", func(down Observer[[]T]) func() {
		state := &zipState[T]{pending: make([][]T, len(srcs))}
		done := newCompletion(len(srcs))
		var gate serial

		subs := make([]*Subscription[T], 0, len(srcs))
		for i, src := range srcs {
			subs = append(subs, src.Subscribe(Observer[T]{
				Next: func(v T) {
					gate.do(func() {
						if round, ok := state.push(i, v); ok {
							down.Next(round)
						}
					})
				},
				Error: func(err error) {
					gate.do(func() { down.Error(err) })
				},
				Complete: func() {
					gate.do(func() {
						if done.complete(i) {
							down.Complete()
						}
					})
				},
			}))
		}
		return unsubscribeAll(subs)
	})
}

// Pair holds one round of Zip2.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Zip2 is Zip for two signals of different element types.
func Zip2[A, B any](a *Signal[A], b *Signal[B]) *Signal[Pair[A, B]] {
	left := Map(a, func(v A) any { return v })
	right := Map(b, func(v B) any { return v })
	return Map(Zip(left, right), func(round []any) Pair[A, B] {
		first, _ := round[0].(A)
		second, _ := round[1].(B)
		return Pair[A, B]{First: first, Second: second}
	})
}

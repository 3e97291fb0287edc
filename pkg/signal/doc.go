/*
Package signal provides push-based reactive signals for Go.

A Signal is a multicast stream of values with a lazily acquired source. The
source is described by a mount function: it runs when the first subscriber
arrives and the release function it returns runs when the last one leaves.
Every subscriber shares the same mounted source.

Basic Usage:

	clicks, err := signal.New(func(emit signal.Observer[int]) func() {
		off := button.OnClick(emit.Next)
		return off
	})
	if err != nil {
		log.Fatal(err)
	}

	sub := clicks.SubscribeNext(func(n int) {
		fmt.Println("click", n)
	})
	defer sub.Unsubscribe()

Observers:

An Observer has three optional slots. A missing slot is skipped:

	sub := s.Subscribe(signal.Observer[int]{
		Next:     func(v int) { ... },
		Error:    func(err error) { ... },
		Complete: func() { ... },
	})

Error and Complete are ordinary events. A Signal keeps delivering whatever
its source emits after either of them.

Delivery Semantics:

Events are delivered synchronously, in subscription order, to the
subscriptions registered when the event is emitted:
  - A subscription removed during a broadcast is not called for the rest of it
  - A subscription added during a broadcast only receives later events
  - A panicking observer is recovered and reported; the others still run
  - Events emitted by a released mount are dropped

SubscribeWith hands the observer its own Subscription, so it can unsubscribe
itself even from events emitted while the signal is mounting:

	s.SubscribeWith(func(sub *signal.Subscription[int]) signal.Observer[int] {
		return signal.NextFunc(func(v int) {
			if v > 10 {
				sub.Unsubscribe()
			}
		})
	})

Transforms:

Combinators return new signals that subscribe to their upstream only while
they are mounted themselves:

	evens := signal.Filter(numbers, func(n int) bool { return n%2 == 0 })
	labels := signal.Map(evens, strconv.Itoa)
	total := signal.Fold(numbers, func(acc, n int) int { return acc + n }, 0)
	running := signal.Scan(numbers, func(acc, n int) int { return acc + n }, 0)
	later := signal.Delay(numbers, 100*time.Millisecond)
	changes := signal.Dedupe(readings)

Per-mount state such as the accumulator of Fold or the last value seen by
Dedupe starts over when a combinator is mounted again.

Joins:

	all := signal.Merge(a, b, c)        // every event as it arrives
	rounds := signal.Zip(a, b)          // [a1 b1], [a2 b2], ...
	pairs := signal.Zip2(names, ages)   // Pair{First, Second}

Both complete once, after every upstream has completed.

Sources:

Adapters lift common Go sources into signals: Of, FromSlice, Empty,
FromCallback, FromEventSource, FromEventTarget, FromFuture, FromChannel and
Interval.

Metrics:

Signals can export Prometheus metrics for mounts, subscribers, events and
observer panics:

	orders, err := signal.NewWithMetrics("orders", mount)
	if err != nil {
		log.Fatal(err)
	}

	// or mirror an existing signal under a metrics name
	observed, err := signal.Instrument(changes, "price_changes", metrics.DefaultConfig())

Thread Safety:

Subscribe, Unsubscribe and the emitter handed to a mount function are safe
for concurrent use. Mounting and unmounting are serialized per signal, so a
source is never mounted twice at the same time. Events emitted concurrently
from different goroutines are not ordered relative to each other.
*/
package signal

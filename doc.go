/*
Package signalflow provides push-based reactive signals for Go applications.

Signals (pkg/signal):
  - Signal: multicast stream with lazy mount and refcounted unmount
  - Transforms: Map, Filter, Tap, Take, Delay, Fold, Scan, StateMachine, Dedupe
  - Joins: Merge, Zip, Zip2
  - Sources: Of, FromSlice, FromCallback, FromEventSource, FromEventTarget,
    FromFuture, FromChannel, Interval

Bridges (pkg/bridge):
  - ticker: Signals driven by cron expressions
  - pubsub: Redis Pub/Sub channels as signals, and signals published to Redis

Observability (pkg/metrics):
  - Prometheus metrics for mounts, subscribers, events, panics and bridges

Example usage:

	import (
		"github.com/vnykmshr/signalflow/pkg/bridge/ticker"
		"github.com/vnykmshr/signalflow/pkg/signal"
	)

	ticks, _ := ticker.Cron("0/10 * * * * *") // every 10 seconds
	counted := signal.Scan(ticks, func(n int, _ time.Time) int { return n + 1 }, 0)

	sub := counted.SubscribeNext(func(n int) {
		fmt.Println("ticks so far:", n)
	})
	defer sub.Unsubscribe()
*/
package signalflow

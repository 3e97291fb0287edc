/*
Package pubsub bridges signals and Redis Pub/Sub.

Subscribe turns one or more Redis channels into a signal. The Redis
subscription is opened when the signal gets its first subscriber and closed
when the last one leaves, so any number of local subscribers share a single
Redis connection:

	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})

	orders, err := pubsub.Subscribe(rdb, pubsub.DecodeJSON[Order], "orders")
	if err != nil {
		log.Fatal(err)
	}

	sub := orders.SubscribeFunc(
		func(o Order) { fmt.Println("order", o.ID) },
		func(err error) { log.Printf("bad message: %v", err) },
		nil,
	)
	defer sub.Unsubscribe()

Messages that fail to decode are emitted as errors and the subscription keeps
running. SubscribePattern does the same for PSUBSCRIBE patterns.

Publish goes the other way: it subscribes to a signal and publishes every value
it emits:

	pub, err := pubsub.PublishWithConfig(ctx, pubsub.Config{
		Name:    "alerts",
		OnError: func(err error) { log.Printf("publish failed: %v", err) },
	}, rdb, "alerts", alerts, pubsub.EncodeJSON[Alert])

Publishing stops when pub is unsubscribed or ctx is done.

Metrics:

Set Config.Metrics to count messages and failures per bridge and direction:

	config := pubsub.DefaultConfig()
	config.Metrics = metrics.DefaultConfig()
*/
package pubsub

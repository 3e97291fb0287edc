/*
Package ticker provides signals driven by cron schedules.

A ticker signal arms a timer for the next activation of its schedule when it
is mounted, emits the scheduled time when the timer fires and re-arms for the
activation after that. Unmounting cancels the pending timer, so an idle ticker
holds no resources.

Basic Usage:

	every5s, err := ticker.Cron("0/5 * * * * *")
	if err != nil {
		log.Fatal(err)
	}

	sub := every5s.SubscribeNext(func(at time.Time) {
		fmt.Println("tick", at)
	})
	defer sub.Unsubscribe()

Expressions:

Expressions take six fields, starting with seconds, or a descriptor:

	"0 0/2 * * * *"         - every 2 minutes
	"30 0 14 * * 1-5"       - 2:00:30 PM on weekdays
	"@daily"                - every day at midnight
	"@every 1h30m"          - every 90 minutes
	"CRON_TZ=UTC 0 0 9 * * *" - 9:00 AM UTC

Validate checks an expression without creating a signal.

Custom Schedules:

Any cron.Schedule can drive a ticker. A schedule returning the zero time
completes the signal:

	s, err := ticker.Schedule(cron.Every(time.Minute))
*/
package ticker

package ticker

import (
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	gferrors "github.com/vnykmshr/signalflow/pkg/common/errors"
	"github.com/vnykmshr/signalflow/pkg/common/validation"
	"github.com/vnykmshr/signalflow/pkg/signal"
)

// parser accepts a leading seconds field and descriptors such as "@hourly"
// or "@every 5s". A "CRON_TZ=" or "TZ=" prefix selects a time zone.
var parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Config holds configuration for a ticker signal.
type Config struct {
	// Name identifies the signal in logs and metrics.
	Name string

	// Location is the time zone schedules are evaluated in. Expressions with
	// their own time zone prefix ignore it. If nil, time.Local is used.
	Location *time.Location

	// Logger receives debug logs for every armed tick. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Name:     "ticker",
		Location: time.Local,
	}
}

// Validate reports whether expr is a valid cron expression.
func Validate(expr string) error {
	_, err := parse(expr)
	return err
}

func parse(expr string) (cron.Schedule, error) {
	if err := validation.ValidateNotEmpty("ticker", "expression", expr); err != nil {
		return nil, err
	}
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, gferrors.NewValidationError("ticker", "expression", expr, err.Error()).
			WithHint(`use six fields with seconds, e.g. "0 */5 * * * *", or a descriptor such as "@hourly"`)
	}
	return sched, nil
}

// Cron returns a signal that emits the scheduled time at every activation of
// the cron expression expr, using the default configuration.
func Cron(expr string) (*signal.Signal[time.Time], error) {
	return CronWithConfig(DefaultConfig(), expr)
}

// CronWithConfig is like Cron with a custom configuration.
func CronWithConfig(config Config, expr string) (*signal.Signal[time.Time], error) {
	sched, err := parse(expr)
	if err != nil {
		return nil, err
	}
	return ScheduleWithConfig(config, sched)
}

// Schedule returns a signal that emits the scheduled time at every activation
// of sched. The first activation is computed when the signal is mounted and
// pending activations are cancelled when it is unmounted. The signal
// completes if sched reports no further activation.
func Schedule(sched cron.Schedule) (*signal.Signal[time.Time], error) {
	return ScheduleWithConfig(DefaultConfig(), sched)
}

// ScheduleWithConfig is like Schedule with a custom configuration.
func ScheduleWithConfig(config Config, sched cron.Schedule) (*signal.Signal[time.Time], error) {
	if err := validation.ValidateNotNil("ticker", "schedule", sched); err != nil {
		return nil, err
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Name == "" {
		config.Name = DefaultConfig().Name
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return signal.NewWithConfig(signal.Config{Name: config.Name, Logger: logger}, func(emit signal.Observer[time.Time]) func() {
		t := &ticker{sched: sched, location: config.Location, emit: emit, logger: logger, name: config.Name}
		t.arm()
		return t.stop
	})
}

// ticker drives one mount. Each activation arms the timer for the next one.
type ticker struct {
	sched    cron.Schedule
	location *time.Location
	emit     signal.Observer[time.Time]
	logger   *slog.Logger
	name     string

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func (t *ticker) arm() {
	next := t.sched.Next(time.Now().In(t.location))
	if next.IsZero() {
		t.emit.Complete()
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.logger.Debug("ticker armed", "signal", t.name, "next", next)
	t.timer = time.AfterFunc(time.Until(next), func() {
		t.emit.Next(next)
		t.arm()
	})
}

func (t *ticker) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
}

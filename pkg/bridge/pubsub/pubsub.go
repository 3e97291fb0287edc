package pubsub

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	gfcontext "github.com/vnykmshr/signalflow/pkg/common/context"
	gferrors "github.com/vnykmshr/signalflow/pkg/common/errors"
	"github.com/vnykmshr/signalflow/pkg/common/validation"
	"github.com/vnykmshr/signalflow/pkg/metrics"
	"github.com/vnykmshr/signalflow/pkg/signal"
)

// Subscriber opens Redis Pub/Sub subscriptions. *redis.Client,
// *redis.ClusterClient and redis.UniversalClient implement it.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
	PSubscribe(ctx context.Context, patterns ...string) *redis.PubSub
}

// Publisher publishes Redis Pub/Sub messages.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Decoder turns a received message into a signal value.
type Decoder[T any] func(msg *redis.Message) (T, error)

// Encoder turns a signal value into a message payload.
type Encoder[T any] func(value T) (string, error)

// Config holds configuration for a Pub/Sub bridge.
type Config struct {
	// Name identifies the bridge in logs and metrics.
	Name string

	// Logger receives subscription lifecycle logs and unhandled publish
	// failures. If nil, slog.Default() is used.
	Logger *slog.Logger

	// PublishTimeout bounds each publish call. Zero means no timeout.
	PublishTimeout time.Duration

	// OnError is called when a value cannot be encoded or published.
	OnError func(err error)

	// Metrics configures message and error counters. Disabled by default.
	Metrics metrics.Config
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Name:           "redis",
		PublishTimeout: 5 * time.Second,
	}
}

const (
	directionIn  = "in"
	directionOut = "out"
)

// bridge carries the resolved configuration shared by both directions.
type bridge struct {
	config   Config
	logger   *slog.Logger
	registry *metrics.Registry
}

func newBridge(config Config) *bridge {
	if config.Name == "" {
		config.Name = DefaultConfig().Name
	}
	b := &bridge{config: config, logger: config.Logger}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if config.Metrics.Enabled {
		b.registry = metrics.Resolve(config.Metrics)
	}
	return b
}

func (b *bridge) delivered(direction string) {
	if b.registry != nil {
		b.registry.BridgeMessages.WithLabelValues(b.config.Name, direction).Inc()
	}
}

func (b *bridge) failed(direction string) {
	if b.registry != nil {
		b.registry.BridgeErrors.WithLabelValues(b.config.Name, direction).Inc()
	}
}

// opener starts a subscription and returns its message channel and the
// function that closes it.
type opener func(ctx context.Context) (<-chan *redis.Message, func() error, error)

func redisOpener(subscribe func(ctx context.Context) *redis.PubSub) opener {
	return func(ctx context.Context) (<-chan *redis.Message, func() error, error) {
		ps := subscribe(ctx)
		// The first reply confirms the subscription or reports why it failed.
		if _, err := ps.Receive(ctx); err != nil {
			_ = ps.Close()
			return nil, nil, err
		}
		return ps.Channel(), ps.Close, nil
	}
}

// Subscribe returns a signal of the messages published to channels, decoded
// with decode. The Redis subscription is opened when the signal is mounted
// and closed when it is unmounted. Subscription failures and decode failures
// are emitted as errors wrapping the cause.
func Subscribe[T any](client Subscriber, decode Decoder[T], channels ...string) (*signal.Signal[T], error) {
	return SubscribeWithConfig(DefaultConfig(), client, decode, channels...)
}

// SubscribeWithConfig is like Subscribe with a custom configuration.
func SubscribeWithConfig[T any](config Config, client Subscriber, decode Decoder[T], channels ...string) (*signal.Signal[T], error) {
	if err := validateSubscribe(client, decode, channels); err != nil {
		return nil, err
	}
	return fromMessages(newBridge(config), redisOpener(func(ctx context.Context) *redis.PubSub {
		return client.Subscribe(ctx, channels...)
	}), decode, channels)
}

// SubscribePattern is like Subscribe for glob-style channel patterns.
func SubscribePattern[T any](client Subscriber, decode Decoder[T], patterns ...string) (*signal.Signal[T], error) {
	return SubscribePatternWithConfig(DefaultConfig(), client, decode, patterns...)
}

// SubscribePatternWithConfig is like SubscribePattern with a custom configuration.
func SubscribePatternWithConfig[T any](config Config, client Subscriber, decode Decoder[T], patterns ...string) (*signal.Signal[T], error) {
	if err := validateSubscribe(client, decode, patterns); err != nil {
		return nil, err
	}
	return fromMessages(newBridge(config), redisOpener(func(ctx context.Context) *redis.PubSub {
		return client.PSubscribe(ctx, patterns...)
	}), decode, patterns)
}

func validateSubscribe[T any](client Subscriber, decode Decoder[T], channels []string) error {
	if err := validation.ValidateNotNil("pubsub", "client", client); err != nil {
		return err
	}
	if err := validation.ValidateFunc("pubsub", "decode", decode); err != nil {
		return err
	}
	if err := validation.ValidatePositive("pubsub", "channels", len(channels)); err != nil {
		return err
	}
	for _, ch := range channels {
		if err := validation.ValidateNotEmpty("pubsub", "channel", ch); err != nil {
			return err
		}
	}
	return nil
}

// fromMessages builds the signal around open. Each mount receives on its own
// goroutine until it is unmounted or the message channel closes, which
// completes the signal.
func fromMessages[T any](b *bridge, open opener, decode Decoder[T], channels []string) (*signal.Signal[T], error) {
	name := b.config.Name
	return signal.NewWithConfig(signal.Config{Name: name, Logger: b.logger}, func(emit signal.Observer[T]) func() {
		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			msgs, closeSub, err := open(ctx)
			if err != nil {
				if !gfcontext.IsCanceled(ctx) {
					b.failed(directionIn)
					emit.Error(gferrors.NewOperationError("pubsub", "subscribe", err).
						WithContext(name))
				}
				return
			}
			defer func() {
				if err := closeSub(); err != nil {
					b.logger.Debug("pubsub close failed", "bridge", name, "error", err)
				}
			}()
			b.logger.Debug("pubsub subscribed", "bridge", name, "channels", channels)

			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-msgs:
					if !ok {
						emit.Complete()
						return
					}
					value, err := decode(msg)
					if err != nil {
						b.failed(directionIn)
						emit.Error(gferrors.NewOperationError("pubsub", "decode", err).
							WithContext(msg.Channel))
						continue
					}
					b.delivered(directionIn)
					emit.Next(value)
				}
			}
		}()

		return cancel
	})
}

// Publish subscribes to src and publishes every value it emits to channel,
// encoded with encode. Publishing stops when the returned subscription is
// unsubscribed or ctx is done. Encode and publish failures go to
// Config.OnError; they do not stop the bridge.
func Publish[T any](ctx context.Context, client Publisher, channel string, src *signal.Signal[T], encode Encoder[T]) (*signal.Subscription[T], error) {
	return PublishWithConfig(ctx, DefaultConfig(), client, channel, src, encode)
}

// PublishWithConfig is like Publish with a custom configuration.
func PublishWithConfig[T any](ctx context.Context, config Config, client Publisher, channel string, src *signal.Signal[T], encode Encoder[T]) (*signal.Subscription[T], error) {
	if err := validation.ValidateNotNil("pubsub", "client", client); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotEmpty("pubsub", "channel", channel); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotNil("pubsub", "source", src); err != nil {
		return nil, err
	}
	if err := validation.ValidateFunc("pubsub", "encode", encode); err != nil {
		return nil, err
	}

	b := newBridge(config)
	sub := src.Subscribe(signal.NextFunc(func(value T) {
		if gfcontext.IsCanceled(ctx) {
			return
		}
		publish(ctx, b, client, channel, value, encode)
	}))
	context.AfterFunc(ctx, sub.Unsubscribe)
	return sub, nil
}

func publish[T any](ctx context.Context, b *bridge, client Publisher, channel string, value T, encode Encoder[T]) {
	payload, err := encode(value)
	if err != nil {
		b.report(gferrors.NewOperationError("pubsub", "encode", err).WithContext(channel))
		return
	}

	ctx, cancel := gfcontext.WithOptionalTimeout(ctx, b.config.PublishTimeout)
	defer cancel()
	if err := client.Publish(ctx, channel, payload).Err(); err != nil {
		operation := "publish"
		if gfcontext.IsTimedOut(ctx) {
			operation = "publish timeout"
		}
		b.report(gferrors.NewOperationError("pubsub", operation, err).WithContext(channel))
		return
	}
	b.delivered(directionOut)
}

func (b *bridge) report(err error) {
	b.failed(directionOut)
	if b.config.OnError != nil {
		b.config.OnError(err)
		return
	}
	b.logger.Error("pubsub publish failed", "bridge", b.config.Name, "error", err)
}

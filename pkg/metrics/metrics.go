// Package metrics provides Prometheus instrumentation for signalflow components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for signalflow components.
type Registry struct {
	// Signal lifecycle metrics
	SignalMounts      *prometheus.CounterVec
	SignalUnmounts    *prometheus.CounterVec
	SignalSubscribers *prometheus.GaugeVec

	// Dispatch metrics
	SignalEvents *prometheus.CounterVec
	SignalPanics *prometheus.CounterVec

	// Bridge metrics
	BridgeMessages *prometheus.CounterVec
	BridgeErrors   *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by signalflow components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Registry: reg, Namespace: defaultNamespace})
}

// NewRegistryWithConfig creates a registry honoring the namespace and constant
// labels of config. A nil config.Registry falls back to prometheus.DefaultRegisterer.
func NewRegistryWithConfig(config Config) *Registry {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	namespace := config.Namespace
	if namespace == "" {
		namespace = defaultNamespace
	}
	factory := promauto.With(reg)

	return &Registry{
		SignalMounts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "signal",
				Name:        "mounts_total",
				Help:        "Total number of times a signal acquired its source",
				ConstLabels: config.Labels,
			},
			[]string{"signal_name"},
		),

		SignalUnmounts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "signal",
				Name:        "unmounts_total",
				Help:        "Total number of times a signal released its source",
				ConstLabels: config.Labels,
			},
			[]string{"signal_name"},
		),

		SignalSubscribers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "signal",
				Name:        "subscribers",
				Help:        "Number of active subscriptions on a signal",
				ConstLabels: config.Labels,
			},
			[]string{"signal_name"},
		),

		SignalEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "signal",
				Name:        "events_total",
				Help:        "Total number of events broadcast by a signal",
				ConstLabels: config.Labels,
			},
			[]string{"signal_name", "kind"},
		),

		SignalPanics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "signal",
				Name:        "observer_panics_total",
				Help:        "Total number of observer callbacks that panicked",
				ConstLabels: config.Labels,
			},
			[]string{"signal_name"},
		),

		BridgeMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "bridge",
				Name:        "messages_total",
				Help:        "Total number of messages moved across a bridge",
				ConstLabels: config.Labels,
			},
			[]string{"bridge", "direction"},
		),

		BridgeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "bridge",
				Name:        "errors_total",
				Help:        "Total number of bridge decode or publish failures",
				ConstLabels: config.Labels,
			},
			[]string{"bridge", "direction"},
		),
	}
}

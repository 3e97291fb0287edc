package signal

import (
	"github.com/vnykmshr/signalflow/pkg/common/validation"
	"github.com/vnykmshr/signalflow/pkg/metrics"
)

var _ metrics.Instrumentable = (*Signal[struct{}])(nil)

// instrumentation records signal activity into a metrics registry. A nil
// *instrumentation records nothing.
type instrumentation struct {
	registry *metrics.Registry
	name     string
}

func (s *Signal[T]) instrumentation() *instrumentation {
	return s.instr.Load()
}

func (in *instrumentation) mounted() {
	if in == nil {
		return
	}
	in.registry.SignalMounts.WithLabelValues(in.name).Inc()
}

func (in *instrumentation) unmounted() {
	if in == nil {
		return
	}
	in.registry.SignalUnmounts.WithLabelValues(in.name).Inc()
}

func (in *instrumentation) subscribers(n int) {
	if in == nil {
		return
	}
	in.registry.SignalSubscribers.WithLabelValues(in.name).Set(float64(n))
}

func (in *instrumentation) event(kind string) {
	if in == nil {
		return
	}
	in.registry.SignalEvents.WithLabelValues(in.name, kind).Inc()
}

func (in *instrumentation) panicked() {
	if in == nil {
		return
	}
	in.registry.SignalPanics.WithLabelValues(in.name).Inc()
}

// NewWithMetrics creates a signal that reports its lifecycle and broadcasts
// to the default metrics registry under name.
func NewWithMetrics[T any](name string, mount MountFunc[T]) (*Signal[T], error) {
	config := DefaultConfig()
	config.Name = name
	return NewWithConfigAndMetrics(config, name, metrics.DefaultConfig(), mount)
}

// NewWithConfigAndMetrics creates a signal with custom config and metrics.
// If name is empty, config.Name is used.
func NewWithConfigAndMetrics[T any](config Config, name string, metricsConfig metrics.Config, mount MountFunc[T]) (*Signal[T], error) {
	if name != "" {
		config.Name = name
	}
	s, err := NewWithConfig(config, mount)
	if err != nil {
		return nil, err
	}
	if !metricsConfig.Enabled {
		return s, nil
	}
	if err := s.EnableMetrics(metricsConfig); err != nil {
		return nil, err
	}
	return s, nil
}

// Instrument returns a signal that mirrors src and records its activity under
// name. src itself is left untouched.
func Instrument[T any](src *Signal[T], name string, metricsConfig metrics.Config) (*Signal[T], error) {
	return NewWithConfigAndMetrics(Config{Name: name}, name, metricsConfig, func(emit Observer[T]) func() {
		return src.Subscribe(emit).Unsubscribe
	})
}

// EnableMetrics starts recording the signal's activity. The signal must have a name.
func (s *Signal[T]) EnableMetrics(config metrics.Config) error {
	if err := validation.ValidateNotEmpty("signal", "name", s.config.Name); err != nil {
		return err
	}
	if !config.Enabled {
		s.instr.Store(nil)
		return nil
	}
	in := &instrumentation{registry: metrics.Resolve(config), name: s.config.Name}
	s.instr.Store(in)
	in.subscribers(s.Subscribers())
	return nil
}

// DisableMetrics stops recording the signal's activity.
func (s *Signal[T]) DisableMetrics() {
	s.instr.Store(nil)
}

// MetricsEnabled returns true if metrics are currently enabled.
func (s *Signal[T]) MetricsEnabled() bool {
	return s.instr.Load() != nil
}

package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultNamespace = "signalflow"

// Config holds configuration for metrics collection.
type Config struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool

	// Registry is the Prometheus registry to use. If nil, uses prometheus.DefaultRegisterer.
	Registry prometheus.Registerer

	// Namespace overrides the default "signalflow" namespace for metrics.
	Namespace string

	// Labels are additional constant labels to add to all metrics.
	Labels prometheus.Labels
}

// DefaultConfig returns a default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Registry:  prometheus.DefaultRegisterer,
		Namespace: defaultNamespace,
		Labels:    nil,
	}
}

var (
	resolvedMu sync.Mutex
	resolved   = map[resolveKey]*Registry{}
)

type resolveKey struct {
	registerer prometheus.Registerer
	namespace  string
	labels     string
}

// Resolve returns the Registry described by config. The default registerer
// with the default namespace and no labels maps to DefaultRegistry; any other
// combination is created on first use and shared afterwards, so several
// components can report into one prometheus.Registerer.
func Resolve(config Config) *Registry {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	namespace := config.Namespace
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == prometheus.DefaultRegisterer && namespace == defaultNamespace && len(config.Labels) == 0 {
		return DefaultRegistry
	}

	key := resolveKey{registerer: reg, namespace: namespace, labels: labelKey(config.Labels)}

	resolvedMu.Lock()
	defer resolvedMu.Unlock()
	if r, ok := resolved[key]; ok {
		return r
	}
	r := NewRegistryWithConfig(Config{Registry: reg, Namespace: namespace, Labels: config.Labels})
	resolved[key] = r
	return r
}

func labelKey(labels prometheus.Labels) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%q,", k, labels[k])
	}
	return b.String()
}

// Instrumentable is an interface for components that can be instrumented with metrics.
type Instrumentable interface {
	// EnableMetrics enables metrics collection for this component.
	EnableMetrics(config Config) error

	// DisableMetrics disables metrics collection for this component.
	DisableMetrics()

	// MetricsEnabled returns true if metrics are currently enabled.
	MetricsEnabled() bool
}

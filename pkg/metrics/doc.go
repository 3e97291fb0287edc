// Package metrics provides Prometheus instrumentation for signalflow components.
//
// # Overview
//
// Signals are instrumented per name. A signal created through one of the
// metrics-enabled constructors reports:
//
//   - signalflow_signal_mounts_total: times the signal acquired its source
//   - signalflow_signal_unmounts_total: times the signal released its source
//   - signalflow_signal_subscribers: current number of subscriptions
//   - signalflow_signal_events_total: broadcast events, labelled by kind
//     ("next", "error", "complete")
//   - signalflow_signal_observer_panics_total: observer callbacks that panicked
//
// The Redis Pub/Sub bridge reports, per bridge name and direction:
//
//   - signalflow_bridge_messages_total: messages received or published
//   - signalflow_bridge_errors_total: decode or publish failures
//
// # Quick Start
//
//	clicks, err := signal.NewWithMetrics("clicks", mount)
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	config := metrics.Config{
//		Enabled:  true,
//		Registry: registry,
//	}
//
//	clicks, err := signal.NewWithConfigAndMetrics(signal.DefaultConfig(), "clicks", config, mount)
//
// Each call to NewRegistry registers a full set of collectors. Components
// obtain theirs through Resolve, which creates one Registry per registerer,
// namespace and label set and shares it afterwards.
package metrics

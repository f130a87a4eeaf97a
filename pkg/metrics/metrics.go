// Package metrics provides Prometheus instrumentation for coalesce components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace is the metric namespace used when Config.Namespace is empty.
const DefaultNamespace = "coalesce"

// Registry holds all metric instances for coalesce components.
type Registry struct {
	// Debounce Metrics
	DebounceCalls              *prometheus.CounterVec
	DebounceSuppressed         *prometheus.CounterVec
	DebounceInvocations        *prometheus.CounterVec
	DebounceInvocationDuration *prometheus.HistogramVec
	DebounceCancels            *prometheus.CounterVec
	DebounceAborts             *prometheus.CounterVec
	DebouncePending            *prometheus.GaugeVec

	// Schedule Metrics
	ScheduledFlushes *prometheus.CounterVec

	// Distributed Lease Metrics
	LeaseAcquired *prometheus.CounterVec
	LeaseDenied   *prometheus.CounterVec
	LeaseErrors   *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by coalesce components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Registry: reg})
}

// NewRegistryWithConfig creates a metrics registry honouring the namespace and
// constant labels of config. A nil config.Registry uses prometheus.DefaultRegisterer.
func NewRegistryWithConfig(config Config) *Registry {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if len(config.Labels) > 0 {
		reg = prometheus.WrapRegistererWith(config.Labels, reg)
	}
	ns := config.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}

	factory := promauto.With(reg)

	return &Registry{
		// Debounce Metrics
		DebounceCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "debounce",
				Name:      "calls_total",
				Help:      "Total number of calls to debounced functions",
			},
			[]string{"debouncer_name"},
		),

		DebounceSuppressed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "debounce",
				Name:      "suppressed_total",
				Help:      "Total number of calls answered from the cached result",
			},
			[]string{"debouncer_name"},
		),

		DebounceInvocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "debounce",
				Name:      "invocations_total",
				Help:      "Total number of real invocations of the wrapped function",
			},
			[]string{"edge", "debouncer_name"},
		),

		DebounceInvocationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Subsystem: "debounce",
				Name:      "invocation_duration_seconds",
				Help:      "Time spent inside the wrapped function",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"edge", "debouncer_name"},
		),

		DebounceCancels: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "debounce",
				Name:      "cancels_total",
				Help:      "Total number of explicit cancellations",
			},
			[]string{"debouncer_name"},
		),

		DebounceAborts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "debounce",
				Name:      "aborts_total",
				Help:      "Total number of debouncers disabled by their cancellation signal",
			},
			[]string{"debouncer_name"},
		),

		DebouncePending: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ns,
				Subsystem: "debounce",
				Name:      "pending",
				Help:      "1 while an invocation is owed, 0 otherwise",
			},
			[]string{"debouncer_name"},
		),

		// Schedule Metrics
		ScheduledFlushes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "schedule",
				Name:      "flushes_total",
				Help:      "Total number of flushes triggered by a cron schedule",
			},
			[]string{"schedule_name"},
		),

		// Distributed Lease Metrics
		LeaseAcquired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "lease",
				Name:      "acquired_total",
				Help:      "Total number of window leases won by this instance",
			},
			[]string{"lease_name"},
		),

		LeaseDenied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "lease",
				Name:      "denied_total",
				Help:      "Total number of window leases held by another instance",
			},
			[]string{"lease_name"},
		),

		LeaseErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "lease",
				Name:      "errors_total",
				Help:      "Total number of failed lease operations",
			},
			[]string{"lease_name"},
		),
	}
}

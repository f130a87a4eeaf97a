package debounce

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/coalesce/pkg/metrics"
)

// MetricsDebouncer wraps a Debouncer with Prometheus metrics collection.
type MetricsDebouncer[A, R any] struct {
	base     *debouncer[A, R]
	name     string
	registry atomic.Pointer[metrics.Registry]
	enabled  atomic.Bool
}

// NewWithMetrics creates a trailing-edge debouncer with metrics enabled.
func NewWithMetrics[A, R any](fn Func[A, R], delay time.Duration, name string) Debouncer[A, R] {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}

	return NewWithConfigAndMetrics(fn, delay, DefaultConfig(), name, config)
}

// NewWithConfigAndMetrics creates a debouncer with custom config and metrics.
// It panics on invalid configuration, like NewWithConfig.
func NewWithConfigAndMetrics[A, R any](
	fn Func[A, R],
	delay time.Duration,
	config Config,
	name string,
	metricsConfig metrics.Config,
) Debouncer[A, R] {
	if !metricsConfig.Enabled {
		return NewWithConfig(fn, delay, config)
	}

	md := &MetricsDebouncer[A, R]{name: name}
	md.registry.Store(metrics.RegistryFor(metricsConfig))
	md.enabled.Store(true)

	if config.Name == "" {
		config.Name = name
	}
	onInvoke, onAbort := config.OnInvoke, config.OnAbort
	config.OnInvoke = func(edge Edge, took time.Duration) {
		md.observeInvoke(edge, took)
		if onInvoke != nil {
			onInvoke(edge, took)
		}
	}
	config.OnAbort = func() {
		if md.enabled.Load() {
			md.registry.Load().DebounceAborts.WithLabelValues(md.name).Inc()
		}
		if onAbort != nil {
			onAbort()
		}
	}

	config.onIdle = func() {
		if md.enabled.Load() {
			md.registry.Load().DebouncePending.WithLabelValues(md.name).Set(0)
		}
	}

	base, err := newDebouncer(fn, delay, config)
	if err != nil {
		panic(err)
	}
	md.base = base
	return md
}

// Call records args and returns the latest result.
func (md *MetricsDebouncer[A, R]) Call(args A) R {
	result, edge, accepted := md.base.call(args)

	if md.enabled.Load() {
		registry := md.registry.Load()
		registry.DebounceCalls.WithLabelValues(md.name).Inc()
		if accepted && edge == "" {
			registry.DebounceSuppressed.WithLabelValues(md.name).Inc()
		}
		md.updatePending(registry)
	}

	return result
}

// Cancel discards any pending invocation.
func (md *MetricsDebouncer[A, R]) Cancel() {
	md.base.Cancel()

	if md.enabled.Load() {
		registry := md.registry.Load()
		registry.DebounceCancels.WithLabelValues(md.name).Inc()
		md.updatePending(registry)
	}
}

// Flush invokes with the pending arguments, if any.
func (md *MetricsDebouncer[A, R]) Flush() R {
	result := md.base.Flush()

	if md.enabled.Load() {
		md.updatePending(md.registry.Load())
	}

	return result
}

// Pending reports whether an invocation is owed.
func (md *MetricsDebouncer[A, R]) Pending() bool {
	return md.base.Pending()
}

// EnableMetrics enables metrics collection.
func (md *MetricsDebouncer[A, R]) EnableMetrics(config metrics.Config) error {
	if config.Registry != nil {
		md.registry.Store(metrics.RegistryFor(config))
	}
	md.enabled.Store(config.Enabled)

	return nil
}

// DisableMetrics disables metrics collection.
func (md *MetricsDebouncer[A, R]) DisableMetrics() {
	md.enabled.Store(false)
}

// MetricsEnabled returns true if metrics are currently enabled.
func (md *MetricsDebouncer[A, R]) MetricsEnabled() bool {
	return md.enabled.Load()
}

func (md *MetricsDebouncer[A, R]) observeInvoke(edge Edge, took time.Duration) {
	if !md.enabled.Load() {
		return
	}
	registry := md.registry.Load()
	registry.DebounceInvocations.WithLabelValues(string(edge), md.name).Inc()
	registry.DebounceInvocationDuration.WithLabelValues(string(edge), md.name).Observe(took.Seconds())
	md.updatePending(registry)
}

func (md *MetricsDebouncer[A, R]) updatePending(registry *metrics.Registry) {
	pending := 0.0
	if md.base != nil && md.base.Pending() {
		pending = 1
	}
	registry.DebouncePending.WithLabelValues(md.name).Set(pending)
}

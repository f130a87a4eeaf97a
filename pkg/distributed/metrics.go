package distributed

import (
	"context"
	"sync/atomic"

	"github.com/vnykmshr/coalesce/pkg/metrics"
)

// MetricsLease wraps a Lease with Prometheus metrics collection.
type MetricsLease struct {
	lease    Lease
	name     string
	registry atomic.Pointer[metrics.Registry]
	enabled  atomic.Bool
}

// NewWithMetrics wraps lease with acquisition metrics labeled by name.
// A disabled metricsConfig returns lease unchanged.
func NewWithMetrics(lease Lease, name string, metricsConfig metrics.Config) Lease {
	if !metricsConfig.Enabled {
		return lease
	}

	ml := &MetricsLease{lease: lease, name: name}
	ml.registry.Store(metrics.RegistryFor(metricsConfig))
	ml.enabled.Store(true)
	return ml
}

// TryAcquire claims the current window for this instance.
func (ml *MetricsLease) TryAcquire(ctx context.Context) (bool, error) {
	won, err := ml.lease.TryAcquire(ctx)

	if ml.enabled.Load() {
		registry := ml.registry.Load()
		switch {
		case err != nil:
			registry.LeaseErrors.WithLabelValues(ml.name).Inc()
		case won:
			registry.LeaseAcquired.WithLabelValues(ml.name).Inc()
		default:
			registry.LeaseDenied.WithLabelValues(ml.name).Inc()
		}
	}

	return won, err
}

// Release gives up the window early.
func (ml *MetricsLease) Release(ctx context.Context) error {
	err := ml.lease.Release(ctx)
	if err != nil && ml.enabled.Load() {
		ml.registry.Load().LeaseErrors.WithLabelValues(ml.name).Inc()
	}
	return err
}

// Holder returns the instance ID holding the window.
func (ml *MetricsLease) Holder(ctx context.Context) (string, error) {
	return ml.lease.Holder(ctx)
}

// EnableMetrics enables metrics collection.
func (ml *MetricsLease) EnableMetrics(config metrics.Config) error {
	if config.Registry != nil {
		ml.registry.Store(metrics.RegistryFor(config))
	}
	ml.enabled.Store(config.Enabled)

	return nil
}

// DisableMetrics disables metrics collection.
func (ml *MetricsLease) DisableMetrics() {
	ml.enabled.Store(false)
}

// MetricsEnabled returns true if metrics are currently enabled.
func (ml *MetricsLease) MetricsEnabled() bool {
	return ml.enabled.Load()
}

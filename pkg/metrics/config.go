package metrics

import (
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Config holds configuration for metrics collection.
type Config struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool

	// Registry is the Prometheus registry to use. If nil, uses prometheus.DefaultRegisterer.
	Registry prometheus.Registerer

	// Namespace overrides the default "coalesce" namespace for metrics.
	Namespace string

	// Labels are additional constant labels added to all metrics.
	Labels prometheus.Labels
}

// DefaultConfig returns a default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Registry:  prometheus.DefaultRegisterer,
		Namespace: DefaultNamespace,
		Labels:    nil,
	}
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

type registryKey struct {
	reg       prometheus.Registerer
	namespace string
	labels    string
}

var (
	sharedMu sync.Mutex
	shared   = map[registryKey]*Registry{}
)

// RegistryFor returns the Registry for config, creating it on first use.
// Components sharing a Prometheus registerer, namespace and labels share
// collectors instead of registering them twice.
func RegistryFor(config Config) *Registry {
	reg := config.Registry
	if reg == nil || reg == prometheus.DefaultRegisterer {
		if config.Namespace == "" || config.Namespace == DefaultNamespace {
			if len(config.Labels) == 0 {
				return DefaultRegistry
			}
		}
		reg = prometheus.DefaultRegisterer
	}

	key := registryKey{reg: reg, namespace: config.Namespace, labels: labelsKey(config.Labels)}
	if key.namespace == "" {
		key.namespace = DefaultNamespace
	}

	sharedMu.Lock()
	defer sharedMu.Unlock()

	if r, ok := shared[key]; ok {
		return r
	}
	config.Registry = reg
	r := NewRegistryWithConfig(config)
	shared[key] = r
	return r
}

func labelsKey(labels prometheus.Labels) string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(labels[name])
		b.WriteByte(',')
	}
	return b.String()
}

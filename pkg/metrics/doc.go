// Package metrics provides Prometheus instrumentation for coalesce components.
//
// # Overview
//
// The metrics package provides instrumentation for:
//   - Debounced functions (calls, suppressed calls, invocations per edge, invocation time)
//   - Cron flush schedules (flushes triggered)
//   - Distributed window leases (acquired, denied, failed)
//
// # Quick Start
//
// Enable metrics by using the metrics-enabled constructors:
//
//	save := debounce.NewWithMetrics(persist, 500*time.Millisecond, "autosave")
//	lease := distributed.NewWithMetrics(baseLease, "autosave_lease", metrics.DefaultConfig())
//
// Then expose metrics via HTTP:
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
//	save := debounce.NewWithConfigAndMetrics(persist, time.Second,
//		debounce.DefaultConfig(), "autosave", config)
//
// # Available Metrics
//
// ## Debounce Metrics
//
//   - coalesce_debounce_calls_total: Total number of calls to debounced functions
//   - coalesce_debounce_suppressed_total: Calls answered from the cached result
//   - coalesce_debounce_invocations_total: Real invocations of the wrapped function
//   - coalesce_debounce_invocation_duration_seconds: Time spent inside the wrapped function
//   - coalesce_debounce_cancels_total: Explicit cancellations
//   - coalesce_debounce_aborts_total: Debouncers disabled by their cancellation signal
//   - coalesce_debounce_pending: 1 while an invocation is owed
//
// ## Schedule Metrics
//
//   - coalesce_schedule_flushes_total: Flushes triggered by a cron schedule
//
// ## Lease Metrics
//
//   - coalesce_lease_acquired_total: Window leases won by this instance
//   - coalesce_lease_denied_total: Window leases held by another instance
//   - coalesce_lease_errors_total: Failed lease operations
//
// # Labels
//
//   - debouncer_name: User-provided name for the debouncer
//   - edge: "leading", "trailing", "max_wait" or "flush"
//   - schedule_name: User-provided name for the flush schedule
//   - lease_name: User-provided name for the lease
//
// # Runtime Control
//
// Components implementing the Instrumentable interface support runtime control:
//
//	save.DisableMetrics()
//	save.EnableMetrics(config)
//	enabled := save.MetricsEnabled()
package metrics

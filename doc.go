/*
Package coalesce provides a Go library for coalescing bursts of calls into
single invocations.

Debouncing (pkg/debounce):
  - Debouncer: leading, trailing and maxWait edges with Cancel and Flush
  - Group: one debouncer per key with shared configuration
  - FlushSchedule: cron-driven flushes that bound staleness

Coordination (pkg/distributed):
  - Lease: one winner per window across replicas, backed by Redis
  - Guard: run a debounced side effect only on the winning replica

Observability (pkg/metrics):
  - Prometheus counters, histograms and gauges for every component

Example usage:

	import (
		"github.com/vnykmshr/coalesce/pkg/debounce"
	)

	save := debounce.New(func(doc Document) error {
		return store.Save(doc)
	}, 500*time.Millisecond)

	// Called on every edit; the document is saved once editing pauses.
	save.Call(doc)
*/
package coalesce

/*
Package debounce coalesces bursts of calls into a single invocation of a function.

A debouncer wraps a function and defers calling it until the calls stop
arriving for a quiet period (the delay). Every Call records its arguments
and re-arms the delay timer, so the delay always measures from the latest
call. When the timer finally fires, the function runs once with the
arguments of the last call.

Basic usage:

	search := debounce.New(func(query string) []Result {
		return index.Search(query)
	}, 300*time.Millisecond)

	// Called on every keystroke; the index is queried once typing stops.
	results := search.Call(input)

Call returns the result of the most recent real invocation. That result is
fresh when the call itself invoked the function and cached otherwise, so
callers typically use it as "the latest known answer".

# Edges

Config selects when invocations happen:

  - Trailing (the default) invokes when the delay elapses after the last call.
  - Leading invokes immediately on the first call of a window. Later calls in
    the same window only record arguments.
  - With both enabled, a single call invokes once on the leading edge. A
    second call within the window causes a trailing invocation with its
    arguments.
  - MaxWait bounds how long a continuous burst may defer an invocation. Once
    a window is older than MaxWait, the next call invokes immediately and
    starts a new window.

A zero Config enables neither edge; such a debouncer invokes only on Flush.
Use DefaultConfig as the starting point.

# Cancel, Flush and the cancellation signal

Cancel discards the pending invocation and disarms the timer. Flush invokes
immediately with the pending arguments, if any, and then behaves like Cancel.
Neither touches the cached result.

Config.Context is a cancellation signal. Once it is done, the debouncer is
permanently disabled: the pending invocation is discarded, Call returns the
zero result and no timer fires. A single listener is registered on the
context for the debouncer's lifetime; the runtime releases it when the
context is done. A context that is never canceled keeps the listener, and
so the debouncer, reachable for as long as the context lives.

# Concurrency

All methods are safe for concurrent use. The wrapped function never runs
with internal locks held, so it may call back into its own debouncer; such
calls are ordinary new calls. Trailing invocations run on the timer's
goroutine.

A panic in the wrapped function is not recovered. It propagates out of the
operation that triggered the invocation (Call, Flush or the timer firing)
and leaves the debouncer idle, so the next call starts a fresh window.

# Testing

Config.Clock replaces the wall clock and its timers. With a virtual clock,
timer firings happen deterministically when the test advances time.

# Groups and schedules

Group maintains one debouncer per key, for example per watched file, with a
shared delay, Config and cancellation signal. Prune drops idle keys and
unregisters their listeners from the signal, so a long-lived group with
rotating keys does not accumulate members.

FlushSchedule flushes on a cron expression, which bounds staleness for
long-running bursts in wall-clock terms:

	d := debounce.New(persist, time.Minute)
	s, err := debounce.ScheduleFlush(d, "@every 5m", debounce.ScheduleConfig{Name: "persist"})
	if err != nil {
		return err
	}
	defer s.Stop()

# Metrics

NewWithConfigAndMetrics wraps a debouncer with Prometheus metrics: calls,
suppressed calls, invocations and their duration per edge, cancels, aborts
and a pending gauge.

	d := debounce.NewWithConfigAndMetrics(fn, delay, debounce.DefaultConfig(), "search", metrics.Config{
		Enabled:  true,
		Registry: prometheus.DefaultRegisterer,
	})
*/
package debounce

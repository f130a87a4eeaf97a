// Package distributed deduplicates debounced side effects across replicas
// using Redis as the coordination backend.
//
// When several instances of a service consume the same event stream, each of
// them debounces locally and each would run the side effect once per window.
// A Lease lets exactly one of them win the window: the winner runs, the others
// return their last local result.
//
// # Quick Start
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//
//	config := distributed.DefaultConfig()
//	config.Redis = rdb
//	config.Key = "reports:daily"
//	config.TTL = 30 * time.Second
//
//	lease, err := distributed.NewLease(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	send := distributed.Guard(sendReport, lease, distributed.GuardConfig{})
//	report := debounce.New(send, 10*time.Second)
//
// # Window Semantics
//
// TryAcquire issues SET key instance NX PX ttl. The first instance to call it
// within a TTL wins; the key expires on its own, so a crashed winner never
// blocks later windows for longer than the TTL. Choose a TTL that covers the
// skew between replicas' trailing invocations, usually close to the debounce
// delay.
//
// Release deletes the key through a compare-and-delete Lua script, so an
// instance can only release a window it still holds.
//
// # Fallback Strategy
//
// With FallbackToLocal (the default), an unreachable Redis makes TryAcquire
// report a win, so every instance runs the side effect rather than none of
// them. Disable it when duplicates are worse than gaps; TryAcquire then
// returns a *RedisError and Guard skips the invocation.
//
// # Metrics
//
// NewWithMetrics wraps a Lease and counts acquired, denied and failed
// acquisitions:
//
//	lease = distributed.NewWithMetrics(lease, "daily_report", metrics.Config{Enabled: true})
//
// # Error Handling
//
//   - ConfigError: invalid configuration passed to NewLease
//   - RedisError: a Redis command failed; it unwraps to the client error
package distributed

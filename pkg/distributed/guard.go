package distributed

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vnykmshr/coalesce/pkg/debounce"
)

// GuardConfig holds configuration for Guard.
type GuardConfig struct {
	// Context bounds the lease operations. If nil, context.Background is used.
	Context context.Context

	// ReleaseAfter releases the lease once fn returns, letting the next
	// window be claimed before the TTL expires.
	ReleaseAfter bool

	// Logger receives skipped and failed acquisitions. If nil, logging is disabled.
	Logger *zerolog.Logger

	// OnSkip is called when another instance holds the window.
	OnSkip func()
}

// Guard wraps fn so that it only runs on the instance that wins the lease.
// Losing instances, and instances that could not reach Redis, return the
// result of their own last run instead.
//
// The returned function is meant to be debounced on every replica:
//
//	report := debounce.New(distributed.Guard(sendReport, lease, distributed.GuardConfig{}), time.Minute)
func Guard[A, R any](fn debounce.Func[A, R], lease Lease, config GuardConfig) debounce.Func[A, R] {
	if config.Context == nil {
		config.Context = context.Background()
	}
	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	var (
		mu   sync.Mutex
		last R
	)
	lastResult := func() R {
		mu.Lock()
		defer mu.Unlock()
		return last
	}

	return func(args A) R {
		won, err := lease.TryAcquire(config.Context)
		if err != nil {
			logger.Warn().Err(err).Msg("lease acquisition failed, skipping invocation")
			return lastResult()
		}
		if !won {
			if config.OnSkip != nil {
				config.OnSkip()
			}
			return lastResult()
		}

		if config.ReleaseAfter {
			defer func() {
				if err := lease.Release(config.Context); err != nil {
					logger.Warn().Err(err).Msg("lease release failed")
				}
			}()
		}

		result := fn(args)
		mu.Lock()
		last = result
		mu.Unlock()
		return result
	}
}

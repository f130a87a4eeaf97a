package distributed

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	ctxutil "github.com/vnykmshr/coalesce/pkg/common/context"
)

// Lease elects one instance per window across replicas, using Redis as the
// coordination backend.
type Lease interface {
	// TryAcquire claims the current window for this instance. It returns
	// false when another instance holds it.
	TryAcquire(ctx context.Context) (bool, error)

	// Release gives up the window early, but only if this instance holds it.
	Release(ctx context.Context) error

	// Holder returns the instance ID holding the window, or "" when it is free.
	Holder(ctx context.Context) (string, error)
}

// Config holds configuration for a Redis lease.
type Config struct {
	// Redis is the client shared by every replica
	Redis redis.UniversalClient

	// Key is the Redis key holding the lease
	Key string

	// InstanceID is stored as the lease value. It must differ per replica
	InstanceID string

	// TTL is how long a won window stays claimed (defaults to 1 second)
	TTL time.Duration

	// RedisTimeout is the timeout for Redis operations (defaults to 500ms)
	RedisTimeout time.Duration

	// FallbackToLocal treats the window as won when Redis is unavailable,
	// so every instance runs locally instead of none
	FallbackToLocal bool

	// Logger receives lease events. If nil, logging is disabled.
	Logger *zerolog.Logger
}

// DefaultConfig returns a default lease configuration.
func DefaultConfig() Config {
	return Config{
		InstanceID:      newInstanceID(),
		TTL:             time.Second,
		RedisTimeout:    500 * time.Millisecond,
		FallbackToLocal: true,
	}
}

// releaseScript deletes the key only while it still holds our instance ID,
// so a lease that expired and was re-won elsewhere is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLease struct {
	config Config
	logger zerolog.Logger
}

// NewLease creates a Redis-backed lease.
func NewLease(config Config) (Lease, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	config = applyConfigDefaults(config)

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = config.Logger.With().
			Str("lease", config.Key).
			Str("instance", config.InstanceID).
			Logger()
	}

	return &redisLease{config: config, logger: logger}, nil
}

// validateConfig validates the lease configuration.
func validateConfig(config Config) error {
	if config.Redis == nil {
		return &ConfigError{"redis client is required"}
	}
	if config.Key == "" {
		return &ConfigError{"key is required"}
	}
	if config.TTL < 0 {
		return &ConfigError{"ttl cannot be negative"}
	}
	if config.RedisTimeout < 0 {
		return &ConfigError{"redis timeout cannot be negative"}
	}
	return nil
}

// applyConfigDefaults fills zero TTL, timeout and instance ID.
func applyConfigDefaults(config Config) Config {
	if config.InstanceID == "" {
		config.InstanceID = newInstanceID()
	}
	if config.TTL == 0 {
		config.TTL = time.Second
	}
	if config.RedisTimeout == 0 {
		config.RedisTimeout = 500 * time.Millisecond
	}
	return config
}

// TryAcquire claims the window with SET NX PX.
func (l *redisLease) TryAcquire(ctx context.Context) (bool, error) {
	ctx, cancel := ctxutil.WithTimeoutOrCancel(ctx, l.config.RedisTimeout)
	defer cancel()

	won, err := l.config.Redis.SetNX(ctx, l.config.Key, l.config.InstanceID, l.config.TTL).Result()
	if err != nil {
		if l.config.FallbackToLocal {
			l.logger.Warn().Err(err).Msg("redis unavailable, running locally")
			return true, nil
		}
		return false, &RedisError{"acquire", err}
	}

	if won {
		l.logger.Debug().Dur("ttl", l.config.TTL).Msg("lease acquired")
	} else {
		l.logger.Debug().Msg("lease held by another instance")
	}
	return won, nil
}

// Release deletes the key if this instance still holds it.
func (l *redisLease) Release(ctx context.Context) error {
	ctx, cancel := ctxutil.WithTimeoutOrCancel(ctx, l.config.RedisTimeout)
	defer cancel()

	deleted, err := releaseScript.Run(ctx, l.config.Redis, []string{l.config.Key}, l.config.InstanceID).Int64()
	if err != nil {
		return &RedisError{"release", err}
	}
	if deleted == 1 {
		l.logger.Debug().Msg("lease released")
	}
	return nil
}

// Holder returns the current holder's instance ID.
func (l *redisLease) Holder(ctx context.Context) (string, error) {
	ctx, cancel := ctxutil.WithTimeoutOrCancel(ctx, l.config.RedisTimeout)
	defer cancel()

	holder, err := l.config.Redis.Get(ctx, l.config.Key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", &RedisError{"holder", err}
	}
	return holder, nil
}

// newInstanceID returns "<hostname>-<pid>-<random>", unique per process even
// when replicas share a hostname.
func newInstanceID() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "coalesce"
	}
	suffix := make([]byte, 6)
	_, _ = rand.Read(suffix)
	return hostname + "-" + strconv.Itoa(os.Getpid()) + "-" + hex.EncodeToString(suffix)
}

// ConfigError is returned by NewLease for an unusable Config.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "distributed lease config error: " + e.Message
}

// RedisError wraps a failed Redis command with the lease operation that issued it.
type RedisError struct {
	Operation string
	Err       error
}

func (e *RedisError) Error() string {
	return "redis error in " + e.Operation + ": " + e.Err.Error()
}

func (e *RedisError) Unwrap() error {
	return e.Err
}

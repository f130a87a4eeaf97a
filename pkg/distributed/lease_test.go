package distributed

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/coalesce/internal/testutil"
)

// newTestRedis returns a client for REDIS_ADDR (default localhost:6379) or
// skips the test when no server answers.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 1})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("Redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

// unreachableRedis returns a client whose commands fail fast.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func testKey(t *testing.T) string {
	return "coalesce:test:" + strings.ReplaceAll(t.Name(), "/", ":")
}

func TestNewLeaseValidation(t *testing.T) {
	rdb := unreachableRedis(t)

	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"missing redis", Config{Key: "k"}, "redis client is required"},
		{"missing key", Config{Redis: rdb}, "key is required"},
		{"negative ttl", Config{Redis: rdb, Key: "k", TTL: -time.Second}, "ttl cannot be negative"},
		{"negative timeout", Config{Redis: rdb, Key: "k", RedisTimeout: -time.Second}, "redis timeout cannot be negative"},
		{"valid", Config{Redis: rdb, Key: "k"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lease, err := NewLease(tt.config)
			if tt.wantErr == "" {
				testutil.AssertNoError(t, err)
				if lease == nil {
					t.Fatal("expected lease")
				}
				return
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			testutil.AssertEqual(t, cfgErr.Message, tt.wantErr)
			if !strings.HasPrefix(err.Error(), "distributed lease config error: ") {
				t.Errorf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestApplyConfigDefaults(t *testing.T) {
	config := applyConfigDefaults(Config{})

	testutil.AssertEqual(t, config.TTL, time.Second)
	testutil.AssertEqual(t, config.RedisTimeout, 500*time.Millisecond)
	if config.InstanceID == "" {
		t.Error("expected a generated instance ID")
	}

	defaults := DefaultConfig()
	testutil.AssertEqual(t, defaults.FallbackToLocal, true)
	if defaults.InstanceID == "" {
		t.Error("expected DefaultConfig to generate an instance ID")
	}
}

func TestNewInstanceIDUnique(t *testing.T) {
	hostname, _ := os.Hostname()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := newInstanceID()
		if hostname != "" && !strings.HasPrefix(id, hostname+"-") {
			t.Fatalf("instance ID %s does not start with hostname %s", id, hostname)
		}
		if seen[id] {
			t.Fatalf("duplicate instance ID %s", id)
		}
		seen[id] = true
	}
}

func TestRedisError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &RedisError{"acquire", cause}

	testutil.AssertEqual(t, err.Error(), "redis error in acquire: connection refused")
	if !errors.Is(err, cause) {
		t.Error("expected RedisError to unwrap to its cause")
	}
}

func TestTryAcquireRedisUnavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("fallback to local", func(t *testing.T) {
		lease, err := NewLease(Config{Redis: unreachableRedis(t), Key: "k", FallbackToLocal: true})
		testutil.AssertNoError(t, err)

		won, err := lease.TryAcquire(ctx)
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, won, true)
	})

	t.Run("no fallback", func(t *testing.T) {
		lease, err := NewLease(Config{Redis: unreachableRedis(t), Key: "k"})
		testutil.AssertNoError(t, err)

		won, err := lease.TryAcquire(ctx)
		testutil.AssertEqual(t, won, false)
		var redisErr *RedisError
		if !errors.As(err, &redisErr) {
			t.Fatalf("expected RedisError, got %v", err)
		}
		testutil.AssertEqual(t, redisErr.Operation, "acquire")

		_, err = lease.Holder(ctx)
		if !errors.As(err, &redisErr) || redisErr.Operation != "holder" {
			t.Errorf("expected holder RedisError, got %v", err)
		}

		err = lease.Release(ctx)
		if !errors.As(err, &redisErr) || redisErr.Operation != "release" {
			t.Errorf("expected release RedisError, got %v", err)
		}
	})
}

func TestLeaseWithRedis(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	key := testKey(t)
	t.Cleanup(func() { rdb.Del(context.Background(), key) })

	a, err := NewLease(Config{Redis: rdb, Key: key, InstanceID: "a", TTL: time.Minute})
	testutil.AssertNoError(t, err)
	b, err := NewLease(Config{Redis: rdb, Key: key, InstanceID: "b", TTL: time.Minute})
	testutil.AssertNoError(t, err)

	holder, err := a.Holder(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, holder, "")

	won, err := a.TryAcquire(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, won, true)

	won, err = b.TryAcquire(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, won, false)

	// Only the holder can release.
	testutil.AssertNoError(t, b.Release(ctx))
	holder, err = b.Holder(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, holder, "a")

	testutil.AssertNoError(t, a.Release(ctx))
	won, err = b.TryAcquire(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, won, true)
}

func TestLeaseExpires(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	key := testKey(t)
	t.Cleanup(func() { rdb.Del(context.Background(), key) })

	a, err := NewLease(Config{Redis: rdb, Key: key, InstanceID: "a", TTL: 50 * time.Millisecond})
	testutil.AssertNoError(t, err)
	b, err := NewLease(Config{Redis: rdb, Key: key, InstanceID: "b", TTL: 50 * time.Millisecond})
	testutil.AssertNoError(t, err)

	won, err := a.TryAcquire(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, won, true)

	testutil.Eventually(t, func() bool {
		won, err := b.TryAcquire(ctx)
		return err == nil && won
	}, time.Second, 10*time.Millisecond)
}

package debounce

import (
	"sync"
	"time"

	ctxutil "github.com/vnykmshr/coalesce/pkg/common/context"
	"github.com/vnykmshr/coalesce/pkg/common/errors"
)

// Group debounces calls independently per key, for example one debouncer
// per watched file or per user document. All members share the group's
// delay and Config, including its cancellation signal.
type Group[K comparable, A, R any] struct {
	fn     func(key K, args A) R
	delay  time.Duration
	config Config

	mu      sync.Mutex
	members map[K]*debouncer[A, R]
}

// NewGroup creates a keyed group. It panics on invalid configuration;
// use NewGroupSafe to get an error instead.
func NewGroup[K comparable, A, R any](fn func(key K, args A) R, delay time.Duration, config Config) *Group[K, A, R] {
	g, err := NewGroupSafe(fn, delay, config)
	if err != nil {
		panic(err)
	}
	return g
}

// NewGroupSafe creates a keyed group with validation that returns an error instead of panicking.
func NewGroupSafe[K comparable, A, R any](fn func(key K, args A) R, delay time.Duration, config Config) (*Group[K, A, R], error) {
	if fn == nil {
		return nil, errors.NewValidationError("debounce", "fn", nil, "cannot be nil").
			WithHint("provide the function to debounce per key")
	}
	if err := validate(delay, config); err != nil {
		return nil, err
	}

	return &Group[K, A, R]{
		fn:      fn,
		delay:   delay,
		config:  config,
		members: make(map[K]*debouncer[A, R]),
	}, nil
}

// Call debounces args under key and returns that key's latest result.
// The call is recorded while the group lock is held, so a concurrent Prune
// either keeps the member or runs before it is looked up.
func (g *Group[K, A, R]) Call(key K, args A) R {
	g.mu.Lock()
	d := g.member(key)
	if ctxutil.IsCanceled(d.ctx) {
		g.mu.Unlock()
		d.abort()
		var zero R
		return zero
	}
	d.mu.Lock()
	result, edge, _ := d.record(args)
	d.mu.Unlock()
	g.mu.Unlock()

	if edge == "" {
		return result
	}
	return d.invoke(edge, args)
}

// Cancel discards the pending invocation for key.
func (g *Group[K, A, R]) Cancel(key K) {
	if d := g.lookup(key); d != nil {
		d.Cancel()
	}
}

// Flush invokes key's pending call now and returns its latest result.
// Unknown keys return the zero R.
func (g *Group[K, A, R]) Flush(key K) R {
	if d := g.lookup(key); d != nil {
		return d.Flush()
	}
	var zero R
	return zero
}

// Pending reports whether an invocation is owed for key.
func (g *Group[K, A, R]) Pending(key K) bool {
	if d := g.lookup(key); d != nil {
		return d.Pending()
	}
	return false
}

// FlushAll flushes every member.
func (g *Group[K, A, R]) FlushAll() {
	for _, d := range g.snapshot() {
		d.Flush()
	}
}

// CancelAll cancels every member.
func (g *Group[K, A, R]) CancelAll() {
	for _, d := range g.snapshot() {
		d.Cancel()
	}
}

// Len returns the number of tracked keys.
func (g *Group[K, A, R]) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members)
}

// Prune forgets keys that owe nothing and have no armed timer, including
// their cached results, and detaches them from the cancellation signal.
// It returns the number of keys removed.
func (g *Group[K, A, R]) Prune() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for key, d := range g.members {
		if d.idle() {
			d.release()
			delete(g.members, key)
			removed++
		}
	}
	return removed
}

// member returns the debouncer for key, creating it on first use.
// Callers hold g.mu.
func (g *Group[K, A, R]) member(key K) *debouncer[A, R] {
	if d, ok := g.members[key]; ok {
		return d
	}

	config := g.config
	if config.Logger != nil {
		logger := config.Logger.With().Interface("key", key).Logger()
		config.Logger = &logger
	}
	// The configuration was validated by NewGroupSafe. A canceled signal is
	// handled by Call once the group lock is released.
	d := buildDebouncer(func(args A) R { return g.fn(key, args) }, g.delay, config)
	d.listen()
	g.members[key] = d
	return d
}

func (g *Group[K, A, R]) lookup(key K) *debouncer[A, R] {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.members[key]
}

func (g *Group[K, A, R]) snapshot() []*debouncer[A, R] {
	g.mu.Lock()
	defer g.mu.Unlock()

	members := make([]*debouncer[A, R], 0, len(g.members))
	for _, d := range g.members {
		members = append(members, d)
	}
	return members
}

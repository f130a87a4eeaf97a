package debounce

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vnykmshr/coalesce/pkg/common/clock"
	ctxutil "github.com/vnykmshr/coalesce/pkg/common/context"
	"github.com/vnykmshr/coalesce/pkg/common/errors"
	"github.com/vnykmshr/coalesce/pkg/common/validation"
)

// Func is the function being debounced. A receives the call arguments (use a
// struct when there are several) and R is the result cached between real
// invocations. Receivers and other call context travel by closure capture.
type Func[A, R any] func(args A) R

// Edge identifies which path produced a real invocation.
type Edge string

const (
	// EdgeLeading is an invocation made by the first call of a window.
	EdgeLeading Edge = "leading"

	// EdgeTrailing is an invocation made when the delay elapsed after the last call.
	EdgeTrailing Edge = "trailing"

	// EdgeMaxWait is an invocation forced because the window outlived MaxWait.
	EdgeMaxWait Edge = "max_wait"

	// EdgeFlush is an invocation requested through Flush.
	EdgeFlush Edge = "flush"
)

// Debouncer coalesces bursts of calls into at most one real invocation per
// window (two when both edges are enabled). Every method is safe for
// concurrent use, and the wrapped function always runs without internal
// locks held, so it may call back into the Debouncer.
type Debouncer[A, R any] interface {
	// Call records args and (re)arms the delay timer. It returns the result of
	// the most recent real invocation, which is fresh when this call invoked
	// (leading edge or MaxWait) and cached otherwise. Once the cancellation
	// signal has fired, Call does nothing and returns the zero R.
	Call(args A) R

	// Cancel discards any pending invocation and disarms the timer.
	// It is idempotent and leaves the cached result untouched.
	Cancel()

	// Flush invokes immediately with the pending arguments, if any, and
	// then behaves like Cancel. It returns the latest result.
	Flush() R

	// Pending reports whether an invocation is owed.
	Pending() bool
}

// Config holds configuration options for creating a new Debouncer.
type Config struct {
	// Leading invokes immediately on the first call of a window.
	Leading bool

	// Trailing invokes once the delay has elapsed after the last call,
	// with that call's arguments. DefaultConfig enables it.
	Trailing bool

	// MaxWait bounds how long a window may defer an invocation while calls
	// keep arriving. Zero means unbounded.
	MaxWait time.Duration

	// Context is the cancellation signal. Once it is done the debouncer is
	// permanently disabled and any pending invocation is discarded.
	Context context.Context

	// Clock provides the current time and timers. If nil, clock.System is used.
	Clock clock.Clock

	// Logger receives debug events. If nil, logging is disabled.
	Logger *zerolog.Logger

	// Name identifies the debouncer in logs and metrics.
	Name string

	// OnInvoke is called after every completed real invocation.
	OnInvoke func(edge Edge, took time.Duration)

	// OnCancel is called after Cancel reset the state.
	OnCancel func()

	// OnAbort is called once, after the cancellation signal disabled the debouncer.
	OnAbort func()

	// onIdle is called whenever the state drops to idle without a completed
	// invocation: a firing with nothing to invoke, an abort or a panic.
	onIdle func()
}

// DefaultConfig returns the trailing-edge-only configuration.
func DefaultConfig() Config {
	return Config{
		Trailing: true,
		Clock:    clock.System{},
	}
}

// debouncer implements the Debouncer interface.
type debouncer[A, R any] struct {
	fn       Func[A, R]
	delay    time.Duration
	leading  bool
	trailing bool
	maxWait  time.Duration
	ctx      context.Context
	clock    clock.Clock
	logger   zerolog.Logger
	onInvoke func(Edge, time.Duration)
	onCancel func()
	onAbort  func()
	onIdle   func()

	stopSignal func() bool

	mu          sync.Mutex
	args        A
	hasArgs     bool
	timer       clock.Timer
	epoch       uint64
	windowOpen  bool
	windowStart time.Time
	lastResult  R
	aborted     bool
}

// New creates a trailing-edge debouncer for fn. It panics if fn is nil or
// delay is negative; use NewSafe to get an error instead.
func New[A, R any](fn Func[A, R], delay time.Duration) Debouncer[A, R] {
	return NewWithConfig(fn, delay, DefaultConfig())
}

// NewWithConfig creates a debouncer for fn with the given configuration.
// It panics on invalid configuration; use NewWithConfigSafe to get an error instead.
func NewWithConfig[A, R any](fn Func[A, R], delay time.Duration, config Config) Debouncer[A, R] {
	d, err := NewWithConfigSafe(fn, delay, config)
	if err != nil {
		panic(err)
	}
	return d
}

// NewSafe creates a trailing-edge debouncer with validation that returns an error instead of panicking.
func NewSafe[A, R any](fn Func[A, R], delay time.Duration) (Debouncer[A, R], error) {
	return NewWithConfigSafe(fn, delay, DefaultConfig())
}

// NewWithConfigSafe creates a debouncer with validation that returns an error instead of panicking.
// This is the recommended way to create debouncers for production use.
func NewWithConfigSafe[A, R any](fn Func[A, R], delay time.Duration, config Config) (Debouncer[A, R], error) {
	d, err := newDebouncer(fn, delay, config)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func newDebouncer[A, R any](fn Func[A, R], delay time.Duration, config Config) (*debouncer[A, R], error) {
	if fn == nil {
		return nil, errors.NewValidationError("debounce", "fn", nil, "cannot be nil").
			WithHint("provide the function to debounce")
	}
	if err := validate(delay, config); err != nil {
		return nil, err
	}

	d := buildDebouncer(fn, delay, config)
	if ctxutil.IsCanceled(d.ctx) {
		d.abort()
	} else {
		d.listen()
	}

	return d, nil
}

// buildDebouncer creates a debouncer from a validated configuration without
// looking at its cancellation signal.
func buildDebouncer[A, R any](fn Func[A, R], delay time.Duration, config Config) *debouncer[A, R] {
	if config.Clock == nil {
		config.Clock = clock.System{}
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = config.Logger.With().Str("debouncer", config.Name).Logger()
	}

	return &debouncer[A, R]{
		fn:       fn,
		delay:    delay,
		leading:  config.Leading,
		trailing: config.Trailing,
		maxWait:  config.MaxWait,
		ctx:      config.Context,
		clock:    config.Clock,
		logger:   logger,
		onInvoke: config.OnInvoke,
		onCancel: config.OnCancel,
		onAbort:  config.OnAbort,
		onIdle:   config.onIdle,
	}
}

// listen registers the single cancellation listener. The runtime drops it
// after it fires; release drops it earlier.
func (d *debouncer[A, R]) listen() {
	d.stopSignal, _ = ctxutil.OnDone(d.ctx, d.abort)
}

// validate checks the durations shared by every constructor.
func validate(delay time.Duration, config Config) error {
	if err := validation.ValidateNonNegativeDuration("debounce", "delay", delay); err != nil {
		return err
	}
	return validation.ValidateNonNegativeDuration("debounce", "maxWait", config.MaxWait)
}

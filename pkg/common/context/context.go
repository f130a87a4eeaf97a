package context

import (
	"context"
	"time"
)

// WithTimeoutOrCancel creates a context that is canceled either when the parent
// is canceled or when the timeout duration elapses, whichever comes first
func WithTimeoutOrCancel(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

// IsCanceled returns true if the context has been canceled.
// A nil context is never canceled.
func IsCanceled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// OnDone registers f to run once ctx is done. The returned stop function
// unregisters f and reports whether it did so before f started. When ctx is
// nil or cannot be canceled nothing is registered, ok is false and stop is a
// no-op.
func OnDone(ctx context.Context, f func()) (stop func() bool, ok bool) {
	if ctx == nil || ctx.Done() == nil {
		return func() bool { return false }, false
	}
	return context.AfterFunc(ctx, f), true
}

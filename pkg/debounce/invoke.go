package debounce

import (
	"time"

	ctxutil "github.com/vnykmshr/coalesce/pkg/common/context"
)

// Call records args, re-arms the delay timer and invokes on the leading edge
// or when MaxWait has been exceeded.
func (d *debouncer[A, R]) Call(args A) R {
	result, _, _ := d.call(args)
	return result
}

// call is Call that also reports the edge it invoked on, or "" when the call
// did not invoke. accepted is false when the debouncer was already aborted.
func (d *debouncer[A, R]) call(args A) (result R, edge Edge, accepted bool) {
	if ctxutil.IsCanceled(d.ctx) {
		d.abort()
	}

	d.mu.Lock()
	result, edge, accepted = d.record(args)
	d.mu.Unlock()

	if edge == "" {
		return result, "", accepted
	}
	return d.invoke(edge, args), edge, true
}

// record applies a call to the state and returns the cached result and the
// edge the caller must invoke on, if any. Callers hold d.mu.
func (d *debouncer[A, R]) record(args A) (R, Edge, bool) {
	if d.aborted {
		var zero R
		return zero, "", false
	}

	now := d.clock.Now()
	d.args, d.hasArgs = args, true

	var edge Edge
	if d.maxWait > 0 {
		if d.windowOpen && now.Sub(d.windowStart) >= d.maxWait {
			edge = EdgeMaxWait
			d.clearArgs()
			d.windowStart = now
		} else if !d.windowOpen {
			d.windowOpen, d.windowStart = true, now
		}
	}

	first := d.timer == nil
	d.arm()

	if d.leading && first {
		edge = EdgeLeading
		d.clearArgs()
	}

	return d.lastResult, edge, true
}

// Cancel discards the pending invocation, the window and the timer.
func (d *debouncer[A, R]) Cancel() {
	d.mu.Lock()
	d.reset()
	d.mu.Unlock()

	d.logger.Debug().Msg("debounce canceled")
	if d.onCancel != nil {
		d.onCancel()
	}
}

// Flush invokes now with the pending arguments, if any, and resets the state.
func (d *debouncer[A, R]) Flush() R {
	if ctxutil.IsCanceled(d.ctx) {
		d.abort()
	}

	d.mu.Lock()
	args, owed := d.args, d.hasArgs
	d.reset()
	result := d.lastResult
	d.mu.Unlock()

	if !owed {
		return result
	}
	return d.invoke(EdgeFlush, args)
}

// Pending reports whether an invocation is owed.
func (d *debouncer[A, R]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasArgs
}

// idle reports whether no invocation is owed and no timer is armed.
func (d *debouncer[A, R]) idle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.hasArgs && d.timer == nil
}

// arm replaces the armed timer with a fresh one measured from now.
// Callers hold d.mu.
func (d *debouncer[A, R]) arm() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.epoch++
	epoch := d.epoch
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(epoch) })
}

// fire runs the trailing action of the timer armed at epoch. Firings of
// timers that were re-armed, canceled or flushed since are ignored.
func (d *debouncer[A, R]) fire(epoch uint64) {
	if ctxutil.IsCanceled(d.ctx) {
		d.abort()
		return
	}

	d.mu.Lock()
	if d.timer == nil || epoch != d.epoch {
		d.mu.Unlock()
		return
	}
	args, owed := d.args, d.hasArgs && d.trailing
	d.timer = nil
	d.reset()
	d.mu.Unlock()

	if owed {
		d.invoke(EdgeTrailing, args)
	} else if d.onIdle != nil {
		d.onIdle()
	}
}

// invoke calls the wrapped function and caches its result. A panic leaves
// the debouncer reset and keeps propagating.
func (d *debouncer[A, R]) invoke(edge Edge, args A) R {
	start := d.clock.Now()
	completed := false
	defer func() {
		if !completed {
			d.mu.Lock()
			d.reset()
			d.mu.Unlock()
			d.logger.Warn().Str("edge", string(edge)).Msg("debounced function panicked, state reset")
			if d.onIdle != nil {
				d.onIdle()
			}
		}
	}()

	result := d.fn(args)
	completed = true

	d.mu.Lock()
	d.lastResult = result
	d.mu.Unlock()

	took := d.clock.Now().Sub(start)
	d.logger.Debug().Str("edge", string(edge)).Dur("took", took).Msg("debounced function invoked")
	if d.onInvoke != nil {
		d.onInvoke(edge, took)
	}
	return result
}

// abort permanently disables the debouncer. It is registered as the
// cancellation listener and also runs when Call, Flush or a timer firing
// observe the signal before the listener did.
func (d *debouncer[A, R]) abort() {
	d.mu.Lock()
	if d.aborted {
		d.mu.Unlock()
		return
	}
	d.aborted = true
	d.reset()
	d.mu.Unlock()

	d.logger.Info().Msg("debouncer aborted by cancellation signal")
	if d.onIdle != nil {
		d.onIdle()
	}
	if d.onAbort != nil {
		d.onAbort()
	}
}

// release unregisters the cancellation listener so a debouncer that is no
// longer referenced can be collected while its context lives on. Callers
// hold the owning group's lock.
func (d *debouncer[A, R]) release() {
	if d.stopSignal != nil {
		d.stopSignal()
		d.stopSignal = nil
	}
}

// reset returns the invocation state to idle. lastResult is kept.
// Callers hold d.mu.
func (d *debouncer[A, R]) reset() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.epoch++
	d.clearArgs()
	d.windowOpen = false
	d.windowStart = time.Time{}
}

// clearArgs drops the pending arguments so they can be garbage collected.
// Callers hold d.mu.
func (d *debouncer[A, R]) clearArgs() {
	var zero A
	d.args, d.hasArgs = zero, false
}

package context

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestIsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	if IsCanceled(ctx) {
		t.Fatal("fresh context reported canceled")
	}
	cancel()
	if !IsCanceled(ctx) {
		t.Fatal("canceled context not reported")
	}
	//nolint:staticcheck // nil context is an accepted input
	if IsCanceled(nil) {
		t.Error("nil context reported canceled")
	}
}

func TestOnDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fired := make(chan struct{})

	if _, ok := OnDone(ctx, func() { close(fired) }); !ok {
		t.Fatal("OnDone should register on a cancelable context")
	}
	cancel()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback did not run after cancel")
	}
}

func TestOnDoneNeverCanceled(t *testing.T) {
	stop, ok := OnDone(context.Background(), func() {})
	if ok {
		t.Error("Background context cannot be canceled, OnDone should return false")
	}
	if stop() {
		t.Error("stop of an unregistered callback should report false")
	}
	//nolint:staticcheck // nil context is an accepted input
	if _, ok := OnDone(nil, func() {}); ok {
		t.Error("nil context should not register")
	}
}

func TestOnDoneStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var fired atomic.Bool

	stop, ok := OnDone(ctx, func() { fired.Store(true) })
	if !ok {
		t.Fatal("OnDone should register on a cancelable context")
	}
	if !stop() {
		t.Fatal("stop should unregister a callback that has not run")
	}
	if stop() {
		t.Error("second stop should report false")
	}

	cancel()
	time.Sleep(20 * time.Millisecond)
	if fired.Load() {
		t.Error("callback ran after stop")
	}
}

func TestWithTimeoutOrCancel(t *testing.T) {
	ctx, cancel := WithTimeoutOrCancel(context.Background(), 10*time.Millisecond)
	defer cancel()

	<-ctx.Done()
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("Err() = %v, want DeadlineExceeded", ctx.Err())
	}
}

package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func waitForCount(t *testing.T, counter *int32, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(counter) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("count = %d want %d", atomic.LoadInt32(counter), want)
}

func TestTriggerCoalescesBursts(t *testing.T) {
	d := New(30 * time.Millisecond)
	defer d.Stop()

	var count int32
	for i := 0; i < 10; i++ {
		d.Trigger("estimate", func() { atomic.AddInt32(&count, 1) })
		time.Sleep(2 * time.Millisecond)
	}

	waitForCount(t, &count, 1)

	// Quiet period passed; nothing else should fire
	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&count); got != 1 {
		t.Fatalf("count = %d want 1", got)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	d := New(20 * time.Millisecond)
	defer d.Stop()

	var estimates, addresses int32
	d.Trigger("estimate", func() { atomic.AddInt32(&estimates, 1) })
	d.Trigger("address", func() { atomic.AddInt32(&addresses, 1) })

	waitForCount(t, &estimates, 1)
	waitForCount(t, &addresses, 1)
}

func TestFlushRunsPendingImmediately(t *testing.T) {
	d := New(10 * time.Second)
	defer d.Stop()

	var count int32
	d.Trigger("estimate", func() { atomic.AddInt32(&count, 1) })
	d.Flush("estimate")

	if got := atomic.LoadInt32(&count); got != 1 {
		t.Fatalf("count after flush = %d want 1", got)
	}

	// Flush with nothing pending is a no-op
	d.Flush("estimate")
	if got := atomic.LoadInt32(&count); got != 1 {
		t.Fatalf("count after second flush = %d want 1", got)
	}
}

func TestCancelDropsPending(t *testing.T) {
	d := New(20 * time.Millisecond)
	defer d.Stop()

	var count int32
	d.Trigger("estimate", func() { atomic.AddInt32(&count, 1) })
	d.Cancel("estimate")

	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&count); got != 0 {
		t.Fatalf("count = %d want 0 after cancel", got)
	}
}

func TestStopSilencesEverything(t *testing.T) {
	d := New(20 * time.Millisecond)

	var count int32
	d.Trigger("a", func() { atomic.AddInt32(&count, 1) })
	d.Trigger("b", func() { atomic.AddInt32(&count, 1) })
	d.Stop()

	// Triggers after Stop are ignored
	d.Trigger("c", func() { atomic.AddInt32(&count, 1) })

	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&count); got != 0 {
		t.Fatalf("count = %d want 0 after stop", got)
	}
}

func TestLateTimerIsDiscarded(t *testing.T) {
	d := New(15 * time.Millisecond)
	defer d.Stop()

	var first, second int32
	d.Trigger("estimate", func() { atomic.AddInt32(&first, 1) })
	// Replace just before the first timer can fire
	time.Sleep(10 * time.Millisecond)
	d.Trigger("estimate", func() { atomic.AddInt32(&second, 1) })

	waitForCount(t, &second, 1)
	if got := atomic.LoadInt32(&first); got != 0 {
		t.Fatalf("superseded function ran %d times", got)
	}
}

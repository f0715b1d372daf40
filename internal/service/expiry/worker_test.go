package expiry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/VoidAutomata/alarm-registry/internal/domain/alarm"
	"github.com/VoidAutomata/alarm-registry/internal/registry"
)

var errSinkUnavailable = errors.New("sink unavailable")

// captureSink records firings on a channel and can simulate sink failure.
type captureSink struct {
	// firings receives every emitted event.
	firings chan *alarm.Firing
	// err is returned from Fired when set.
	err error
}

func newCaptureSink() *captureSink {
	return &captureSink{
		firings: make(chan *alarm.Firing, 16),
	}
}

// Fired records the event and returns the configured error.
func (s *captureSink) Fired(_ context.Context, firing *alarm.Firing) error {
	s.firings <- firing

	return s.err
}

// waitFiring blocks until a firing arrives or the deadline passes.
func waitFiring(t *testing.T, s *captureSink, within time.Duration) *alarm.Firing {
	t.Helper()

	select {
	case f := <-s.firings:
		return f
	case <-time.After(within):
		t.Fatalf("no firing within %s", within)

		return nil
	}
}

// TestWorkerFiresDueAlarmOnce verifies a due alarm is emitted exactly once
// and removed from the registry.
func TestWorkerFiresDueAlarmOnce(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	sink := newCaptureSink()
	w := NewWorker(reg, sink, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, reg.Insert(alarm.New(1, "Fire", 0, "wake up", time.Now())))

	go w.Run(ctx)

	f := waitFiring(t, sink, 2*time.Second)
	require.Equal(t, 1, f.ID)
	require.Equal(t, "Fire", f.Type)
	require.Equal(t, "wake up", f.Message)
	require.False(t, f.FiredAt.IsZero())
	require.Zero(t, reg.Len())

	// Exactly once: no second firing shows up.
	select {
	case extra := <-sink.firings:
		t.Fatalf("unexpected second firing for id %d", extra.ID)
	case <-time.After(200 * time.Millisecond):
	}
}

// TestWorkerWakesOnInsert ensures an insert during a long idle wait is
// picked up promptly via the wake channel, not after the scheduled wait.
func TestWorkerWakesOnInsert(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	sink := newCaptureSink()
	// A long idle poll: only the wake signal can make this test fast.
	w := NewWorker(reg, sink, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.Run(ctx)

	// Let the worker reach its idle wait, then insert a due alarm.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, reg.Insert(alarm.New(1, "Fire", 0, "now", time.Now())))

	f := waitFiring(t, sink, 2*time.Second)
	require.Equal(t, 1, f.ID)
}

// TestWorkerFiresAfterModifyToZero shortens a far-future alarm to zero and
// expects it to fire promptly.
func TestWorkerFiresAfterModifyToZero(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	sink := newCaptureSink()
	w := NewWorker(reg, sink, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, reg.Insert(alarm.New(1, "Fire", 3600, "later", time.Now())))

	go w.Run(ctx)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, reg.Modify(1, "Fire", 0, "now"))

	f := waitFiring(t, sink, 2*time.Second)
	require.Equal(t, 1, f.ID)
	require.Equal(t, 0, f.Seconds)
	require.Equal(t, "now", f.Message)
}

// TestWorkerDiscardsOnSinkFailure verifies a failing sink does not crash
// the loop and the alarm is still removed.
func TestWorkerDiscardsOnSinkFailure(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	sink := newCaptureSink()
	sink.err = errSinkUnavailable
	w := NewWorker(reg, sink, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, reg.Insert(alarm.New(1, "Fire", 0, "m", time.Now())))

	go w.Run(ctx)

	waitFiring(t, sink, 2*time.Second)
	require.Zero(t, reg.Len())

	// The loop keeps serving: a later alarm is still attempted.
	require.NoError(t, reg.Insert(alarm.New(2, "Fire", 0, "m", time.Now())))

	f := waitFiring(t, sink, 2*time.Second)
	require.Equal(t, 2, f.ID)
}

// TestWorkerNeverFiresCancelled inserts a short alarm, cancels it, and
// checks nothing is emitted.
func TestWorkerNeverFiresCancelled(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	sink := newCaptureSink()
	w := NewWorker(reg, sink, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, reg.Insert(alarm.New(1, "Fire", 1, "m", time.Now())))
	require.NoError(t, reg.Cancel(1))

	go w.Run(ctx)

	select {
	case f := <-sink.firings:
		t.Fatalf("cancelled alarm %d fired", f.ID)
	case <-time.After(1500 * time.Millisecond):
	}
}

// TestWorkerStopsOnContextCancel ensures Run returns when the context ends.
func TestWorkerStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	w := NewWorker(reg, newCaptureSink(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})

	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

// TestNewWorkerDefaults checks the fallback sink and poll interval.
func TestNewWorkerDefaults(t *testing.T) {
	t.Parallel()

	w := NewWorker(registry.New(), nil, 0)

	require.NotNil(t, w.sink)
	require.Equal(t, DefaultPollInterval, w.pollInterval)
}

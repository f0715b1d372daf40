package expiry

import (
	"context"
	"time"

	"github.com/VoidAutomata/alarm-registry/internal/domain/alarm"
	"github.com/VoidAutomata/alarm-registry/internal/logger"
	"github.com/VoidAutomata/alarm-registry/internal/registry"
)

// DefaultPollInterval is the idle wait when the registry is empty.
const DefaultPollInterval = 1 * time.Second

// Sink consumes firing events. An error is reported but never stops the
// worker; the claimed alarm is discarded either way.
type Sink interface {
	Fired(ctx context.Context, firing *alarm.Firing) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, firing *alarm.Firing) error

// Fired calls the function.
func (f SinkFunc) Fired(ctx context.Context, firing *alarm.Firing) error {
	return f(ctx, firing)
}

// Worker is the single background task emitting due alarms. Start it once
// with Run; it exits only when the context is cancelled.
type Worker struct {
	// registry is the shared alarm collection.
	registry *registry.Registry
	// sink receives firing events.
	sink Sink
	// pollInterval is the idle wait when no alarm is scheduled.
	pollInterval time.Duration
	// now is the clock; overridable in tests.
	now func() time.Time
}

// NewWorker creates a worker over the registry. A nil sink logs firings;
// a non-positive poll interval falls back to DefaultPollInterval.
func NewWorker(reg *registry.Registry, sink Sink, pollInterval time.Duration) *Worker {
	if sink == nil {
		sink = SinkFunc(func(ctx context.Context, firing *alarm.Firing) error {
			logger.InfoKV(ctx, "Alarm fired", "id", firing.ID, "message", firing.Message)

			return nil
		})
	}

	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	return &Worker{
		registry:     reg,
		sink:         sink,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// Run loops until the context is cancelled: claim the next due alarm and
// emit it, or wait for the next deadline, whichever comes first. The wait
// is interrupted early by the registry's wake channel.
func (w *Worker) Run(ctx context.Context) {
	ctx = logger.WithName(ctx, "expiry")

	for {
		if ctx.Err() != nil {
			return
		}

		claimed, wait := w.registry.ClaimNextDue(w.now())
		if claimed != nil {
			w.emit(ctx, claimed)

			// The next entry may be due as well; re-check immediately.
			continue
		}

		if wait <= 0 {
			wait = w.pollInterval
		}

		timer := time.NewTimer(wait)

		select {
		case <-timer.C:
		case <-w.registry.Wake():
			timer.Stop()
		case <-ctx.Done():
			timer.Stop()

			return
		}
	}
}

// emit converts the claimed alarm into a firing event and hands it to the
// sink. The alarm is owned by the worker at this point and is discarded
// even when the sink fails.
func (w *Worker) emit(ctx context.Context, claimed *alarm.Alarm) {
	firing := claimed.Fired(w.now())

	if err := w.sink.Fired(ctx, firing); err != nil {
		logger.ErrorKV(ctx, "Failed to emit alarm firing", "id", firing.ID, "error", err)

		return
	}

	logger.DebugKV(ctx, "Alarm emitted", "id", firing.ID, "seconds", firing.Seconds)
}

package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/VoidAutomata/alarm-registry/internal/domain/alarm"
	"github.com/VoidAutomata/alarm-registry/internal/logger"
	"github.com/VoidAutomata/alarm-registry/internal/registry"
)

// Handlers translates parsed commands into registry operations and renders
// user-facing outcomes. Registry errors are recoverable: they are reported
// and the shell keeps serving.
type Handlers struct {
	// registry is the shared alarm collection.
	registry *registry.Registry
	// now is the clock; overridable in tests.
	now func() time.Time
}

// NewHandlers creates handlers over the registry.
func NewHandlers(reg *registry.Registry) *Handlers {
	return &Handlers{
		registry: reg,
		now:      time.Now,
	}
}

// Dispatch applies the command and returns the text to present to the user.
func (h *Handlers) Dispatch(ctx context.Context, cmd Command) string {
	switch c := cmd.(type) {
	case Create:
		return h.handleCreate(ctx, c)
	case Modify:
		return h.handleModify(ctx, c)
	case Cancel:
		return h.handleCancel(ctx, c)
	case List:
		return h.handleList(ctx)
	default:
		// Parse only produces the four forms above.
		return "Bad command"
	}
}

// handleCreate inserts a new alarm. Creating over a live id is an error,
// never a silent overwrite.
func (h *Handlers) handleCreate(ctx context.Context, cmd Create) string {
	now := h.now()
	a := alarm.New(cmd.ID, cmd.Type, cmd.Seconds, cmd.Message, now)

	if err := h.registry.Insert(a); err != nil {
		if errors.Is(err, registry.ErrDuplicateID) {
			return fmt.Sprintf("Alarm %d already exists", cmd.ID)
		}

		return fmt.Sprintf("Could not insert alarm %d: %v", cmd.ID, err)
	}

	logger.InfoKV(ctx, "Alarm inserted",
		"id", a.ID, "type", a.Type, "seconds", a.Seconds, "expiry", a.Expiry)

	return fmt.Sprintf("Alarm(%d) inserted at %d: T%s %d %s",
		a.ID, now.Unix(), a.Type, a.Seconds, a.Message)
}

// handleModify rewrites an existing alarm and restarts its delay.
func (h *Handlers) handleModify(ctx context.Context, cmd Modify) string {
	if err := h.registry.Modify(cmd.ID, cmd.Type, cmd.Seconds, cmd.Message); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Sprintf("No such alarm: %d", cmd.ID)
		}

		return fmt.Sprintf("Could not change alarm %d: %v", cmd.ID, err)
	}

	logger.InfoKV(ctx, "Alarm changed",
		"id", cmd.ID, "type", cmd.Type, "seconds", cmd.Seconds)

	return fmt.Sprintf("Alarm(%d) changed at %d: T%s %d %s",
		cmd.ID, h.now().Unix(), cmd.Type, cmd.Seconds, cmd.Message)
}

// handleCancel removes an alarm before it fires. An id already claimed by
// the expiry worker reports as missing.
func (h *Handlers) handleCancel(ctx context.Context, cmd Cancel) string {
	if err := h.registry.Cancel(cmd.ID); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Sprintf("No such alarm: %d", cmd.ID)
		}

		return fmt.Sprintf("Could not cancel alarm %d: %v", cmd.ID, err)
	}

	logger.InfoKV(ctx, "Alarm cancelled", "id", cmd.ID)

	return fmt.Sprintf("Alarm(%d) cancelled at %d", cmd.ID, h.now().Unix())
}

// handleList renders a snapshot of the live alarms, id ascending.
// Remaining time is clamped to zero for entries the worker has not yet
// claimed.
func (h *Handlers) handleList(ctx context.Context) string {
	snap := h.registry.Snapshot()

	logger.DebugKV(ctx, "Alarms listed", "count", len(snap.Alarms))

	if len(snap.Alarms) == 0 {
		return "There are no alarms"
	}

	lines := make([]string, 0, len(snap.Alarms))
	for _, a := range snap.Alarms {
		remaining := int(a.Remaining(snap.AsOf).Round(time.Second) / time.Second)
		lines = append(lines, fmt.Sprintf("Alarm(%d): T%s %d time left: %d seconds, message: %s",
			a.ID, a.Type, a.Seconds, remaining, a.Message))
	}

	return strings.Join(lines, "\n")
}

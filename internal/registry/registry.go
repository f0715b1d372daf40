package registry

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/VoidAutomata/alarm-registry/internal/domain/alarm"
)

var (
	// ErrDuplicateID is returned when an insert collides with a live alarm.
	// Creating over an existing id is an error, distinct from modifying it.
	ErrDuplicateID = errors.New("alarm id already exists")
	// ErrNotFound is returned when a modify or cancel references an unknown id.
	ErrNotFound = errors.New("no such alarm")
)

// Registry is the shared collection of live alarms. The zero value is not
// usable; construct instances with New.
type Registry struct {
	// mu guards queue. Whole-collection exclusion, not per-entry.
	mu sync.Mutex
	// queue holds live alarms ordered by expiry ascending, ties broken
	// by id ascending for deterministic scheduling.
	queue []*alarm.Alarm
	// wake receives a signal whenever a mutation may have changed the
	// earliest deadline, so the expiry worker can re-check promptly.
	wake chan struct{}
	// now is the clock; overridable in tests.
	now func() time.Time
}

// Snapshot is a read-only view of the live alarms, ordered by id ascending,
// captured at AsOf. The entries are independent copies.
type Snapshot struct {
	// Alarms are copies of the live alarms, id ascending.
	Alarms []*alarm.Alarm
	// AsOf is the instant the view was captured; remaining time for
	// display is Expiry minus AsOf.
	AsOf time.Time
}

// New returns an empty registry using the wall clock.
func New() *Registry {
	return &Registry{
		wake: make(chan struct{}, 1),
		now:  time.Now,
	}
}

// Insert adds a new alarm, keeping the scheduling order.
// Returns ErrDuplicateID when a live alarm already has the same id;
// the registry is unchanged in that case.
func (r *Registry) Insert(a *alarm.Alarm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexByID(a.ID) >= 0 {
		return ErrDuplicateID
	}

	if r.insert(a) == 0 {
		r.signalWake()
	}

	return nil
}

// Modify locates the live alarm with id, overwrites its fields and
// recomputes the expiry from the current time, then restores the
// scheduling order. Returns ErrNotFound when no such alarm exists;
// no state changes in that case.
func (r *Registry) Modify(id int, alarmType string, seconds int, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexByID(id)
	if idx < 0 {
		return ErrNotFound
	}

	a := r.queue[idx]
	r.remove(idx)
	a.Reschedule(alarmType, seconds, message, r.now())

	pos := r.insert(a)
	if idx == 0 || pos == 0 {
		r.signalWake()
	}

	return nil
}

// Cancel removes the alarm with id. Returns ErrNotFound when it is not
// live, which also covers an alarm already claimed by the expiry worker.
func (r *Registry) Cancel(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexByID(id)
	if idx < 0 {
		return ErrNotFound
	}

	r.remove(idx)

	if idx == 0 {
		r.signalWake()
	}

	return nil
}

// ClaimNextDue is called by the expiry worker. It inspects the earliest
// expiring alarm and returns exactly one of:
//
//	(alarm, 0) — the head was due; it has been removed and ownership
//	            transfers to the caller, who must emit and discard it;
//	(nil, d)   — the head expires in d > 0; nothing was mutated;
//	(nil, 0)   — the registry is empty; the caller should idle-poll.
func (r *Registry) ClaimNextDue(now time.Time) (*alarm.Alarm, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.queue) == 0 {
		return nil, 0
	}

	head := r.queue[0]
	if !head.Due(now) {
		return nil, head.Expiry.Sub(now)
	}

	r.remove(0)

	return head, 0
}

// Snapshot returns independent copies of all live alarms ordered by id
// ascending, together with the capture timestamp.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	alarms := make([]*alarm.Alarm, 0, len(r.queue))
	for _, a := range r.queue {
		alarms = append(alarms, a.Clone())
	}

	sort.Slice(alarms, func(i, j int) bool {
		return alarms[i].ID < alarms[j].ID
	})

	return &Snapshot{
		Alarms: alarms,
		AsOf:   r.now(),
	}
}

// Len returns the number of live alarms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.queue)
}

// Drain drops every remaining alarm without firing it and returns the
// number dropped. Used on shutdown.
func (r *Registry) Drain() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := len(r.queue)
	r.queue = nil

	return dropped
}

// Wake returns the channel signaled whenever a mutation may have changed
// the earliest deadline. The channel is buffered; signals coalesce.
func (r *Registry) Wake() <-chan struct{} {
	return r.wake
}

// indexByID returns the queue position of the live alarm with id, or -1.
// Callers must hold mu.
func (r *Registry) indexByID(id int) int {
	for i, a := range r.queue {
		if a.ID == id {
			return i
		}
	}

	return -1
}

// insert places a into the queue keeping (expiry, id) order and returns
// its position. Linear scan; the working set is small. Callers must hold mu.
func (r *Registry) insert(a *alarm.Alarm) int {
	pos := len(r.queue)

	for i, b := range r.queue {
		if a.Expiry.Before(b.Expiry) || (a.Expiry.Equal(b.Expiry) && a.ID < b.ID) {
			pos = i

			break
		}
	}

	r.queue = append(r.queue, nil)
	copy(r.queue[pos+1:], r.queue[pos:])
	r.queue[pos] = a

	return pos
}

// remove deletes the queue entry at idx. Callers must hold mu.
func (r *Registry) remove(idx int) {
	copy(r.queue[idx:], r.queue[idx+1:])
	r.queue[len(r.queue)-1] = nil
	r.queue = r.queue[:len(r.queue)-1]
}

// signalWake performs a non-blocking send on the wake channel.
// Callers must hold mu.
func (r *Registry) signalWake() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

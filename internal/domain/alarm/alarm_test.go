package alarm

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestNewComputesExpiry verifies the expiry is the creation instant plus the delay.
func TestNewComputesExpiry(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	a := New(1, "Fire", 5, "wake up", now)

	require.Equal(t, 1, a.ID)
	require.Equal(t, "Fire", a.Type)
	require.Equal(t, 5, a.Seconds)
	require.Equal(t, now.Add(5*time.Second), a.Expiry)
	require.Equal(t, "wake up", a.Message)
}

// TestMessageTruncation ensures oversized payloads are cut to the cap,
// on construction and on reschedule.
func TestMessageTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", MaxMessageLength+20)

	a := New(1, "Fire", 5, long, time.Unix(1000, 0))
	require.Len(t, a.Message, MaxMessageLength)

	a.Reschedule("Fire", 5, long+"y", time.Unix(2000, 0))
	require.Len(t, a.Message, MaxMessageLength)
}

// TestReschedule verifies fields are overwritten and the expiry recomputed
// from the modification instant.
func TestReschedule(t *testing.T) {
	t.Parallel()

	a := New(7, "Old", 60, "before", time.Unix(1000, 0))

	later := time.Unix(5000, 0)
	a.Reschedule("New", 10, "after", later)

	require.Equal(t, 7, a.ID)
	require.Equal(t, "New", a.Type)
	require.Equal(t, 10, a.Seconds)
	require.Equal(t, later.Add(10*time.Second), a.Expiry)
	require.Equal(t, "after", a.Message)
}

// TestDueAndRemaining checks the due predicate and the clamped remaining time.
func TestDueAndRemaining(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	a := New(1, "Fire", 5, "m", now)

	require.False(t, a.Due(now))
	require.Equal(t, 5*time.Second, a.Remaining(now))

	at := now.Add(5 * time.Second)
	require.True(t, a.Due(at))
	require.Equal(t, time.Duration(0), a.Remaining(at))

	// Overdue remaining is clamped, not negative.
	require.Equal(t, time.Duration(0), a.Remaining(now.Add(time.Minute)))
}

// TestClone ensures the copy is independent of the original.
func TestClone(t *testing.T) {
	t.Parallel()

	a := New(1, "Fire", 5, "m", time.Unix(1000, 0))
	c := a.Clone()

	require.Equal(t, a, c)
	require.NotSame(t, a, c)

	c.Message = "changed"
	require.Equal(t, "m", a.Message)

	var nilAlarm *Alarm
	require.Nil(t, nilAlarm.Clone())
}

// TestFired converts an alarm into its firing event.
func TestFired(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	a := New(3, "Fire", 5, "m", now)

	at := now.Add(5 * time.Second)
	f := a.Fired(at)

	require.Equal(t, a.ID, f.ID)
	require.Equal(t, a.Type, f.Type)
	require.Equal(t, a.Seconds, f.Seconds)
	require.Equal(t, a.Message, f.Message)
	require.Equal(t, at, f.FiredAt)
}

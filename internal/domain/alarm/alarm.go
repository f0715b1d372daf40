package alarm

import "time"

// MaxMessageLength caps the stored payload text. Longer input is
// truncated on construction and reschedule, never stored oversized.
const MaxMessageLength = 64

// Alarm is one scheduled one-shot timed event. The ID is caller-supplied
// and unique among currently live alarms.
type Alarm struct {
	// ID identifies the alarm for modify and cancel operations.
	ID int
	// Type is a free-form category tag supplied by the caller.
	Type string
	// Seconds is the originally requested delay.
	Seconds int
	// Expiry is the absolute firing time: the instant of creation or
	// last modification plus Seconds.
	Expiry time.Time
	// Message is the payload printed when the alarm fires.
	Message string
}

// New builds an alarm expiring Seconds after now.
func New(id int, alarmType string, seconds int, message string, now time.Time) *Alarm {
	return &Alarm{
		ID:      id,
		Type:    alarmType,
		Seconds: seconds,
		Expiry:  now.Add(time.Duration(seconds) * time.Second),
		Message: truncate(message),
	}
}

// Reschedule overwrites the alarm's fields in place and recomputes the
// expiry from now. The ID and identity persist.
func (a *Alarm) Reschedule(alarmType string, seconds int, message string, now time.Time) {
	a.Type = alarmType
	a.Seconds = seconds
	a.Expiry = now.Add(time.Duration(seconds) * time.Second)
	a.Message = truncate(message)
}

// Due reports whether the alarm's expiry time has been reached.
func (a *Alarm) Due(now time.Time) bool {
	return !a.Expiry.After(now)
}

// Remaining returns the time left until expiry, clamped to zero for
// alarms that are already due.
func (a *Alarm) Remaining(now time.Time) time.Duration {
	d := a.Expiry.Sub(now)
	if d < 0 {
		return 0
	}

	return d
}

// Clone returns a copy of the alarm to avoid leaking internal references.
func (a *Alarm) Clone() *Alarm {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// Fired converts the alarm into its firing event.
func (a *Alarm) Fired(at time.Time) *Firing {
	return &Firing{
		ID:      a.ID,
		Type:    a.Type,
		Seconds: a.Seconds,
		Message: a.Message,
		FiredAt: at,
	}
}

// truncate caps the message at MaxMessageLength bytes.
func truncate(message string) string {
	if len(message) > MaxMessageLength {
		return message[:MaxMessageLength]
	}

	return message
}

// Firing is the observable event produced when an alarm expires.
type Firing struct {
	// ID of the alarm that fired.
	ID int
	// Type is the alarm's category tag.
	Type string
	// Seconds is the delay the alarm was created or last modified with.
	Seconds int
	// Message is the alarm payload.
	Message string
	// FiredAt is when the expiry worker claimed the alarm.
	FiredAt time.Time
}

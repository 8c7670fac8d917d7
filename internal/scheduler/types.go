package scheduler

import "time"

// Timer is a single pending expiry. It is a value type: the Store hands out
// copies and never edits a Timer in place.
type Timer struct {
	// ID is unique for the lifetime of the process and never reused.
	ID uint64
	// CreatedAt is the time the timer was registered.
	CreatedAt time.Time
	// ExpiresAt is CreatedAt plus the parsed duration. It may equal CreatedAt.
	ExpiresAt time.Time
	// Label is the free-form reason shown when the timer fires.
	Label string
}

// NewTimer builds a Timer that expires seconds after createdAt.
// Negative durations are clamped to zero so ExpiresAt is never before CreatedAt.
func NewTimer(id uint64, createdAt time.Time, seconds int64, label string) Timer {
	if seconds < 0 {
		seconds = 0
	}
	return Timer{
		ID:        id,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(time.Duration(seconds) * time.Second),
		Label:     label,
	}
}

// RanOut reports whether the timer has expired at now.
func (t Timer) RanOut(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Remaining returns the time left until expiry. It is negative once the
// deadline has passed.
func (t Timer) Remaining(now time.Time) time.Duration {
	return t.ExpiresAt.Sub(now)
}

// Duration returns the full delay the timer was created with.
func (t Timer) Duration() time.Duration {
	return t.ExpiresAt.Sub(t.CreatedAt)
}

// State is the scheduler loop state.
type State int32

const (
	// Idle means the loop is blocked with an empty store.
	Idle State = iota
	// Waiting means the loop is sleeping until the earliest deadline.
	Waiting
	// Stopped is terminal.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Waiting:
		return "waiting"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

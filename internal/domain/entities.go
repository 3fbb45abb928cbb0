package domain

import "time"

// FreePlanMaxEvents is the number of events a non-premium user may own
// before reminders and event creation are suspended.
const FreePlanMaxEvents = 5

// MaxShares caps how many recipients a single event can be shared with.
const MaxShares = 4

// User holds per-user plan state and the daily reminder slot.
type User struct {
	ID               string
	EventCount       int
	NotificationHour int // hour-of-day slot (0..23), minute fixed to 0
	IsPremium        bool
	PremiumUntil     *time.Time
	IsActive         bool // false once the user blocks the bot
	CreatedAt        time.Time
}

// HasPremiumAccess reports whether a premium subscription is currently valid.
func (u *User) HasPremiumAccess(now time.Time) bool {
	return u.IsPremium && u.PremiumUntil != nil && u.PremiumUntil.After(now)
}

// IsLimited reports whether the user exceeded the free plan quota without an
// active premium subscription. Limited users cannot create events and receive
// no reminders; existing events stay viewable and editable.
func (u *User) IsLimited(now time.Time) bool {
	return u.EventCount > FreePlanMaxEvents && !u.HasPremiumAccess(now)
}

// Event is a recurring item a user tracks.
type Event struct {
	ID              string
	UserID          string
	Name            string
	ReminderEnabled bool
	Cycle           *Cycle     // nil when no recurrence is set
	LastDoneAt      time.Time  // midnight in the bot timezone
	NextDueAt       *time.Time // set iff reminder enabled and a cycle exists
	ShareCount      int
	IsActive        bool
}

// Record is one immutable completion log entry.
type Record struct {
	ID      string
	EventID string
	UserID  string
	DoneAt  time.Time
}

// Share grants a recipient visibility and reminders for another user's event.
type Share struct {
	ID          string
	EventID     string
	OwnerID     string
	RecipientID string
}

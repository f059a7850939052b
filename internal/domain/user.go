// Package domain defines the types shared by the conversation flow, the stores,
// and the notification scheduler.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is one of the fixed daily one-hour notification windows.
type TimeSlot int

const (
	TimeSlotNotSet    TimeSlot = 0
	TimeSlotTen       TimeSlot = 1
	TimeSlotFourteen  TimeSlot = 2
	TimeSlotEighteen  TimeSlot = 3
	TimeSlotTwentyTwo TimeSlot = 4
)

// slotHours maps each slot to the hour its window opens.
var slotHours = map[TimeSlot]int{
	TimeSlotTen:       10,
	TimeSlotFourteen:  14,
	TimeSlotEighteen:  18,
	TimeSlotTwentyTwo: 22,
}

// Slots lists the selectable windows in chronological order.
var Slots = []TimeSlot{TimeSlotTen, TimeSlotFourteen, TimeSlotEighteen, TimeSlotTwentyTwo}

func (s TimeSlot) String() string {
	if h, ok := slotHours[s]; ok {
		return twoDigits(h) + ":00"
	}
	return "Not set"
}

// IsSet reports whether the slot is one of the real windows.
func (s TimeSlot) IsSet() bool {
	_, ok := slotHours[s]
	return ok
}

func twoDigits(h int) string {
	return string([]byte{byte('0' + h/10), byte('0' + h%10)})
}

// ParseTimeSlot maps a chat label like "14:00" to its slot.
func ParseTimeSlot(label string) (TimeSlot, bool) {
	for _, s := range Slots {
		if s.String() == label {
			return s, true
		}
	}
	return TimeSlotNotSet, false
}

// SlotForHour resolves an hour of day to the window it opens, if any. Each window
// is exactly one hour wide, so hour 10 means 10:00-11:00.
func SlotForHour(hour int) (TimeSlot, bool) {
	for _, s := range Slots {
		if slotHours[s] == hour {
			return s, true
		}
	}
	return TimeSlotNotSet, false
}

// UserState tags the conversation step a user is in.
type UserState int

const (
	StateNewUser         UserState = 0
	StateTimeSetup       UserState = 1
	StateDifficultySetup UserState = 2
	StateRegistered      UserState = 3
)

func (s UserState) String() string {
	switch s {
	case StateNewUser:
		return "new_user"
	case StateTimeSetup:
		return "time_setup"
	case StateDifficultySetup:
		return "difficulty_setup"
	case StateRegistered:
		return "registered"
	}
	return "unknown"
}

// Valid reports whether the state is one of the defined conversation steps.
func (s UserState) Valid() bool {
	switch s {
	case StateNewUser, StateTimeSetup, StateDifficultySetup, StateRegistered:
		return true
	}
	return false
}

// User is the persisted per-user preference and conversation record. ID is the
// Telegram user id, assigned externally and immutable once the row exists.
type User struct {
	ID         int64      `db:"telegram_user_id"`
	State      UserState  `db:"state"`
	Difficulty Difficulty `db:"difficulty"`
	TimeSlot   TimeSlot   `db:"time_setting"`
	Premium    bool       `db:"is_premium"`
}

// Subscribed reports whether the user currently receives notifications.
func (u User) Subscribed() bool {
	return u.TimeSlot.IsSet()
}

// UserUpdate carries a partial profile change. Nil fields are left untouched by
// the store (coalesce semantics), so concurrent updates to different fields of
// the same user do not clobber each other.
type UserUpdate struct {
	ID         int64
	State      *UserState
	Difficulty *Difficulty
	TimeSlot   *TimeSlot
	Premium    *bool
}

// IsZero reports whether the update carries no field changes.
func (u UserUpdate) IsZero() bool {
	return u.State == nil && u.Difficulty == nil && u.TimeSlot == nil && u.Premium == nil
}

// SolvedRecord is one acknowledged problem for one user. Records are append-only;
// the store deduplicates on (user, problem).
type SolvedRecord struct {
	ID        uuid.UUID `db:"id"`
	UserID    int64     `db:"telegram_user_id"`
	ProblemID int       `db:"problem_id"`
	SolvedAt  time.Time `db:"solved_at"`
}

// NewSolvedRecord builds a record with a fresh id.
func NewSolvedRecord(userID int64, problemID int, at time.Time) SolvedRecord {
	return SolvedRecord{
		ID:        uuid.New(),
		UserID:    userID,
		ProblemID: problemID,
		SolvedAt:  at.UTC(),
	}
}

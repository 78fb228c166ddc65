package models

import "time"

// Gamification counter keys tracked when a member answers "present".
const (
	CounterRSVP      = "rsvp"
	CounterDailyRSVP = "daily_rsvp"
)

// ProgressCounter is one gamification tally for a user. Daily counters carry
// a day bucket so each calendar day accumulates separately.
type ProgressCounter struct {
	ID        int64
	UserID    int64
	Counter   string
	DayBucket string // "YYYY-MM-DD" for daily counters, "" otherwise
	Count     int64
	UpdatedAt time.Time
}

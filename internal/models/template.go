package models

import "time"

// SessionTemplate is a weekly recurrence pattern from which concrete
// sessions are materialized. NextOccurrence is a cached value, recomputed
// whenever the template is (re)activated or after it produces a session;
// it must stay strictly in the future relative to the last computation.
type SessionTemplate struct {
	ID                   int64
	SquadID              int64
	Title                string
	Game                 string
	Weekdays             []int // 0 = Monday .. 6 = Sunday
	Hour                 int
	Minute               int
	DurationMinutes      int
	MinPlayers           int
	MaxPlayers           int
	AutoConfirmThreshold int
	IsActive             bool
	NextOccurrence       time.Time
	CreatedAt            time.Time
}

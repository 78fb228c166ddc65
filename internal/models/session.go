package models

import "time"

const (
	SessionStatusProposed  = "proposed"
	SessionStatusConfirmed = "confirmed"
	SessionStatusCancelled = "cancelled"
)

// Session is one concrete scheduled play event belonging to a squad.
type Session struct {
	ID                   int64
	SquadID              int64
	Title                string
	Game                 string
	ScheduledAt          time.Time
	DurationMinutes      int
	Status               string
	AutoConfirmThreshold int
	CreatedBy            int64
	CreatedAt            time.Time
}

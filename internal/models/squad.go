package models

import "time"

// Squad is the persistent group that owns recurring scheduling activity.
type Squad struct {
	ID        int64
	Name      string
	OwnerID   int64
	CreatedAt time.Time
}

// SquadMember links a user to a squad they belong to.
type SquadMember struct {
	SquadID  int64
	UserID   int64
	JoinedAt time.Time
}

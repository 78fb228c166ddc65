package models

import "time"

const (
	CheckinPresent = "present"
	CheckinLate    = "late"
	CheckinNoshow  = "noshow"
)

// Checkin is a member's recorded outcome for a session. Same
// one-row-per-(session, user) lifecycle as RSVP; an RSVP is intent before
// the session, a Checkin is what actually happened.
type Checkin struct {
	ID          int64
	SessionID   int64
	UserID      int64
	Status      string
	CheckedAt   time.Time
	DisplayName string
}

// ValidCheckinStatus reports whether s is one of the three check-in outcomes.
func ValidCheckinStatus(s string) bool {
	switch s {
	case CheckinPresent, CheckinLate, CheckinNoshow:
		return true
	}
	return false
}

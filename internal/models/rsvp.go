package models

import "time"

const (
	RSVPPresent = "present"
	RSVPAbsent  = "absent"
	RSVPMaybe   = "maybe"
)

// RSVP is a member's current stated intent for a session. At most one row
// exists per (session, user); re-answering overwrites in place.
type RSVP struct {
	ID          int64
	SessionID   int64
	UserID      int64
	Response    string
	RespondedAt time.Time
	DisplayName string // populated by reads that join users, not a column
}

// ValidRSVPResponse reports whether s is one of the three RSVP answers.
func ValidRSVPResponse(s string) bool {
	switch s {
	case RSVPPresent, RSVPAbsent, RSVPMaybe:
		return true
	}
	return false
}

package models

import "time"

// SystemUserID marks chat messages emitted by the app itself (RSVP
// announcements, session confirmations) rather than a member.
const SystemUserID int64 = 0

// ChatMessage is one message in a squad's chat feed.
type ChatMessage struct {
	ID          int64
	SquadID     int64
	UserID      int64
	DisplayName string // joined from users; "squadup" for system messages
	Content     string
	CreatedAt   time.Time
}

// Package notify emits squad chat announcements for session activity.
package notify

import (
	"fmt"
	"time"

	"github.com/squadup/app/internal/database"
	"github.com/squadup/app/internal/models"
	"github.com/squadup/app/internal/ws"
)

// ChatNotifier writes system messages into the squad chat feed and pushes
// them to connected clients. Callers treat it as fire-and-forget; errors
// matter only to the side-effect dispatcher's log.
type ChatNotifier struct {
	chat *database.ChatStore
	hub  *ws.Hub
}

// NewChatNotifier builds a notifier. hub may be nil when no live fanout is
// wanted (tests, one-off tools).
func NewChatNotifier(chat *database.ChatStore, hub *ws.Hub) *ChatNotifier {
	return &ChatNotifier{chat: chat, hub: hub}
}

// SendRSVPMessage announces a member's RSVP in the squad chat.
func (n *ChatNotifier) SendRSVPMessage(squadID int64, actorName, sessionTitle, response string) error {
	var content string
	switch response {
	case models.RSVPPresent:
		content = fmt.Sprintf("%s is in for %q", actorName, sessionTitle)
	case models.RSVPAbsent:
		content = fmt.Sprintf("%s can't make %q", actorName, sessionTitle)
	default:
		content = fmt.Sprintf("%s is a maybe for %q", actorName, sessionTitle)
	}
	return n.send(squadID, "chat", content)
}

// SendSessionConfirmedMessage announces that a session is locked in.
func (n *ChatNotifier) SendSessionConfirmedMessage(squadID int64, sessionTitle string, scheduledAt time.Time) error {
	content := fmt.Sprintf("%q is confirmed for %s", sessionTitle, scheduledAt.Format("Mon Jan 2 at 15:04"))
	return n.send(squadID, "session_confirmed", content)
}

// SendCheckinMessage announces a member's check-in outcome.
func (n *ChatNotifier) SendCheckinMessage(squadID int64, actorName, sessionTitle, status string) error {
	var content string
	switch status {
	case models.CheckinPresent:
		content = fmt.Sprintf("%s checked in to %q", actorName, sessionTitle)
	case models.CheckinLate:
		content = fmt.Sprintf("%s showed up late to %q", actorName, sessionTitle)
	default:
		content = fmt.Sprintf("%s no-showed %q", actorName, sessionTitle)
	}
	return n.send(squadID, "chat", content)
}

// SendSessionCancelledMessage announces a cancellation.
func (n *ChatNotifier) SendSessionCancelledMessage(squadID int64, sessionTitle string) error {
	return n.send(squadID, "session_cancelled", fmt.Sprintf("%q was cancelled", sessionTitle))
}

// SendSessionScheduledMessage announces a session materialized from a
// recurring template.
func (n *ChatNotifier) SendSessionScheduledMessage(squadID int64, sessionTitle string, scheduledAt time.Time) error {
	content := fmt.Sprintf("%q is on the calendar for %s", sessionTitle, scheduledAt.Format("Mon Jan 2 at 15:04"))
	return n.send(squadID, "session_scheduled", content)
}

func (n *ChatNotifier) send(squadID int64, eventType, content string) error {
	msg, err := n.chat.Create(squadID, models.SystemUserID, content)
	if err != nil {
		return err
	}
	if n.hub != nil {
		n.hub.Broadcast(ws.Event{
			Type:        eventType,
			SquadID:     squadID,
			UserID:      msg.UserID,
			DisplayName: msg.DisplayName,
			Content:     msg.Content,
			SentAt:      msg.CreatedAt,
		})
	}
	return nil
}

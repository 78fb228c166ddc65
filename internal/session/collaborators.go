package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Actor is the resolved acting member.
type Actor struct {
	ID          int64
	DisplayName string
}

// Identity resolves who is performing an action. A nil actor (or an error)
// means the request is unauthenticated.
type Identity interface {
	CurrentActor(ctx context.Context) (*Actor, error)
}

// Notifier emits squad chat announcements. All calls are fire-and-forget:
// the coordinator issues them through the side-effect dispatcher and never
// surfaces their errors.
type Notifier interface {
	SendRSVPMessage(squadID int64, actorName, sessionTitle, response string) error
	SendCheckinMessage(squadID int64, actorName, sessionTitle, status string) error
	SendSessionConfirmedMessage(squadID int64, sessionTitle string, scheduledAt time.Time) error
	SendSessionCancelledMessage(squadID int64, sessionTitle string) error
}

// ProgressTracker records gamification progress. Fire-and-forget.
type ProgressTracker interface {
	TrackProgress(userID int64, counter string) error
}

// Haptics cues the acting member's device after a successful action.
// Fire-and-forget; delivery is the presentation layer's problem.
type Haptics interface {
	Cue(userID int64, kind string) error
}

// LogHaptics is the default Haptics: it records the cue and does nothing
// else. Real delivery rides on the client's next poll or websocket event.
type LogHaptics struct {
	Log *zap.SugaredLogger
}

func (h LogHaptics) Cue(userID int64, kind string) error {
	h.Log.Debugw("haptic cue", "user_id", userID, "kind", kind)
	return nil
}

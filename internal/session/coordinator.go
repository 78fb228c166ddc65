package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/squadup/app/internal/apperr"
	"github.com/squadup/app/internal/attendance"
	"github.com/squadup/app/internal/database"
	"github.com/squadup/app/internal/models"
	"github.com/squadup/app/internal/sideeffect"
)

// Coordinator runs one member action end to end: resolve the actor, apply
// the core write, recompute aggregates, apply any status transition, fan
// out best-effort side effects, and refresh the session's cached detail.
//
// There is no transaction spanning those steps. A crash between the core
// write and the fan-out leaves the write durable and the notification
// unsent; that at-most-once policy is deliberate. A returned nil error
// means the core write succeeded regardless of what the fan-out did.
type Coordinator struct {
	Sessions *database.SessionStore
	RSVPs    *database.RSVPStore
	Checkins *database.CheckinStore

	Identity Identity
	Notifier Notifier
	Progress ProgressTracker
	Haptics  Haptics

	Effects *sideeffect.Dispatcher
	Cache   *Cache
	Log     *zap.SugaredLogger

	// AutoConfirmOnRSVP selects the confirmation policy: when true, the
	// RSVP that crosses the present threshold confirms the session and
	// emits the confirmation announcement; when false, only the explicit
	// Confirm action transitions.
	AutoConfirmOnRSVP bool
}

// SubmitRSVP records the actor's answer for a session and, under the
// auto-confirm policy, applies a threshold-crossing confirmation.
func (c *Coordinator) SubmitRSVP(ctx context.Context, sessionID int64, response string) error {
	actor, err := c.actor(ctx)
	if err != nil {
		return err
	}
	if !models.ValidRSVPResponse(response) {
		return apperr.Validation("response", "%q is not one of present/absent/maybe", response)
	}

	sess, err := c.Sessions.GetByID(sessionID)
	if err != nil {
		return err
	}

	if err := c.RSVPs.Upsert(sessionID, actor.ID, response); err != nil {
		return err
	}

	// The write is durable from here on; everything below is best-effort
	// and must not flip the returned error.

	confirmed := false
	summary, aggErr := c.summarize(sessionID, actor.ID)
	if aggErr != nil {
		c.Log.Warnw("aggregate recompute failed after rsvp", "session_id", sessionID, "error", aggErr)
	} else if c.AutoConfirmOnRSVP {
		if next, changed := MaybeAutoConfirm(sess, summary.Counts); changed {
			if err := c.Sessions.UpdateStatus(sessionID, next.Status); err != nil {
				c.Log.Warnw("auto-confirm status write failed", "session_id", sessionID, "error", err)
			} else {
				sess = next
				confirmed = true
			}
		}
	}

	c.Effects.Go("rsvp notification", func() error {
		return c.Notifier.SendRSVPMessage(sess.SquadID, actor.DisplayName, sess.Title, response)
	})
	if confirmed {
		c.Effects.Go("confirmation notification", func() error {
			return c.Notifier.SendSessionConfirmedMessage(sess.SquadID, sess.Title, sess.ScheduledAt)
		})
	}
	if response == models.RSVPPresent {
		c.Effects.Go("progress rsvp", func() error {
			return c.Progress.TrackProgress(actor.ID, models.CounterRSVP)
		})
		c.Effects.Go("progress daily_rsvp", func() error {
			return c.Progress.TrackProgress(actor.ID, models.CounterDailyRSVP)
		})
	}
	c.Effects.Go("haptic", func() error {
		return c.Haptics.Cue(actor.ID, "rsvp")
	})

	c.refresh(sessionID, actor.ID)
	return nil
}

// SubmitCheckin records the actor's outcome for a session.
func (c *Coordinator) SubmitCheckin(ctx context.Context, sessionID int64, status string) error {
	actor, err := c.actor(ctx)
	if err != nil {
		return err
	}
	if !models.ValidCheckinStatus(status) {
		return apperr.Validation("status", "%q is not one of present/late/noshow", status)
	}

	sess, err := c.Sessions.GetByID(sessionID)
	if err != nil {
		return err
	}

	if err := c.Checkins.Upsert(sessionID, actor.ID, status); err != nil {
		return err
	}

	c.Effects.Go("checkin notification", func() error {
		return c.Notifier.SendCheckinMessage(sess.SquadID, actor.DisplayName, sess.Title, status)
	})
	c.Effects.Go("haptic", func() error {
		return c.Haptics.Cue(actor.ID, "checkin")
	})

	c.refresh(sessionID, actor.ID)
	return nil
}

// Confirm applies the explicit confirmation action, bypassing the
// threshold. Authorization (squad leader or session creator) is the
// caller's responsibility.
func (c *Coordinator) Confirm(ctx context.Context, sessionID int64) error {
	actor, err := c.actor(ctx)
	if err != nil {
		return err
	}

	sess, err := c.Sessions.GetByID(sessionID)
	if err != nil {
		return err
	}

	next, changed := Confirm(sess)
	if !changed {
		if sess.Status == models.SessionStatusCancelled {
			return apperr.Validation("status", "session is cancelled")
		}
		return nil // already confirmed
	}
	if err := c.Sessions.UpdateStatus(sessionID, next.Status); err != nil {
		return err
	}

	c.Effects.Go("confirmation notification", func() error {
		return c.Notifier.SendSessionConfirmedMessage(next.SquadID, next.Title, next.ScheduledAt)
	})
	c.Effects.Go("haptic", func() error {
		return c.Haptics.Cue(actor.ID, "confirm")
	})

	c.refresh(sessionID, actor.ID)
	return nil
}

// Cancel cancels a session from any state. Cancelling an already cancelled
// session is a successful no-op.
func (c *Coordinator) Cancel(ctx context.Context, sessionID int64) error {
	actor, err := c.actor(ctx)
	if err != nil {
		return err
	}

	sess, err := c.Sessions.GetByID(sessionID)
	if err != nil {
		return err
	}

	next, changed := Cancel(sess)
	if !changed {
		return nil
	}
	if err := c.Sessions.UpdateStatus(sessionID, next.Status); err != nil {
		return err
	}

	c.Effects.Go("cancellation notification", func() error {
		return c.Notifier.SendSessionCancelledMessage(next.SquadID, next.Title)
	})
	c.Effects.Go("haptic", func() error {
		return c.Haptics.Cue(actor.ID, "cancel")
	})

	c.refresh(sessionID, actor.ID)
	return nil
}

// FetchDetail loads a session with fresh aggregates and caches it. The
// requesting actor's own answer is included when authenticated; anonymous
// reads still see the counts.
func (c *Coordinator) FetchDetail(ctx context.Context, sessionID int64) (*Detail, error) {
	var actorID int64
	if actor, err := c.actor(ctx); err == nil {
		actorID = actor.ID
	}
	return c.fetchDetail(sessionID, actorID)
}

func (c *Coordinator) fetchDetail(sessionID, actorID int64) (*Detail, error) {
	sess, err := c.Sessions.GetByID(sessionID)
	if err != nil {
		return nil, err
	}

	rsvps, err := c.RSVPs.ListForSession(sessionID)
	if err != nil {
		return nil, err
	}
	checkins, err := c.Checkins.ListForSession(sessionID)
	if err != nil {
		return nil, err
	}

	detail := &Detail{
		Session:    sess,
		Attendance: attendance.Summarize(rsvps, actorID),
		Checkins:   attendance.SummarizeCheckins(checkins),
		RSVPs:      rsvps,
	}
	c.Cache.Put(detail)
	return detail, nil
}

// refresh is step six of every mutating action: refetch the session so the
// cached view is consistent with the just-applied write. Its failure is
// logged, not returned.
func (c *Coordinator) refresh(sessionID, actorID int64) {
	if _, err := c.fetchDetail(sessionID, actorID); err != nil {
		c.Log.Warnw("session detail refresh failed", "session_id", sessionID, "error", err)
	}
}

func (c *Coordinator) summarize(sessionID, actorID int64) (attendance.Summary, error) {
	rsvps, err := c.RSVPs.ListForSession(sessionID)
	if err != nil {
		return attendance.Summary{}, fmt.Errorf("list rsvps: %w", err)
	}
	return attendance.Summarize(rsvps, actorID), nil
}

func (c *Coordinator) actor(ctx context.Context) (*Actor, error) {
	actor, err := c.Identity.CurrentActor(ctx)
	if err != nil || actor == nil {
		return nil, apperr.ErrUnauthenticated
	}
	return actor, nil
}

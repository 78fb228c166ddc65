package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/squadup/app/internal/database"
	"github.com/squadup/app/internal/models"
	"github.com/squadup/app/internal/sideeffect"
)

// Announcer posts the "session is on the calendar" chat message for a
// freshly materialized session.
type Announcer interface {
	SendSessionScheduledMessage(squadID int64, sessionTitle string, scheduledAt time.Time) error
}

// Materializer turns due recurring templates into proposed sessions and
// rolls each template's cached next occurrence forward.
type Materializer struct {
	Templates *database.TemplateStore
	Sessions  *database.SessionStore
	Announcer Announcer
	Effects   *sideeffect.Dispatcher
	Log       *zap.SugaredLogger
	Interval  time.Duration
}

// Run ticks until ctx is cancelled. One failed template does not stop the
// sweep; it is retried on the next tick because its next occurrence only
// advances after a successful materialization.
func (m *Materializer) Run(ctx context.Context) {
	interval := m.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := m.RunOnce(now); err != nil {
				m.Log.Errorw("materialize sweep failed", "error", err)
			}
		}
	}
}

// RunOnce materializes every template due at now and returns how many
// sessions were created.
func (m *Materializer) RunOnce(now time.Time) (int, error) {
	due, err := m.Templates.ListDue(now)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, t := range due {
		if err := m.materialize(t, now); err != nil {
			m.Log.Errorw("materialize template failed", "template_id", t.ID, "error", err)
			continue
		}
		created++
	}
	return created, nil
}

func (m *Materializer) materialize(t *models.SessionTemplate, now time.Time) error {
	sess, err := m.Sessions.Create(&models.Session{
		SquadID:              t.SquadID,
		Title:                t.Title,
		Game:                 t.Game,
		ScheduledAt:          t.NextOccurrence,
		DurationMinutes:      t.DurationMinutes,
		Status:               models.SessionStatusProposed,
		AutoConfirmThreshold: t.AutoConfirmThreshold,
		CreatedBy:            models.SystemUserID,
	})
	if err != nil {
		return err
	}

	// Recompute from now so the cached value lands strictly in the future
	// even when the sweep runs late.
	next := NextOccurrence(t.Weekdays, t.Hour, t.Minute, now)
	if err := m.Templates.SetNextOccurrence(t.ID, next); err != nil {
		return err
	}

	if m.Announcer != nil {
		m.Effects.Go("schedule announcement", func() error {
			return m.Announcer.SendSessionScheduledMessage(sess.SquadID, sess.Title, sess.ScheduledAt)
		})
	}
	return nil
}

// Activate validates the template's rule, computes a fresh next occurrence
// and flips it active. Deactivate clears the active flag but keeps the
// cached occurrence for display.
func Activate(store *database.TemplateStore, id int64, now time.Time) (*models.SessionTemplate, error) {
	t, err := store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := ValidateRule(t.Weekdays, t.Hour, t.Minute); err != nil {
		return nil, err
	}

	next := NextOccurrence(t.Weekdays, t.Hour, t.Minute, now)
	if err := store.SetActive(id, true, next); err != nil {
		return nil, err
	}
	return store.GetByID(id)
}

// Deactivate flips a template inactive.
func Deactivate(store *database.TemplateStore, id int64) (*models.SessionTemplate, error) {
	t, err := store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := store.SetActive(id, false, t.NextOccurrence); err != nil {
		return nil, err
	}
	return store.GetByID(id)
}

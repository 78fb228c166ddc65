package database

import (
	"errors"
	"testing"
	"time"

	"github.com/squadup/app/internal/apperr"
	"github.com/squadup/app/internal/models"
)

func TestSessionCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "gm@example.com", "GM")
	squad, err := NewSquadStore(db).Create("Session Squad", user.ID)
	if err != nil {
		t.Fatalf("create squad: %v", err)
	}
	store := NewSessionStore(db)

	when := time.Now().Add(72 * time.Hour).Round(time.Second)
	created, err := store.Create(&models.Session{
		SquadID:              squad.ID,
		Title:                "Campaign Night",
		Game:                 "Pathfinder",
		ScheduledAt:          when,
		DurationMinutes:      180,
		AutoConfirmThreshold: 4,
		CreatedBy:            user.ID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if created.ID == 0 {
		t.Error("created session has no id")
	}
	if created.Status != models.SessionStatusProposed {
		t.Errorf("status = %q, want proposed default", created.Status)
	}
	if created.CreatedAt.IsZero() {
		t.Error("created_at is zero")
	}
	if !created.ScheduledAt.Equal(when) {
		t.Errorf("scheduled_at = %v, want %v", created.ScheduledAt, when)
	}

	got, err := store.GetByID(created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Campaign Night" || got.Game != "Pathfinder" || got.AutoConfirmThreshold != 4 {
		t.Errorf("GetByID() = %+v, fields do not round-trip", got)
	}
}

func TestSessionGetByIDNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := NewSessionStore(db).GetByID(404)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestSessionListBySquadOrdersBySchedule(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "order@example.com", "Order")
	squad, err := NewSquadStore(db).Create("Order Squad", user.ID)
	if err != nil {
		t.Fatalf("create squad: %v", err)
	}
	store := NewSessionStore(db)

	base := time.Now().Round(time.Second)
	for i, offset := range []time.Duration{72 * time.Hour, 24 * time.Hour, 48 * time.Hour} {
		_, err := store.Create(&models.Session{
			SquadID:     squad.ID,
			Title:       "Session " + string(rune('A'+i)),
			ScheduledAt: base.Add(offset),
			CreatedBy:   user.ID,
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	sessions, err := store.ListBySquad(squad.ID)
	if err != nil {
		t.Fatalf("ListBySquad() error = %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("got %d sessions, want 3", len(sessions))
	}
	for i := 1; i < len(sessions); i++ {
		if sessions[i].ScheduledAt.Before(sessions[i-1].ScheduledAt) {
			t.Errorf("sessions not ordered by scheduled_at: %v before %v",
				sessions[i].ScheduledAt, sessions[i-1].ScheduledAt)
		}
	}
}

func TestSessionUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "status@example.com", "Status")
	sess := createTestSession(t, db, user, "Status Game")
	store := NewSessionStore(db)

	if err := store.UpdateStatus(sess.ID, models.SessionStatusConfirmed); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	got, err := store.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != models.SessionStatusConfirmed {
		t.Errorf("status = %q, want confirmed", got.Status)
	}

	if err := store.UpdateStatus(999, models.SessionStatusCancelled); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("UpdateStatus(unknown) error = %v, want ErrNotFound", err)
	}
}

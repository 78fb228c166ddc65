package schedule

import (
	"database/sql"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/squadup/app/internal/database"
	"github.com/squadup/app/internal/models"
	"github.com/squadup/app/internal/sideeffect"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.InitDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestSquad(t *testing.T, db *sql.DB) *models.Squad {
	t.Helper()
	users := database.NewUserStore(db)
	owner, err := users.Create("owner@example.com", "Owner", "pass")
	if err != nil {
		t.Fatalf("Failed to create owner: %v", err)
	}
	squad, err := database.NewSquadStore(db).Create("Test Squad", owner.ID)
	if err != nil {
		t.Fatalf("Failed to create squad: %v", err)
	}
	return squad
}

type recordingAnnouncer struct {
	scheduled []string
}

func (a *recordingAnnouncer) SendSessionScheduledMessage(squadID int64, title string, at time.Time) error {
	a.scheduled = append(a.scheduled, title)
	return nil
}

func TestMaterializerRunOnce(t *testing.T) {
	db := setupTestDB(t)
	squad := createTestSquad(t, db)
	templates := database.NewTemplateStore(db)
	sessions := database.NewSessionStore(db)

	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC) // Wednesday
	created, err := templates.Create(&models.SessionTemplate{
		SquadID:              squad.ID,
		Title:                "Friday Night Raid",
		Game:                 "Destiny",
		Weekdays:             []int{4}, // Friday
		Hour:                 21,
		Minute:               0,
		DurationMinutes:      90,
		AutoConfirmThreshold: 3,
	})
	if err != nil {
		t.Fatalf("Create template error = %v", err)
	}

	// Activate with a "now" a week back so the first occurrence is already
	// due at the sweep time.
	activated, err := Activate(templates, created.ID, now.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("Activate error = %v", err)
	}
	if !activated.IsActive {
		t.Fatal("Activate did not set is_active")
	}
	if !activated.NextOccurrence.After(now.AddDate(0, 0, -7)) {
		t.Errorf("NextOccurrence = %v, not after activation time", activated.NextOccurrence)
	}

	announcer := &recordingAnnouncer{}
	effects := sideeffect.NewDispatcher(zap.NewNop().Sugar())
	m := &Materializer{
		Templates: templates,
		Sessions:  sessions,
		Announcer: announcer,
		Effects:   effects,
		Log:       zap.NewNop().Sugar(),
	}

	n, err := m.RunOnce(now)
	if err != nil {
		t.Fatalf("RunOnce error = %v", err)
	}
	if n != 1 {
		t.Fatalf("RunOnce created %d sessions, want 1", n)
	}
	effects.Wait()

	list, err := sessions.ListBySquad(squad.ID)
	if err != nil {
		t.Fatalf("ListBySquad error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d sessions, want 1", len(list))
	}
	sess := list[0]
	if sess.Title != "Friday Night Raid" {
		t.Errorf("session title = %q, want %q", sess.Title, "Friday Night Raid")
	}
	if sess.Status != models.SessionStatusProposed {
		t.Errorf("session status = %q, want proposed", sess.Status)
	}
	if sess.AutoConfirmThreshold != 3 {
		t.Errorf("session threshold = %d, want 3", sess.AutoConfirmThreshold)
	}

	refreshed, err := templates.GetByID(created.ID)
	if err != nil {
		t.Fatalf("GetByID error = %v", err)
	}
	if !refreshed.NextOccurrence.After(now) {
		t.Errorf("next occurrence = %v, not rolled past now %v", refreshed.NextOccurrence, now)
	}
	if len(announcer.scheduled) != 1 {
		t.Errorf("got %d schedule announcements, want 1", len(announcer.scheduled))
	}

	// Nothing due anymore; a second sweep is a no-op.
	n, err = m.RunOnce(now)
	if err != nil {
		t.Fatalf("second RunOnce error = %v", err)
	}
	if n != 0 {
		t.Errorf("second RunOnce created %d sessions, want 0", n)
	}
}

func TestActivateRejectsMalformedRule(t *testing.T) {
	db := setupTestDB(t)
	squad := createTestSquad(t, db)
	templates := database.NewTemplateStore(db)

	created, err := templates.Create(&models.SessionTemplate{
		SquadID: squad.ID,
		Title:   "Broken",
		Hour:    12,
	})
	if err != nil {
		t.Fatalf("Create template error = %v", err)
	}

	if _, err := Activate(templates, created.ID, time.Now()); err == nil {
		t.Fatal("Activate accepted a template with no weekdays")
	}
}

package session

import (
	"testing"

	"github.com/squadup/app/internal/attendance"
	"github.com/squadup/app/internal/models"
)

func sessionWith(status string, threshold int) *models.Session {
	return &models.Session{ID: 1, Status: status, AutoConfirmThreshold: threshold}
}

func TestConfirm(t *testing.T) {
	t.Run("proposed confirms", func(t *testing.T) {
		got, changed := Confirm(sessionWith(models.SessionStatusProposed, 0))
		if !changed || got.Status != models.SessionStatusConfirmed {
			t.Errorf("Confirm() = (%q, %v), want (confirmed, true)", got.Status, changed)
		}
	})
	t.Run("confirmed is a no-op", func(t *testing.T) {
		got, changed := Confirm(sessionWith(models.SessionStatusConfirmed, 0))
		if changed || got.Status != models.SessionStatusConfirmed {
			t.Errorf("Confirm() = (%q, %v), want (confirmed, false)", got.Status, changed)
		}
	})
	t.Run("cancelled is refused", func(t *testing.T) {
		got, changed := Confirm(sessionWith(models.SessionStatusCancelled, 0))
		if changed || got.Status != models.SessionStatusCancelled {
			t.Errorf("Confirm() = (%q, %v), want (cancelled, false)", got.Status, changed)
		}
	})
}

func TestCancel(t *testing.T) {
	t.Run("proposed cancels", func(t *testing.T) {
		got, changed := Cancel(sessionWith(models.SessionStatusProposed, 0))
		if !changed || got.Status != models.SessionStatusCancelled {
			t.Errorf("Cancel() = (%q, %v), want (cancelled, true)", got.Status, changed)
		}
	})
	t.Run("confirmed cancels", func(t *testing.T) {
		got, changed := Cancel(sessionWith(models.SessionStatusConfirmed, 0))
		if !changed || got.Status != models.SessionStatusCancelled {
			t.Errorf("Cancel() = (%q, %v), want (cancelled, true)", got.Status, changed)
		}
	})
	t.Run("cancelled stays cancelled", func(t *testing.T) {
		got, changed := Cancel(sessionWith(models.SessionStatusCancelled, 0))
		if changed || got.Status != models.SessionStatusCancelled {
			t.Errorf("Cancel() = (%q, %v), want (cancelled, false)", got.Status, changed)
		}
	})
}

func TestMaybeAutoConfirm(t *testing.T) {
	counts := func(present int) attendance.Counts {
		return attendance.Counts{Present: present}
	}

	tests := []struct {
		name       string
		status     string
		threshold  int
		present    int
		wantStatus string
		wantChange bool
	}{
		{"threshold reached", models.SessionStatusProposed, 3, 3, models.SessionStatusConfirmed, true},
		{"threshold exceeded", models.SessionStatusProposed, 3, 5, models.SessionStatusConfirmed, true},
		{"below threshold", models.SessionStatusProposed, 3, 2, models.SessionStatusProposed, false},
		{"zero threshold disables", models.SessionStatusProposed, 0, 10, models.SessionStatusProposed, false},
		{"already confirmed", models.SessionStatusConfirmed, 3, 5, models.SessionStatusConfirmed, false},
		{"cancelled never confirms", models.SessionStatusCancelled, 1, 100, models.SessionStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := MaybeAutoConfirm(sessionWith(tt.status, tt.threshold), counts(tt.present))
			if changed != tt.wantChange || got.Status != tt.wantStatus {
				t.Errorf("MaybeAutoConfirm() = (%q, %v), want (%q, %v)",
					got.Status, changed, tt.wantStatus, tt.wantChange)
			}
		})
	}
}

// The input session is never mutated in place; transitions return copies.
func TestTransitionsDoNotMutateInput(t *testing.T) {
	s := sessionWith(models.SessionStatusProposed, 1)
	Confirm(s)
	Cancel(s)
	MaybeAutoConfirm(s, attendance.Counts{Present: 5})
	if s.Status != models.SessionStatusProposed {
		t.Errorf("input session status mutated to %q", s.Status)
	}
}

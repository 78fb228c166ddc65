// Package session owns the session lifecycle: status transitions and the
// coordinator that runs a member action end to end.
package session

import (
	"github.com/squadup/app/internal/attendance"
	"github.com/squadup/app/internal/models"
)

// Status transitions: proposed -> confirmed -> cancelled, with cancelled
// terminal. Confirm and Cancel are unconditional member/leader actions;
// MaybeAutoConfirm is the threshold-driven path.

// Confirm sets the session confirmed regardless of the present count.
// Confirming a cancelled session is refused; anything else (including an
// already confirmed session) lands on confirmed.
func Confirm(s *models.Session) (*models.Session, bool) {
	if s.Status == models.SessionStatusCancelled {
		return s, false
	}
	if s.Status == models.SessionStatusConfirmed {
		return s, false
	}
	out := *s
	out.Status = models.SessionStatusConfirmed
	return &out, true
}

// Cancel sets the session cancelled from any state. Cancelling twice is a
// no-op; there is no transition out of cancelled.
func Cancel(s *models.Session) (*models.Session, bool) {
	if s.Status == models.SessionStatusCancelled {
		return s, false
	}
	out := *s
	out.Status = models.SessionStatusCancelled
	return &out, true
}

// MaybeAutoConfirm confirms a proposed session once the present count
// reaches its threshold. A threshold of zero disables auto-confirmation.
// Sessions in any other state come back unchanged, so a cancelled session
// can never be revived by a late RSVP.
func MaybeAutoConfirm(s *models.Session, counts attendance.Counts) (*models.Session, bool) {
	if s.Status != models.SessionStatusProposed {
		return s, false
	}
	if s.AutoConfirmThreshold <= 0 || counts.Present < s.AutoConfirmThreshold {
		return s, false
	}
	out := *s
	out.Status = models.SessionStatusConfirmed
	return &out, true
}

package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/squadup/app/internal/apperr"
	"github.com/squadup/app/internal/models"
)

// RSVPs and check-ins share one storage shape: a single current answer per
// (session, user), inserted on first submission and overwritten in place
// afterwards. upsertCurrent expresses that once; the two stores below bind
// it to their table and timestamp column. Re-submitting the same answer is
// a no-op apart from refreshing the timestamp, which makes retries safe.
func upsertCurrent(db *sql.DB, table, valueColumn, stampColumn string, sessionID, userID int64, value string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (session_id, user_id, %s, %s)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id, user_id) DO UPDATE SET
			%s = excluded.%s,
			%s = CURRENT_TIMESTAMP
	`, table, valueColumn, stampColumn, valueColumn, valueColumn, stampColumn)

	stmt, err := db.Prepare(query)
	if err != nil {
		return apperr.Storage("prepare upsert "+table, err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(sessionID, userID, value); err != nil {
		return apperr.Storage("upsert "+table, err)
	}
	return nil
}

// RSVPStore persists members' stated intent for sessions.
type RSVPStore struct {
	db *sql.DB
}

func NewRSVPStore(db *sql.DB) *RSVPStore {
	return &RSVPStore{db: db}
}

// Upsert records the user's current answer for the session.
func (s *RSVPStore) Upsert(sessionID, userID int64, response string) error {
	return upsertCurrent(s.db, "rsvps", "response", "responded_at", sessionID, userID, response)
}

// ListForSession returns all RSVPs for a session with display names,
// most recently answered first.
func (s *RSVPStore) ListForSession(sessionID int64) ([]*models.RSVP, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.session_id, r.user_id, r.response, r.responded_at, u.display_name
		FROM rsvps r
		JOIN users u ON r.user_id = u.id
		WHERE r.session_id = ?
		ORDER BY r.responded_at DESC
	`, sessionID)
	if err != nil {
		return nil, apperr.Storage("select rsvps", err)
	}
	defer rows.Close()

	var rsvps []*models.RSVP
	for rows.Next() {
		rsvp := &models.RSVP{}
		err := rows.Scan(&rsvp.ID, &rsvp.SessionID, &rsvp.UserID, &rsvp.Response, &rsvp.RespondedAt, &rsvp.DisplayName)
		if err != nil {
			return nil, apperr.Storage("scan rsvp", err)
		}
		rsvps = append(rsvps, rsvp)
	}
	if err = rows.Err(); err != nil {
		return nil, apperr.Storage("iterate rsvps", err)
	}
	return rsvps, nil
}

// ListForSessions returns RSVPs across many sessions in one query, for
// list views that aggregate several sessions at once.
func (s *RSVPStore) ListForSessions(sessionIDs []int64) ([]*models.RSVP, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}

	placeholders := ""
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args[i] = id
	}

	rows, err := s.db.Query(`
		SELECT r.id, r.session_id, r.user_id, r.response, r.responded_at, u.display_name
		FROM rsvps r
		JOIN users u ON r.user_id = u.id
		WHERE r.session_id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, apperr.Storage("select rsvps batch", err)
	}
	defer rows.Close()

	var rsvps []*models.RSVP
	for rows.Next() {
		rsvp := &models.RSVP{}
		err := rows.Scan(&rsvp.ID, &rsvp.SessionID, &rsvp.UserID, &rsvp.Response, &rsvp.RespondedAt, &rsvp.DisplayName)
		if err != nil {
			return nil, apperr.Storage("scan rsvp", err)
		}
		rsvps = append(rsvps, rsvp)
	}
	if err = rows.Err(); err != nil {
		return nil, apperr.Storage("iterate rsvps", err)
	}
	return rsvps, nil
}

// GetByUser returns a user's RSVP for a session, or ErrNotFound if they
// have not answered.
func (s *RSVPStore) GetByUser(sessionID, userID int64) (*models.RSVP, error) {
	rsvp := &models.RSVP{}
	row := s.db.QueryRow(`
		SELECT r.id, r.session_id, r.user_id, r.response, r.responded_at, u.display_name
		FROM rsvps r
		JOIN users u ON r.user_id = u.id
		WHERE r.session_id = ? AND r.user_id = ?
	`, sessionID, userID)
	err := row.Scan(&rsvp.ID, &rsvp.SessionID, &rsvp.UserID, &rsvp.Response, &rsvp.RespondedAt, &rsvp.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("select rsvp by user", err)
	}
	return rsvp, nil
}

// CheckinStore persists members' recorded outcomes for sessions.
type CheckinStore struct {
	db *sql.DB
}

func NewCheckinStore(db *sql.DB) *CheckinStore {
	return &CheckinStore{db: db}
}

// Upsert records the user's current check-in status for the session.
func (s *CheckinStore) Upsert(sessionID, userID int64, status string) error {
	return upsertCurrent(s.db, "checkins", "status", "checked_at", sessionID, userID, status)
}

// ListForSession returns all check-ins for a session with display names.
func (s *CheckinStore) ListForSession(sessionID int64) ([]*models.Checkin, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.session_id, c.user_id, c.status, c.checked_at, u.display_name
		FROM checkins c
		JOIN users u ON c.user_id = u.id
		WHERE c.session_id = ?
		ORDER BY c.checked_at DESC
	`, sessionID)
	if err != nil {
		return nil, apperr.Storage("select checkins", err)
	}
	defer rows.Close()

	var checkins []*models.Checkin
	for rows.Next() {
		c := &models.Checkin{}
		err := rows.Scan(&c.ID, &c.SessionID, &c.UserID, &c.Status, &c.CheckedAt, &c.DisplayName)
		if err != nil {
			return nil, apperr.Storage("scan checkin", err)
		}
		checkins = append(checkins, c)
	}
	if err = rows.Err(); err != nil {
		return nil, apperr.Storage("iterate checkins", err)
	}
	return checkins, nil
}

package database

import (
	"database/sql"
	"errors"

	"github.com/squadup/app/internal/apperr"
	"github.com/squadup/app/internal/models"
)

// SessionStore persists scheduled sessions. Status changes go through
// UpdateStatus only; sessions are never deleted (cancellation is a status,
// not a removal).
type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

const sessionColumns = "id, squad_id, title, game, scheduled_at, duration_minutes, status, auto_confirm_threshold, created_by, created_at"

// Create inserts a new session in the proposed state.
func (s *SessionStore) Create(session *models.Session) (*models.Session, error) {
	stmt, err := s.db.Prepare(`
		INSERT INTO sessions (squad_id, title, game, scheduled_at, duration_minutes, status, auto_confirm_threshold, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, apperr.Storage("prepare insert session", err)
	}
	defer stmt.Close()

	status := session.Status
	if status == "" {
		status = models.SessionStatusProposed
	}

	res, err := stmt.Exec(
		session.SquadID, session.Title, session.Game, session.ScheduledAt,
		session.DurationMinutes, status, session.AutoConfirmThreshold, session.CreatedBy,
	)
	if err != nil {
		return nil, apperr.Storage("insert session", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, apperr.Storage("insert session id", err)
	}
	return s.GetByID(id)
}

// GetByID retrieves a session by id.
func (s *SessionStore) GetByID(id int64) (*models.Session, error) {
	row := s.db.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("select session", err)
	}
	return session, nil
}

// ListBySquad returns a squad's sessions, soonest first.
func (s *SessionStore) ListBySquad(squadID int64) ([]*models.Session, error) {
	rows, err := s.db.Query("SELECT "+sessionColumns+" FROM sessions WHERE squad_id = ? ORDER BY scheduled_at ASC", squadID)
	if err != nil {
		return nil, apperr.Storage("select squad sessions", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, apperr.Storage("scan session", err)
		}
		sessions = append(sessions, session)
	}
	if err = rows.Err(); err != nil {
		return nil, apperr.Storage("iterate sessions", err)
	}
	return sessions, nil
}

// UpdateStatus writes a new status for the session.
func (s *SessionStore) UpdateStatus(id int64, status string) error {
	res, err := s.db.Exec("UPDATE sessions SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return apperr.Storage("update session status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage("update session status rows", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	session := &models.Session{}
	err := row.Scan(
		&session.ID, &session.SquadID, &session.Title, &session.Game,
		&session.ScheduledAt, &session.DurationMinutes, &session.Status,
		&session.AutoConfirmThreshold, &session.CreatedBy, &session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return session, nil
}

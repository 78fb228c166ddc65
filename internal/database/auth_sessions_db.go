package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/squadup/app/internal/apperr"
)

// AuthSessionStore persists login sessions keyed by cookie token. Tokens
// are stored as rows so restarts do not sign members out; expiry is checked
// at resolve time.
type AuthSessionStore struct {
	db *sql.DB
}

func NewAuthSessionStore(db *sql.DB) *AuthSessionStore {
	return &AuthSessionStore{db: db}
}

// Create issues a fresh token for the user, valid for ttl.
func (s *AuthSessionStore) Create(userID int64, ttl time.Duration) (string, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	_, err = s.db.Exec(
		"INSERT INTO auth_sessions(token, user_id, expires_at) VALUES(?, ?, ?)",
		token.String(), userID, time.Now().Add(ttl).UTC(),
	)
	if err != nil {
		return "", apperr.Storage("insert auth session", err)
	}
	return token.String(), nil
}

// Resolve returns the user id behind a token, or ErrNotFound for unknown
// or expired tokens. Expired rows are purged on the way out so the table
// does not accumulate dead sessions.
func (s *AuthSessionStore) Resolve(token string) (int64, error) {
	var userID int64
	var expiresAt time.Time
	row := s.db.QueryRow("SELECT user_id, expires_at FROM auth_sessions WHERE token = ?", token)
	err := row.Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.ErrNotFound
	}
	if err != nil {
		return 0, apperr.Storage("select auth session", err)
	}
	if time.Now().After(expiresAt) {
		if err := s.Delete(token); err != nil {
			return 0, err
		}
		return 0, apperr.ErrNotFound
	}
	return userID, nil
}

// Delete removes a token on logout. Deleting an unknown token is a no-op.
func (s *AuthSessionStore) Delete(token string) error {
	_, err := s.db.Exec("DELETE FROM auth_sessions WHERE token = ?", token)
	if err != nil {
		return apperr.Storage("delete auth session", err)
	}
	return nil
}

package database

import (
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/squadup/app/internal/apperr"
	"github.com/squadup/app/internal/models"
)

// UserStore persists registered members.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Create hashes the password and inserts a new user.
func (s *UserStore) Create(email, displayName, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	stmt, err := s.db.Prepare("INSERT INTO users(email, display_name, password_hash) VALUES(?, ?, ?)")
	if err != nil {
		return nil, apperr.Storage("prepare insert user", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(email, displayName, string(hashedPassword))
	if err != nil {
		return nil, apperr.Storage("insert user", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, apperr.Storage("insert user id", err)
	}

	// Re-read so DB defaults like created_at are populated.
	return s.GetByID(id)
}

// GetByEmail retrieves a user by email address.
func (s *UserStore) GetByEmail(email string) (*models.User, error) {
	user := &models.User{}
	row := s.db.QueryRow("SELECT id, email, display_name, password_hash, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("select user by email", err)
	}
	return user, nil
}

// GetByID retrieves a user by id.
func (s *UserStore) GetByID(id int64) (*models.User, error) {
	user := &models.User{}
	row := s.db.QueryRow("SELECT id, email, display_name, password_hash, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("select user by id", err)
	}
	return user, nil
}

// VerifyPassword compares a stored hash with a plaintext password.
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

package database

import (
	"database/sql"
	"errors"

	"github.com/squadup/app/internal/apperr"
	"github.com/squadup/app/internal/models"
)

// SquadStore persists squads and their membership.
type SquadStore struct {
	db *sql.DB
}

func NewSquadStore(db *sql.DB) *SquadStore {
	return &SquadStore{db: db}
}

// Create inserts a squad and enrolls the owner as its first member.
func (s *SquadStore) Create(name string, ownerID int64) (*models.Squad, error) {
	res, err := s.db.Exec("INSERT INTO squads(name, owner_id) VALUES(?, ?)", name, ownerID)
	if err != nil {
		return nil, apperr.Storage("insert squad", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, apperr.Storage("insert squad id", err)
	}

	if err := s.AddMember(id, ownerID); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// GetByID retrieves a squad by id.
func (s *SquadStore) GetByID(id int64) (*models.Squad, error) {
	squad := &models.Squad{}
	row := s.db.QueryRow("SELECT id, name, owner_id, created_at FROM squads WHERE id = ?", id)
	err := row.Scan(&squad.ID, &squad.Name, &squad.OwnerID, &squad.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("select squad", err)
	}
	return squad, nil
}

// AddMember enrolls a user; joining a squad twice is a no-op.
func (s *SquadStore) AddMember(squadID, userID int64) error {
	_, err := s.db.Exec(
		"INSERT INTO squad_members(squad_id, user_id) VALUES(?, ?) ON CONFLICT(squad_id, user_id) DO NOTHING",
		squadID, userID,
	)
	if err != nil {
		return apperr.Storage("insert squad member", err)
	}
	return nil
}

// RemoveMember drops a user from the squad.
func (s *SquadStore) RemoveMember(squadID, userID int64) error {
	_, err := s.db.Exec("DELETE FROM squad_members WHERE squad_id = ? AND user_id = ?", squadID, userID)
	if err != nil {
		return apperr.Storage("delete squad member", err)
	}
	return nil
}

// IsMember reports whether the user belongs to the squad.
func (s *SquadStore) IsMember(squadID, userID int64) (bool, error) {
	var n int
	row := s.db.QueryRow("SELECT COUNT(1) FROM squad_members WHERE squad_id = ? AND user_id = ?", squadID, userID)
	if err := row.Scan(&n); err != nil {
		return false, apperr.Storage("count squad member", err)
	}
	return n > 0, nil
}

// Members lists the squad's members ordered by join time.
func (s *SquadStore) Members(squadID int64) ([]*models.SquadMember, error) {
	rows, err := s.db.Query(
		"SELECT squad_id, user_id, joined_at FROM squad_members WHERE squad_id = ? ORDER BY joined_at ASC",
		squadID,
	)
	if err != nil {
		return nil, apperr.Storage("select squad members", err)
	}
	defer rows.Close()

	var members []*models.SquadMember
	for rows.Next() {
		m := &models.SquadMember{}
		if err := rows.Scan(&m.SquadID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, apperr.Storage("scan squad member", err)
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, apperr.Storage("iterate squad members", err)
	}
	return members, nil
}

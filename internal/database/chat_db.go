package database

import (
	"database/sql"

	"github.com/squadup/app/internal/apperr"
	"github.com/squadup/app/internal/models"
)

// ChatStore persists squad chat messages. System messages (RSVP
// announcements, confirmations) use models.SystemUserID and carry no users
// row, so display names come from a LEFT JOIN.
type ChatStore struct {
	db *sql.DB
}

func NewChatStore(db *sql.DB) *ChatStore {
	return &ChatStore{db: db}
}

// Create inserts a chat message and returns it with DB-generated fields
// populated.
func (s *ChatStore) Create(squadID, userID int64, content string) (*models.ChatMessage, error) {
	res, err := s.db.Exec(
		"INSERT INTO chat_messages(squad_id, user_id, content) VALUES(?, ?, ?)",
		squadID, userID, content,
	)
	if err != nil {
		return nil, apperr.Storage("insert chat message", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, apperr.Storage("insert chat message id", err)
	}

	msg := &models.ChatMessage{}
	var displayName sql.NullString
	row := s.db.QueryRow(`
		SELECT cm.id, cm.squad_id, cm.user_id, u.display_name, cm.content, cm.created_at
		FROM chat_messages cm
		LEFT JOIN users u ON cm.user_id = u.id
		WHERE cm.id = ?
	`, id)
	err = row.Scan(&msg.ID, &msg.SquadID, &msg.UserID, &displayName, &msg.Content, &msg.CreatedAt)
	if err != nil {
		return nil, apperr.Storage("select chat message", err)
	}
	msg.DisplayName = systemName(displayName)
	return msg, nil
}

// ListForSquad returns a squad's messages, oldest first.
func (s *ChatStore) ListForSquad(squadID int64) ([]*models.ChatMessage, error) {
	rows, err := s.db.Query(`
		SELECT cm.id, cm.squad_id, cm.user_id, u.display_name, cm.content, cm.created_at
		FROM chat_messages cm
		LEFT JOIN users u ON cm.user_id = u.id
		WHERE cm.squad_id = ?
		ORDER BY cm.created_at ASC
	`, squadID)
	if err != nil {
		return nil, apperr.Storage("select chat messages", err)
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		msg := &models.ChatMessage{}
		var displayName sql.NullString
		err := rows.Scan(&msg.ID, &msg.SquadID, &msg.UserID, &displayName, &msg.Content, &msg.CreatedAt)
		if err != nil {
			return nil, apperr.Storage("scan chat message", err)
		}
		msg.DisplayName = systemName(displayName)
		messages = append(messages, msg)
	}
	if err = rows.Err(); err != nil {
		return nil, apperr.Storage("iterate chat messages", err)
	}
	return messages, nil
}

func systemName(displayName sql.NullString) string {
	if displayName.Valid {
		return displayName.String
	}
	return "squadup"
}

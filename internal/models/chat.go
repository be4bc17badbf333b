package models

import (
	"database/sql"
	"fmt"
	"time"
)

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one persisted turn of a coaching conversation.
type ChatMessage struct {
	ID             int64
	ConversationID string
	UserID         int64
	Role           string
	Content        string
	CreatedAt      time.Time
}

// NewChatMessage is an unsaved turn passed to AppendChatMessages.
type NewChatMessage struct {
	Role    string
	Content string
}

// AppendChatMessages stores turns of a conversation in order, atomically.
func AppendChatMessages(db *sql.DB, conversationID string, userID int64, msgs ...NewChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("models: begin append chat: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO chat_messages (conversation_id, user_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("models: prepare append chat: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, m := range msgs {
		if _, err := stmt.Exec(conversationID, userID, m.Role, m.Content, now); err != nil {
			return fmt.Errorf("models: append chat message to %s: %w", conversationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("models: commit append chat: %w", err)
	}
	return nil
}

// ListChatMessages returns a user's conversation in insertion order.
func ListChatMessages(db *sql.DB, conversationID string, userID int64) ([]*ChatMessage, error) {
	rows, err := db.Query(`
		SELECT id, conversation_id, user_id, role, content, created_at
		FROM chat_messages
		WHERE conversation_id = ? AND user_id = ?
		ORDER BY id`, conversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("models: list chat messages for %s: %w", conversationID, err)
	}
	defer rows.Close()

	var msgs []*ChatMessage
	for rows.Next() {
		m := &ChatMessage{}
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("models: scan chat message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// DeleteChatMessagesBefore removes turns created before cutoff from every
// conversation and returns how many were deleted.
func DeleteChatMessagesBefore(db *sql.DB, cutoff time.Time) (int64, error) {
	result, err := db.Exec(`DELETE FROM chat_messages WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("models: delete chat messages before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return result.RowsAffected()
}

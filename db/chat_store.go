package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type User struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	CreatedAt   string `json:"created_at"`
}

type ChatHistory struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	Title        string `json:"title"`
	CreatedAt    string `json:"created_at"`
	MessageCount int    `json:"message_count"`
}

type Message struct {
	ID            int64  `json:"id"`
	ChatHistoryID int64  `json:"chat_history_id"`
	Role          string `json:"role"`
	Content       string `json:"content"`
	CreatedAt     string `json:"created_at"`
}

func (s *Store) CreateUser(ctx context.Context, name, email, phone string) (*User, error) {
	query := s.bind(`INSERT INTO users (name, email, phone_number) VALUES (?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, name, email, phone); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return s.GetUserByEmail(ctx, email)
}

func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	query := s.bind(`SELECT id, name, email, phone_number, created_at FROM users WHERE id = ?`)
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := s.bind(`SELECT id, name, email, phone_number, created_at FROM users WHERE email = ?`)
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PhoneNumber, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading user: %w", err)
	}
	return &u, nil
}

// CreateChatHistory creates a conversation for a user. An empty title gets a
// generated one.
func (s *Store) CreateChatHistory(ctx context.Context, userID int64, title string) (*ChatHistory, error) {
	if title == "" {
		title = RandomConversationTitle()
	}

	query := s.bind(`INSERT INTO chat_histories (user_id, title) VALUES (?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, userID, title); err != nil {
		return nil, fmt.Errorf("error creating chat history: %w", err)
	}

	row := s.db.QueryRowContext(ctx, s.bind(
		`SELECT id, user_id, title, created_at FROM chat_histories
		 WHERE user_id = ? ORDER BY id DESC LIMIT 1`), userID)

	var ch ChatHistory
	if err := row.Scan(&ch.ID, &ch.UserID, &ch.Title, &ch.CreatedAt); err != nil {
		return nil, fmt.Errorf("error reading chat history: %w", err)
	}
	return &ch, nil
}

// CreateDefaultChatHistory creates a conversation seeded with the assistant
// welcome message, used for newly registered users.
func (s *Store) CreateDefaultChatHistory(ctx context.Context, userID int64) (*ChatHistory, error) {
	ch, err := s.CreateChatHistory(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	if _, err := s.CreateMessage(ctx, ch.ID, "assistant", "Welcome! How can I help you today?"); err != nil {
		return nil, fmt.Errorf("error creating welcome message: %w", err)
	}
	return ch, nil
}

func (s *Store) ListChatHistories(ctx context.Context, userID int64) ([]ChatHistory, error) {
	query := s.bind(`
		SELECT ch.id, ch.user_id, ch.title, ch.created_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.chat_history_id = ch.id)
		FROM chat_histories ch
		WHERE ch.user_id = ?
		ORDER BY ch.created_at DESC`)

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing chat histories: %w", err)
	}
	defer rows.Close()

	var histories []ChatHistory
	for rows.Next() {
		var ch ChatHistory
		if err := rows.Scan(&ch.ID, &ch.UserID, &ch.Title, &ch.CreatedAt, &ch.MessageCount); err != nil {
			return nil, fmt.Errorf("error scanning chat history: %w", err)
		}
		histories = append(histories, ch)
	}
	return histories, rows.Err()
}

func (s *Store) CreateMessage(ctx context.Context, chatHistoryID int64, role, content string) (*Message, error) {
	switch role {
	case "user", "assistant", "system":
	default:
		return nil, fmt.Errorf("invalid message role %q", role)
	}

	query := s.bind(`INSERT INTO messages (chat_history_id, role, content) VALUES (?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, chatHistoryID, role, content); err != nil {
		return nil, fmt.Errorf("error creating message: %w", err)
	}

	row := s.db.QueryRowContext(ctx, s.bind(
		`SELECT id, chat_history_id, role, content, created_at FROM messages
		 WHERE chat_history_id = ? ORDER BY id DESC LIMIT 1`), chatHistoryID)

	var m Message
	if err := row.Scan(&m.ID, &m.ChatHistoryID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
		return nil, fmt.Errorf("error reading message: %w", err)
	}
	return &m, nil
}

func (s *Store) ListMessages(ctx context.Context, chatHistoryID int64) ([]Message, error) {
	query := s.bind(`
		SELECT id, chat_history_id, role, content, created_at
		FROM messages
		WHERE chat_history_id = ?
		ORDER BY id ASC`)

	rows, err := s.db.QueryContext(ctx, query, chatHistoryID)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ChatHistoryID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

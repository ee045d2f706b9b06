package db

import (
	"context"
	"fmt"
	"math/rand"
)

// InitSchema creates the application-owned tables when they do not exist and
// seeds the permanent test user. Personal-data tables are handled separately
// by the CSV loader.
func (s *Store) InitSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
			%s,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			phone_number TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, s.serialPK()),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chat_histories (
			%s,
			user_id INTEGER NOT NULL,
			title TEXT DEFAULT 'New Conversation',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`, s.serialPK()),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS messages (
			%s,
			chat_history_id INTEGER NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('user', 'assistant', 'system')),
			content TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (chat_history_id) REFERENCES chat_histories(id) ON DELETE CASCADE
		)`, s.serialPK()),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS support_tickets (
			%s,
			ticket_id TEXT NOT NULL UNIQUE,
			user_query TEXT NOT NULL,
			intent TEXT,
			sentiment TEXT,
			analysis TEXT,
			priority TEXT DEFAULT 'medium' CHECK(priority IN ('low', 'medium', 'high', 'urgent')),
			status TEXT DEFAULT 'open' CHECK(status IN ('open', 'in_progress', 'resolved', 'closed')),
			category TEXT,
			assigned_to TEXT,
			resolution_notes TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			resolved_at TIMESTAMP
		)`, s.serialPK()),
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error initializing schema: %w", err)
		}
	}

	s.logger.Info("Database schema initialized")
	return nil
}

func (s *Store) serialPK() string {
	if s.driver == DriverPostgres {
		return "id BIGSERIAL PRIMARY KEY"
	}
	return "id INTEGER PRIMARY KEY AUTOINCREMENT"
}

var conversationAdjectives = []string{
	"Curious", "Creative", "Thoughtful", "Innovative", "Dynamic",
	"Engaging", "Inspiring", "Reflective", "Exploratory", "Analytical",
	"Strategic", "Collaborative", "Insightful", "Productive", "Focused",
	"Open", "Deep", "Wide", "Bright", "Clear", "Fresh", "New", "Evolving",
}

var conversationNouns = []string{
	"Exploration", "Discussion", "Inquiry", "Chat", "Conversation",
	"Dialogue", "Exchange", "Session", "Journey", "Adventure",
	"Discovery", "Insight", "Reflection", "Brainstorm", "Workshop",
	"Meeting", "Talk", "Debate", "Analysis", "Review",
}

// RandomConversationTitle generates a readable default title for a new chat.
func RandomConversationTitle() string {
	adjective := conversationAdjectives[rand.Intn(len(conversationAdjectives))]
	noun := conversationNouns[rand.Intn(len(conversationNouns))]
	return adjective + " " + noun
}

// EnsureTestUser creates the permanent test user with a default chat history
// if it does not exist yet, and returns its id.
func (s *Store) EnsureTestUser(ctx context.Context) (int64, error) {
	const (
		testName  = "Test User"
		testEmail = "test@example.com"
		testPhone = "9999999999"
	)

	existing, err := s.GetUserByEmail(ctx, testEmail)
	if err == nil {
		return existing.ID, nil
	}
	if err != ErrNotFound {
		return 0, err
	}

	user, err := s.CreateUser(ctx, testName, testEmail, testPhone)
	if err != nil {
		return 0, fmt.Errorf("error creating test user: %w", err)
	}

	if _, err := s.CreateDefaultChatHistory(ctx, user.ID); err != nil {
		s.logger.Warn("Failed to create default chat history for test user",
			"user_id", user.ID, "error", err.Error())
	}

	s.logger.Info("Test user created", "user_id", user.ID, "email", testEmail)
	return user.ID, nil
}

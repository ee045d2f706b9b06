package db

import (
	"context"
	"testing"
)

func TestCreateAndGetUser(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "Ada Lovelace", "ada@example.com", "1234567890")
	if err != nil {
		t.Fatalf("CreateUser returned an error: %v", err)
	}
	if user.ID == 0 {
		t.Error("expected a non-zero user id")
	}

	fetched, err := store.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser returned an error: %v", err)
	}
	if fetched.Email != "ada@example.com" || fetched.PhoneNumber != "1234567890" {
		t.Errorf("unexpected user: %+v", fetched)
	}

	if _, err := store.GetUser(ctx, 9999); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, "First", "dup@example.com", "1111111111"); err != nil {
		t.Fatalf("CreateUser returned an error: %v", err)
	}
	if _, err := store.CreateUser(ctx, "Second", "dup@example.com", "2222222222"); err == nil {
		t.Fatal("expected a uniqueness violation")
	}
}

func TestChatHistoryDefaultTitle(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "Ada", "ada@example.com", "1234567890")
	if err != nil {
		t.Fatalf("CreateUser returned an error: %v", err)
	}

	ch, err := store.CreateChatHistory(ctx, user.ID, "")
	if err != nil {
		t.Fatalf("CreateChatHistory returned an error: %v", err)
	}
	if ch.Title == "" {
		t.Error("expected a generated title for an empty one")
	}

	named, err := store.CreateChatHistory(ctx, user.ID, "Refund follow-up")
	if err != nil {
		t.Fatalf("CreateChatHistory returned an error: %v", err)
	}
	if named.Title != "Refund follow-up" {
		t.Errorf("expected the given title, got %q", named.Title)
	}
}

func TestMessagesRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "Ada", "ada@example.com", "1234567890")
	if err != nil {
		t.Fatalf("CreateUser returned an error: %v", err)
	}
	ch, err := store.CreateChatHistory(ctx, user.ID, "test")
	if err != nil {
		t.Fatalf("CreateChatHistory returned an error: %v", err)
	}

	if _, err := store.CreateMessage(ctx, ch.ID, "user", "Where is my order?"); err != nil {
		t.Fatalf("CreateMessage returned an error: %v", err)
	}
	if _, err := store.CreateMessage(ctx, ch.ID, "assistant", "Let me check that for you."); err != nil {
		t.Fatalf("CreateMessage returned an error: %v", err)
	}
	if _, err := store.CreateMessage(ctx, ch.ID, "moderator", "nope"); err == nil {
		t.Fatal("expected an error for an invalid role")
	}

	messages, err := store.ListMessages(ctx, ch.ID)
	if err != nil {
		t.Fatalf("ListMessages returned an error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != "user" || messages[1].Role != "assistant" {
		t.Errorf("messages out of order: %+v", messages)
	}

	histories, err := store.ListChatHistories(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListChatHistories returned an error: %v", err)
	}
	if len(histories) != 1 || histories[0].MessageCount != 2 {
		t.Errorf("unexpected histories: %+v", histories)
	}
}

func TestEnsureTestUserIdempotent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	first, err := store.EnsureTestUser(ctx)
	if err != nil {
		t.Fatalf("EnsureTestUser returned an error: %v", err)
	}
	second, err := store.EnsureTestUser(ctx)
	if err != nil {
		t.Fatalf("EnsureTestUser returned an error: %v", err)
	}
	if first != second {
		t.Errorf("expected the same user id, got %d and %d", first, second)
	}

	histories, err := store.ListChatHistories(ctx, first)
	if err != nil {
		t.Fatalf("ListChatHistories returned an error: %v", err)
	}
	if len(histories) != 1 {
		t.Fatalf("expected one seeded chat history, got %d", len(histories))
	}
	messages, err := store.ListMessages(ctx, histories[0].ID)
	if err != nil {
		t.Fatalf("ListMessages returned an error: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != "Welcome! How can I help you today?" {
		t.Errorf("expected the welcome message, got %+v", messages)
	}
}

package db

import (
	"context"
	"strings"
	"testing"
)

func TestPriorityForSentiment(t *testing.T) {
	tests := []struct {
		sentiment string
		want      string
	}{
		{"negative", "high"},
		{"neutral", "medium"},
		{"positive", "low"},
		{"", "low"},
		{"confused", "low"},
	}
	for _, tt := range tests {
		if got := PriorityForSentiment(tt.sentiment); got != tt.want {
			t.Errorf("PriorityForSentiment(%q) = %q, want %q", tt.sentiment, got, tt.want)
		}
	}
}

func TestNewTicketIDFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := newTicketID()
		if !strings.HasPrefix(id, "TKT-") {
			t.Fatalf("ticket id %q missing TKT- prefix", id)
		}
		suffix := strings.TrimPrefix(id, "TKT-")
		if len(suffix) != 8 {
			t.Fatalf("ticket id %q suffix is not 8 characters", id)
		}
		if suffix != strings.ToUpper(suffix) {
			t.Fatalf("ticket id %q suffix is not uppercase", id)
		}
		if seen[id] {
			t.Fatalf("ticket id %q generated twice", id)
		}
		seen[id] = true
	}
}

func TestCreateAndGetTicket(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	ticket, err := store.CreateTicket(ctx, TicketInput{
		UserQuery: "I want a refund for my broken item",
		Intent:    "refund_request",
		Sentiment: "negative",
		Analysis:  "User received a broken item",
		Category:  "Returns & Refunds",
	})
	if err != nil {
		t.Fatalf("CreateTicket returned an error: %v", err)
	}

	if ticket.Status != "open" {
		t.Errorf("expected status open, got %q", ticket.Status)
	}
	if ticket.Priority != "high" {
		t.Errorf("expected priority high for negative sentiment, got %q", ticket.Priority)
	}
	if ticket.CreatedAt == "" || ticket.UpdatedAt == "" {
		t.Errorf("expected timestamps to be set: created=%q updated=%q", ticket.CreatedAt, ticket.UpdatedAt)
	}

	fetched, err := store.GetTicket(ctx, ticket.TicketID)
	if err != nil {
		t.Fatalf("GetTicket returned an error: %v", err)
	}
	if fetched.UserQuery != ticket.UserQuery || fetched.Category != ticket.Category {
		t.Errorf("round trip mismatch: %+v vs %+v", fetched, ticket)
	}
}

func TestGetTicketNotFound(t *testing.T) {
	store := testStore(t)
	if _, err := store.GetTicket(context.Background(), "TKT-NOPE0000"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListTicketsStatusFilter(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	first, err := store.CreateTicket(ctx, TicketInput{UserQuery: "q1", Sentiment: "neutral"})
	if err != nil {
		t.Fatalf("CreateTicket returned an error: %v", err)
	}
	if _, err := store.CreateTicket(ctx, TicketInput{UserQuery: "q2", Sentiment: "negative"}); err != nil {
		t.Fatalf("CreateTicket returned an error: %v", err)
	}
	if _, err := store.UpdateTicketStatus(ctx, first.TicketID, "resolved", nil, nil); err != nil {
		t.Fatalf("UpdateTicketStatus returned an error: %v", err)
	}

	all, err := store.ListTickets(ctx, "")
	if err != nil {
		t.Fatalf("ListTickets returned an error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 tickets, got %d", len(all))
	}

	open, err := store.ListTickets(ctx, "open")
	if err != nil {
		t.Fatalf("ListTickets returned an error: %v", err)
	}
	if len(open) != 1 || open[0].UserQuery != "q2" {
		t.Errorf("unexpected open tickets: %+v", open)
	}
}

func TestUpdateTicketStatus(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	ticket, err := store.CreateTicket(ctx, TicketInput{UserQuery: "broken checkout", Sentiment: "neutral"})
	if err != nil {
		t.Fatalf("CreateTicket returned an error: %v", err)
	}

	agent := "sam"
	updated, err := store.UpdateTicketStatus(ctx, ticket.TicketID, "in_progress", &agent, nil)
	if err != nil {
		t.Fatalf("UpdateTicketStatus returned an error: %v", err)
	}
	if updated.Status != "in_progress" || updated.AssignedTo != "sam" {
		t.Errorf("unexpected ticket after update: %+v", updated)
	}
	if updated.ResolvedAt != "" {
		t.Errorf("resolved_at set before resolution: %q", updated.ResolvedAt)
	}

	notes := "cache invalidation fixed it"
	resolved, err := store.UpdateTicketStatus(ctx, ticket.TicketID, "resolved", nil, &notes)
	if err != nil {
		t.Fatalf("UpdateTicketStatus returned an error: %v", err)
	}
	if resolved.ResolvedAt == "" {
		t.Error("expected resolved_at to be stamped")
	}
	if resolved.ResolutionNotes != notes {
		t.Errorf("expected resolution notes %q, got %q", notes, resolved.ResolutionNotes)
	}
	if resolved.AssignedTo != "sam" {
		t.Errorf("assignment lost on resolution: %q", resolved.AssignedTo)
	}
}

func TestUpdateTicketStatusValidation(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if _, err := store.UpdateTicketStatus(ctx, "TKT-NOPE0000", "escalated", nil, nil); err == nil {
		t.Fatal("expected an error for an invalid status")
	}
	if _, err := store.UpdateTicketStatus(ctx, "TKT-NOPE0000", "resolved", nil, nil); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for an unknown ticket, got %v", err)
	}
}

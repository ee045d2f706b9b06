package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Ticket struct {
	ID              int64  `json:"id"`
	TicketID        string `json:"ticket_id"`
	UserQuery       string `json:"user_query"`
	Intent          string `json:"intent"`
	Sentiment       string `json:"sentiment"`
	Analysis        string `json:"analysis"`
	Priority        string `json:"priority"`
	Status          string `json:"status"`
	Category        string `json:"category"`
	AssignedTo      string `json:"assigned_to,omitempty"`
	ResolutionNotes string `json:"resolution_notes,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
	ResolvedAt      string `json:"resolved_at,omitempty"`
}

type TicketInput struct {
	UserQuery string
	Intent    string
	Sentiment string
	Analysis  string
	Category  string
}

// PriorityForSentiment derives the initial ticket priority from the triage
// sentiment: negative queries jump the queue.
func PriorityForSentiment(sentiment string) string {
	switch sentiment {
	case "negative":
		return "high"
	case "neutral":
		return "medium"
	default:
		return "low"
	}
}

func newTicketID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "TKT-" + strings.ToUpper(hex[:8])
}

// CreateTicket persists a new support ticket with status open and a
// generated ticket id, then reads it back.
func (s *Store) CreateTicket(ctx context.Context, input TicketInput) (*Ticket, error) {
	ticketID := newTicketID()
	priority := PriorityForSentiment(input.Sentiment)
	now := time.Now().UTC().Format(time.RFC3339)

	query := s.bind(`
		INSERT INTO support_tickets (
			ticket_id, user_query, intent, sentiment, analysis,
			priority, status, category, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		ticketID, input.UserQuery, input.Intent, input.Sentiment, input.Analysis,
		priority, "open", input.Category, now, now)
	if err != nil {
		return nil, fmt.Errorf("error creating support ticket: %w", err)
	}

	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Support ticket created",
		"ticket_id", ticketID, "priority", priority, "category", input.Category)
	return ticket, nil
}

func (s *Store) GetTicket(ctx context.Context, ticketID string) (*Ticket, error) {
	query := s.bind(`
		SELECT id, ticket_id, user_query, intent, sentiment, analysis,
		       priority, status, category, assigned_to, resolution_notes,
		       created_at, updated_at, resolved_at
		FROM support_tickets WHERE ticket_id = ?`)

	ticket, err := scanTicket(s.db.QueryRowContext(ctx, query, ticketID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading support ticket: %w", err)
	}
	return ticket, nil
}

// ListTickets returns tickets newest first, optionally filtered by status.
func (s *Store) ListTickets(ctx context.Context, statusFilter string) ([]Ticket, error) {
	query := `
		SELECT id, ticket_id, user_query, intent, sentiment, analysis,
		       priority, status, category, assigned_to, resolution_notes,
		       created_at, updated_at, resolved_at
		FROM support_tickets`
	var args []interface{}
	if statusFilter != "" {
		query += " WHERE status = ?"
		args = append(args, statusFilter)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, s.bind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("error listing support tickets: %w", err)
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning support ticket: %w", err)
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}

// UpdateTicketStatus moves a ticket to a new status. assignedTo and
// resolutionNotes are applied only when non-nil; resolved/closed statuses
// also stamp resolved_at.
func (s *Store) UpdateTicketStatus(ctx context.Context, ticketID, status string, assignedTo, resolutionNotes *string) (*Ticket, error) {
	switch status {
	case "open", "in_progress", "resolved", "closed":
	default:
		return nil, fmt.Errorf("invalid ticket status %q", status)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	setClauses := []string{"status = ?", "updated_at = ?"}
	args := []interface{}{status, now}

	if assignedTo != nil {
		setClauses = append(setClauses, "assigned_to = ?")
		args = append(args, *assignedTo)
	}
	if resolutionNotes != nil {
		setClauses = append(setClauses, "resolution_notes = ?")
		args = append(args, *resolutionNotes)
	}
	if status == "resolved" || status == "closed" {
		setClauses = append(setClauses, "resolved_at = ?")
		args = append(args, now)
	}
	args = append(args, ticketID)

	query := s.bind(fmt.Sprintf(
		"UPDATE support_tickets SET %s WHERE ticket_id = ?", strings.Join(setClauses, ", ")))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error updating support ticket: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrNotFound
	}

	s.logger.Info("Support ticket updated", "ticket_id", ticketID, "status", status)
	return s.GetTicket(ctx, ticketID)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(row rowScanner) (*Ticket, error) {
	var t Ticket
	var assignedTo, resolutionNotes, resolvedAt sql.NullString
	err := row.Scan(
		&t.ID, &t.TicketID, &t.UserQuery, &t.Intent, &t.Sentiment, &t.Analysis,
		&t.Priority, &t.Status, &t.Category, &assignedTo, &resolutionNotes,
		&t.CreatedAt, &t.UpdatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	t.AssignedTo = assignedTo.String
	t.ResolutionNotes = resolutionNotes.String
	t.ResolvedAt = resolvedAt.String
	return &t, nil
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adilhn/supportflow/db"
	"github.com/adilhn/supportflow/services/notification_service"
)

// TicketStore is the slice of the relational store the escalation handler
// needs.
type TicketStore interface {
	CreateTicket(ctx context.Context, input db.TicketInput) (*db.Ticket, error)
}

// categoryRule pairs a keyword predicate with a support category. Rules are
// evaluated top to bottom; the first match wins.
type categoryRule struct {
	Keywords []string
	Category string
}

var escalationRules = []categoryRule{
	{[]string{"refund", "return", "broken", "damaged", "defective"}, "Returns & Refunds"},
	{[]string{"payment", "charge", "charged", "billing", "card"}, "Payment Issues"},
	{[]string{"delivery", "shipping", "shipped", "package", "tracking"}, "Delivery Problems"},
	{[]string{"error", "bug", "crash", "website", "app", "login", "password"}, "Technical Support"},
	{[]string{"account", "profile", "email", "subscription"}, "Account Issues"},
}

// ClassifyCategory maps a query onto a support category with plain keyword
// matching; no model call is involved.
func ClassifyCategory(query string) string {
	lowered := strings.ToLower(query)
	for _, rule := range escalationRules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lowered, keyword) {
				return rule.Category
			}
		}
	}
	return "General Support"
}

// EscalationStep hands the query to human support: it classifies the issue,
// persists a ticket, optionally notifies the support team, and acknowledges
// to the user. A store failure degrades to an apology embedding the error.
type EscalationStep struct {
	Tickets  TicketStore
	Notifier notification_service.NotificationService
	Logger   *slog.Logger
}

func (s *EscalationStep) Execute(ctx context.Context, state *State) error {
	state.EscalationMessages = append(state.EscalationMessages,
		"Creating support ticket for human agent...")

	category := ClassifyCategory(state.UserQuery)

	ticket, err := s.Tickets.CreateTicket(ctx, db.TicketInput{
		UserQuery: state.UserQuery,
		Intent:    state.Intent,
		Sentiment: state.Sentiment,
		Analysis:  state.Analysis,
		Category:  category,
	})
	if err != nil {
		s.Logger.Error("Failed to create support ticket", slog.String("error", err.Error()))
		state.EscalationMessages = append(state.EscalationMessages,
			fmt.Sprintf("Error creating support ticket: %v", err))
		state.FinalResponse = fmt.Sprintf("I apologize, but I could not create a support ticket for your issue right now. "+
			"Please try again shortly or contact support directly. Error: %v", err)
		return nil
	}

	if s.Notifier != nil && (ticket.Priority == "high" || ticket.Priority == "urgent") {
		if nerr := s.Notifier.NotifyTicket(ctx, ticket); nerr != nil {
			// Notification trouble stays internal; the ticket exists either way.
			s.Logger.Warn("Support team notification failed",
				slog.String("ticket_id", ticket.TicketID),
				slog.String("error", nerr.Error()))
		}
	}

	state.EscalationMessages = append(state.EscalationMessages,
		fmt.Sprintf("Support ticket %s created successfully", ticket.TicketID))

	state.FinalResponse = fmt.Sprintf(`Thank you for reaching out. Your issue has been escalated to our human support team.

Ticket Details:
- Ticket ID: %s
- Status: %s
- Priority: %s
- Category: %s
- Query: %s

A support agent will review your case and contact you shortly.`,
		ticket.TicketID, ticket.Status, ticket.Priority, ticket.Category, state.UserQuery)

	return nil
}

func (s *EscalationStep) Name() string {
	return AgentEscalation
}

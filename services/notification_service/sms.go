package notification_service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/adilhn/supportflow/db"
)

// SMSNotificationService sends the support team a text message for new
// high-priority tickets.
type SMSNotificationService struct {
	client     *twilio.RestClient
	fromNumber string
	toNumber   string
	logger     *slog.Logger
}

func NewSMSNotificationService(accountSID, authToken, fromNumber, toNumber string, logger *slog.Logger) *SMSNotificationService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &SMSNotificationService{
		client:     client,
		fromNumber: fromNumber,
		toNumber:   toNumber,
		logger:     logger,
	}
}

func (s *SMSNotificationService) NotifyTicket(ctx context.Context, ticket *db.Ticket) error {
	body := fmt.Sprintf("New %s priority support ticket %s (%s): %s",
		ticket.Priority, ticket.TicketID, ticket.Category, ticket.UserQuery)
	if len(body) > 320 {
		body = body[:320]
	}

	params := &twilioApi.CreateMessageParams{
		To:   &s.toNumber,
		From: &s.fromNumber,
		Body: &body,
	}

	message, err := s.client.Api.CreateMessage(params)
	if err != nil {
		s.logger.Error("Failed to send ticket SMS",
			slog.String("ticket_id", ticket.TicketID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	s.logger.Info("Ticket notification sent",
		slog.String("ticket_id", ticket.TicketID),
		slog.String("message_sid", *message.Sid))
	return nil
}

package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/adilhn/supportflow/db"
)

type fakeTicketStore struct {
	createErr error
	lastInput db.TicketInput
}

func (f *fakeTicketStore) CreateTicket(ctx context.Context, input db.TicketInput) (*db.Ticket, error) {
	f.lastInput = input
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &db.Ticket{
		TicketID:  "TKT-ABCD1234",
		UserQuery: input.UserQuery,
		Intent:    input.Intent,
		Sentiment: input.Sentiment,
		Analysis:  input.Analysis,
		Priority:  db.PriorityForSentiment(input.Sentiment),
		Status:    "open",
		Category:  input.Category,
	}, nil
}

type fakeNotifier struct {
	notified []*db.Ticket
	err      error
}

func (f *fakeNotifier) NotifyTicket(ctx context.Context, ticket *db.Ticket) error {
	f.notified = append(f.notified, ticket)
	return f.err
}

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"I want a refund for my broken item", "Returns & Refunds"},
		{"My package arrived damaged", "Returns & Refunds"},
		{"I was charged twice for the same order", "Payment Issues"},
		{"My card was declined during billing", "Payment Issues"},
		{"The delivery is three weeks late", "Delivery Problems"},
		{"Where is my tracking number", "Delivery Problems"},
		{"The website keeps showing an error", "Technical Support"},
		{"I cannot login to the app", "Technical Support"},
		{"Please change the email on my account", "Account Issues"},
		{"I need to speak to a human", "General Support"},
		{"REFUND NOW", "Returns & Refunds"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := ClassifyCategory(tt.query); got != tt.want {
				t.Errorf("ClassifyCategory(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestClassifyCategoryFirstRuleWins(t *testing.T) {
	// "refund" and "charged" both match; the refund rule is ordered first.
	if got := ClassifyCategory("I was charged but want a refund"); got != "Returns & Refunds" {
		t.Errorf("expected the first matching rule to win, got %q", got)
	}
}

func TestEscalationStepCreatesTicket(t *testing.T) {
	store := &fakeTicketStore{}
	step := &EscalationStep{Tickets: store, Logger: testLogger()}

	state := NewState("I want a refund for my broken item")
	state.Intent = "refund_request"
	state.Sentiment = "negative"
	state.Analysis = "User received a broken item"

	if err := step.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute returned an error: %v", err)
	}

	if store.lastInput.Category != "Returns & Refunds" {
		t.Errorf("expected category Returns & Refunds, got %q", store.lastInput.Category)
	}
	for _, fragment := range []string{
		"Ticket ID: TKT-ABCD1234",
		"Status: open",
		"Priority: high",
		"Category: Returns & Refunds",
		"Query: I want a refund for my broken item",
	} {
		if !strings.Contains(state.FinalResponse, fragment) {
			t.Errorf("expected acknowledgment to contain %q, got:\n%s", fragment, state.FinalResponse)
		}
	}
	joined := strings.Join(state.EscalationMessages, "\n")
	if !strings.Contains(joined, "Support ticket TKT-ABCD1234 created successfully") {
		t.Errorf("expected a success message in the handler log, got:\n%s", joined)
	}
}

func TestEscalationStepNotifiesOnHighPriority(t *testing.T) {
	tests := []struct {
		name       string
		sentiment  string
		wantNotify bool
	}{
		{"negative sentiment notifies", "negative", true},
		{"neutral sentiment stays quiet", "neutral", false},
		{"positive sentiment stays quiet", "positive", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeNotifier{}
			step := &EscalationStep{Tickets: &fakeTicketStore{}, Notifier: notifier, Logger: testLogger()}

			state := NewState("I need help with my subscription")
			state.Sentiment = tt.sentiment

			if err := step.Execute(context.Background(), state); err != nil {
				t.Fatalf("Execute returned an error: %v", err)
			}

			if tt.wantNotify && len(notifier.notified) != 1 {
				t.Errorf("expected a notification, got %d", len(notifier.notified))
			}
			if !tt.wantNotify && len(notifier.notified) != 0 {
				t.Errorf("expected no notification, got %d", len(notifier.notified))
			}
		})
	}
}

func TestEscalationStepNotifierFailureStaysInternal(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("twilio unavailable")}
	step := &EscalationStep{Tickets: &fakeTicketStore{}, Notifier: notifier, Logger: testLogger()}

	state := NewState("This is unacceptable, I want a refund")
	state.Sentiment = "negative"

	if err := step.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute returned an error: %v", err)
	}

	if !strings.Contains(state.FinalResponse, "Ticket ID: TKT-ABCD1234") {
		t.Errorf("expected the acknowledgment despite the notifier failure, got:\n%s", state.FinalResponse)
	}
	if strings.Contains(state.FinalResponse, "twilio") {
		t.Errorf("notifier failure leaked into the user response:\n%s", state.FinalResponse)
	}
}

func TestEscalationStepStoreFailure(t *testing.T) {
	store := &fakeTicketStore{createErr: errors.New("database locked")}
	step := &EscalationStep{Tickets: store, Logger: testLogger()}

	state := NewState("My order never arrived")
	state.Sentiment = "negative"

	if err := step.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute returned an error: %v", err)
	}

	if !strings.Contains(state.FinalResponse, "I could not create a support ticket") {
		t.Errorf("expected the degraded response, got %q", state.FinalResponse)
	}
	if !strings.Contains(state.FinalResponse, "database locked") {
		t.Errorf("expected the error detail in the degraded response, got %q", state.FinalResponse)
	}
}

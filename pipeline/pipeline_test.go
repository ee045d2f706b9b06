package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/adilhn/supportflow/services/llm_service"
)

type fakeStep struct {
	name    string
	execute func(ctx context.Context, state *State) error
	calls   int
}

func (f *fakeStep) Execute(ctx context.Context, state *State) error {
	f.calls++
	if f.execute != nil {
		return f.execute(ctx, state)
	}
	return nil
}

func (f *fakeStep) Name() string {
	return f.name
}

func newTestWorkflow(t *testing.T, triageResponse, routingResponse string) (*Workflow, map[string]*fakeStep) {
	t.Helper()

	mockLLM := &llm_service.MockLLMService{
		CallChatFunc: func(ctx context.Context, messages []llm_service.Message, temperature float64) (string, error) {
			if messages[0].Content == TriagePrompt {
				return triageResponse, nil
			}
			return routingResponse, nil
		},
	}

	handlers := map[string]*fakeStep{
		AgentGeneralInformation: {name: AgentGeneralInformation},
		AgentPersonalisedRAG:    {name: AgentPersonalisedRAG},
		AgentEscalation:         {name: AgentEscalation},
	}
	for name, handler := range handlers {
		agent := name
		handler.execute = func(ctx context.Context, state *State) error {
			state.FinalResponse = "handled by " + agent
			return nil
		}
	}

	registry := NewRegistry()
	for name, handler := range handlers {
		registry.RegisterHandler(name, handler)
	}

	triage := &TriageStep{LLMService: mockLLM, Logger: testLogger()}
	routing := &RoutingStep{LLMService: mockLLM, Logger: testLogger()}

	return NewWorkflow(registry, triage, routing, testLogger()), handlers
}

func TestWorkflowRunDispatchesExactlyOneHandler(t *testing.T) {
	tests := []struct {
		name        string
		routing     string
		wantHandler string
	}{
		{
			name:        "general information",
			routing:     `{"next_agent": "general_information", "reasoning": "platform question"}`,
			wantHandler: AgentGeneralInformation,
		},
		{
			name:        "personalised rag",
			routing:     `{"next_agent": "personalised_rag", "reasoning": "about the user's data"}`,
			wantHandler: AgentPersonalisedRAG,
		},
		{
			name:        "escalation",
			routing:     `{"next_agent": "escalation", "reasoning": "user demands a human"}`,
			wantHandler: AgentEscalation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workflow, handlers := newTestWorkflow(t,
				`{"intent": "general_query", "sentiment": "neutral", "analysis": "ok"}`,
				tt.routing)

			state, err := workflow.Run(context.Background(), "hello")
			if err != nil {
				t.Fatalf("Run returned an error: %v", err)
			}

			if state.FinalResponse != "handled by "+tt.wantHandler {
				t.Errorf("unexpected final response: %q", state.FinalResponse)
			}
			for name, handler := range handlers {
				wantCalls := 0
				if name == tt.wantHandler {
					wantCalls = 1
				}
				if handler.calls != wantCalls {
					t.Errorf("handler %s called %d times, want %d", name, handler.calls, wantCalls)
				}
			}
		})
	}
}

func TestWorkflowRunRecordsSupervisorTrail(t *testing.T) {
	workflow, _ := newTestWorkflow(t,
		`{"intent": "order_query", "sentiment": "negative", "analysis": "late order"}`,
		`{"next_agent": "escalation", "reasoning": "angry user"}`)

	state, err := workflow.Run(context.Background(), "Where is my order, this is ridiculous")
	if err != nil {
		t.Fatalf("Run returned an error: %v", err)
	}

	if len(state.SupervisorMessages) == 0 {
		t.Fatal("expected supervisor messages")
	}
	if state.SupervisorMessages[0] != "Received user query, routing to triage agent" {
		t.Errorf("unexpected first supervisor message: %q", state.SupervisorMessages[0])
	}
	if state.Intent != "order_query" || state.Sentiment != "negative" {
		t.Errorf("triage result not carried: intent=%q sentiment=%q", state.Intent, state.Sentiment)
	}
	if state.NextAgent != AgentEscalation {
		t.Errorf("expected next agent escalation, got %q", state.NextAgent)
	}
}

func TestWorkflowRunFallsBackWhenHandlerMissing(t *testing.T) {
	mockLLM := &llm_service.MockLLMService{
		CallChatFunc: func(ctx context.Context, messages []llm_service.Message, temperature float64) (string, error) {
			if messages[0].Content == TriagePrompt {
				return `{"intent": "account_query", "sentiment": "neutral", "analysis": "ok"}`, nil
			}
			return `{"next_agent": "personalised_rag", "reasoning": "user data"}`, nil
		},
	}

	general := &fakeStep{name: AgentGeneralInformation, execute: func(ctx context.Context, state *State) error {
		state.FinalResponse = "general fallback"
		return nil
	}}

	registry := NewRegistry()
	registry.RegisterHandler(AgentGeneralInformation, general)

	workflow := NewWorkflow(registry,
		&TriageStep{LLMService: mockLLM, Logger: testLogger()},
		&RoutingStep{LLMService: mockLLM, Logger: testLogger()},
		testLogger())

	state, err := workflow.Run(context.Background(), "show my orders")
	if err != nil {
		t.Fatalf("Run returned an error: %v", err)
	}
	if state.FinalResponse != "general fallback" {
		t.Errorf("expected the general_information fallback, got %q", state.FinalResponse)
	}
	if state.NextAgent != AgentGeneralInformation {
		t.Errorf("expected NextAgent rewritten to general_information, got %q", state.NextAgent)
	}
}

func TestWorkflowRunErrorsWithEmptyRegistry(t *testing.T) {
	mockLLM := &llm_service.MockLLMService{
		CallChatFunc: func(ctx context.Context, messages []llm_service.Message, temperature float64) (string, error) {
			if messages[0].Content == TriagePrompt {
				return `{"intent": "general_query", "sentiment": "neutral", "analysis": "ok"}`, nil
			}
			return `{"next_agent": "general_information", "reasoning": "ok"}`, nil
		},
	}

	workflow := NewWorkflow(NewRegistry(),
		&TriageStep{LLMService: mockLLM, Logger: testLogger()},
		&RoutingStep{LLMService: mockLLM, Logger: testLogger()},
		testLogger())

	if _, err := workflow.Run(context.Background(), "hello"); err == nil {
		t.Fatal("expected an error when no handler is registered")
	}
}

func TestWorkflowRunFillsEmptyFinalResponse(t *testing.T) {
	workflow, handlers := newTestWorkflow(t,
		`{"intent": "general_query", "sentiment": "neutral", "analysis": "ok"}`,
		`{"next_agent": "general_information", "reasoning": "ok"}`)
	handlers[AgentGeneralInformation].execute = func(ctx context.Context, state *State) error {
		return nil
	}

	state, err := workflow.Run(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Run returned an error: %v", err)
	}
	if !strings.Contains(state.FinalResponse, "I apologize") {
		t.Errorf("expected a generic apology for an empty handler response, got %q", state.FinalResponse)
	}
}

func TestWorkflowObserverDoesNotBlock(t *testing.T) {
	workflow, _ := newTestWorkflow(t,
		`{"intent": "general_query", "sentiment": "neutral", "analysis": "ok"}`,
		`{"next_agent": "general_information", "reasoning": "ok"}`)

	// Nobody reads from the channel; every emit past the buffer must be
	// dropped instead of stalling the run.
	ch := make(chan Progress, 1)
	workflow.SetObserver(ch)

	if _, err := workflow.Run(context.Background(), "hello"); err != nil {
		t.Fatalf("Run returned an error: %v", err)
	}

	if len(ch) != 1 {
		t.Errorf("expected exactly the buffered event to survive, got %d", len(ch))
	}
}

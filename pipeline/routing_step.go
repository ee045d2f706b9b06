package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adilhn/supportflow/services/llm_service"
)

// RoutingStep chooses which handler gets the query, based on the triage
// result. Any failure - transport, parse, or an agent name outside the known
// set - falls back to general_information, so NextAgent is always set when
// this step returns.
type RoutingStep struct {
	LLMService llm_service.LLMService
	Logger     *slog.Logger
}

func (s *RoutingStep) Execute(ctx context.Context, state *State) error {
	state.SupervisorMessages = append(state.SupervisorMessages, "Triage complete. Analyzing routing decision...")

	routingPrompt := fmt.Sprintf(`User Query: %q
Intent: %s
Sentiment: %s
Analysis: %s

Based on this information, which agent should handle this query?`,
		state.UserQuery, state.Intent, state.Sentiment, state.Analysis)

	messages := []llm_service.Message{
		{Role: "system", Content: SupervisorRoutingPrompt},
		{Role: "user", Content: routingPrompt},
	}

	response, err := s.LLMService.CallChat(ctx, messages, 0.2)
	if err != nil {
		s.fallback(state, err)
		return nil
	}

	var result struct {
		NextAgent string `json:"next_agent"`
		Reasoning string `json:"reasoning"`
	}
	if perr := ParseJSONResponse(response, &result); perr != nil {
		s.fallback(state, perr)
		return nil
	}

	if !isKnownAgent(result.NextAgent) {
		s.fallback(state, fmt.Errorf("unknown agent %q in routing decision", result.NextAgent))
		return nil
	}

	if result.Reasoning == "" {
		result.Reasoning = "Default routing"
	}

	state.NextAgent = result.NextAgent
	state.SupervisorMessages = append(state.SupervisorMessages,
		fmt.Sprintf("Routing to %s agent - %s", result.NextAgent, result.Reasoning))

	return nil
}

func (s *RoutingStep) Name() string {
	return "routing"
}

func (s *RoutingStep) fallback(state *State, err error) {
	s.Logger.Warn("Routing decision failed, defaulting to general_information",
		slog.String("error", err.Error()))
	state.SupervisorMessages = append(state.SupervisorMessages,
		fmt.Sprintf("Error in routing decision, defaulting to general_information - %v", err))
	state.NextAgent = AgentGeneralInformation
}

func isKnownAgent(name string) bool {
	switch name {
	case AgentGeneralInformation, AgentPersonalisedRAG, AgentEscalation:
		return true
	}
	return false
}

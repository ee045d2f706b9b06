package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adilhn/supportflow/services/llm_service"
)

// TriageStep classifies the user query into an intent label, a sentiment
// label and a free-text rationale with a single low-temperature model call.
// It never fails: every error path leaves a usable classification behind.
type TriageStep struct {
	LLMService llm_service.LLMService
	Logger     *slog.Logger
}

func (s *TriageStep) Execute(ctx context.Context, state *State) error {
	state.TriageMessages = append(state.TriageMessages, "Analyzing query with DeepSeek...")

	messages := []llm_service.Message{
		{Role: "system", Content: TriagePrompt},
		{Role: "user", Content: fmt.Sprintf("Analyze this user query: %q", state.UserQuery)},
	}

	response, err := s.LLMService.CallChat(ctx, messages, 0.2)
	if err != nil {
		state.TriageMessages = append(state.TriageMessages, fmt.Sprintf("Error during analysis - %v", err))
		state.Intent = "error"
		state.Sentiment = "neutral"
		state.Analysis = fmt.Sprintf("Error during analysis: %v", err)
		return nil
	}

	var result struct {
		Intent    string `json:"intent"`
		Sentiment string `json:"sentiment"`
		Analysis  string `json:"analysis"`
	}
	if perr := ParseJSONResponse(response, &result); perr != nil {
		state.TriageMessages = append(state.TriageMessages, "Error parsing response, using fallback classification")
		preview := response
		if len(preview) > 200 {
			preview = preview[:200]
		}
		s.Logger.Warn("Invalid triage response",
			slog.String("error", perr.Error()),
			slog.String("response_preview", preview))
		state.Intent = "unknown"
		state.Sentiment = "neutral"
		state.Analysis = fmt.Sprintf("Error parsing DeepSeek response: %v", perr)
		return nil
	}

	if result.Intent == "" {
		result.Intent = "unknown"
	}
	if result.Sentiment == "" {
		result.Sentiment = "neutral"
	}
	if result.Analysis == "" {
		result.Analysis = "Analysis completed"
	}

	state.Intent = result.Intent
	state.Sentiment = result.Sentiment
	state.Analysis = result.Analysis
	state.TriageMessages = append(state.TriageMessages,
		fmt.Sprintf("Classification complete - Intent: %s, Sentiment: %s", result.Intent, result.Sentiment))

	return nil
}

func (s *TriageStep) Name() string {
	return "triage"
}

package llm_service

import (
	"context"
)

type MockLLMService struct {
	CallChatFunc func(ctx context.Context, messages []Message, temperature float64) (string, error)
}

func (m *MockLLMService) CallChat(ctx context.Context, messages []Message, temperature float64) (string, error) {
	if m.CallChatFunc != nil {
		return m.CallChatFunc(ctx, messages, temperature)
	}
	return "mock response", nil
}

package llm_service

import "context"

// Message is a single role-tagged chat message sent to the model provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMService wraps a synchronous chat-completion call: messages in, text out.
// Implementations do not retry and do not stream; every call is fallible and
// callers own their fallback behavior.
type LLMService interface {
	CallChat(ctx context.Context, messages []Message, temperature float64) (string, error)
}

package pipeline

import (
	"github.com/adilhn/supportflow/services/llm_service"
)

// Registry maps agent names to handler steps and provider names to LLM
// services. Handlers are registered under the next_agent value the routing
// step produces for them.
type Registry struct {
	handlers    map[string]Step
	llmServices map[string]llm_service.LLMService
}

func NewRegistry() *Registry {
	return &Registry{
		handlers:    make(map[string]Step),
		llmServices: make(map[string]llm_service.LLMService),
	}
}

// RegisterHandler registers a terminal handler step under an agent name
func (r *Registry) RegisterHandler(name string, handler Step) {
	r.handlers[name] = handler
}

// GetHandler returns a handler step by agent name
func (r *Registry) GetHandler(name string) (Step, bool) {
	handler, ok := r.handlers[name]
	return handler, ok
}

// RegisterLLMService registers a new LLM service
func (r *Registry) RegisterLLMService(name string, service llm_service.LLMService) {
	r.llmServices[name] = service
}

// GetLLMService returns an LLM service by name
func (r *Registry) GetLLMService(name string) (llm_service.LLMService, bool) {
	service, ok := r.llmServices[name]
	return service, ok
}

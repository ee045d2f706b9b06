package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// stage names the workflow states. Control moves strictly forward; a
// handler completing is terminal, there is no cycle back.
type stage int

const (
	stageStart stage = iota
	stageTriage
	stageRouting
	stageDispatch
	stageTerminal
)

// Workflow wires the triage and routing steps to the registered handlers
// and threads a State through them. Run never returns a step error to the
// caller: every failure path ends in a terminal state whose FinalResponse
// is a natural-language message.
type Workflow struct {
	registry *Registry
	triage   Step
	routing  Step
	logger   *slog.Logger
	observer chan<- Progress
}

func NewWorkflow(registry *Registry, triage, routing Step, logger *slog.Logger) *Workflow {
	return &Workflow{
		registry: registry,
		triage:   triage,
		routing:  routing,
		logger:   logger,
	}
}

// SetObserver installs a progress channel. Sends are non-blocking: a slow
// or absent consumer drops events, it never stalls a step.
func (w *Workflow) SetObserver(ch chan<- Progress) {
	w.observer = ch
}

func (w *Workflow) emit(step, message string, fields map[string]interface{}) {
	if w.observer == nil {
		return
	}
	select {
	case w.observer <- Progress{Step: step, Message: message, Fields: fields}:
	default:
	}
}

// Run executes the full workflow for one query and returns the terminal
// state. The returned error reports wiring defects only (no handler
// registered at all), never a step failure.
func (w *Workflow) Run(ctx context.Context, userQuery string) (*State, error) {
	state := NewState(userQuery)

	current := stageStart
	for current != stageTerminal {
		switch current {
		case stageStart:
			state.SupervisorMessages = append(state.SupervisorMessages,
				"Received user query, routing to triage agent")
			w.emit("supervisor", "Received user query", nil)
			current = stageTriage

		case stageTriage:
			w.runStep(ctx, w.triage, state)
			w.emit(w.triage.Name(), "Triage complete", map[string]interface{}{
				"intent":    state.Intent,
				"sentiment": state.Sentiment,
			})
			current = stageRouting

		case stageRouting:
			w.runStep(ctx, w.routing, state)
			w.emit(w.routing.Name(), "Routing decision made", map[string]interface{}{
				"next_agent": state.NextAgent,
			})
			current = stageDispatch

		case stageDispatch:
			handler, ok := w.registry.GetHandler(state.NextAgent)
			if !ok {
				// Routing guarantees a known agent name, so this only
				// happens when main wired the registry wrong.
				w.logger.Error("No handler registered for agent",
					slog.String("next_agent", state.NextAgent))
				handler, ok = w.registry.GetHandler(AgentGeneralInformation)
				if !ok {
					return state, fmt.Errorf("no handler registered for agent %q", state.NextAgent)
				}
				state.NextAgent = AgentGeneralInformation
			}

			w.runStep(ctx, handler, state)
			if state.FinalResponse == "" {
				state.FinalResponse = "I apologize, but I could not produce an answer to your query. " +
					"Please try again or contact support if the issue persists."
			}
			w.emit(handler.Name(), "Handler completed", map[string]interface{}{
				"final_response": state.FinalResponse,
			})
			current = stageTerminal
		}
	}

	return state, nil
}

// runStep executes one step and absorbs any error it returns; step errors
// are logged, never propagated.
func (w *Workflow) runStep(ctx context.Context, step Step, state *State) {
	if err := step.Execute(ctx, state); err != nil {
		w.logger.Error("Step returned an error",
			slog.String("step", step.Name()),
			slog.String("error", err.Error()))
	}
}

package pipeline

import "context"

// Step is a single named stage of the workflow. Execute mutates the shared
// state; steps own their failure handling and are expected to leave the
// state usable even when the model call or storage underneath them fails.
type Step interface {
	Execute(ctx context.Context, state *State) error

	Name() string
}

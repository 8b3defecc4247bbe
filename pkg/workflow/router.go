package workflow

import (
	"context"

	"github.com/microstack/microstack/pkg/microscopy"
)

// Simulator runs one microscopy technique against the state's structure.
// Implementations read the structure snapshots and record artifacts on the
// state; they must not rewind the stage.
type Simulator interface {
	Run(ctx context.Context, state *State) error
}

// Router decides whether and which microscopy stage runs.
type Router struct{}

// Check sets the routing flags on the state exactly once. A request that
// explicitly named a technique proceeds automatically; a plain structure or
// relaxation request pauses for confirmation instead, and a non-interactive
// caller must treat that pause as "stop here".
func (Router) Check(state *State) {
	if state.Params != nil && state.Params.MicroscopyType != "" {
		state.MicroscopyRequested = true
		state.MicroscopyType = microscopy.Technique(state.Params.MicroscopyType)
		state.InteractivePause = false
	} else {
		state.MicroscopyRequested = false
		state.InteractivePause = true
	}
	state.AdvanceStage(StageMicroscopyChecked)
}

// Route maps the routing flags onto the next stage. Unknown techniques
// route to the terminal sentinel with a warning appended to the state.
func (Router) Route(state *State) microscopy.Target {
	target, warning := microscopy.Route(state.MicroscopyRequested, state.MicroscopyType)
	if warning != "" {
		state.AddWarning(warning)
	}
	return target
}

package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/microstack/microstack/pkg/compare"
	"github.com/microstack/microstack/pkg/llm"
	"github.com/microstack/microstack/pkg/microscopy"
	"github.com/microstack/microstack/pkg/providers"
	"github.com/microstack/microstack/pkg/relax"
	"github.com/microstack/microstack/pkg/structure"
	"github.com/microstack/microstack/pkg/telemetry"
)

// DefaultRelaxationSteps bounds the relaxation when the config does not
// override it.
const DefaultRelaxationSteps = 200

// Config assembles an orchestrator from its collaborators.
type Config struct {
	// Parser turns the natural-language query into parameters.
	Parser llm.Parser

	// Primary is the preferred structure provider, may be nil.
	Primary providers.Provider

	// Fallback is the provider tried when the primary fails. Required.
	Fallback providers.Provider

	// Relaxer runs geometry relaxation, may be nil when relaxation is
	// never requested.
	Relaxer relax.Engine

	// Comparer grades relaxation output. Required.
	Comparer *compare.Engine

	// Simulators maps routing targets to microscopy implementations.
	Simulators map[microscopy.Target]Simulator

	// RelaxationSteps caps the relaxation step count, 0 for the default.
	RelaxationSteps int

	Logger  *telemetry.Logger
	Metrics *telemetry.Metrics
}

// Orchestrator drives one request at a time through the pipeline stages.
// It performs no I/O of its own; artifacts are written by the caller from
// the finished State.
type Orchestrator struct {
	parser     llm.Parser
	primary    providers.Provider
	fallback   providers.Provider
	relaxer    relax.Engine
	comparer   *compare.Engine
	simulators map[microscopy.Target]Simulator
	router     Router
	relaxSteps int

	logger  *telemetry.Logger
	metrics *telemetry.Metrics
}

// NewOrchestrator validates the config and creates an orchestrator.
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	if cfg.Parser == nil {
		return nil, fmt.Errorf("orchestrator requires a parser")
	}
	if cfg.Fallback == nil {
		return nil, fmt.Errorf("orchestrator requires a fallback provider")
	}
	if cfg.Comparer == nil {
		return nil, fmt.Errorf("orchestrator requires a comparison engine")
	}

	logger := cfg.Logger
	if logger == nil {
		var err error
		logger, err = telemetry.NewLogger(telemetry.LoggingConfig{Level: "info", Output: "stderr"})
		if err != nil {
			return nil, fmt.Errorf("failed to create default logger: %w", err)
		}
	}

	steps := cfg.RelaxationSteps
	if steps <= 0 {
		steps = DefaultRelaxationSteps
	}

	return &Orchestrator{
		parser:     cfg.Parser,
		primary:    cfg.Primary,
		fallback:   cfg.Fallback,
		relaxer:    cfg.Relaxer,
		comparer:   cfg.Comparer,
		simulators: cfg.Simulators,
		relaxSteps: steps,
		logger:     logger.NewComponentLogger("orchestrator"),
		metrics:    cfg.Metrics,
	}, nil
}

// Run drives a fresh State through the pipeline. Expected domain failures
// accumulate on the State and never surface as the error return; the error
// is non-nil only for collaborator contract violations. The returned State
// is always complete and inspectable, with CompletedAt set.
func (o *Orchestrator) Run(ctx context.Context, query, sessionID string) (*State, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	state := NewState(sessionID, query)
	log := o.logger.WithSessionID(sessionID)
	if o.metrics != nil {
		o.metrics.RecordRunStarted()
	}
	defer o.finish(state, log)

	log.Infof("starting run for query: %s", query)

	params, err := o.parser.Parse(ctx, query)
	if err != nil {
		state.AddError(fmt.Sprintf("query parsing failed: %v", err))
		log.WithError(err).Error("query parsing failed")
		return state, nil
	}
	state.Params = params
	state.AdvanceStage(StageParsed)

	s, err := o.generate(ctx, state, log)
	if err != nil {
		return state, err
	}
	if s == nil {
		// Both providers failed; the stage stays frozen below relaxation
		// and the error trail explains why.
		return state, nil
	}
	state.Unrelaxed = s
	state.AdvanceStage(StageStructureGenerated)
	log.Infof("generated %s with %d atoms", s.Formula(), s.NumAtoms())

	if params.Relax {
		if err := o.relaxStep(ctx, state, log); err != nil {
			return state, err
		}
	}

	o.compareStep(ctx, state, log)

	o.router.Check(state)
	if target := o.router.Route(state); target != microscopy.TargetEnd {
		o.runSimulation(ctx, state, target, log)
	}

	// A paused run stays at the checked stage so a later confirmation can
	// still advance through the microscopy stages.
	if !state.InteractivePause {
		state.AdvanceStage(StageTerminal)
	}
	return state, nil
}

// ContinueWithMicroscopy resumes a paused run after the caller confirmed a
// technique. It is the interactive counterpart of the automatic routing in
// Run.
func (o *Orchestrator) ContinueWithMicroscopy(ctx context.Context, state *State, technique microscopy.Technique) error {
	if state.Structure() == nil {
		return NewFatalError("cannot run microscopy without a structure", state.Stage, nil)
	}
	state.MicroscopyRequested = true
	state.MicroscopyType = technique
	state.InteractivePause = false

	log := o.logger.WithSessionID(state.SessionID)
	if target := o.router.Route(state); target != microscopy.TargetEnd {
		o.runSimulation(ctx, state, target, log)
	}
	state.AdvanceStage(StageTerminal)
	return nil
}

// finish stamps completion and reports run metrics.
func (o *Orchestrator) finish(state *State, log *telemetry.Logger) {
	state.CompletedAt = time.Now().UTC()
	if o.metrics != nil {
		o.metrics.RecordRunCompleted(state.Stage.String(), time.Since(state.StartedAt))
	}
	log.WithStage(state.Stage.String()).
		Infof("run finished with %d error(s), %d warning(s)", len(state.Errors), len(state.Warnings))
}

// generate tries the primary provider, then the fallback exactly once. A
// nil structure with no errors appended means a contract violation was
// already returned; a nil structure otherwise means both providers failed.
func (o *Orchestrator) generate(ctx context.Context, state *State, log *telemetry.Logger) (*structure.Structure, error) {
	req := providers.Request{Params: state.Params, Query: state.Query}

	chain := make([]providers.Provider, 0, 2)
	if o.primary != nil {
		chain = append(chain, o.primary)
	}
	chain = append(chain, o.fallback)

	for i, p := range chain {
		s, err := p.Generate(ctx, req)
		if err == nil {
			if s == nil {
				return nil, NewContractError(
					fmt.Sprintf("provider %s returned neither structure nor failure", p.Name()),
					state.Stage, nil)
			}
			return s, nil
		}

		if i < len(chain)-1 {
			state.AddWarning(fmt.Sprintf("provider %s failed: %v, falling back to %s",
				p.Name(), err, chain[i+1].Name()))
			log.WithProvider(p.Name()).WithError(err).Warn("provider failed, trying fallback")
			if o.metrics != nil {
				o.metrics.RecordProviderFallback()
			}
		} else {
			state.AddError(fmt.Sprintf("provider %s failed: %v", p.Name(), err))
			log.WithProvider(p.Name()).WithError(err).Error("provider failed")
		}
	}

	state.AddError("structure generation failed: all providers exhausted")
	return nil, nil
}

// relaxStep runs the relaxation engine and attaches the relaxed snapshot
// and energies. Failures degrade the run to the unrelaxed geometry.
func (o *Orchestrator) relaxStep(ctx context.Context, state *State, log *telemetry.Logger) error {
	if o.relaxer == nil {
		state.AddError("relaxation requested but no engine is configured")
		return nil
	}

	result, err := o.relaxer.Relax(ctx, state.Unrelaxed, o.relaxSteps)
	if err != nil {
		state.AddError(fmt.Sprintf("relaxation failed: %v", err))
		log.WithError(err).Error("relaxation failed, continuing with unrelaxed structure")
		return nil
	}
	if result == nil || result.Structure == nil {
		return NewContractError("relaxation engine returned neither result nor failure", state.Stage, nil)
	}

	state.Relaxed = result.Structure
	state.Energies = &Energies{Initial: result.InitialEnergy, Final: result.FinalEnergy}
	state.AdvanceStage(StageRelaxed)
	log.Infof("relaxed: energy %.4f -> %.4f eV", result.InitialEnergy, result.FinalEnergy)
	return nil
}

// compareStep grades the geometry against reference data. All failure modes
// here are degraded conditions; the pipeline always continues to routing.
func (o *Orchestrator) compareStep(ctx context.Context, state *State, log *telemetry.Logger) {
	in := compare.Input{
		Unrelaxed: state.Unrelaxed,
		Relaxed:   state.Relaxed,
		Element:   state.Params.MaterialFormula,
		Face:      state.Params.Face,
	}
	if state.Energies != nil {
		in.InitialEnergy = &state.Energies.Initial
		in.FinalEnergy = &state.Energies.Final
	}

	result, err := o.comparer.Compare(ctx, in)
	if err != nil {
		state.AddError(fmt.Sprintf("comparison failed: %v", err))
		log.WithError(err).Error("comparison failed")
		return
	}

	state.SetComparison(result)
	for _, w := range result.Warnings {
		state.AddWarning(w)
	}
	if !result.HasReference {
		state.AddWarning(fmt.Sprintf("no reference data for %s(%s)",
			state.Params.MaterialFormula, state.Params.Face))
	} else if result.Overall != nil {
		log.Infof("agreement with %s: %s", result.ReferenceSource, *result.Overall)
		if o.metrics != nil {
			o.metrics.RecordAgreement(string(*result.Overall))
		}
	}
}

// runSimulation dispatches to the registered simulator for a target.
// Missing simulators and simulation failures are degraded conditions.
func (o *Orchestrator) runSimulation(ctx context.Context, state *State, target microscopy.Target, log *telemetry.Logger) {
	state.AdvanceStage(StageMicroscopyRunning)

	sim, ok := o.simulators[target]
	if !ok {
		state.AddWarning(fmt.Sprintf("no simulator registered for %s", target))
		return
	}
	if err := sim.Run(ctx, state); err != nil {
		state.AddError(fmt.Sprintf("%s simulation failed: %v", target, err))
		log.WithError(err).Errorf("%s simulation failed", target)
	}
}

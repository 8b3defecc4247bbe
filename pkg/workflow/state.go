package workflow

import (
	"time"

	"github.com/microstack/microstack/pkg/compare"
	"github.com/microstack/microstack/pkg/llm"
	"github.com/microstack/microstack/pkg/microscopy"
	"github.com/microstack/microstack/pkg/structure"
)

// Stage is the lifecycle position of a request. Stages advance
// monotonically; a State is never rewound.
type Stage int

const (
	StageInit Stage = iota
	StageParsed
	StageStructureGenerated
	StageRelaxed
	StageMicroscopyChecked
	StageMicroscopyRunning
	StageTerminal
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageInit:
		return "init"
	case StageParsed:
		return "parsed"
	case StageStructureGenerated:
		return "structure_generated"
	case StageRelaxed:
		return "relaxed"
	case StageMicroscopyChecked:
		return "microscopy_checked"
	case StageMicroscopyRunning:
		return "microscopy_running"
	case StageTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Energies is the initial/final energy pair of a relaxation, in eV.
type Energies struct {
	Initial float64 `json:"initial"`
	Final   float64 `json:"final"`
}

// State is the mutable record of one request. It is owned exclusively by
// the orchestrator for the lifetime of the request; concurrent requests
// never share a State.
type State struct {
	// SessionID is the opaque request identifier, immutable once set.
	SessionID string `json:"session_id"`

	// Query is the original natural-language request.
	Query string `json:"query"`

	// Params is the parsed request, referenced read-only.
	Params *llm.ParsedQuery `json:"params,omitempty"`

	// Stage is the current lifecycle position.
	Stage Stage `json:"stage"`

	// Unrelaxed and Relaxed are immutable geometry snapshots. Unrelaxed is
	// set once generation succeeds; Relaxed only when relaxation ran.
	Unrelaxed *structure.Structure `json:"unrelaxed,omitempty"`
	Relaxed   *structure.Structure `json:"relaxed,omitempty"`

	// Energies is present only when relaxation ran.
	Energies *Energies `json:"energies,omitempty"`

	// Comparison is attached exactly once by the comparison step.
	Comparison *compare.Result `json:"comparison,omitempty"`

	// Routing flags, set exactly once by the router.
	MicroscopyRequested bool                 `json:"microscopy_requested"`
	MicroscopyType      microscopy.Technique `json:"microscopy_type,omitempty"`
	InteractivePause    bool                 `json:"interactive_pause"`

	// Errors and Warnings are append-only diagnostic trails; they are never
	// cleared within a request.
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	// FilePaths maps logical artifact names ("unrelaxed_xyz",
	// "relaxed_xyz", "report") to output locations written by the caller.
	FilePaths map[string]string `json:"file_paths,omitempty"`

	// StartedAt and CompletedAt bound the run.
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
}

// NewState creates a fresh State at StageInit.
func NewState(sessionID, query string) *State {
	return &State{
		SessionID: sessionID,
		Query:     query,
		Stage:     StageInit,
		FilePaths: make(map[string]string),
		StartedAt: time.Now().UTC(),
	}
}

// AdvanceStage moves the state forward. Regressions are ignored so callers
// can advance unconditionally without rewinding past progress.
func (s *State) AdvanceStage(stage Stage) {
	if stage > s.Stage {
		s.Stage = stage
	}
}

// AddError appends a diagnostic error. Errors do not halt progression by
// themselves.
func (s *State) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// AddWarning appends a diagnostic warning.
func (s *State) AddWarning(msg string) {
	s.Warnings = append(s.Warnings, msg)
}

// SetComparison attaches the comparison result. Only the first call takes
// effect; the result is immutable once attached.
func (s *State) SetComparison(result *compare.Result) {
	if s.Comparison == nil {
		s.Comparison = result
	}
}

// RecordFile records an artifact location under a logical name.
func (s *State) RecordFile(name, path string) {
	s.FilePaths[name] = path
}

// Structure returns the most refined geometry available: the relaxed
// snapshot when relaxation ran, otherwise the unrelaxed one. It is nil only
// before generation succeeded.
func (s *State) Structure() *structure.Structure {
	if s.Relaxed != nil {
		return s.Relaxed
	}
	return s.Unrelaxed
}

package relax

import (
	"context"

	"github.com/microstack/microstack/pkg/structure"
)

// Result is the output of one relaxation. Structure is a new snapshot with
// the same atom count and ordering as the input; energies are in eV.
type Result struct {
	Structure *structure.Structure

	InitialEnergy float64
	FinalEnergy   float64
}

// Engine relaxes a structure for at most the given number of steps. The
// input structure is never mutated. Implementations report failure through
// the error return; the orchestrator treats a relaxation error as a
// degraded, not fatal, condition.
type Engine interface {
	Relax(ctx context.Context, s *structure.Structure, steps int) (*Result, error)
}

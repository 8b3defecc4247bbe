package relax

import (
	"context"
	"fmt"
	"math"

	"github.com/microstack/microstack/pkg/structure"
)

// MorseEngine relaxes structures under a Morse pair potential with damped
// steepest descent. The equilibrium distance is derived from the element's
// nearest-neighbor spacing, so bulk-truncated slabs start close to a local
// minimum and converge in a handful of steps.
type MorseEngine struct {
	// WellDepth is the Morse D parameter in eV.
	WellDepth float64

	// Width is the Morse alpha parameter in 1/Angstrom.
	Width float64

	// StepSize scales the per-step displacement in Angstrom^2/eV.
	StepSize float64

	// MaxStep caps any single-atom displacement per step, in Angstrom.
	MaxStep float64

	// ForceTolerance stops the descent early once the largest force
	// component drops below it, in eV/Angstrom.
	ForceTolerance float64
}

// NewMorseEngine returns an engine with the default parameters.
func NewMorseEngine() *MorseEngine {
	return &MorseEngine{
		WellDepth:      0.4,
		Width:          1.4,
		StepSize:       0.05,
		MaxStep:        0.1,
		ForceTolerance: 0.01,
	}
}

// Relax implements Engine.
func (e *MorseEngine) Relax(ctx context.Context, s *structure.Structure, steps int) (*Result, error) {
	if s == nil || s.NumAtoms() == 0 {
		return nil, fmt.Errorf("relaxation requires a non-empty structure")
	}
	if steps <= 0 {
		return nil, fmt.Errorf("step count must be positive, got %d", steps)
	}

	r0 := equilibriumDistance(s)
	cutoff := 1.8 * r0

	out := s.Copy()
	initial := e.energy(out, r0, cutoff)

	for step := 0; step < steps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		forces := e.forces(out, r0, cutoff)
		if maxComponent(forces) < e.ForceTolerance {
			break
		}
		for i := range out.Atoms {
			dx := clamp(e.StepSize*forces[i][0], e.MaxStep)
			dy := clamp(e.StepSize*forces[i][1], e.MaxStep)
			dz := clamp(e.StepSize*forces[i][2], e.MaxStep)
			out.Atoms[i].X += dx
			out.Atoms[i].Y += dy
			out.Atoms[i].Z += dz
		}
	}

	final := e.energy(out, r0, cutoff)
	return &Result{
		Structure:     out,
		InitialEnergy: initial,
		FinalEnergy:   final,
	}, nil
}

// equilibriumDistance picks the Morse r0 from the first atom's element. For
// mixed-species structures this is a crude single-species approximation.
func equilibriumDistance(s *structure.Structure) float64 {
	a := structure.LatticeConstant(s.Atoms[0].Symbol)
	return structure.NearestNeighborSpacing(a)
}

// energy sums the Morse pair energy over all pairs within the cutoff.
func (e *MorseEngine) energy(s *structure.Structure, r0, cutoff float64) float64 {
	var total float64
	n := s.NumAtoms()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := s.Distance(i, j)
			if r > cutoff {
				continue
			}
			x := 1 - math.Exp(-e.Width*(r-r0))
			total += e.WellDepth * (x*x - 1)
		}
	}
	return total
}

// forces returns the negative energy gradient per atom.
func (e *MorseEngine) forces(s *structure.Structure, r0, cutoff float64) [][3]float64 {
	n := s.NumAtoms()
	forces := make([][3]float64, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := s.Distance(i, j)
			if r > cutoff || r == 0 {
				continue
			}
			exp := math.Exp(-e.Width * (r - r0))
			// dV/dr for V = D((1-exp)^2 - 1).
			dVdr := 2 * e.WellDepth * e.Width * exp * (1 - exp)
			scale := -dVdr / r
			dx := (s.Atoms[i].X - s.Atoms[j].X) * scale
			dy := (s.Atoms[i].Y - s.Atoms[j].Y) * scale
			dz := (s.Atoms[i].Z - s.Atoms[j].Z) * scale
			forces[i][0] += dx
			forces[i][1] += dy
			forces[i][2] += dz
			forces[j][0] -= dx
			forces[j][1] -= dy
			forces[j][2] -= dz
		}
	}
	return forces
}

func maxComponent(forces [][3]float64) float64 {
	var m float64
	for _, f := range forces {
		for _, c := range f {
			if v := math.Abs(c); v > m {
				m = v
			}
		}
	}
	return m
}

func clamp(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

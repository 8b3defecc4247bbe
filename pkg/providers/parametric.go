package providers

import (
	"context"
	"fmt"

	"github.com/microstack/microstack/pkg/llm"
	"github.com/microstack/microstack/pkg/structure"
)

// ParametricProvider builds slabs directly from the parsed parameters. It
// is fully deterministic and serves as the fallback when script synthesis
// fails or is unavailable.
type ParametricProvider struct{}

// Name implements Provider.
func (ParametricProvider) Name() string { return "parametric" }

// Generate implements Provider.
func (ParametricProvider) Generate(_ context.Context, req Request) (*structure.Structure, error) {
	if req.Params == nil {
		return nil, fmt.Errorf("parametric generation requires parsed parameters")
	}
	spec, err := specFromParams(req.Params)
	if err != nil {
		return nil, err
	}
	s, err := structure.BuildSurface(spec)
	if err != nil {
		return nil, fmt.Errorf("parametric build failed: %w", err)
	}
	return s, nil
}

// specFromParams maps a parsed request onto a surface build specification.
func specFromParams(p *llm.ParsedQuery) (structure.SurfaceSpec, error) {
	if p.MaterialFormula == "" {
		return structure.SurfaceSpec{}, fmt.Errorf("request has no material")
	}
	face := p.Face
	if face == "" {
		face = "111"
	}
	return structure.SurfaceSpec{
		Element: p.MaterialFormula,
		Face:    face,
		Size:    p.Size(),
		Vacuum:  p.VacuumThickness,
	}, nil
}

package llm

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ParsedQuery is the structured form of a user request. It is produced by a
// Parser and consumed read-only by the workflow core.
type ParsedQuery struct {
	// TaskType identifies the requested task ("surface" for structure
	// generation/relaxation, "microscopy" when a simulation was asked for).
	TaskType string `json:"task_type" validate:"required,oneof=surface microscopy"`

	// MaterialFormula is the chemical symbol or 2D formula (e.g., "Cu",
	// "MoS2", "C" for graphene).
	MaterialFormula string `json:"material_formula" validate:"required"`

	// Face is the surface identifier: Miller indices as a compact string
	// ("100", "111", "110") or a 2D face ("graphene", "2d").
	Face string `json:"face" validate:"required,oneof=100 111 110 graphene 2d"`

	// SupercellX, SupercellY are lateral repetitions; SupercellZ is the
	// layer count. Zero means "use the builder default".
	SupercellX int `json:"supercell_x" validate:"gte=0,lte=20"`
	SupercellY int `json:"supercell_y" validate:"gte=0,lte=20"`
	SupercellZ int `json:"supercell_z" validate:"gte=0,lte=20"`

	// VacuumThickness is the vacuum padding in Angstrom. Zero means default.
	VacuumThickness float64 `json:"vacuum_thickness" validate:"gte=0,lte=100"`

	// Relax requests geometry relaxation of the generated slab.
	Relax bool `json:"relax"`

	// MicroscopyType names the requested simulation technique ("STM",
	// "AFM", "IETS"), empty when none was requested.
	MicroscopyType string `json:"microscopy_type,omitempty"`

	// UseScript selects the script-synthesis structure provider as primary.
	UseScript bool `json:"use_script"`

	// Confidence is the parser's self-reported confidence in [0, 1].
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`

	// Ambiguities lists parts of the query the parser found ambiguous.
	Ambiguities []string `json:"ambiguities,omitempty"`
}

// Parser converts a raw query string into structured parameters.
type Parser interface {
	Parse(ctx context.Context, query string) (*ParsedQuery, error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the parsed query against its field constraints.
func (p *ParsedQuery) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid parsed query: %w", err)
	}
	return nil
}

// Size returns the supercell dimensions as an array suitable for the
// structure builders, zeros preserved so builder defaults apply.
func (p *ParsedQuery) Size() [3]int {
	return [3]int{p.SupercellX, p.SupercellY, p.SupercellZ}
}

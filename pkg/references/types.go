package references

import "context"

// SurfaceRecord holds curated relaxation reference data for a metal surface.
// Interlayer changes are percentages relative to the bulk-truncated spacing;
// negative values indicate contraction.
type SurfaceRecord struct {
	// Element is the chemical symbol.
	Element string `json:"element"`

	// Face is the surface identifier ("100", "111", "110").
	Face string `json:"face"`

	// D12Change, D23Change, D34Change are the reference interlayer spacing
	// changes in percent for the first three layer pairs.
	D12Change float64 `json:"d12_change"`
	D23Change float64 `json:"d23_change"`
	D34Change float64 `json:"d34_change"`

	// SurfaceEnergy is the reference surface energy in J/m^2.
	SurfaceEnergy float64 `json:"surface_energy"`

	// Source is the literature provenance string.
	Source string `json:"source"`

	// Method is the measurement or calculation method ("LEED", "DFT", ...).
	Method string `json:"method"`
}

// PairChange returns the reference change for a layer pair index (1 = d12).
// The second return value is false for pairs beyond the curated range.
func (r *SurfaceRecord) PairChange(pair int) (float64, bool) {
	switch pair {
	case 1:
		return r.D12Change, true
	case 2:
		return r.D23Change, true
	case 3:
		return r.D34Change, true
	default:
		return 0, false
	}
}

// TwoDRecord holds curated reference data for a 2D material.
type TwoDRecord struct {
	// Element is the chemical identifier ("C", "MoS2").
	Element string `json:"element"`

	// Face is the 2D face identifier ("graphene", "2d").
	Face string `json:"face"`

	// BondLength is the in-plane bond length in Angstrom.
	BondLength float64 `json:"bond_length"`

	// LatticeConstant is the 2D lattice constant in Angstrom.
	LatticeConstant float64 `json:"lattice_constant"`

	// LayerThickness is the sheet thickness in Angstrom (interlayer spacing
	// in the bulk stack for graphene, sandwich thickness for MX2).
	LayerThickness float64 `json:"layer_thickness"`

	// Source is the literature provenance string.
	Source string `json:"source"`

	// Method is the measurement or calculation method.
	Method string `json:"method"`
}

// Lookup is the read contract the comparison engine consumes. A miss is
// reported as (nil, nil): absence of reference data is an expected domain
// condition, not an error.
type Lookup interface {
	// Surface returns the metal-surface record for (element, face), or nil
	// when no curated entry exists.
	Surface(ctx context.Context, element, face string) (*SurfaceRecord, error)

	// TwoD returns the 2D-material record for (element, face), or nil when
	// no curated entry exists.
	TwoD(ctx context.Context, element, face string) (*TwoDRecord, error)
}

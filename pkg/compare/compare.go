package compare

import (
	"context"
	"fmt"
	"math"

	"github.com/microstack/microstack/pkg/references"
	"github.com/microstack/microstack/pkg/structure"
)

// Agreement is the qualitative verdict for how well a computed value matches
// its reference.
type Agreement string

const (
	AgreementExcellent Agreement = "excellent"
	AgreementGood      Agreement = "good"
	AgreementPoor      Agreement = "poor"
)

// rank orders verdicts from best to worst for the worst-of reduction.
func (a Agreement) rank() int {
	switch a {
	case AgreementExcellent:
		return 0
	case AgreementGood:
		return 1
	default:
		return 2
	}
}

// Tolerance bands for interlayer spacing changes, in absolute percentage
// points of deviation from the reference value. Experimental LEED error bars
// for d12 are typically a few tenths of a percent, so half a point counts as
// excellent and anything beyond two points as poor.
const (
	ExcellentBandPP = 0.5
	GoodBandPP      = 2.0
)

// Tolerance bands for 2D material comparisons, in percent deviation from the
// reference length.
const (
	ExcellentBand2DPct = 1.0
	GoodBand2DPct      = 3.0
)

// Input carries one comparison request. Unrelaxed is required; Relaxed is
// optional and, when present, must have the same atom count and ordering.
type Input struct {
	Unrelaxed *structure.Structure
	Relaxed   *structure.Structure

	Element string
	Face    string

	// InitialEnergy and FinalEnergy are set only when relaxation ran.
	InitialEnergy *float64
	FinalEnergy   *float64
}

// SpacingPair is the measured and graded spacing for one consecutive layer
// pair. Pair 1 is the surface pair (layers 1-2).
type SpacingPair struct {
	Pair int `json:"pair"`

	// UnrelaxedSpacing is the bulk-truncated spacing in Angstrom.
	UnrelaxedSpacing float64 `json:"unrelaxed_spacing"`

	// RelaxedSpacing and ChangePercent are nil when no relaxed geometry was
	// supplied.
	RelaxedSpacing *float64 `json:"relaxed_spacing,omitempty"`
	ChangePercent  *float64 `json:"change_percent,omitempty"`

	// Reference and Verdict are nil when no curated value covers this pair
	// or when no computed change exists to grade.
	Reference *float64   `json:"reference,omitempty"`
	Verdict   *Agreement `json:"verdict,omitempty"`
}

// TwoDComparison holds the measured versus reference geometry of a 2D sheet.
type TwoDComparison struct {
	// BondLength is the shortest interatomic distance in Angstrom.
	BondLength float64 `json:"bond_length"`

	// Thickness is the extent of the sheet along the surface normal.
	Thickness float64 `json:"thickness"`

	ReferenceBondLength *float64   `json:"reference_bond_length,omitempty"`
	ReferenceThickness  *float64   `json:"reference_thickness,omitempty"`
	BondVerdict         *Agreement `json:"bond_verdict,omitempty"`
}

// Result is the immutable output of one comparison. Reference-derived fields
// are nil when HasReference is false.
type Result struct {
	Element string `json:"element"`
	Face    string `json:"face"`

	// LayerCount is the number of layers found in the unrelaxed slab.
	LayerCount int `json:"layer_count"`

	// Pairs is nil when fewer than two layers were found.
	Pairs []SpacingPair `json:"pairs,omitempty"`

	// TwoD is set instead of Pairs for 2D materials.
	TwoD *TwoDComparison `json:"two_d,omitempty"`

	// MaxDisplacement and MeanDisplacement are nil when no relaxed geometry
	// was supplied.
	MaxDisplacement  *float64 `json:"max_displacement,omitempty"`
	MeanDisplacement *float64 `json:"mean_displacement,omitempty"`

	// EnergyChange and EnergyChangePerAtom are nil when relaxation did not
	// run.
	EnergyChange        *float64 `json:"energy_change,omitempty"`
	EnergyChangePerAtom *float64 `json:"energy_change_per_atom,omitempty"`

	HasReference    bool   `json:"has_reference"`
	ReferenceSource string `json:"reference_source,omitempty"`
	ReferenceMethod string `json:"reference_method,omitempty"`

	// Overall is the worst verdict across all graded values, nil when
	// nothing could be graded.
	Overall *Agreement `json:"overall,omitempty"`

	// Warnings records degraded-output conditions (too few layers, missing
	// reference pairs).
	Warnings []string `json:"warnings,omitempty"`
}

// Engine grades relaxation output against a reference store.
type Engine struct {
	refs references.Lookup
}

// NewEngine creates a comparison engine backed by the given reference store.
func NewEngine(refs references.Lookup) *Engine {
	return &Engine{refs: refs}
}

// Compare runs the full comparison. It returns an error only for contract
// violations (missing unrelaxed structure, atom mismatch); expected domain
// conditions such as missing reference data degrade the Result instead.
func (e *Engine) Compare(ctx context.Context, in Input) (*Result, error) {
	if in.Unrelaxed == nil {
		return nil, fmt.Errorf("comparison requires an unrelaxed structure")
	}
	if in.Relaxed != nil && in.Relaxed.NumAtoms() != in.Unrelaxed.NumAtoms() {
		return nil, fmt.Errorf("atom count mismatch: unrelaxed %d, relaxed %d",
			in.Unrelaxed.NumAtoms(), in.Relaxed.NumAtoms())
	}

	result := &Result{
		Element: in.Element,
		Face:    in.Face,
	}

	e.measureDisplacements(in, result)
	e.measureEnergy(in, result)

	var verdicts []Agreement
	var err error
	if in.Face == "graphene" || in.Face == "2d" {
		verdicts, err = e.compareTwoD(ctx, in, result)
	} else {
		verdicts, err = e.compareSurface(ctx, in, result)
	}
	if err != nil {
		return nil, err
	}

	if len(verdicts) > 0 {
		overall := verdicts[0]
		for _, v := range verdicts[1:] {
			if v.rank() > overall.rank() {
				overall = v
			}
		}
		result.Overall = &overall
	}
	return result, nil
}

func (e *Engine) measureDisplacements(in Input, result *Result) {
	if in.Relaxed == nil || in.Unrelaxed.NumAtoms() == 0 {
		return
	}
	var maxD, sum float64
	for i := 0; i < in.Unrelaxed.NumAtoms(); i++ {
		d := in.Relaxed.Displacement(in.Unrelaxed, i)
		if d > maxD {
			maxD = d
		}
		sum += d
	}
	mean := sum / float64(in.Unrelaxed.NumAtoms())
	result.MaxDisplacement = &maxD
	result.MeanDisplacement = &mean
}

func (e *Engine) measureEnergy(in Input, result *Result) {
	if in.InitialEnergy == nil || in.FinalEnergy == nil {
		return
	}
	change := *in.FinalEnergy - *in.InitialEnergy
	result.EnergyChange = &change
	if n := in.Unrelaxed.NumAtoms(); n > 0 {
		perAtom := change / float64(n)
		result.EnergyChangePerAtom = &perAtom
	}
}

// compareSurface runs the metal-slab path: layer extraction, interlayer
// spacing changes and grading against the curated surface record.
func (e *Engine) compareSurface(ctx context.Context, in Input, result *Result) ([]Agreement, error) {
	threshold := layerThreshold(in.Element)
	layers := ExtractLayers(in.Unrelaxed, threshold)
	result.LayerCount = len(layers)

	if len(layers) < 2 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("only %d layer(s) found, interlayer spacings unavailable", len(layers)))
	} else {
		axis := in.Unrelaxed.NormalAxis()
		for i := 0; i+1 < len(layers); i++ {
			pair := SpacingPair{
				Pair:             i + 1,
				UnrelaxedSpacing: layers[i].Coord - layers[i+1].Coord,
			}
			if in.Relaxed != nil {
				// Relaxed layer positions reuse the unrelaxed grouping so
				// the pairing stays well defined even when relaxation
				// shifts atoms across the clustering threshold.
				upper := meanCoord(in.Relaxed, axis, layers[i].Atoms)
				lower := meanCoord(in.Relaxed, axis, layers[i+1].Atoms)
				spacing := upper - lower
				pair.RelaxedSpacing = &spacing
				if pair.UnrelaxedSpacing != 0 {
					change := 100 * (spacing - pair.UnrelaxedSpacing) / pair.UnrelaxedSpacing
					pair.ChangePercent = &change
				}
			}
			result.Pairs = append(result.Pairs, pair)
		}
	}

	rec, err := e.refs.Surface(ctx, in.Element, in.Face)
	if err != nil {
		return nil, fmt.Errorf("reference lookup failed: %w", err)
	}
	if rec == nil {
		return nil, nil
	}

	result.HasReference = true
	result.ReferenceSource = rec.Source
	result.ReferenceMethod = rec.Method

	var verdicts []Agreement
	for i := range result.Pairs {
		pair := &result.Pairs[i]
		ref, ok := rec.PairChange(pair.Pair)
		if !ok {
			continue
		}
		refVal := ref
		pair.Reference = &refVal
		if pair.ChangePercent == nil {
			continue
		}
		v := gradeDelta(math.Abs(*pair.ChangePercent-refVal), ExcellentBandPP, GoodBandPP)
		pair.Verdict = &v
		verdicts = append(verdicts, v)
	}
	return verdicts, nil
}

// compareTwoD runs the 2D-material path: bond length and sheet thickness
// against the curated 2D record.
func (e *Engine) compareTwoD(ctx context.Context, in Input, result *Result) ([]Agreement, error) {
	s := in.Unrelaxed
	if in.Relaxed != nil {
		s = in.Relaxed
	}
	result.LayerCount = len(ExtractLayers(in.Unrelaxed, layerThreshold(in.Element)))

	twoD := &TwoDComparison{
		BondLength: shortestBond(s),
		Thickness:  normalExtent(s),
	}
	result.TwoD = twoD

	rec, err := e.refs.TwoD(ctx, in.Element, in.Face)
	if err != nil {
		return nil, fmt.Errorf("reference lookup failed: %w", err)
	}
	if rec == nil {
		return nil, nil
	}

	result.HasReference = true
	result.ReferenceSource = rec.Source
	result.ReferenceMethod = rec.Method

	refBond := rec.BondLength
	refThickness := rec.LayerThickness
	twoD.ReferenceBondLength = &refBond
	twoD.ReferenceThickness = &refThickness

	if twoD.BondLength <= 0 || refBond <= 0 {
		result.Warnings = append(result.Warnings, "bond length unavailable, agreement not graded")
		return nil, nil
	}
	deviation := 100 * math.Abs(twoD.BondLength-refBond) / refBond
	v := gradeDelta(deviation, ExcellentBand2DPct, GoodBand2DPct)
	twoD.BondVerdict = &v
	return []Agreement{v}, nil
}

// gradeDelta maps an absolute deviation onto the verdict tiers.
func gradeDelta(delta, excellent, good float64) Agreement {
	switch {
	case delta <= excellent:
		return AgreementExcellent
	case delta <= good:
		return AgreementGood
	default:
		return AgreementPoor
	}
}

func meanCoord(s *structure.Structure, axis int, atoms []int) float64 {
	var sum float64
	for _, i := range atoms {
		sum += s.Coord(i, axis)
	}
	return sum / float64(len(atoms))
}

// shortestBond returns the minimum interatomic distance, 0 for fewer than
// two atoms. Quadratic, acceptable for the sheet sizes the pipeline builds.
func shortestBond(s *structure.Structure) float64 {
	n := s.NumAtoms()
	if n < 2 {
		return 0
	}
	best := math.Inf(1)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if d := s.Distance(i, j); d < best {
				best = d
			}
		}
	}
	return best
}

// normalExtent returns the spread of atoms along the surface normal.
func normalExtent(s *structure.Structure) float64 {
	n := s.NumAtoms()
	if n == 0 {
		return 0
	}
	axis := s.NormalAxis()
	minC, maxC := s.Coord(0, axis), s.Coord(0, axis)
	for i := 1; i < n; i++ {
		c := s.Coord(i, axis)
		if c < minC {
			minC = c
		}
		if c > maxC {
			maxC = c
		}
	}
	return maxC - minC
}

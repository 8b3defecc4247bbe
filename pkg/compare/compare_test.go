package compare

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/microstack/microstack/pkg/references"
	"github.com/microstack/microstack/pkg/structure"
)

// slab builds a synthetic test slab with the given layer z positions and
// atoms per layer. Atoms are spread in x so every layer has distinct sites.
func slab(element string, layerZ []float64, perLayer int) *structure.Structure {
	s := &structure.Structure{
		Cell: [3][3]float64{{10, 0, 0}, {0, 10, 0}, {0, 0, 30}},
		PBC:  [3]bool{true, true, false},
	}
	for _, z := range layerZ {
		for i := 0; i < perLayer; i++ {
			s.Atoms = append(s.Atoms, structure.Atom{
				Symbol: element, X: float64(i) * 2.5, Y: 0, Z: z,
			})
		}
	}
	return s
}

func TestExtractLayers(t *testing.T) {
	// Cu: a = 3.615, d100 = a/2.
	d := 3.615 / 2
	s := slab("Cu", []float64{3 * d, 2 * d, d, 0}, 4)

	layers := ExtractLayers(s, layerThreshold("Cu"))
	if len(layers) != 4 {
		t.Fatalf("layer count = %d, want 4", len(layers))
	}
	// Surface first.
	if layers[0].Coord <= layers[3].Coord {
		t.Errorf("layers not ordered surface-inward: %f .. %f", layers[0].Coord, layers[3].Coord)
	}
	for i, l := range layers {
		if l.Index != i+1 {
			t.Errorf("layer %d has index %d", i, l.Index)
		}
		if len(l.Atoms) != 4 {
			t.Errorf("layer %d has %d atoms, want 4", i+1, len(l.Atoms))
		}
	}
}

func TestExtractLayersOrderIndependent(t *testing.T) {
	d := 3.615 / 2
	s := slab("Cu", []float64{3 * d, 2 * d, d, 0}, 4)

	// Reverse the atom order and compare layer geometry.
	shuffled := s.Copy()
	for i, j := 0, len(shuffled.Atoms)-1; i < j; i, j = i+1, j-1 {
		shuffled.Atoms[i], shuffled.Atoms[j] = shuffled.Atoms[j], shuffled.Atoms[i]
	}

	a := ExtractLayers(s, layerThreshold("Cu"))
	b := ExtractLayers(shuffled, layerThreshold("Cu"))
	if len(a) != len(b) {
		t.Fatalf("layer counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if math.Abs(a[i].Coord-b[i].Coord) > 1e-12 {
			t.Errorf("layer %d coord %f != %f after permutation", i+1, a[i].Coord, b[i].Coord)
		}
		if len(a[i].Atoms) != len(b[i].Atoms) {
			t.Errorf("layer %d sizes differ after permutation", i+1)
		}
	}
}

func TestExtractLayersJitterWithinThreshold(t *testing.T) {
	// Atoms rumpled by less than the threshold still form one layer.
	// Three atoms per layer: 0-2 top, 3-5 bottom.
	d := 3.615 / 2
	s := slab("Cu", []float64{d, 0}, 3)
	s.Atoms[0].Z += 0.1
	s.Atoms[5].Z -= 0.1

	layers := ExtractLayers(s, layerThreshold("Cu"))
	if len(layers) != 2 {
		t.Fatalf("layer count = %d, want 2", len(layers))
	}
	for i, l := range layers {
		if len(l.Atoms) != 3 {
			t.Errorf("layer %d has %d atoms, want 3", i+1, len(l.Atoms))
		}
	}
}

// relaxedCu100 builds the relaxed counterpart of a 4-layer Cu(100) slab with
// the given percent changes applied to the three interlayer spacings.
func relaxedCu100(unrelaxed *structure.Structure, d float64, changes [3]float64) *structure.Structure {
	d12 := d * (1 + changes[0]/100)
	d23 := d * (1 + changes[1]/100)
	d34 := d * (1 + changes[2]/100)
	zs := []float64{d34 + d23 + d12, d34 + d23, d34, 0}

	relaxed := unrelaxed.Copy()
	perLayer := len(unrelaxed.Atoms) / 4
	for layer := 0; layer < 4; layer++ {
		for i := 0; i < perLayer; i++ {
			relaxed.Atoms[layer*perLayer+i].Z = zs[layer]
		}
	}
	return relaxed
}

func TestCompareCu100Excellent(t *testing.T) {
	d := 3.615 / 2
	unrelaxed := slab("Cu", []float64{3 * d, 2 * d, d, 0}, 4)
	// Match the Lindgren LEED values: d12 -2.1%, d23 +0.8%, d34 0.0%.
	relaxed := relaxedCu100(unrelaxed, d, [3]float64{-2.1, 0.8, 0.0})

	initial, final := -10.0, -10.5
	engine := NewEngine(references.NewMemoryStore())
	result, err := engine.Compare(context.Background(), Input{
		Unrelaxed: unrelaxed, Relaxed: relaxed,
		Element: "Cu", Face: "100",
		InitialEnergy: &initial, FinalEnergy: &final,
	})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if !result.HasReference {
		t.Fatal("expected reference data for Cu(100)")
	}
	if result.LayerCount != 4 {
		t.Errorf("layer count = %d, want 4", result.LayerCount)
	}
	if len(result.Pairs) != 3 {
		t.Fatalf("pair count = %d, want 3", len(result.Pairs))
	}

	p := result.Pairs[0]
	if p.ChangePercent == nil || math.Abs(*p.ChangePercent-(-2.1)) > 1e-6 {
		t.Errorf("d12 change = %v, want -2.1", p.ChangePercent)
	}
	if p.Reference == nil || *p.Reference != -2.1 {
		t.Errorf("d12 reference = %v, want -2.1", p.Reference)
	}

	if result.Overall == nil || *result.Overall != AgreementExcellent {
		t.Errorf("overall = %v, want excellent", result.Overall)
	}
	if result.EnergyChange == nil || math.Abs(*result.EnergyChange-(-0.5)) > 1e-12 {
		t.Errorf("energy change = %v, want -0.5", result.EnergyChange)
	}
	if result.MaxDisplacement == nil || *result.MaxDisplacement == 0 {
		t.Errorf("max displacement = %v, want nonzero", result.MaxDisplacement)
	}
}

func TestCompareWorstOfReduction(t *testing.T) {
	d := 3.615 / 2
	unrelaxed := slab("Cu", []float64{3 * d, 2 * d, d, 0}, 4)
	// d12 matches perfectly but d23 is 5 points off the +0.8 reference.
	relaxed := relaxedCu100(unrelaxed, d, [3]float64{-2.1, 5.8, 0.0})

	engine := NewEngine(references.NewMemoryStore())
	result, err := engine.Compare(context.Background(), Input{
		Unrelaxed: unrelaxed, Relaxed: relaxed, Element: "Cu", Face: "100",
	})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if result.Overall == nil || *result.Overall != AgreementPoor {
		t.Errorf("overall = %v, want poor from worst pair", result.Overall)
	}
	if v := result.Pairs[0].Verdict; v == nil || *v != AgreementExcellent {
		t.Errorf("d12 verdict = %v, want excellent", v)
	}
	if v := result.Pairs[1].Verdict; v == nil || *v != AgreementPoor {
		t.Errorf("d23 verdict = %v, want poor", v)
	}
}

func TestCompareNoReference(t *testing.T) {
	d := 4.050 / 2
	unrelaxed := slab("Al", []float64{d, 0}, 4)
	relaxed := unrelaxed.Copy()

	engine := NewEngine(references.NewMemoryStore())
	result, err := engine.Compare(context.Background(), Input{
		Unrelaxed: unrelaxed, Relaxed: relaxed, Element: "Al", Face: "100",
	})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if result.HasReference {
		t.Error("expected no reference data for Al(100)")
	}
	if result.Overall != nil {
		t.Errorf("overall = %v, want nil without reference", result.Overall)
	}
	if result.ReferenceSource != "" {
		t.Errorf("reference source = %q, want empty", result.ReferenceSource)
	}
	for _, p := range result.Pairs {
		if p.Reference != nil || p.Verdict != nil {
			t.Errorf("pair %d carries reference fields without reference data", p.Pair)
		}
	}
}

func TestCompareWithoutRelaxation(t *testing.T) {
	d := 3.615 / 2
	unrelaxed := slab("Cu", []float64{3 * d, 2 * d, d, 0}, 4)

	engine := NewEngine(references.NewMemoryStore())
	result, err := engine.Compare(context.Background(), Input{
		Unrelaxed: unrelaxed, Element: "Cu", Face: "100",
	})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if result.MaxDisplacement != nil || result.MeanDisplacement != nil {
		t.Error("displacement metrics should be absent without a relaxed structure")
	}
	if result.EnergyChange != nil {
		t.Error("energy change should be absent without energies")
	}
	// Reference values are still attached, but nothing can be graded.
	if !result.HasReference {
		t.Error("expected reference data for Cu(100)")
	}
	if result.Overall != nil {
		t.Errorf("overall = %v, want nil without computed changes", result.Overall)
	}
	for _, p := range result.Pairs {
		if p.ChangePercent != nil || p.RelaxedSpacing != nil {
			t.Errorf("pair %d carries relaxed fields without a relaxed structure", p.Pair)
		}
	}
}

func TestCompareTooFewLayers(t *testing.T) {
	unrelaxed := slab("Cu", []float64{0}, 4)
	relaxed := unrelaxed.Copy()

	engine := NewEngine(references.NewMemoryStore())
	result, err := engine.Compare(context.Background(), Input{
		Unrelaxed: unrelaxed, Relaxed: relaxed, Element: "Cu", Face: "100",
	})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if result.LayerCount != 1 {
		t.Errorf("layer count = %d, want 1", result.LayerCount)
	}
	if result.Pairs != nil {
		t.Errorf("pairs = %v, want nil for a single-layer structure", result.Pairs)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a too-few-layers warning")
	}
	if result.Overall != nil {
		t.Errorf("overall = %v, want nil with no graded pairs", result.Overall)
	}
}

func TestCompareIdempotent(t *testing.T) {
	d := 3.615 / 2
	unrelaxed := slab("Cu", []float64{3 * d, 2 * d, d, 0}, 4)
	relaxed := relaxedCu100(unrelaxed, d, [3]float64{-2.1, 0.8, 0.0})

	engine := NewEngine(references.NewMemoryStore())
	in := Input{Unrelaxed: unrelaxed, Relaxed: relaxed, Element: "Cu", Face: "100"}

	first, err := engine.Compare(context.Background(), in)
	if err != nil {
		t.Fatalf("first Compare failed: %v", err)
	}
	second, err := engine.Compare(context.Background(), in)
	if err != nil {
		t.Fatalf("second Compare failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different results")
	}
}

func TestCompareGraphene(t *testing.T) {
	sheet, err := structure.BuildSurface(structure.SurfaceSpec{
		Element: "C", Face: "graphene", Size: [3]int{2, 2, 1},
	})
	if err != nil {
		t.Fatalf("BuildSurface failed: %v", err)
	}

	engine := NewEngine(references.NewMemoryStore())
	result, err := engine.Compare(context.Background(), Input{
		Unrelaxed: sheet, Relaxed: sheet.Copy(), Element: "C", Face: "graphene",
	})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if result.TwoD == nil {
		t.Fatal("expected a 2D comparison")
	}
	if math.Abs(result.TwoD.BondLength-1.42) > 1e-6 {
		t.Errorf("bond length = %f, want 1.42", result.TwoD.BondLength)
	}
	if !result.HasReference {
		t.Fatal("expected graphene reference data")
	}
	if result.Overall == nil || *result.Overall != AgreementExcellent {
		t.Errorf("overall = %v, want excellent for ideal geometry", result.Overall)
	}
}

func TestCompareContractViolations(t *testing.T) {
	engine := NewEngine(references.NewMemoryStore())

	if _, err := engine.Compare(context.Background(), Input{Element: "Cu", Face: "100"}); err == nil {
		t.Error("expected error for missing unrelaxed structure")
	}

	d := 3.615 / 2
	unrelaxed := slab("Cu", []float64{d, 0}, 4)
	mismatched := slab("Cu", []float64{d, 0}, 3)
	_, err := engine.Compare(context.Background(), Input{
		Unrelaxed: unrelaxed, Relaxed: mismatched, Element: "Cu", Face: "100",
	})
	if err == nil {
		t.Error("expected error for atom count mismatch")
	}
}

package relax

import (
	"context"
	"testing"

	"github.com/microstack/microstack/pkg/structure"
)

func buildSlab(t *testing.T) *structure.Structure {
	t.Helper()
	s, err := structure.BuildSurface(structure.SurfaceSpec{
		Element: "Cu", Face: "100", Size: [3]int{2, 2, 4},
	})
	if err != nil {
		t.Fatalf("BuildSurface failed: %v", err)
	}
	return s
}

func TestMorseRelaxLowersEnergy(t *testing.T) {
	s := buildSlab(t)
	engine := NewMorseEngine()

	result, err := engine.Relax(context.Background(), s, 100)
	if err != nil {
		t.Fatalf("Relax failed: %v", err)
	}

	if result.Structure.NumAtoms() != s.NumAtoms() {
		t.Errorf("atom count changed: %d -> %d", s.NumAtoms(), result.Structure.NumAtoms())
	}
	if result.FinalEnergy > result.InitialEnergy {
		t.Errorf("energy increased: %f -> %f", result.InitialEnergy, result.FinalEnergy)
	}
}

func TestMorseRelaxDoesNotMutateInput(t *testing.T) {
	s := buildSlab(t)
	before := s.Copy()

	if _, err := NewMorseEngine().Relax(context.Background(), s, 50); err != nil {
		t.Fatalf("Relax failed: %v", err)
	}
	for i := range s.Atoms {
		if s.Atoms[i] != before.Atoms[i] {
			t.Fatalf("input atom %d mutated", i)
		}
	}
}

func TestMorseRelaxDeterministic(t *testing.T) {
	s := buildSlab(t)
	engine := NewMorseEngine()

	a, err := engine.Relax(context.Background(), s, 50)
	if err != nil {
		t.Fatalf("first Relax failed: %v", err)
	}
	b, err := engine.Relax(context.Background(), s, 50)
	if err != nil {
		t.Fatalf("second Relax failed: %v", err)
	}
	if a.FinalEnergy != b.FinalEnergy {
		t.Errorf("final energies differ: %f vs %f", a.FinalEnergy, b.FinalEnergy)
	}
	for i := range a.Structure.Atoms {
		if a.Structure.Atoms[i] != b.Structure.Atoms[i] {
			t.Fatalf("atom %d differs between identical runs", i)
		}
	}
}

func TestMorseRelaxInvalidInput(t *testing.T) {
	engine := NewMorseEngine()
	ctx := context.Background()

	if _, err := engine.Relax(ctx, nil, 100); err == nil {
		t.Error("expected error for nil structure")
	}
	if _, err := engine.Relax(ctx, &structure.Structure{}, 100); err == nil {
		t.Error("expected error for empty structure")
	}
	if _, err := engine.Relax(ctx, buildSlab(t), 0); err == nil {
		t.Error("expected error for zero steps")
	}
}

func TestMorseRelaxHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewMorseEngine().Relax(ctx, buildSlab(t), 100); err == nil {
		t.Error("expected error from canceled context")
	}
}

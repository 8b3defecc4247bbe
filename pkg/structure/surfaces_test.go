package structure

import (
	"math"
	"strings"
	"testing"
)

func TestBuildSurfaceFCC100(t *testing.T) {
	s, err := BuildSurface(SurfaceSpec{Element: "Cu", Face: "100", Size: [3]int{3, 3, 4}, Vacuum: 10})
	if err != nil {
		t.Fatalf("BuildSurface failed: %v", err)
	}

	if got, want := s.NumAtoms(), 36; got != want {
		t.Errorf("atom count = %d, want %d", got, want)
	}
	if got, want := s.Formula(), "Cu36"; got != want {
		t.Errorf("formula = %s, want %s", got, want)
	}
	if s.PBC != [3]bool{true, true, false} {
		t.Errorf("pbc = %v, want lateral-only periodicity", s.PBC)
	}

	// Interlayer spacing for fcc(100) is a/2.
	a := LatticeConstant("Cu")
	zs := distinctSorted(s, 2)
	if len(zs) != 4 {
		t.Fatalf("distinct z planes = %d, want 4", len(zs))
	}
	for i := 1; i < len(zs); i++ {
		if d := zs[i] - zs[i-1]; math.Abs(d-a/2) > 1e-9 {
			t.Errorf("layer spacing %d = %f, want %f", i, d, a/2)
		}
	}
}

func TestBuildSurfaceSpacings(t *testing.T) {
	a := LatticeConstant("Pt")
	tests := []struct {
		face    string
		spacing float64
	}{
		{"100", a / 2},
		{"111", a / math.Sqrt(3)},
		{"110", a / (2 * math.Sqrt2)},
	}

	for _, tt := range tests {
		t.Run(tt.face, func(t *testing.T) {
			s, err := BuildSurface(SurfaceSpec{Element: "Pt", Face: tt.face, Size: [3]int{2, 2, 3}})
			if err != nil {
				t.Fatalf("BuildSurface failed: %v", err)
			}
			zs := distinctSorted(s, 2)
			if len(zs) != 3 {
				t.Fatalf("distinct z planes = %d, want 3", len(zs))
			}
			for i := 1; i < len(zs); i++ {
				if d := zs[i] - zs[i-1]; math.Abs(d-tt.spacing) > 1e-9 {
					t.Errorf("spacing = %f, want %f", d, tt.spacing)
				}
			}
		})
	}
}

func TestBuildSurfaceGraphene(t *testing.T) {
	s, err := BuildSurface(SurfaceSpec{Element: "C", Face: "graphene", Size: [3]int{2, 2, 1}, Vacuum: 15})
	if err != nil {
		t.Fatalf("BuildSurface failed: %v", err)
	}
	if got, want := s.NumAtoms(), 8; got != want {
		t.Errorf("atom count = %d, want %d", got, want)
	}
	// All atoms in a single plane.
	if zs := distinctSorted(s, 2); len(zs) != 1 {
		t.Errorf("graphene should be flat, got %d planes", len(zs))
	}
	// Basis atoms are one bond length apart.
	if d := s.Distance(0, 1); math.Abs(d-grapheneCC) > 1e-9 {
		t.Errorf("C-C bond = %f, want %f", d, grapheneCC)
	}
}

func TestBuildSurfaceMX2(t *testing.T) {
	s, err := BuildSurface(SurfaceSpec{Element: "MoS2", Face: "2d", Size: [3]int{2, 2, 1}})
	if err != nil {
		t.Fatalf("BuildSurface failed: %v", err)
	}
	if got, want := s.Formula(), "Mo4S8"; got != want {
		t.Errorf("formula = %s, want %s", got, want)
	}
	if zs := distinctSorted(s, 2); len(zs) != 3 {
		t.Errorf("MX2 sandwich should have 3 planes, got %d", len(zs))
	}
}

func TestBuildSurfaceUnsupportedFace(t *testing.T) {
	_, err := BuildSurface(SurfaceSpec{Element: "Cu", Face: "211"})
	if err == nil {
		t.Fatal("expected error for unsupported face")
	}
	if !strings.Contains(err.Error(), "unsupported face") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBuildSurfaceDefaults(t *testing.T) {
	s, err := BuildSurface(SurfaceSpec{Element: "Au", Face: "111"})
	if err != nil {
		t.Fatalf("BuildSurface failed: %v", err)
	}
	// Defaults: 3x3x4.
	if got, want := s.NumAtoms(), 36; got != want {
		t.Errorf("atom count = %d, want %d", got, want)
	}
}

// distinctSorted returns the distinct coordinate planes along an axis,
// ascending, merging values within 1e-6.
func distinctSorted(s *Structure, axis int) []float64 {
	var planes []float64
	for i := range s.Atoms {
		c := s.Coord(i, axis)
		found := false
		for _, p := range planes {
			if math.Abs(p-c) < 1e-6 {
				found = true
				break
			}
		}
		if !found {
			planes = append(planes, c)
		}
	}
	for i := 1; i < len(planes); i++ {
		for j := i; j > 0 && planes[j] < planes[j-1]; j-- {
			planes[j], planes[j-1] = planes[j-1], planes[j]
		}
	}
	return planes
}

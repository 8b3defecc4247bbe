package structure

import (
	"fmt"
	"math"
	"strings"
)

// SupportedFaces lists the surface identifiers the parametric builders accept.
var SupportedFaces = []string{"100", "111", "110", "graphene", "2d"}

// twoDFormulas lists the transition-metal dichalcogenides the 2D builder
// knows how to assemble.
var twoDFormulas = map[string][2]string{
	"MoS2":  {"Mo", "S"},
	"WS2":   {"W", "S"},
	"MoSe2": {"Mo", "Se"},
	"WSe2":  {"W", "Se"},
}

// SurfaceSpec describes a parametric slab to build.
type SurfaceSpec struct {
	// Element is the chemical symbol, or a 2D formula such as "MoS2".
	Element string

	// Face is the surface identifier ("100", "111", "110", "graphene", "2d").
	Face string

	// Size gives lateral repetitions (x, y) and layer count (z).
	Size [3]int

	// Vacuum is the padding above and below the slab in Angstrom.
	Vacuum float64

	// LatticeConstant overrides the curated bulk value when positive.
	LatticeConstant float64
}

// applyDefaults fills zero-valued fields with the conventional defaults used
// across the pipeline: a 3x3 lateral cell, 4 layers, 10 A vacuum.
func (spec *SurfaceSpec) applyDefaults() {
	if spec.Size[0] <= 0 {
		spec.Size[0] = 3
	}
	if spec.Size[1] <= 0 {
		spec.Size[1] = 3
	}
	if spec.Size[2] <= 0 {
		spec.Size[2] = 4
	}
	if spec.Vacuum <= 0 {
		spec.Vacuum = 10.0
	}
	if spec.LatticeConstant <= 0 {
		spec.LatticeConstant = LatticeConstant(spec.Element)
	}
}

// BuildSurface constructs a slab for the given spec. Faces "100", "111" and
// "110" produce fcc slabs; "graphene" produces a graphene sheet; "2d"
// produces either graphene (for C) or an MX2 monolayer.
func BuildSurface(spec SurfaceSpec) (*Structure, error) {
	spec.applyDefaults()

	face := strings.ToLower(spec.Face)
	if face == "graphene" || (spec.Element == "C" && face == "2d") {
		return buildGraphene(spec.Size[0], spec.Size[1], spec.Vacuum), nil
	}
	if face == "2d" {
		if _, ok := twoDFormulas[spec.Element]; ok {
			return buildMX2(spec.Element, spec.Size[0], spec.Size[1], spec.Vacuum)
		}
		return nil, fmt.Errorf("unsupported 2D material: %s", spec.Element)
	}

	switch face {
	case "100":
		return buildFCC100(spec), nil
	case "111":
		return buildFCC111(spec), nil
	case "110":
		return buildFCC110(spec), nil
	default:
		return nil, fmt.Errorf("unsupported face: %q (choose from %s)",
			spec.Face, strings.Join(SupportedFaces, ", "))
	}
}

// buildFCC100 builds an fcc(100) slab: square surface lattice with spacing
// a/sqrt(2), interlayer spacing a/2, alternate layers shifted by half a
// surface cell in both lateral directions.
func buildFCC100(spec SurfaceSpec) *Structure {
	a := spec.LatticeConstant
	d := a / math.Sqrt2 // lateral spacing
	dz := a / 2         // interlayer spacing

	nx, ny, nz := spec.Size[0], spec.Size[1], spec.Size[2]
	s := newSlab(float64(nx)*d, 0, float64(ny)*d, float64(nz-1)*dz, spec.Vacuum)

	for layer := 0; layer < nz; layer++ {
		// Surface layer first: layer 0 is the topmost plane.
		z := spec.Vacuum + float64(nz-1-layer)*dz
		var ox, oy float64
		if layer%2 == 1 {
			ox, oy = d/2, d/2
		}
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				s.Atoms = append(s.Atoms, Atom{
					Symbol: spec.Element,
					X:      float64(i)*d + ox,
					Y:      float64(j)*d + oy,
					Z:      z,
				})
			}
		}
	}
	return s
}

// buildFCC111 builds an fcc(111) slab: hexagonal surface lattice with
// nearest-neighbor spacing a/sqrt(2), ABC stacking, interlayer spacing
// a/sqrt(3).
func buildFCC111(spec SurfaceSpec) *Structure {
	a := spec.LatticeConstant
	d := a / math.Sqrt2
	dz := a / math.Sqrt(3)

	nx, ny, nz := spec.Size[0], spec.Size[1], spec.Size[2]
	// Hexagonal cell: v1 = (d, 0), v2 = (d/2, d*sqrt(3)/2).
	s := newSlab(float64(nx)*d, float64(ny)*d/2, float64(ny)*d*math.Sqrt(3)/2,
		float64(nz-1)*dz, spec.Vacuum)

	for layer := 0; layer < nz; layer++ {
		z := spec.Vacuum + float64(nz-1-layer)*dz
		// ABC stacking: each deeper layer shifts by (v1+v2)/3.
		shift := float64(layer % 3)
		sx := shift * (d + d/2) / 3
		sy := shift * (d * math.Sqrt(3) / 2) / 3
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				s.Atoms = append(s.Atoms, Atom{
					Symbol: spec.Element,
					X:      float64(i)*d + float64(j)*d/2 + sx,
					Y:      float64(j)*d*math.Sqrt(3)/2 + sy,
					Z:      z,
				})
			}
		}
	}
	return s
}

// buildFCC110 builds an fcc(110) slab: rectangular surface cell
// (a/sqrt(2) x a), interlayer spacing a/(2*sqrt(2)), alternate layers
// shifted by half the cell in both lateral directions.
func buildFCC110(spec SurfaceSpec) *Structure {
	a := spec.LatticeConstant
	dRow := a / math.Sqrt2 // spacing along close-packed rows
	dz := a / (2 * math.Sqrt2)

	nx, ny, nz := spec.Size[0], spec.Size[1], spec.Size[2]
	s := newSlab(float64(nx)*dRow, 0, float64(ny)*a, float64(nz-1)*dz, spec.Vacuum)

	for layer := 0; layer < nz; layer++ {
		z := spec.Vacuum + float64(nz-1-layer)*dz
		var ox, oy float64
		if layer%2 == 1 {
			ox, oy = dRow/2, a/2
		}
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				s.Atoms = append(s.Atoms, Atom{
					Symbol: spec.Element,
					X:      float64(i)*dRow + ox,
					Y:      float64(j)*a + oy,
					Z:      z,
				})
			}
		}
	}
	return s
}

// grapheneCC is the C-C bond length in Angstrom.
const grapheneCC = 1.42

// buildGraphene builds a flat graphene sheet with the two-atom honeycomb
// basis, periodic laterally.
func buildGraphene(nx, ny int, vacuum float64) *Structure {
	cc := grapheneCC
	a := cc * math.Sqrt(3) // lattice constant 2.46

	s := newSlab(float64(nx)*a, float64(ny)*a/2, float64(ny)*a*math.Sqrt(3)/2, 0, vacuum)

	z := vacuum
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			ox := float64(i)*a + float64(j)*a/2
			oy := float64(j) * a * math.Sqrt(3) / 2
			s.Atoms = append(s.Atoms,
				Atom{Symbol: "C", X: ox, Y: oy, Z: z},
				Atom{Symbol: "C", X: ox + a/2, Y: oy + a/(2*math.Sqrt(3)), Z: z},
			)
		}
	}
	return s
}

// buildMX2 builds a 2H transition-metal dichalcogenide monolayer: a metal
// plane sandwiched between two chalcogen planes.
func buildMX2(formula string, nx, ny int, vacuum float64) (*Structure, error) {
	pair, ok := twoDFormulas[formula]
	if !ok {
		return nil, fmt.Errorf("unsupported 2D material: %s", formula)
	}
	metal, chalc := pair[0], pair[1]

	// Lattice constant and sandwich thickness for the 2H polytype.
	const a = 3.16
	const thickness = 3.19

	s := newSlab(float64(nx)*a, float64(ny)*a/2, float64(ny)*a*math.Sqrt(3)/2,
		thickness, vacuum)

	zMid := vacuum + thickness/2
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			ox := float64(i)*a + float64(j)*a/2
			oy := float64(j) * a * math.Sqrt(3) / 2
			// Chalcogens sit above and below the metal plane at the
			// hollow-site offset.
			hx := ox + a/2
			hy := oy + a/(2*math.Sqrt(3))
			s.Atoms = append(s.Atoms,
				Atom{Symbol: metal, X: ox, Y: oy, Z: zMid},
				Atom{Symbol: chalc, X: hx, Y: hy, Z: zMid + thickness/2},
				Atom{Symbol: chalc, X: hx, Y: hy, Z: zMid - thickness/2},
			)
		}
	}
	return s, nil
}

// newSlab builds an empty slab structure with an orthogonal-or-sheared cell:
// v1 = (lx, 0, 0), v2 = (shearX, ly, 0), v3 = (0, 0, height + 2*vacuum).
// Periodic laterally, open along the normal.
func newSlab(lx, shearX, ly, height, vacuum float64) *Structure {
	return &Structure{
		Cell: [3][3]float64{
			{lx, 0, 0},
			{shearX, ly, 0},
			{0, 0, height + 2*vacuum},
		},
		PBC: [3]bool{true, true, false},
	}
}

package structure

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Atom is a single atom: chemical symbol plus Cartesian position in Angstrom.
type Atom struct {
	// Symbol is the chemical symbol (e.g., "Cu").
	Symbol string `json:"symbol"`

	// X, Y, Z are Cartesian coordinates in Angstrom.
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Structure is a finite atomic geometry with a periodic cell.
// Instances are treated as immutable snapshots once attached to a workflow
// state: operations that change geometry return a new Structure.
type Structure struct {
	// Atoms is the ordered atom list. Order is significant: relaxed and
	// unrelaxed snapshots of the same slab share atom ordering.
	Atoms []Atom `json:"atoms"`

	// Cell holds the three lattice vectors as rows, in Angstrom.
	Cell [3][3]float64 `json:"cell"`

	// PBC flags periodicity along each lattice vector.
	PBC [3]bool `json:"pbc"`
}

// NumAtoms returns the number of atoms.
func (s *Structure) NumAtoms() int {
	return len(s.Atoms)
}

// Formula returns the chemical formula with element counts, symbols in
// alphabetical order (e.g., "Cu36", "Mo9S18").
func (s *Structure) Formula() string {
	counts := make(map[string]int)
	for _, a := range s.Atoms {
		counts[a.Symbol]++
	}

	symbols := make([]string, 0, len(counts))
	for sym := range counts {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	var b strings.Builder
	for _, sym := range symbols {
		b.WriteString(sym)
		if counts[sym] > 1 {
			fmt.Fprintf(&b, "%d", counts[sym])
		}
	}
	return b.String()
}

// Copy returns a deep copy of the structure.
func (s *Structure) Copy() *Structure {
	out := &Structure{
		Cell: s.Cell,
		PBC:  s.PBC,
	}
	out.Atoms = make([]Atom, len(s.Atoms))
	copy(out.Atoms, s.Atoms)
	return out
}

// NormalAxis returns the index of the surface-normal axis: the first
// non-periodic axis, or 2 (z) when the structure is periodic in all
// directions.
func (s *Structure) NormalAxis() int {
	for i, periodic := range s.PBC {
		if !periodic {
			return i
		}
	}
	return 2
}

// Coord returns the coordinate of atom i along the given axis.
func (s *Structure) Coord(i, axis int) float64 {
	switch axis {
	case 0:
		return s.Atoms[i].X
	case 1:
		return s.Atoms[i].Y
	default:
		return s.Atoms[i].Z
	}
}

// Displacement returns the Euclidean distance between atom i in this
// structure and atom i in other. Both structures must have atom i.
func (s *Structure) Displacement(other *Structure, i int) float64 {
	dx := s.Atoms[i].X - other.Atoms[i].X
	dy := s.Atoms[i].Y - other.Atoms[i].Y
	dz := s.Atoms[i].Z - other.Atoms[i].Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Distance returns the Euclidean distance between atoms i and j.
func (s *Structure) Distance(i, j int) float64 {
	dx := s.Atoms[i].X - s.Atoms[j].X
	dy := s.Atoms[i].Y - s.Atoms[j].Y
	dz := s.Atoms[i].Z - s.Atoms[j].Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// BulkProperties holds cached bulk reference values for an element.
// Values are curated literature data; they back the parametric surface
// builders when no external database is reachable.
type BulkProperties struct {
	// LatticeConstant is the conventional cubic lattice constant in Angstrom.
	LatticeConstant float64

	// CrystalSystem is the bulk crystal system (e.g., "cubic").
	CrystalSystem string

	// SpaceGroup is the space group symbol (e.g., "Fm-3m").
	SpaceGroup string

	// Density is the bulk density in g/cm^3.
	Density float64
}

// bulkProperties is the curated bulk property cache for supported fcc metals.
var bulkProperties = map[string]BulkProperties{
	"Cu": {LatticeConstant: 3.615, CrystalSystem: "cubic", SpaceGroup: "Fm-3m", Density: 8.96},
	"Pt": {LatticeConstant: 3.924, CrystalSystem: "cubic", SpaceGroup: "Fm-3m", Density: 21.45},
	"Au": {LatticeConstant: 4.078, CrystalSystem: "cubic", SpaceGroup: "Fm-3m", Density: 19.32},
	"Ag": {LatticeConstant: 4.086, CrystalSystem: "cubic", SpaceGroup: "Fm-3m", Density: 10.49},
	"Ni": {LatticeConstant: 3.524, CrystalSystem: "cubic", SpaceGroup: "Fm-3m", Density: 8.91},
	"Pd": {LatticeConstant: 3.891, CrystalSystem: "cubic", SpaceGroup: "Fm-3m", Density: 12.02},
	"Al": {LatticeConstant: 4.050, CrystalSystem: "cubic", SpaceGroup: "Fm-3m", Density: 2.70},
	"Ir": {LatticeConstant: 3.840, CrystalSystem: "cubic", SpaceGroup: "Fm-3m", Density: 22.56},
	"Rh": {LatticeConstant: 3.800, CrystalSystem: "cubic", SpaceGroup: "Fm-3m", Density: 12.41},
}

// defaultLatticeConstant is used for elements without a cached entry.
const defaultLatticeConstant = 4.0

// Bulk returns the cached bulk properties for an element. The second return
// value reports whether a curated entry exists; when it is false the returned
// properties carry the default lattice constant.
func Bulk(element string) (BulkProperties, bool) {
	p, ok := bulkProperties[element]
	if !ok {
		return BulkProperties{LatticeConstant: defaultLatticeConstant}, false
	}
	return p, true
}

// LatticeConstant returns the conventional lattice constant for an element,
// falling back to a generic default for unknown elements.
func LatticeConstant(element string) float64 {
	p, _ := Bulk(element)
	return p.LatticeConstant
}

// NearestNeighborSpacing returns the fcc nearest-neighbor distance a/sqrt(2)
// implied by a conventional lattice constant.
func NearestNeighborSpacing(latticeConstant float64) float64 {
	return latticeConstant / math.Sqrt2
}

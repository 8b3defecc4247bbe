package references

import "context"

// MemoryStore is an in-memory Lookup seeded with the same curated data the
// SQLite migrations install. It backs tests and runs that do not want a
// database file on disk.
type MemoryStore struct {
	surfaces map[string]SurfaceRecord
	twoD     map[string]TwoDRecord
}

// NewMemoryStore creates a store preloaded with the curated records.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		surfaces: make(map[string]SurfaceRecord),
		twoD:     make(map[string]TwoDRecord),
	}
	for _, rec := range curatedSurfaces {
		s.surfaces[rec.Element+"/"+rec.Face] = rec
	}
	for _, rec := range curatedTwoD {
		s.twoD[rec.Element+"/"+rec.Face] = rec
	}
	return s
}

// Surface implements Lookup.
func (s *MemoryStore) Surface(_ context.Context, element, face string) (*SurfaceRecord, error) {
	if rec, ok := s.surfaces[element+"/"+face]; ok {
		out := rec
		return &out, nil
	}
	return nil, nil
}

// TwoD implements Lookup, with the same graphene-to-2d fallback as the
// SQLite store.
func (s *MemoryStore) TwoD(_ context.Context, element, face string) (*TwoDRecord, error) {
	if rec, ok := s.twoD[element+"/"+face]; ok {
		out := rec
		return &out, nil
	}
	if face == "graphene" {
		if rec, ok := s.twoD[element+"/2d"]; ok {
			out := rec
			return &out, nil
		}
	}
	return nil, nil
}

// Available lists the curated (element -> faces) coverage.
func (s *MemoryStore) Available(_ context.Context) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, rec := range curatedSurfaces {
		out[rec.Element] = append(out[rec.Element], rec.Face)
	}
	for _, rec := range curatedTwoD {
		out[rec.Element] = append(out[rec.Element], rec.Face)
	}
	return out, nil
}

var curatedSurfaces = []SurfaceRecord{
	{Element: "Cu", Face: "100", D12Change: -2.1, D23Change: 0.8, D34Change: 0.0, SurfaceEnergy: 1.79,
		Source: "Lindgren et al., Phys. Rev. B 29, 576 (1984)", Method: "LEED"},
	{Element: "Cu", Face: "111", D12Change: -0.7, D23Change: 0.2, D34Change: 0.0, SurfaceEnergy: 1.52,
		Source: "Davis & Noonan, Surf. Sci. 126, 245 (1983)", Method: "LEED"},
	{Element: "Cu", Face: "110", D12Change: -8.5, D23Change: 2.3, D34Change: -0.5, SurfaceEnergy: 1.93,
		Source: "Adams et al., Surf. Sci. 187, 313 (1987)", Method: "LEED"},
	{Element: "Pt", Face: "111", D12Change: 1.0, D23Change: 0.5, D34Change: 0.0, SurfaceEnergy: 2.30,
		Source: "Materer et al., Surf. Sci. 325, 207 (1995)", Method: "LEED"},
	{Element: "Pt", Face: "100", D12Change: -1.1, D23Change: 0.6, D34Change: 0.0, SurfaceEnergy: 2.47,
		Source: "Heilmann et al., Surf. Sci. 83, 487 (1979)", Method: "LEED"},
	{Element: "Au", Face: "111", D12Change: 0.1, D23Change: 0.3, D34Change: 0.0, SurfaceEnergy: 1.50,
		Source: "Harten et al., Phys. Rev. Lett. 54, 2619 (1985)", Method: "LEED"},
	{Element: "Au", Face: "100", D12Change: -1.2, D23Change: 0.8, D34Change: 0.0, SurfaceEnergy: 1.63,
		Source: "Gibbs et al., Phys. Rev. Lett. 67, 3117 (1991)", Method: "X-ray"},
	{Element: "Ag", Face: "111", D12Change: -0.5, D23Change: 0.2, D34Change: 0.0, SurfaceEnergy: 1.25,
		Source: "Soares et al., Phys. Rev. B 60, 10768 (1999)", Method: "LEED"},
	{Element: "Ag", Face: "100", D12Change: -1.8, D23Change: 0.9, D34Change: 0.0, SurfaceEnergy: 1.35,
		Source: "Quinn et al., J. Phys. C 21, L195 (1988)", Method: "LEED"},
	{Element: "Ni", Face: "100", D12Change: -3.2, D23Change: 1.5, D34Change: -0.3, SurfaceEnergy: 2.38,
		Source: "Demuth et al., Phys. Rev. Lett. 34, 1149 (1975)", Method: "LEED"},
	{Element: "Ni", Face: "111", D12Change: -1.2, D23Change: 0.5, D34Change: 0.0, SurfaceEnergy: 2.01,
		Source: "Narasimhan & Vanderbilt, Phys. Rev. Lett. 69, 1564 (1992)", Method: "DFT"},
	{Element: "Pd", Face: "111", D12Change: 0.0, D23Change: 0.2, D34Change: 0.0, SurfaceEnergy: 2.00,
		Source: "Ohtani et al., Phys. Rev. B 36, 4460 (1987)", Method: "LEED"},
	{Element: "Pd", Face: "100", D12Change: -2.5, D23Change: 1.2, D34Change: 0.0, SurfaceEnergy: 2.15,
		Source: "Behm et al., J. Chem. Phys. 78, 7486 (1983)", Method: "LEED"},
}

var curatedTwoD = []TwoDRecord{
	{Element: "C", Face: "graphene", BondLength: 1.42, LatticeConstant: 2.46, LayerThickness: 3.35,
		Source: "Castro Neto et al., Rev. Mod. Phys. 81, 109 (2009)", Method: "Experiment"},
	{Element: "MoS2", Face: "2d", BondLength: 2.41, LatticeConstant: 3.16, LayerThickness: 3.13,
		Source: "Splendiani et al., Nano Lett. 10, 1271 (2010)", Method: "Experiment"},
}

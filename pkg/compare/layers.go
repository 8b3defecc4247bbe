package compare

import (
	"sort"

	"github.com/microstack/microstack/pkg/structure"
)

// LayerSeparationFraction scales the nearest-neighbor spacing into the
// clustering threshold: two atoms share a layer when their normal-axis
// coordinates differ by less than this fraction of a/sqrt(2).
const LayerSeparationFraction = 0.25

// Layer is one atomic plane of a slab. Layers are numbered from the surface
// inward, starting at 1.
type Layer struct {
	// Index is the 1-based layer number, 1 being the surface plane.
	Index int

	// Atoms lists the atom indices belonging to this layer, sorted ascending.
	Atoms []int

	// Coord is the mean normal-axis coordinate of the layer.
	Coord float64
}

// ExtractLayers partitions the atoms of s into layers along its surface
// normal using single-linkage clustering under the given threshold: the
// normal-axis coordinates are sorted and a new layer starts wherever the gap
// between consecutive coordinates reaches the threshold. Sorting first makes
// the result invariant to the input atom ordering.
func ExtractLayers(s *structure.Structure, threshold float64) []Layer {
	n := s.NumAtoms()
	if n == 0 {
		return nil
	}

	axis := s.NormalAxis()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ca, cb := s.Coord(order[a], axis), s.Coord(order[b], axis)
		if ca != cb {
			// Descending: the surface sits at the top of the slab.
			return ca > cb
		}
		return order[a] < order[b]
	})

	var layers []Layer
	var current []int
	for k, idx := range order {
		if k > 0 {
			gap := s.Coord(order[k-1], axis) - s.Coord(idx, axis)
			if gap >= threshold {
				layers = append(layers, finishLayer(s, axis, len(layers)+1, current))
				current = nil
			}
		}
		current = append(current, idx)
	}
	layers = append(layers, finishLayer(s, axis, len(layers)+1, current))
	return layers
}

func finishLayer(s *structure.Structure, axis, index int, atoms []int) Layer {
	sort.Ints(atoms)
	var sum float64
	for _, i := range atoms {
		sum += s.Coord(i, axis)
	}
	return Layer{
		Index: index,
		Atoms: atoms,
		Coord: sum / float64(len(atoms)),
	}
}

// layerThreshold derives the clustering threshold for an element from its
// conventional lattice constant.
func layerThreshold(element string) float64 {
	a := structure.LatticeConstant(element)
	return LayerSeparationFraction * structure.NearestNeighborSpacing(a)
}

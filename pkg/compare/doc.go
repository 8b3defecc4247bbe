// Package compare implements the geometric comparison engine: it partitions
// a slab into atomic layers along the surface normal, measures how relaxation
// changed the interlayer spacings and atom positions, and grades the result
// against curated literature references.
//
// Layer clustering is deterministic and independent of atom ordering. All
// reference-derived fields of a Result are pointers: absence of reference
// data or of a relaxed geometry leaves them nil, never zero-filled.
package compare

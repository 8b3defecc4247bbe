// Package simulate provides lightweight microscopy image synthesis.
//
// The simulators here compute geometric proxy signals from the relaxed slab
// rather than solving the underlying tunneling or force physics: an STM map
// is an exponential distance-decay sum, an AFM map a nearest-atom distance
// field, and an IETS trace a synthetic spectrum around the modulation
// energy. They exist to exercise the routing and artifact plumbing with
// plausible output shapes.
package simulate

// Package references provides the curated literature/DFT reference store
// used to grade relaxation results. Records come from experimental LEED
// measurements and high-quality DFT calculations; the SQLite-backed store
// manages its schema and seed data with embedded migrations, and an
// in-memory store backs tests and keyless runs.
package references

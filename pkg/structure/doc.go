// Package structure provides the atomic structure value type used throughout
// µStack, together with parametric surface builders for common fcc metal
// faces and 2D materials, lattice-constant reference tables, and XYZ
// file I/O for persisting geometry snapshots.
package structure

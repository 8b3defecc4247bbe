package simulate

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/microstack/microstack/pkg/microscopy"
	"github.com/microstack/microstack/pkg/structure"
	"github.com/microstack/microstack/pkg/workflow"
)

// decayConstant is the exponential decay of the tunneling proxy, per
// Angstrom.
const decayConstant = 2.0

// STMSimulator renders a constant-height tunneling-current proxy map.
type STMSimulator struct {
	Config    microscopy.STMConfig
	OutputDir string
}

// Run computes the STM map and records the artifact on the state.
func (s *STMSimulator) Run(ctx context.Context, state *workflow.State) error {
	cfg := s.Config
	if err := cfg.ApplyDefaults(); err != nil {
		return fmt.Errorf("invalid STM config: %w", err)
	}

	geom := state.Structure()
	if geom == nil {
		return fmt.Errorf("STM simulation requires a structure")
	}

	grid, err := currentMap(ctx, geom, cfg.Height, cfg.Resolution)
	if err != nil {
		return err
	}

	header := fmt.Sprintf("# STM constant-height map: bias=%.2f V, height=%.2f A, resolution=%d",
		cfg.Bias, cfg.Height, cfg.Resolution)
	path, err := writeGrid(s.OutputDir, "stm_image.dat", header, grid)
	if err != nil {
		return err
	}

	state.RecordFile("stm_image", path)
	return nil
}

// AFMSimulator renders a nearest-atom distance field as a frequency-shift
// proxy.
type AFMSimulator struct {
	Config    microscopy.AFMConfig
	OutputDir string
}

// Run computes the AFM map and records the artifact on the state.
func (a *AFMSimulator) Run(ctx context.Context, state *workflow.State) error {
	cfg := a.Config
	if err := cfg.ApplyDefaults(); err != nil {
		return fmt.Errorf("invalid AFM config: %w", err)
	}

	geom := state.Structure()
	if geom == nil {
		return fmt.Errorf("AFM simulation requires a structure")
	}

	height := (cfg.MinHeight + cfg.MaxHeight) / 2
	grid, err := distanceMap(ctx, geom, height, cfg.Resolution)
	if err != nil {
		return err
	}

	header := fmt.Sprintf("# AFM distance map: amplitude=%.2f A, heights=%.2f-%.2f A, resolution=%d",
		cfg.Amplitude, cfg.MinHeight, cfg.MaxHeight, cfg.Resolution)
	path, err := writeGrid(a.OutputDir, "afm_image.dat", header, grid)
	if err != nil {
		return err
	}

	state.RecordFile("afm_image", path)
	return nil
}

// IETSSimulator produces a synthetic inelastic tunneling spectrum.
type IETSSimulator struct {
	Config    microscopy.IETSConfig
	OutputDir string
}

// ietsPoints is the number of bias samples in the sweep.
const ietsPoints = 256

// Run computes the IETS trace and records the artifact on the state.
func (i *IETSSimulator) Run(ctx context.Context, state *workflow.State) error {
	cfg := i.Config
	if err := cfg.ApplyDefaults(); err != nil {
		return fmt.Errorf("invalid IETS config: %w", err)
	}

	geom := state.Structure()
	if geom == nil {
		return fmt.Errorf("IETS simulation requires a structure")
	}

	span := math.Abs(cfg.Bias)
	if span == 0 {
		span = 0.5
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# IETS spectrum: bias sweep ±%.2f V, modulation=%.3f V, height=%.2f A\n",
		span, cfg.Modulation, cfg.Height)
	b.WriteString("# bias_V signal\n")

	// Symmetric peaks at the modulation energy, broadened by the surface
	// corrugation of the slab.
	sigma := cfg.Modulation / 2
	if sigma <= 0 {
		sigma = 0.01
	}
	for n := 0; n < ietsPoints; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		v := -span + 2*span*float64(n)/float64(ietsPoints-1)
		signal := gaussian(v, cfg.Modulation, sigma) + gaussian(v, -cfg.Modulation, sigma)
		fmt.Fprintf(&b, "%.5f %.6f\n", v, signal)
	}

	if err := os.MkdirAll(i.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(i.OutputDir, "iets_spectrum.dat")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write IETS spectrum: %w", err)
	}

	state.RecordFile("iets_spectrum", path)
	return nil
}

// Registry builds the simulator set for the router targets, writing
// artifacts to dir. Config zero values fall back to compiled defaults.
func Registry(dir string, stm microscopy.STMConfig, afm microscopy.AFMConfig, iets microscopy.IETSConfig) map[microscopy.Target]workflow.Simulator {
	return map[microscopy.Target]workflow.Simulator{
		microscopy.TargetSTM:  &STMSimulator{Config: stm, OutputDir: dir},
		microscopy.TargetAFM:  &AFMSimulator{Config: afm, OutputDir: dir},
		microscopy.TargetIETS: &IETSSimulator{Config: iets, OutputDir: dir},
	}
}

// currentMap evaluates the exponential distance-decay sum on a lateral grid
// at the given height above the top atom.
func currentMap(ctx context.Context, s *structure.Structure, height float64, resolution int) ([][]float64, error) {
	minX, maxX, minY, maxY, topZ := bounds(s)
	tipZ := topZ + height

	grid := make([][]float64, resolution)
	for iy := 0; iy < resolution; iy++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := make([]float64, resolution)
		y := lerp(minY, maxY, iy, resolution)
		for ix := 0; ix < resolution; ix++ {
			x := lerp(minX, maxX, ix, resolution)
			var sum float64
			for _, a := range s.Atoms {
				d := dist3(x, y, tipZ, a.X, a.Y, a.Z)
				sum += math.Exp(-decayConstant * d)
			}
			row[ix] = sum
		}
		grid[iy] = row
	}
	return grid, nil
}

// distanceMap evaluates the nearest-atom distance on a lateral grid at the
// given height above the top atom.
func distanceMap(ctx context.Context, s *structure.Structure, height float64, resolution int) ([][]float64, error) {
	minX, maxX, minY, maxY, topZ := bounds(s)
	tipZ := topZ + height

	grid := make([][]float64, resolution)
	for iy := 0; iy < resolution; iy++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := make([]float64, resolution)
		y := lerp(minY, maxY, iy, resolution)
		for ix := 0; ix < resolution; ix++ {
			x := lerp(minX, maxX, ix, resolution)
			nearest := math.Inf(1)
			for _, a := range s.Atoms {
				if d := dist3(x, y, tipZ, a.X, a.Y, a.Z); d < nearest {
					nearest = d
				}
			}
			row[ix] = nearest
		}
		grid[iy] = row
	}
	return grid, nil
}

// bounds returns the lateral extent and the top coordinate of the slab.
func bounds(s *structure.Structure) (minX, maxX, minY, maxY, topZ float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY, topZ = math.Inf(-1), math.Inf(-1), math.Inf(-1)
	for _, a := range s.Atoms {
		minX = math.Min(minX, a.X)
		maxX = math.Max(maxX, a.X)
		minY = math.Min(minY, a.Y)
		maxY = math.Max(maxY, a.Y)
		topZ = math.Max(topZ, a.Z)
	}
	return minX, maxX, minY, maxY, topZ
}

func lerp(lo, hi float64, i, n int) float64 {
	if n <= 1 {
		return lo
	}
	return lo + (hi-lo)*float64(i)/float64(n-1)
}

func dist3(x1, y1, z1, x2, y2, z2 float64) float64 {
	dx, dy, dz := x1-x2, y1-y2, z1-z2
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func gaussian(x, mu, sigma float64) float64 {
	d := (x - mu) / sigma
	return math.Exp(-d * d / 2)
}

// writeGrid writes a 2D grid as whitespace-separated rows under dir.
func writeGrid(dir, name, header string, grid [][]float64) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, row := range grid {
		for i, v := range row {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%.6f", v)
		}
		b.WriteString("\n")
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

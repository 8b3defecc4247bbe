package simulate

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/microstack/microstack/pkg/microscopy"
	"github.com/microstack/microstack/pkg/structure"
	"github.com/microstack/microstack/pkg/workflow"
)

func testState(t *testing.T) *workflow.State {
	t.Helper()

	slab, err := structure.BuildSurface(structure.SurfaceSpec{
		Element: "Cu",
		Face:    "100",
		Size:    [3]int{2, 2, 3},
	})
	if err != nil {
		t.Fatalf("BuildSurface failed: %v", err)
	}

	state := workflow.NewState("session-sim", "Cu(100) with STM")
	state.Unrelaxed = slab
	return state
}

func TestSTMSimulatorWritesImage(t *testing.T) {
	state := testState(t)
	sim := &STMSimulator{
		Config:    microscopy.STMConfig{Resolution: 16},
		OutputDir: t.TempDir(),
	}

	if err := sim.Run(context.Background(), state); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	path, ok := state.FilePaths["stm_image"]
	if !ok {
		t.Fatal("stm_image artifact not recorded")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// Header plus one line per grid row.
	if len(lines) != 17 {
		t.Errorf("expected 17 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "# STM") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if cols := len(strings.Fields(lines[1])); cols != 16 {
		t.Errorf("expected 16 columns, got %d", cols)
	}
}

func TestSTMSimulatorDefaultsApplied(t *testing.T) {
	state := testState(t)
	sim := &STMSimulator{OutputDir: t.TempDir()}

	if err := sim.Run(context.Background(), state); err != nil {
		t.Fatalf("Run with zero config should use defaults: %v", err)
	}

	data, err := os.ReadFile(state.FilePaths["stm_image"])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "bias=-1.00") {
		t.Error("expected default bias in header")
	}
}

func TestAFMSimulatorWritesImage(t *testing.T) {
	state := testState(t)
	sim := &AFMSimulator{
		Config:    microscopy.AFMConfig{Resolution: 8},
		OutputDir: t.TempDir(),
	}

	if err := sim.Run(context.Background(), state); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, ok := state.FilePaths["afm_image"]; !ok {
		t.Fatal("afm_image artifact not recorded")
	}
}

func TestIETSSimulatorWritesSpectrum(t *testing.T) {
	state := testState(t)
	sim := &IETSSimulator{OutputDir: t.TempDir()}

	if err := sim.Run(context.Background(), state); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(state.FilePaths["iets_spectrum"])
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// Two header lines plus the sweep.
	if len(lines) != 2+256 {
		t.Errorf("expected %d lines, got %d", 2+256, len(lines))
	}
}

func TestSimulatorRequiresStructure(t *testing.T) {
	state := workflow.NewState("session-empty", "nothing")
	sims := Registry(t.TempDir(), microscopy.STMConfig{}, microscopy.AFMConfig{}, microscopy.IETSConfig{})

	for target, sim := range sims {
		if err := sim.Run(context.Background(), state); err == nil {
			t.Errorf("%s: expected error without structure", target)
		}
	}
}

func TestSimulatorUsesRelaxedStructure(t *testing.T) {
	state := testState(t)
	relaxed := state.Unrelaxed.Copy()
	for i := range relaxed.Atoms {
		relaxed.Atoms[i].Z += 0.1
	}
	state.Relaxed = relaxed

	sim := &STMSimulator{
		Config:    microscopy.STMConfig{Resolution: 8},
		OutputDir: t.TempDir(),
	}
	if err := sim.Run(context.Background(), state); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestSimulatorCanceledContext(t *testing.T) {
	state := testState(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := &STMSimulator{
		Config:    microscopy.STMConfig{Resolution: 32},
		OutputDir: t.TempDir(),
	}
	if err := sim.Run(ctx, state); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestRegistryCoversAllTargets(t *testing.T) {
	sims := Registry(t.TempDir(), microscopy.STMConfig{}, microscopy.AFMConfig{}, microscopy.IETSConfig{})

	for _, target := range []microscopy.Target{microscopy.TargetSTM, microscopy.TargetAFM, microscopy.TargetIETS} {
		if _, ok := sims[target]; !ok {
			t.Errorf("missing simulator for %s", target)
		}
	}
}

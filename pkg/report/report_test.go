package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/microstack/microstack/pkg/compare"
	"github.com/microstack/microstack/pkg/llm"
	"github.com/microstack/microstack/pkg/structure"
	"github.com/microstack/microstack/pkg/workflow"
)

func testState(t *testing.T) *workflow.State {
	t.Helper()

	slab, err := structure.BuildSurface(structure.SurfaceSpec{
		Element: "Cu",
		Face:    "100",
		Size:    [3]int{2, 2, 4},
	})
	if err != nil {
		t.Fatalf("BuildSurface failed: %v", err)
	}

	state := workflow.NewState("session-abc", "relax a Cu(100) surface")
	state.Params = &llm.ParsedQuery{
		TaskType:        "surface",
		MaterialFormula: "Cu",
		Face:            "100",
		Relax:           true,
	}
	state.Unrelaxed = slab
	state.Relaxed = slab.Copy()
	state.Energies = &workflow.Energies{Initial: -12.5, Final: -13.1}
	state.AdvanceStage(workflow.StageTerminal)
	return state
}

func TestGenerateFullRun(t *testing.T) {
	state := testState(t)
	state.RecordFile("unrelaxed_xyz", "/tmp/out/Cu100_unrelaxed.xyz")
	state.RecordFile("relaxed_xyz", "/tmp/out/Cu100_relaxed.xyz")

	verdict := compare.AgreementExcellent
	change := -2.1
	ref := -2.1
	state.SetComparison(&compare.Result{
		Element:    "Cu",
		Face:       "100",
		LayerCount: 4,
		Pairs: []compare.SpacingPair{
			{Pair: 1, UnrelaxedSpacing: 1.8075, ChangePercent: &change, Reference: &ref, Verdict: &verdict},
		},
		HasReference:    true,
		ReferenceSource: "Lindgren et al., Phys. Rev. B 29, 576 (1984)",
		ReferenceMethod: "LEED",
		Overall:         &verdict,
	})

	md := Generate(state)

	wants := []string{
		"# Run Report: Cu(100)",
		"*Session: session-abc*",
		"## Summary",
		"relax a Cu(100) surface",
		"## Structure",
		"| Atoms | 16 |",
		"Cu100_unrelaxed.xyz",
		"## Relaxation",
		"| Initial (unrelaxed) | -12.5000 |",
		"| **Change** | **-0.6000** |",
		"## Comparison with Experiment",
		"Lindgren et al.",
		"| d12 | 1.8075 | - | -2.10 | -2.10 | excellent |",
		"**Overall agreement**: excellent",
		"## Run Information",
		"| Final stage | terminal |",
	}
	for _, want := range wants {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}

	// No issues section when nothing went wrong.
	if strings.Contains(md, "## Issues") {
		t.Error("unexpected Issues section")
	}
}

func TestGenerateWithoutRelaxation(t *testing.T) {
	state := testState(t)
	state.Energies = nil
	state.Relaxed = nil

	md := Generate(state)

	if strings.Contains(md, "## Relaxation") {
		t.Error("unexpected Relaxation section without energies")
	}
	if !strings.Contains(md, "## Structure") {
		t.Error("expected Structure section")
	}
}

func TestGenerateIncludesIssues(t *testing.T) {
	state := testState(t)
	state.AddError("primary provider failed: timeout")
	state.AddWarning("no reference data for Al(100)")

	md := Generate(state)

	if !strings.Contains(md, "### Errors (1)") {
		t.Error("expected errors subsection")
	}
	if !strings.Contains(md, "primary provider failed: timeout") {
		t.Error("expected error text")
	}
	if !strings.Contains(md, "### Warnings (1)") {
		t.Error("expected warnings subsection")
	}
}

func TestGenerateNoReference(t *testing.T) {
	state := testState(t)
	state.SetComparison(&compare.Result{
		Element:      "Al",
		Face:         "100",
		LayerCount:   4,
		HasReference: false,
	})

	md := Generate(state)

	if !strings.Contains(md, "No curated reference data") {
		t.Error("expected missing-reference note")
	}
}

func TestWrite(t *testing.T) {
	state := testState(t)
	dir := filepath.Join(t.TempDir(), "reports")

	path, err := Write(state, dir)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(data), "# Run Report: Cu(100)") {
		t.Error("written report missing title")
	}
	if filepath.Base(path) != Filename {
		t.Errorf("unexpected report file name: %s", path)
	}
}

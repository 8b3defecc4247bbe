package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/microstack/microstack/pkg/compare"
	"github.com/microstack/microstack/pkg/workflow"
)

// Filename is the report file name written by Write.
const Filename = "run_report.md"

// Generate renders the full markdown report for a run.
func Generate(state *workflow.State) string {
	var b strings.Builder

	writeHeader(&b, state)
	writeSummary(&b, state)
	writeStructureSection(&b, state)
	writeRelaxationSection(&b, state)
	writeComparisonSection(&b, state)
	writeMicroscopySection(&b, state)
	writeRunInfo(&b, state)
	writeIssues(&b, state)

	b.WriteString("---\n")
	b.WriteString("*Generated by mstack*\n")

	return b.String()
}

// Write renders the report and writes it to dir, creating the directory if
// needed. It returns the report path.
func Write(state *workflow.State, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(dir, Filename)
	if err := os.WriteFile(path, []byte(Generate(state)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func writeHeader(b *strings.Builder, state *workflow.State) {
	title := "Run Report"
	if state.Params != nil && state.Params.MaterialFormula != "" {
		if state.Params.Face != "" {
			title = fmt.Sprintf("Run Report: %s(%s)", state.Params.MaterialFormula, state.Params.Face)
		} else {
			title = fmt.Sprintf("Run Report: %s", state.Params.MaterialFormula)
		}
	}

	fmt.Fprintf(b, "# %s\n\n", title)
	fmt.Fprintf(b, "*Generated: %s*\n", time.Now().UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(b, "*Session: %s*\n\n", state.SessionID)
}

func writeSummary(b *strings.Builder, state *workflow.State) {
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(b, "**Query**: %s\n\n", state.Query)

	var tasks []string
	if state.Unrelaxed != nil {
		element, face := "?", "?"
		if state.Params != nil {
			element, face = state.Params.MaterialFormula, state.Params.Face
		}
		tasks = append(tasks, fmt.Sprintf("Structure generation: %s(%s) - %s (%d atoms)",
			element, face, state.Unrelaxed.Formula(), state.Unrelaxed.NumAtoms()))
	}
	if state.Energies != nil {
		tasks = append(tasks, fmt.Sprintf("Relaxation: ΔE = %.4f eV (%.4f → %.4f eV)",
			state.Energies.Final-state.Energies.Initial,
			state.Energies.Initial, state.Energies.Final))
	}
	if state.Comparison != nil {
		verdict := "no reference"
		if state.Comparison.Overall != nil {
			verdict = string(*state.Comparison.Overall)
		}
		tasks = append(tasks, fmt.Sprintf("Comparison against experiment: %s", verdict))
	}
	if state.Stage >= workflow.StageMicroscopyRunning && state.MicroscopyRequested {
		tasks = append(tasks, fmt.Sprintf("%s simulation",
			strings.ToUpper(string(state.MicroscopyType))))
	}

	if len(tasks) > 0 {
		b.WriteString("**Completed**:\n\n")
		for _, task := range tasks {
			fmt.Fprintf(b, "- %s\n", task)
		}
		b.WriteString("\n")
	}
}

func writeStructureSection(b *strings.Builder, state *workflow.State) {
	s := state.Unrelaxed
	if s == nil {
		return
	}

	b.WriteString("## Structure\n\n")
	b.WriteString("| Property | Value |\n")
	b.WriteString("|----------|-------|\n")
	if state.Params != nil {
		fmt.Fprintf(b, "| Element | %s |\n", state.Params.MaterialFormula)
		fmt.Fprintf(b, "| Surface face | %s |\n", state.Params.Face)
	}
	fmt.Fprintf(b, "| Formula | %s |\n", s.Formula())
	fmt.Fprintf(b, "| Atoms | %d |\n", s.NumAtoms())
	b.WriteString("\n")

	if path, ok := state.FilePaths["unrelaxed_xyz"]; ok {
		fmt.Fprintf(b, "**Structure file**: `%s`\n\n", filepath.Base(path))
	}
}

func writeRelaxationSection(b *strings.Builder, state *workflow.State) {
	e := state.Energies
	if e == nil {
		return
	}

	b.WriteString("## Relaxation\n\n")
	b.WriteString("| State | Energy (eV) |\n")
	b.WriteString("|-------|-------------|\n")
	fmt.Fprintf(b, "| Initial (unrelaxed) | %.4f |\n", e.Initial)
	fmt.Fprintf(b, "| Final (relaxed) | %.4f |\n", e.Final)
	fmt.Fprintf(b, "| **Change** | **%.4f** |\n", e.Final-e.Initial)
	b.WriteString("\n")

	if path, ok := state.FilePaths["relaxed_xyz"]; ok {
		fmt.Fprintf(b, "**Relaxed structure file**: `%s`\n\n", filepath.Base(path))
	}
}

func writeComparisonSection(b *strings.Builder, state *workflow.State) {
	c := state.Comparison
	if c == nil {
		return
	}

	b.WriteString("## Comparison with Experiment\n\n")

	if c.HasReference {
		fmt.Fprintf(b, "**Reference**: %s (%s)\n\n", c.ReferenceSource, c.ReferenceMethod)
	} else {
		b.WriteString("No curated reference data available for this surface.\n\n")
	}

	if len(c.Pairs) > 0 {
		b.WriteString("| Layer pair | Unrelaxed (Å) | Relaxed (Å) | Change (%) | Reference (%) | Verdict |\n")
		b.WriteString("|------------|---------------|-------------|------------|---------------|--------|\n")
		for _, p := range c.Pairs {
			fmt.Fprintf(b, "| d%d%d | %.4f | %s | %s | %s | %s |\n",
				p.Pair, p.Pair+1,
				p.UnrelaxedSpacing,
				fmtOpt(p.RelaxedSpacing, "%.4f"),
				fmtOpt(p.ChangePercent, "%+.2f"),
				fmtOpt(p.Reference, "%+.2f"),
				fmtVerdict(p.Verdict))
		}
		b.WriteString("\n")
	}

	if c.TwoD != nil {
		b.WriteString("| Property | Measured | Reference | Verdict |\n")
		b.WriteString("|----------|----------|-----------|--------|\n")
		fmt.Fprintf(b, "| Bond length (Å) | %.4f | %s | %s |\n",
			c.TwoD.BondLength,
			fmtOpt(c.TwoD.ReferenceBondLength, "%.4f"),
			fmtVerdict(c.TwoD.BondVerdict))
		fmt.Fprintf(b, "| Thickness (Å) | %.4f | %s | - |\n",
			c.TwoD.Thickness,
			fmtOpt(c.TwoD.ReferenceThickness, "%.4f"))
		b.WriteString("\n")
	}

	if c.MaxDisplacement != nil {
		fmt.Fprintf(b, "**Max displacement**: %.4f Å\n\n", *c.MaxDisplacement)
	}
	if c.Overall != nil {
		fmt.Fprintf(b, "**Overall agreement**: %s\n\n", string(*c.Overall))
	}
}

func writeMicroscopySection(b *strings.Builder, state *workflow.State) {
	if !state.MicroscopyRequested || state.Stage < workflow.StageMicroscopyRunning {
		return
	}

	b.WriteString("## Microscopy\n\n")
	fmt.Fprintf(b, "**Technique**: %s\n\n", strings.ToUpper(string(state.MicroscopyType)))

	for name, path := range state.FilePaths {
		if strings.HasPrefix(name, "stm_") || strings.HasPrefix(name, "afm_") || strings.HasPrefix(name, "iets_") {
			fmt.Fprintf(b, "- `%s`: %s\n", filepath.Base(path), name)
		}
	}
	b.WriteString("\n")
}

func writeRunInfo(b *strings.Builder, state *workflow.State) {
	b.WriteString("## Run Information\n\n")
	b.WriteString("| Property | Value |\n")
	b.WriteString("|----------|-------|\n")
	fmt.Fprintf(b, "| Session | `%s` |\n", state.SessionID)
	fmt.Fprintf(b, "| Started | %s |\n", state.StartedAt.UTC().Format("2006-01-02 15:04:05"))
	if !state.CompletedAt.IsZero() {
		fmt.Fprintf(b, "| Completed | %s |\n", state.CompletedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(b, "| Final stage | %s |\n", state.Stage)
	b.WriteString("\n")
}

func writeIssues(b *strings.Builder, state *workflow.State) {
	if len(state.Errors) == 0 && len(state.Warnings) == 0 {
		return
	}

	b.WriteString("## Issues\n\n")

	if len(state.Errors) > 0 {
		fmt.Fprintf(b, "### Errors (%d)\n\n", len(state.Errors))
		for _, e := range state.Errors {
			fmt.Fprintf(b, "- %s\n", e)
		}
		b.WriteString("\n")
	}

	if len(state.Warnings) > 0 {
		fmt.Fprintf(b, "### Warnings (%d)\n\n", len(state.Warnings))
		for _, w := range state.Warnings {
			fmt.Fprintf(b, "- %s\n", w)
		}
		b.WriteString("\n")
	}
}

func fmtOpt(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func fmtVerdict(v *compare.Agreement) string {
	if v == nil {
		return "-"
	}
	return string(*v)
}

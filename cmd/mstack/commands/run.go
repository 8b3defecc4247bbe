package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/microstack/microstack/pkg/microscopy"
	"github.com/microstack/microstack/pkg/workflow"
)

func newRunCommand(version string) *cobra.Command {
	var (
		yes       bool
		sessionID string
		technique string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "run <query>",
		Short: "Run the pipeline for a natural-language query",
		Long: `Run the full pipeline for one query: parse, build the slab, relax it,
compare against curated references, and route into microscopy.

When the query names a microscopy technique the simulation runs
automatically. Otherwise the pipeline pauses before microscopy; pass --yes
to continue with the technique given by --technique.`,
		Example: `  # Build and relax a copper surface
  mstack run "relax a Cu(100) surface with 4 layers"

  # Request an STM simulation explicitly
  mstack run "Pt(111) slab with STM"

  # Continue into microscopy at the interactive pause
  mstack run "Au(111) surface" --yes --technique AFM`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			ctx := cmd.Context()

			p, err := buildPipeline(ctx, version, outputDir)
			if err != nil {
				return err
			}
			defer p.Close(ctx)

			if sessionID == "" {
				sessionID = uuid.New().String()
			}

			log.Info().
				Str("session_id", sessionID).
				Str("query", query).
				Msg("Running pipeline")

			state, err := p.Execute(ctx, query, sessionID, yes,
				microscopy.Technique(strings.ToUpper(technique)))
			if err != nil {
				return err
			}

			return printState(state)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "continue into microscopy at the interactive pause")
	cmd.Flags().StringVar(&sessionID, "session", "", "session identifier (random when empty)")
	cmd.Flags().StringVar(&technique, "technique", "STM", "microscopy technique for --yes continuation")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "artifact output directory")

	return cmd
}

// printState renders the finished state to stdout.
func printState(state *workflow.State) error {
	if jsonOutput {
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal state: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Session:  %s\n", state.SessionID)
	fmt.Printf("Stage:    %s\n", state.Stage)
	if state.Unrelaxed != nil {
		fmt.Printf("Formula:  %s (%d atoms)\n", state.Unrelaxed.Formula(), state.Unrelaxed.NumAtoms())
	}
	if state.Energies != nil {
		fmt.Printf("Energy:   %.4f -> %.4f eV\n", state.Energies.Initial, state.Energies.Final)
	}
	if c := state.Comparison; c != nil {
		if c.Overall != nil {
			fmt.Printf("Verdict:  %s", *c.Overall)
			if c.HasReference {
				fmt.Printf(" (vs %s)", c.ReferenceSource)
			}
			fmt.Println()
		} else if !c.HasReference {
			fmt.Println("Verdict:  no reference data")
		}
	}
	if state.InteractivePause {
		fmt.Println("Paused before microscopy; re-run with --yes to continue.")
	}

	for name, path := range state.FilePaths {
		fmt.Printf("Artifact: %s (%s)\n", path, name)
	}
	for _, w := range state.Warnings {
		fmt.Printf("Warning:  %s\n", w)
	}
	for _, e := range state.Errors {
		fmt.Printf("Error:    %s\n", e)
	}

	if len(state.Errors) > 0 && state.Unrelaxed == nil {
		return fmt.Errorf("pipeline failed: %s", strings.Join(state.Errors, "; "))
	}
	return nil
}

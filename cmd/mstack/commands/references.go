package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/microstack/microstack/pkg/config"
	"github.com/microstack/microstack/pkg/references"
)

func newReferencesCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "references",
		Short: "List curated experimental reference coverage",
		Long: `List the (element, face) combinations with curated reference data.

Surfaces outside this set still run through the pipeline, but the comparison
step degrades to geometry-only output with a warning.`,
		Example: `  # List curated coverage from the built-in data set
  mstack references

  # List coverage from a SQLite reference database
  mstack references --db refs.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			available, err := loadAvailable(cmd, dbPath)
			if err != nil {
				return err
			}

			if jsonOutput {
				data, err := json.MarshalIndent(available, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			elements := make([]string, 0, len(available))
			for el := range available {
				elements = append(elements, el)
			}
			sort.Strings(elements)

			fmt.Println("Curated reference coverage:")
			for _, el := range elements {
				faces := available[el]
				sort.Strings(faces)
				fmt.Printf("  %-4s", el)
				for _, face := range faces {
					fmt.Printf(" %s", face)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite reference database path (built-in data when empty)")

	return cmd
}

// loadAvailable reads the coverage map from the configured store.
func loadAvailable(cmd *cobra.Command, dbPath string) (map[string][]string, error) {
	ctx := cmd.Context()

	if dbPath == "" {
		if cfg, err := config.Load(configPath); err == nil {
			dbPath = cfg.References.DBPath
		}
	}

	if dbPath == "" {
		return references.NewMemoryStore().Available(ctx)
	}

	store, err := references.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	return store.Available(ctx)
}

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/microstack/microstack/pkg/microscopy"
)

func newDevCommand(version string) *cobra.Command {
	var (
		yes       bool
		technique string
	)

	cmd := &cobra.Command{
		Use:   "dev <query-file>",
		Short: "Watch a query file and re-run the pipeline on change",
		Long: `Watch a text file containing a query and re-run the pipeline every time
the file is saved. Useful for iterating on query phrasing and surface
parameters without re-invoking the CLI.

Each run gets a fresh session ID; artifacts are overwritten in place.`,
		Example: `  # Iterate on a query
  echo "relax a Cu(100) surface" > query.txt
  mstack dev query.txt

  # Continue into microscopy automatically on each run
  mstack dev query.txt --yes --technique STM`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			ctx := cmd.Context()

			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("cannot watch %s: %w", path, err)
			}

			p, err := buildPipeline(ctx, version, "")
			if err != nil {
				return err
			}
			defer p.Close(ctx)

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}
			defer watcher.Close()

			// Watch the directory: editors often replace the file on save,
			// which drops a watch on the file itself.
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}

			runOnce := func() {
				data, err := os.ReadFile(path)
				if err != nil {
					log.Error().Err(err).Str("file", path).Msg("Failed to read query file")
					return
				}
				query := strings.TrimSpace(string(data))
				if query == "" {
					log.Warn().Str("file", path).Msg("Query file is empty, skipping run")
					return
				}

				state, err := p.Execute(ctx, query, uuid.New().String(), yes,
					microscopy.Technique(strings.ToUpper(technique)))
				if err != nil {
					log.Error().Err(err).Msg("Pipeline run failed")
					return
				}
				if err := printState(state); err != nil {
					log.Error().Err(err).Msg("Pipeline finished with errors")
				}
			}

			log.Info().Str("file", path).Msg("Watching query file")
			runOnce()

			// Debounce bursts of editor events.
			var timer *time.Timer
			const delay = 500 * time.Millisecond

			for {
				select {
				case <-ctx.Done():
					return nil

				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(event.Name) != filepath.Clean(path) {
						continue
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
						log.Debug().Str("op", event.Op.String()).Msg("Query file changed")
						if timer != nil {
							timer.Stop()
						}
						timer = time.AfterFunc(delay, runOnce)
					}

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					log.Error().Err(err).Msg("Watcher error")
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "continue into microscopy on every run")
	cmd.Flags().StringVar(&technique, "technique", "STM", "microscopy technique for --yes continuation")

	return cmd
}

package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/microstack/microstack/pkg/compare"
	"github.com/microstack/microstack/pkg/config"
	"github.com/microstack/microstack/pkg/llm"
	"github.com/microstack/microstack/pkg/microscopy"
	"github.com/microstack/microstack/pkg/providers"
	"github.com/microstack/microstack/pkg/references"
	"github.com/microstack/microstack/pkg/relax"
	"github.com/microstack/microstack/pkg/report"
	"github.com/microstack/microstack/pkg/simulate"
	"github.com/microstack/microstack/pkg/structure"
	"github.com/microstack/microstack/pkg/telemetry"
	"github.com/microstack/microstack/pkg/workflow"
)

// pipeline bundles the wired collaborators of one CLI invocation.
type pipeline struct {
	cfg   *config.Config
	tel   *telemetry.Telemetry
	orch  *workflow.Orchestrator
	store *references.SQLiteStore // nil when the memory store is used
}

// buildPipeline loads the configuration and assembles the orchestrator with
// its providers, relaxer, reference store, and simulators. A non-empty
// outputDir overrides the configured artifact directory.
func buildPipeline(ctx context.Context, version, outputDir string) (*pipeline, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Telemetry.LogLevel = "debug"
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}

	tel, err := telemetry.NewTelemetry(cfg.ToTelemetryConfig(version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	if cfg.Telemetry.MetricsEnabled {
		if err := tel.StartMetricsServer(); err != nil {
			return nil, fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	// Parser and primary provider: the LLM client when an API key is
	// configured, otherwise the offline heuristic parser with no primary.
	var (
		parser  llm.Parser = llm.HeuristicParser{}
		primary providers.Provider
	)
	if cfg.LLM.APIKey != "" {
		client, err := llm.NewClient(llm.ClientConfig{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		parser = client
		primary = providers.NewScriptProvider(client, cfg.Relaxation.ScriptTimeout)
	}

	// Reference store: SQLite when a path is configured, the in-memory
	// curated set otherwise.
	var (
		refs  references.Lookup
		store *references.SQLiteStore
	)
	if cfg.References.DBPath != "" {
		store, err = references.NewSQLiteStore(cfg.References.DBPath)
		if err != nil {
			return nil, err
		}
		if err := store.Init(ctx); err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		refs = store
	} else {
		refs = references.NewMemoryStore()
	}

	orch, err := workflow.NewOrchestrator(workflow.Config{
		Parser:   parser,
		Primary:  primary,
		Fallback: providers.ParametricProvider{},
		Relaxer:  relax.NewMorseEngine(),
		Comparer: compare.NewEngine(refs),
		Simulators: simulate.Registry(cfg.Output.Dir,
			microscopy.STMConfig{
				Bias:       cfg.Microscopy.STM.Bias,
				Height:     cfg.Microscopy.STM.Height,
				Resolution: cfg.Microscopy.STM.Resolution,
			},
			microscopy.AFMConfig{
				Amplitude:  cfg.Microscopy.AFM.Amplitude,
				MinHeight:  cfg.Microscopy.AFM.MinHeight,
				MaxHeight:  cfg.Microscopy.AFM.MaxHeight,
				Resolution: cfg.Microscopy.AFM.Resolution,
			},
			microscopy.IETSConfig{
				Bias:       cfg.Microscopy.IETS.Bias,
				Modulation: cfg.Microscopy.IETS.Modulation,
				Height:     cfg.Microscopy.IETS.Height,
			},
		),
		RelaxationSteps: cfg.Relaxation.Steps,
		Logger:          tel.Logger,
		Metrics:         tel.Metrics,
	})
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}

	return &pipeline{cfg: cfg, tel: tel, orch: orch, store: store}, nil
}

// Close releases the pipeline resources.
func (p *pipeline) Close(ctx context.Context) {
	if p.store != nil {
		_ = p.store.Close()
	}
	_ = p.tel.Shutdown(ctx)
}

// Execute runs one query through the pipeline and writes the artifacts:
// XYZ snapshots, optional microscopy continuation, and the markdown report.
func (p *pipeline) Execute(ctx context.Context, query, sessionID string, yes bool, technique microscopy.Technique) (*workflow.State, error) {
	state, err := p.orch.Run(ctx, query, sessionID)
	if err != nil {
		return state, err
	}

	p.writeStructures(state)

	// The pause is a deliberate stop: only an explicit --yes continues into
	// microscopy.
	if state.InteractivePause && yes {
		if err := p.orch.ContinueWithMicroscopy(ctx, state, technique); err != nil {
			return state, err
		}
	}

	if path, err := report.Write(state, p.cfg.Output.Dir); err != nil {
		state.AddWarning(fmt.Sprintf("report not written: %v", err))
	} else {
		state.RecordFile("report_md", path)
	}

	return state, nil
}

// writeStructures writes the XYZ snapshots and records their paths.
func (p *pipeline) writeStructures(state *workflow.State) {
	if state.Unrelaxed == nil && state.Relaxed == nil {
		return
	}
	if err := os.MkdirAll(p.cfg.Output.Dir, 0o755); err != nil {
		state.AddWarning(fmt.Sprintf("output directory not created: %v", err))
		return
	}

	prefix := "structure"
	if state.Params != nil && state.Params.MaterialFormula != "" {
		prefix = state.Params.MaterialFormula + state.Params.Face
	}

	if state.Unrelaxed != nil {
		path := filepath.Join(p.cfg.Output.Dir, prefix+"_unrelaxed.xyz")
		if err := structure.WriteXYZFile(path, state.Unrelaxed); err != nil {
			state.AddWarning(fmt.Sprintf("unrelaxed XYZ not written: %v", err))
		} else {
			state.RecordFile("unrelaxed_xyz", path)
		}
	}
	if state.Relaxed != nil {
		path := filepath.Join(p.cfg.Output.Dir, prefix+"_relaxed.xyz")
		if err := structure.WriteXYZFile(path, state.Relaxed); err != nil {
			state.AddWarning(fmt.Sprintf("relaxed XYZ not written: %v", err))
		} else {
			state.RecordFile("relaxed_xyz", path)
		}
	}
}

package telemetry_test

import (
	"context"
	"fmt"
	"time"

	"github.com/microstack/microstack/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Example_basicSetup demonstrates basic telemetry setup.
func Example_basicSetup() {
	// Create configuration
	cfg := telemetry.DefaultConfig()
	cfg.ServiceName = "microstack"
	cfg.ServiceVersion = "1.0.0"

	// Initialize telemetry
	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		panic(err)
	}
	defer tel.Shutdown(context.Background())

	// Start metrics server (non-blocking)
	if err := tel.StartMetricsServer(); err != nil {
		panic(err)
	}

	// Add telemetry to context
	ctx := tel.WithContext(context.Background())

	// Use telemetry
	logger := telemetry.FromContext(ctx)
	logger.Info("Pipeline started")

	// Output can vary, so we don't specify output for this example
}

// Example_structuredLogging demonstrates structured logging features.
func Example_structuredLogging() {
	cfg := telemetry.DevelopmentConfig()
	cfg.Logging.Output = "stdout"

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	// Component-specific logger
	logger := tel.Logger.NewComponentLogger("orchestrator")

	// Add context fields
	logger = logger.WithSessionID("session-123").WithStage("relaxed")

	// Log at different levels
	logger.Debug("Starting relaxation")
	logger.Info("Relaxation converged")
	logger.Warn("No reference data for this surface")

	// Log with error
	err := fmt.Errorf("provider timeout")
	logger.WithError(err).Error("Structure generation failed")

	// Output varies, no output specified
}

// Example_distributedTracing demonstrates distributed tracing usage.
func Example_distributedTracing() {
	cfg := telemetry.DevelopmentConfig()
	cfg.Tracing.Exporter = "stdout"

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	// Start a session span
	ctx, span := tel.Tracer.StartSessionSpan(ctx, "session-789")
	defer span.End()

	// Add attributes
	span.SetAttributes(
		telemetry.AttrElement.String("Cu"),
		telemetry.AttrFace.String("100"),
		telemetry.AttrAtomCount.Int(36),
	)

	// Nested stage span
	ctx, stageSpan := tel.Tracer.StartStageSpan(ctx, "session-789", "relaxed")
	defer stageSpan.End()

	// Simulate work
	time.Sleep(10 * time.Millisecond)

	// Record success
	telemetry.RecordSuccess(stageSpan)

	_ = ctx

	// Output varies, no output specified
}

// Example_metricsCollection demonstrates metrics collection.
func Example_metricsCollection() {
	cfg := telemetry.DefaultConfig()
	cfg.Metrics.Enabled = true
	// Keep the captured stdout to the example's own output.
	cfg.Logging.Output = "stderr"
	cfg.Tracing.Exporter = "none"

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	// Record session metrics
	tel.Metrics.RecordRunStarted()

	// Simulate session execution
	start := time.Now()
	time.Sleep(50 * time.Millisecond)
	duration := time.Since(start)

	tel.Metrics.RecordRunCompleted("terminal", duration)

	// Record provider metrics
	tel.Metrics.RecordProviderCall("parametric")
	tel.Metrics.RecordProviderFallback()

	// Record comparison metrics
	tel.Metrics.RecordAgreement("excellent")

	// Record error metrics
	tel.Metrics.RecordError("degraded")

	fmt.Println("Metrics recorded successfully")
	// Output: Metrics recorded successfully
}

// Example_eventPublishing demonstrates event publishing and subscription.
func Example_eventPublishing() {
	cfg := telemetry.DefaultConfig()
	cfg.Events.Enabled = true
	cfg.Events.EnableAsync = false // Synchronous for example

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	// Subscribe to events
	tel.Events.Subscribe(func(event telemetry.Event) {
		fmt.Printf("Event: %s - %s\n", event.Type, event.Message)
	}, nil) // No filter, receive all events

	// Publish events
	tel.Events.PublishSessionStarted("session-123", "Cu(100) surface 4 layers")
	tel.Events.PublishRelaxationCompleted("session-123", -12.5, -13.1)
	tel.Events.PublishSessionCompleted("session-123", "terminal", 25*time.Millisecond)

	// Output varies due to async nature, no output specified
}

// Example_sessionInstrumentation demonstrates instrumenting a complete session.
func Example_sessionInstrumentation() {
	cfg := telemetry.DevelopmentConfig()
	cfg.Logging.Output = "stderr"
	cfg.Tracing.Exporter = "none"
	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	// Start session context
	sessionID := "session-123"
	ctx = telemetry.WithSessionContext(ctx, sessionID, "Pt(111) slab")

	// Execute session (simulated)
	logger := telemetry.FromContext(ctx)
	logger.Info("Running pipeline")
	start := time.Now()
	time.Sleep(10 * time.Millisecond)

	// End session context
	telemetry.EndSessionContext(ctx, sessionID, "terminal", time.Since(start), nil)

	fmt.Println("Session instrumentation complete")
	// Output: Session instrumentation complete
}

// Example_providerInstrumentation demonstrates instrumenting provider calls.
func Example_providerInstrumentation() {
	cfg := telemetry.DevelopmentConfig()
	cfg.Logging.Output = "stderr"
	cfg.Tracing.Exporter = "none"
	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	// Record provider operation
	err := telemetry.RecordProviderOperation(ctx, "script", func() error {
		// Simulate provider work
		time.Sleep(15 * time.Millisecond)
		return nil
	})

	if err == nil {
		fmt.Println("Provider operation completed successfully")
	}

	// Output: Provider operation completed successfully
}

// Example_instrumentedOperation demonstrates using the InstrumentedContext helper.
func Example_instrumentedOperation() {
	cfg := telemetry.DevelopmentConfig()
	cfg.Logging.Output = "stderr"
	cfg.Tracing.Exporter = "none"
	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	// Start instrumented operation
	ic := telemetry.StartOperation(ctx, "compare.run",
		attribute.String("material.element", "Cu"),
	)
	defer ic.End(nil)

	// Use the instrumented context
	ic.Logger.Info("Comparing against reference data")

	// Simulate comparison
	time.Sleep(5 * time.Millisecond)

	ic.Logger.Debug("Comparison complete")

	fmt.Println("Operation instrumentation complete")
	// Output: Operation instrumentation complete
}

// Example_eventFiltering demonstrates event filtering.
func Example_eventFiltering() {
	cfg := telemetry.DefaultConfig()
	cfg.Events.Enabled = true
	cfg.Events.EnableAsync = false

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	// Subscribe with level filter (only warnings and errors)
	tel.Events.Subscribe(func(event telemetry.Event) {
		fmt.Printf("Important event: %s\n", event.Type)
	}, telemetry.FilterByLevel(telemetry.EventLevelWarning))

	// Subscribe with type filter (only fallback events)
	tel.Events.Subscribe(func(event telemetry.Event) {
		fmt.Printf("Fallback event: %s\n", event.Message)
	}, telemetry.FilterByType(telemetry.EventTypeProviderFallback))

	// Publish various events
	tel.Events.PublishSessionStarted("session-123", "query")                       // Info - filtered by level filter
	tel.Events.PublishProviderFallback("session-123", "script", "parametric", "timeout") // Warning - passes level filter
	tel.Events.PublishSessionFailed("session-123", "all providers exhausted")      // Error - passes level filter

	// Output varies, no output specified
}

// Example_productionConfiguration demonstrates production-ready configuration.
func Example_productionConfiguration() {
	cfg := telemetry.ProductionConfig()

	// Customize for your environment
	cfg.ServiceName = "microstack"
	cfg.ServiceVersion = "1.2.3"
	cfg.Environment = "production"

	// Configure OTLP exporter
	cfg.Tracing.Exporter = "otlp"
	cfg.Tracing.Endpoint = "otel-collector.monitoring.svc.cluster.local:4317"
	cfg.Tracing.SamplingRate = 0.1 // 10% sampling
	cfg.Tracing.Insecure = false   // Use TLS in production

	// Configure metrics
	cfg.Metrics.ListenAddress = ":9090"
	cfg.Metrics.Namespace = "microstack"

	// Configure events
	cfg.Events.BufferSize = 10000

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	fmt.Println("Production configuration validated")
	// Output: Production configuration validated
}

// Example_errorRecording demonstrates error recording with proper classification.
func Example_errorRecording() {
	cfg := telemetry.DevelopmentConfig()
	cfg.Logging.Output = "stderr"
	cfg.Tracing.Exporter = "none"
	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	// Start a span
	ctx, span := tel.Tracer.StartProviderSpan(ctx, "script")
	defer span.End()

	// Simulate an error
	err := fmt.Errorf("script evaluation timeout")

	if err != nil {
		// Record error on span
		telemetry.RecordError(span, err)

		// Record error metric with classification
		tel.Metrics.RecordError("degraded")

		// Log error
		logger := telemetry.FromContext(ctx)
		logger.WithError(err).Error("Provider failed")
	}

	fmt.Println("Error recording complete")
	// Output: Error recording complete
}

// Example_multipleComponents demonstrates telemetry in a multi-component system.
func Example_multipleComponents() {
	cfg := telemetry.DevelopmentConfig()
	cfg.Logging.Output = "stderr"
	cfg.Tracing.Exporter = "none"
	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	// Component-specific loggers
	orchestratorLogger := tel.Logger.NewComponentLogger("orchestrator")
	relaxLogger := tel.Logger.NewComponentLogger("relax")
	compareLogger := tel.Logger.NewComponentLogger("compare")

	orchestratorLogger.Info("Pipeline initialized")
	relaxLogger.Info("Relaxation engine ready")
	compareLogger.Info("Reference store loaded")

	fmt.Println("Multi-component logging complete")
	// Output: Multi-component logging complete
}

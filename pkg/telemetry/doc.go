// Package telemetry provides observability instrumentation for the µStack pipeline.
//
// The telemetry package integrates structured logging (zerolog), distributed tracing
// (OpenTelemetry), metrics (Prometheus), and event publishing into a unified system
// for monitoring and debugging pipeline sessions.
//
// # Architecture
//
// The telemetry system is built on four pillars:
//
//  1. Structured Logging - Context-aware logging with zerolog
//  2. Distributed Tracing - OpenTelemetry traces with multiple exporters
//  3. Metrics Collection - Prometheus metrics for operational insights
//  4. Event Publishing - Async event system for audit and notifications
//
// # Usage
//
// Initialize telemetry at application startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceName = "microstack"
//	cfg.ServiceVersion = "1.0.0"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	// Start metrics server
//	if err := tel.StartMetricsServer(); err != nil {
//	    log.Fatal(err)
//	}
//
// Add telemetry to context:
//
//	ctx = tel.WithContext(ctx)
//
// # Structured Logging
//
// The logger provides component-specific logging with automatic context propagation:
//
//	logger := tel.Logger.NewComponentLogger("orchestrator")
//	logger = logger.WithSessionID("session-123").WithStage("relaxed")
//	logger.Info("Relaxation finished")
//	logger.WithError(err).Error("Provider failed")
//
// Log levels: trace, debug, info, warn, error, fatal
//
// # Distributed Tracing
//
// Tracing provides visibility into session flow and performance:
//
//	ctx, span := tel.Tracer.StartSessionSpan(ctx, sessionID)
//	defer span.End()
//
//	span.SetAttributes(
//	    telemetry.AttrElement.String("Cu"),
//	    telemetry.AttrFace.String("100"),
//	)
//
//	if err != nil {
//	    telemetry.RecordError(span, err)
//	}
//
// Supported exporters: OTLP (production), Stdout (development)
//
// # Metrics
//
// Prometheus metrics track pipeline behavior and performance:
//
//	tel.Metrics.RecordRunStarted()
//	tel.Metrics.RecordRunCompleted("terminal", duration)
//	tel.Metrics.RecordProviderCall("script")
//	tel.Metrics.RecordProviderFallback()
//	tel.Metrics.RecordAgreement("excellent")
//
// Metrics are exposed via HTTP at /metrics (default: :9090/metrics)
//
// # Event Publishing
//
// The event system provides async publishing with buffering and filtering:
//
//	tel.Events.PublishSessionStarted(sessionID, query)
//	tel.Events.PublishComparisonGraded(sessionID, "good", "Lindgren et al.")
//
//	tel.Events.Subscribe(func(event telemetry.Event) {
//	    fmt.Printf("Event: %s - %s\n", event.Type, event.Message)
//	}, telemetry.FilterByLevel("warning"))
//
// Event filters: FilterByLevel, FilterByType, FilterBySessionID
//
// # Context Helpers
//
// High-level helpers simplify common instrumentation patterns:
//
//	ic := telemetry.StartOperation(ctx, "compare.run")
//	defer ic.End(err)
//
//	ctx = telemetry.WithSessionContext(ctx, sessionID, query)
//	defer telemetry.EndSessionContext(ctx, sessionID, stage, duration, err)
//
//	err := telemetry.RecordProviderOperation(ctx, "parametric", func() error {
//	    return provider.Generate(ctx, req)
//	})
//
// # Configuration
//
// The package provides pre-configured setups for different environments:
//
//	cfg := telemetry.DevelopmentConfig() // verbose logging, stdout traces
//	cfg := telemetry.ProductionConfig()  // JSON logs, OTLP traces, 10% sampling
//
// # Common Metrics
//
// Key metrics exposed:
//
//   - microstack_runs_started_total
//   - microstack_runs_completed_total{stage}
//   - microstack_run_duration_seconds{stage}
//   - microstack_provider_calls_total{provider}
//   - microstack_provider_errors_total{provider}
//   - microstack_provider_fallbacks_total
//   - microstack_agreement_verdicts_total{verdict}
//   - microstack_relaxation_duration_seconds
//   - microstack_errors_by_class_total{class}
//   - microstack_active_runs
//
// # Graceful Shutdown
//
// Always shut down telemetry gracefully to flush pending data:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//
//	if err := tel.Shutdown(ctx); err != nil {
//	    log.Printf("telemetry shutdown error: %v", err)
//	}
package telemetry

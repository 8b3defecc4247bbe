package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event represents a pipeline telemetry event.
type Event struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type is the event type.
	Type string `json:"type"`

	// Source identifies where the event originated.
	Source string `json:"source"`

	// SessionID is the associated request session, if applicable.
	SessionID string `json:"session_id,omitempty"`

	// Stage is the associated pipeline stage, if applicable.
	Stage string `json:"stage,omitempty"`

	// Message is a human-readable event message.
	Message string `json:"message"`

	// Level is the event severity level (info, warning, error).
	Level string `json:"level"`

	// Data contains additional event-specific data.
	Data map[string]interface{} `json:"data,omitempty"`
}

// EventType constants for common event types.
const (
	EventTypeSessionStarted      = "session.started"
	EventTypeSessionCompleted    = "session.completed"
	EventTypeSessionFailed       = "session.failed"
	EventTypeStageAdvanced       = "stage.advanced"
	EventTypeProviderFallback    = "provider.fallback"
	EventTypeRelaxationCompleted = "relaxation.completed"
	EventTypeComparisonGraded    = "comparison.graded"
	EventTypeMicroscopyRouted    = "microscopy.routed"
	EventTypeError               = "error"
)

// EventLevel constants for event severity.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// EventSubscriber is a function that handles events.
type EventSubscriber func(event Event)

// EventFilter determines if an event should be processed.
type EventFilter func(event Event) bool

// EventPublisher manages event publishing and subscriptions.
type EventPublisher struct {
	config      EventsConfig
	buffer      chan Event
	subscribers []subscriberEntry
	filters     []EventFilter
	wg          sync.WaitGroup
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

type subscriberEntry struct {
	subscriber EventSubscriber
	filter     EventFilter
}

// NewEventPublisher creates a new event publisher with the given configuration.
func NewEventPublisher(cfg EventsConfig) (*EventPublisher, error) {
	if !cfg.Enabled {
		return &EventPublisher{config: cfg}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	ep := &EventPublisher{
		config:      cfg,
		buffer:      make(chan Event, cfg.BufferSize),
		subscribers: make([]subscriberEntry, 0),
		filters:     make([]EventFilter, 0),
		ctx:         ctx,
		cancel:      cancel,
	}

	// Start the event processing goroutine
	if cfg.EnableAsync {
		ep.wg.Add(1)
		go ep.processEvents()
	}

	return ep, nil
}

// Publish publishes an event to all subscribers.
func (ep *EventPublisher) Publish(event Event) error {
	if !ep.config.Enabled {
		return nil
	}

	// Set ID and timestamp if not already set
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Apply global filters
	ep.mu.RLock()
	for _, filter := range ep.filters {
		if !filter(event) {
			ep.mu.RUnlock()
			return nil // Event filtered out
		}
	}
	ep.mu.RUnlock()

	// Send to buffer if async, otherwise process immediately
	if ep.config.EnableAsync {
		select {
		case ep.buffer <- event:
			return nil
		case <-ep.ctx.Done():
			return fmt.Errorf("event publisher stopped")
		default:
			// Buffer full, drop event or log warning
			return fmt.Errorf("event buffer full, event dropped")
		}
	}

	// Synchronous publishing
	ep.deliverEvent(event)
	return nil
}

// PublishSessionStarted publishes a session started event.
func (ep *EventPublisher) PublishSessionStarted(sessionID, query string) error {
	return ep.Publish(Event{
		Type:      EventTypeSessionStarted,
		Source:    "orchestrator",
		SessionID: sessionID,
		Message:   fmt.Sprintf("Session %s started", sessionID),
		Level:     EventLevelInfo,
		Data: map[string]interface{}{
			"query": query,
		},
	})
}

// PublishSessionCompleted publishes a session completed event.
func (ep *EventPublisher) PublishSessionCompleted(sessionID, stage string, duration time.Duration) error {
	return ep.Publish(Event{
		Type:      EventTypeSessionCompleted,
		Source:    "orchestrator",
		SessionID: sessionID,
		Stage:     stage,
		Message:   fmt.Sprintf("Session %s completed at stage %s", sessionID, stage),
		Level:     EventLevelInfo,
		Data: map[string]interface{}{
			"duration": duration.Seconds(),
		},
	})
}

// PublishSessionFailed publishes a session failed event.
func (ep *EventPublisher) PublishSessionFailed(sessionID, reason string) error {
	return ep.Publish(Event{
		Type:      EventTypeSessionFailed,
		Source:    "orchestrator",
		SessionID: sessionID,
		Message:   fmt.Sprintf("Session %s failed: %s", sessionID, reason),
		Level:     EventLevelError,
		Data: map[string]interface{}{
			"reason": reason,
		},
	})
}

// PublishStageAdvanced publishes a stage transition event.
func (ep *EventPublisher) PublishStageAdvanced(sessionID, stage string) error {
	return ep.Publish(Event{
		Type:      EventTypeStageAdvanced,
		Source:    "orchestrator",
		SessionID: sessionID,
		Stage:     stage,
		Message:   fmt.Sprintf("Session %s advanced to %s", sessionID, stage),
		Level:     EventLevelInfo,
	})
}

// PublishProviderFallback publishes a provider fallback event.
func (ep *EventPublisher) PublishProviderFallback(sessionID, from, to, reason string) error {
	return ep.Publish(Event{
		Type:      EventTypeProviderFallback,
		Source:    "orchestrator",
		SessionID: sessionID,
		Message:   fmt.Sprintf("Provider %s failed, falling back to %s", from, to),
		Level:     EventLevelWarning,
		Data: map[string]interface{}{
			"from":   from,
			"to":     to,
			"reason": reason,
		},
	})
}

// PublishRelaxationCompleted publishes a relaxation completed event.
func (ep *EventPublisher) PublishRelaxationCompleted(sessionID string, initial, final float64) error {
	return ep.Publish(Event{
		Type:      EventTypeRelaxationCompleted,
		Source:    "relax",
		SessionID: sessionID,
		Message:   fmt.Sprintf("Relaxation finished: %.4f -> %.4f eV", initial, final),
		Level:     EventLevelInfo,
		Data: map[string]interface{}{
			"initial_energy": initial,
			"final_energy":   final,
		},
	})
}

// PublishComparisonGraded publishes a comparison verdict event.
func (ep *EventPublisher) PublishComparisonGraded(sessionID, verdict, source string) error {
	return ep.Publish(Event{
		Type:      EventTypeComparisonGraded,
		Source:    "compare",
		SessionID: sessionID,
		Message:   fmt.Sprintf("Agreement with %s: %s", source, verdict),
		Level:     EventLevelInfo,
		Data: map[string]interface{}{
			"verdict":   verdict,
			"reference": source,
		},
	})
}

// PublishMicroscopyRouted publishes a routing decision event.
func (ep *EventPublisher) PublishMicroscopyRouted(sessionID, target string) error {
	return ep.Publish(Event{
		Type:      EventTypeMicroscopyRouted,
		Source:    "router",
		SessionID: sessionID,
		Message:   fmt.Sprintf("Microscopy routed to %s", target),
		Level:     EventLevelInfo,
		Data: map[string]interface{}{
			"target": target,
		},
	})
}

// Subscribe adds a new event subscriber.
func (ep *EventPublisher) Subscribe(subscriber EventSubscriber, filter EventFilter) {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	ep.subscribers = append(ep.subscribers, subscriberEntry{
		subscriber: subscriber,
		filter:     filter,
	})
}

// AddFilter adds a global event filter.
func (ep *EventPublisher) AddFilter(filter EventFilter) {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	ep.filters = append(ep.filters, filter)
}

// processEvents processes events from the buffer asynchronously.
func (ep *EventPublisher) processEvents() {
	defer ep.wg.Done()

	for {
		select {
		case event := <-ep.buffer:
			ep.deliverEvent(event)
		case <-ep.ctx.Done():
			// Drain remaining events before shutting down
			for {
				select {
				case event := <-ep.buffer:
					ep.deliverEvent(event)
				default:
					return
				}
			}
		}
	}
}

// deliverEvent delivers an event to all subscribers.
func (ep *EventPublisher) deliverEvent(event Event) {
	ep.mu.RLock()
	defer ep.mu.RUnlock()

	for _, entry := range ep.subscribers {
		// Apply subscriber-specific filter
		if entry.filter != nil && !entry.filter(event) {
			continue
		}
		entry.subscriber(event)
	}
}

// Shutdown gracefully shuts down the event publisher.
func (ep *EventPublisher) Shutdown(ctx context.Context) error {
	if !ep.config.Enabled {
		return nil
	}

	// Signal shutdown
	ep.cancel()

	// Wait for processing to complete with timeout
	done := make(chan struct{})
	go func() {
		ep.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event publisher shutdown timeout")
	}
}

// Common event filters.

// FilterByLevel creates a filter that only allows events of a specific level or higher.
func FilterByLevel(minLevel string) EventFilter {
	levels := map[string]int{
		EventLevelInfo:    0,
		EventLevelWarning: 1,
		EventLevelError:   2,
	}

	minLevelValue := levels[minLevel]

	return func(event Event) bool {
		return levels[event.Level] >= minLevelValue
	}
}

// FilterByType creates a filter that only allows events of specific types.
func FilterByType(types ...string) EventFilter {
	typeSet := make(map[string]bool)
	for _, t := range types {
		typeSet[t] = true
	}

	return func(event Event) bool {
		return typeSet[event.Type]
	}
}

// FilterBySessionID creates a filter that only allows events for a specific session.
func FilterBySessionID(sessionID string) EventFilter {
	return func(event Event) bool {
		return event.SessionID == sessionID
	}
}

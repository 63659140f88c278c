// Package messaging provides the in-process domain event dispatcher.
package messaging

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"simstudio-backend/application/ports"
	"simstudio-backend/domain/events"
	"simstudio-backend/pkg/observability"
)

// Dispatcher is a synchronous in-process event bus. Handlers run in
// publish order on the publisher's goroutine; a failing handler is logged
// and does not stop delivery to the remaining handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]ports.EventHandler
	logger   *zap.Logger
}

// NewDispatcher creates an event dispatcher
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]ports.EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event type
func (d *Dispatcher) Subscribe(eventType string, handler ports.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

// Publish delivers an event to every handler subscribed to its type
func (d *Dispatcher) Publish(ctx context.Context, event events.DomainEvent) error {
	d.mu.RLock()
	handlers := d.handlers[event.GetEventType()]
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			d.logger.Warn("Event handler failed",
				zap.String("event_type", event.GetEventType()),
				zap.String("aggregate_id", event.GetAggregateID()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// LoggingListener writes one structured log line per domain event
type LoggingListener struct {
	logger *zap.Logger
}

// NewLoggingListener creates a logging listener
func NewLoggingListener(logger *zap.Logger) *LoggingListener {
	return &LoggingListener{logger: logger}
}

// HandleEvent implements ports.EventHandler
func (l *LoggingListener) HandleEvent(_ context.Context, event events.DomainEvent) error {
	l.logger.Info("Domain event",
		zap.String("event_type", event.GetEventType()),
		zap.String("aggregate_id", event.GetAggregateID()),
		zap.Time("timestamp", event.GetTimestamp()),
	)
	return nil
}

// MetricsListener counts deploys and simulated dispatches
type MetricsListener struct {
	metrics *observability.Metrics
}

// NewMetricsListener creates a metrics listener
func NewMetricsListener(metrics *observability.Metrics) *MetricsListener {
	return &MetricsListener{metrics: metrics}
}

// HandleEvent implements ports.EventHandler
func (l *MetricsListener) HandleEvent(_ context.Context, event events.DomainEvent) error {
	switch e := event.(type) {
	case events.GraphDeployed:
		l.metrics.GraphDeploys.Inc()
	case events.SimulationExecuted:
		l.metrics.Simulations.WithLabelValues(e.Outcome).Inc()
	}
	return nil
}

// RegisterListeners subscribes the standard listeners to the runtime
// event types
func RegisterListeners(bus ports.EventBus, logger *zap.Logger, metrics *observability.Metrics) {
	logging := NewLoggingListener(logger)
	bus.Subscribe("runtime.graph_deployed", logging)
	bus.Subscribe("runtime.simulation_executed", logging)

	if metrics != nil {
		counting := NewMetricsListener(metrics)
		bus.Subscribe("runtime.graph_deployed", counting)
		bus.Subscribe("runtime.simulation_executed", counting)
	}
}

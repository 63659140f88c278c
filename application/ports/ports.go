package ports

import (
	"context"
	"time"

	"simstudio-backend/domain/core/aggregates"
	"simstudio-backend/domain/events"
)

// RuntimeSnapshot is one complete, immutable deployment of the design graph.
// Readers always receive a whole snapshot; there is no partial view.
type RuntimeSnapshot struct {
	Collection *aggregates.GraphCollection
	UpdatedAt  time.Time
}

// RuntimeState is the single shared resource of the runtime: the currently
// deployed graph collection. Install atomically replaces the snapshot;
// Current returns the present one or nil before the first deploy. The state
// is process-local by design; horizontally scaled instances each hold their
// own active graph.
type RuntimeState interface {
	Install(collection *aggregates.GraphCollection) RuntimeSnapshot
	Current() *RuntimeSnapshot
}

// EventHandler consumes domain events
type EventHandler interface {
	HandleEvent(ctx context.Context, event events.DomainEvent) error
}

// EventBus publishes domain events to in-process listeners
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	Subscribe(eventType string, handler EventHandler)
}

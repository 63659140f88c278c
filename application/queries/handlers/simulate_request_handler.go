package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"simstudio-backend/application/ports"
	"simstudio-backend/application/queries"
	"simstudio-backend/application/queries/bus"
	"simstudio-backend/application/simulation"
	"simstudio-backend/domain/events"
	pkgerrors "simstudio-backend/pkg/errors"
)

// SimulateRequestHandler dispatches one simulated REST call against the
// active runtime state
type SimulateRequestHandler struct {
	state     ports.RuntimeState
	simulator *simulation.Simulator
	eventBus  ports.EventBus
	logger    *zap.Logger
}

// NewSimulateRequestHandler creates a simulate handler
func NewSimulateRequestHandler(
	state ports.RuntimeState,
	simulator *simulation.Simulator,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *SimulateRequestHandler {
	return &SimulateRequestHandler{
		state:     state,
		simulator: simulator,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// Handle implements bus.QueryHandler. A simulated call that matches no
// binding is a normal result with Matched false, not an error; blocking
// boundary issues and a missing deployment surface as AppErrors.
func (h *SimulateRequestHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.SimulateRequestQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}

	snapshot := h.state.Current()
	if snapshot == nil {
		h.publish(ctx, q, "not_initialized", 0)
		return nil, pkgerrors.NewNotInitializedError()
	}

	flow, err := h.simulator.ExecuteRestRequest(snapshot.Collection, simulation.Request{
		Method:  q.Method,
		Path:    q.Path,
		Payload: q.Payload,
	})
	if err != nil {
		h.publish(ctx, q, "refused", 0)
		return nil, err
	}

	if flow == nil {
		h.publish(ctx, q, "unmatched", 0)
		return queries.SimulateRequestResult{
			Matched:   false,
			Method:    q.Method,
			Path:      q.Path,
			UpdatedAt: snapshot.UpdatedAt,
		}, nil
	}

	result := queries.SimulateRequestResult{
		Matched:   true,
		Status:    flow.Response.Status,
		Body:      flow.Response.Body,
		Method:    q.Method,
		Path:      q.Path,
		UpdatedAt: snapshot.UpdatedAt,
	}
	if q.Debug {
		result.Debug = &queries.SimulateDebug{
			APINode:        flow.APINode,
			FinalNode:      flow.FinalNode,
			ExecutionOrder: flow.ExecutionOrder,
		}
	}

	h.publish(ctx, q, "dispatched", flow.Response.Status)
	return result, nil
}

func (h *SimulateRequestHandler) publish(ctx context.Context, q queries.SimulateRequestQuery, outcome string, status int) {
	event := events.NewSimulationExecuted(uuid.New().String(), q.Method, q.Path, outcome, status, time.Now())
	if err := h.eventBus.Publish(ctx, event); err != nil {
		h.logger.Warn("Failed to publish simulation event",
			zap.String("path", q.Path),
			zap.Error(err),
		)
	}
}

package handlers

import (
	"context"
	"fmt"

	"simstudio-backend/application/planner"
	"simstudio-backend/application/ports"
	"simstudio-backend/application/queries"
	"simstudio-backend/application/queries/bus"
	pkgerrors "simstudio-backend/pkg/errors"
)

// PlanExecutionHandler answers PlanExecutionQuery
type PlanExecutionHandler struct {
	state   ports.RuntimeState
	planner *planner.Planner
}

// NewPlanExecutionHandler creates a plan handler
func NewPlanExecutionHandler(state ports.RuntimeState, p *planner.Planner) *PlanExecutionHandler {
	return &PlanExecutionHandler{state: state, planner: p}
}

// Handle implements bus.QueryHandler
func (h *PlanExecutionHandler) Handle(_ context.Context, query bus.Query) (interface{}, error) {
	if _, ok := query.(queries.PlanExecutionQuery); !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}

	snapshot := h.state.Current()
	if snapshot == nil {
		return nil, pkgerrors.NewNotInitializedError()
	}

	order, err := h.planner.Plan(snapshot.Collection)
	if err != nil {
		return nil, err
	}

	return queries.PlanExecutionResult{
		ExecutionOrder: order,
		TotalNodes:     len(order),
		UpdatedAt:      snapshot.UpdatedAt,
	}, nil
}

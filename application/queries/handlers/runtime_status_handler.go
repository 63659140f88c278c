package handlers

import (
	"context"
	"fmt"

	"simstudio-backend/application/ports"
	"simstudio-backend/application/queries"
	"simstudio-backend/application/queries/bus"
)

// RuntimeStatusHandler answers GetRuntimeStatusQuery
type RuntimeStatusHandler struct {
	state ports.RuntimeState
}

// NewRuntimeStatusHandler creates a runtime status handler
func NewRuntimeStatusHandler(state ports.RuntimeState) *RuntimeStatusHandler {
	return &RuntimeStatusHandler{state: state}
}

// Handle implements bus.QueryHandler
func (h *RuntimeStatusHandler) Handle(_ context.Context, query bus.Query) (interface{}, error) {
	if _, ok := query.(queries.GetRuntimeStatusQuery); !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}

	snapshot := h.state.Current()
	if snapshot == nil {
		return queries.RuntimeStatusResult{Deployed: false}, nil
	}

	updatedAt := snapshot.UpdatedAt
	return queries.RuntimeStatusResult{
		Deployed:  true,
		UpdatedAt: &updatedAt,
		Tabs:      snapshot.Collection.TabNames(),
		Nodes:     snapshot.Collection.NodeCount(),
		Edges:     snapshot.Collection.EdgeCount(),
	}, nil
}

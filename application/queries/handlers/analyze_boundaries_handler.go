package handlers

import (
	"context"
	"fmt"

	"simstudio-backend/application/boundary"
	"simstudio-backend/application/ports"
	"simstudio-backend/application/queries"
	"simstudio-backend/application/queries/bus"
	pkgerrors "simstudio-backend/pkg/errors"
)

// AnalyzeBoundariesHandler answers AnalyzeBoundariesQuery
type AnalyzeBoundariesHandler struct {
	state    ports.RuntimeState
	analyzer *boundary.Analyzer
}

// NewAnalyzeBoundariesHandler creates an analyze handler
func NewAnalyzeBoundariesHandler(state ports.RuntimeState, a *boundary.Analyzer) *AnalyzeBoundariesHandler {
	return &AnalyzeBoundariesHandler{state: state, analyzer: a}
}

// Handle implements bus.QueryHandler
func (h *AnalyzeBoundariesHandler) Handle(_ context.Context, query bus.Query) (interface{}, error) {
	if _, ok := query.(queries.AnalyzeBoundariesQuery); !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}

	snapshot := h.state.Current()
	if snapshot == nil {
		return nil, pkgerrors.NewNotInitializedError()
	}

	issues := h.analyzer.Analyze(snapshot.Collection)
	return queries.AnalyzeBoundariesResult{
		Issues:    issues,
		Blocking:  len(boundary.Blocking(issues)),
		UpdatedAt: snapshot.UpdatedAt,
	}, nil
}

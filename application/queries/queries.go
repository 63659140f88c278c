package queries

import "errors"

// GetRuntimeStatusQuery asks whether a graph is deployed and what it holds
type GetRuntimeStatusQuery struct{}

// Validate implements bus.Query
func (q GetRuntimeStatusQuery) Validate() error { return nil }

// PlanExecutionQuery computes the execution order of the active graph
type PlanExecutionQuery struct{}

// Validate implements bus.Query
func (q PlanExecutionQuery) Validate() error { return nil }

// AnalyzeBoundariesQuery runs the boundary analyzer over the active graph
type AnalyzeBoundariesQuery struct{}

// Validate implements bus.Query
func (q AnalyzeBoundariesQuery) Validate() error { return nil }

// SimulateRequestQuery dispatches one simulated REST call against the
// active graph. Debug requests the matched nodes and full execution order
// in the result.
type SimulateRequestQuery struct {
	Method  string
	Path    string
	Payload map[string]interface{}
	Debug   bool
}

// Validate implements bus.Query
func (q SimulateRequestQuery) Validate() error {
	if q.Method == "" {
		return errors.New("method is required")
	}
	if q.Path == "" {
		return errors.New("path is required")
	}
	return nil
}

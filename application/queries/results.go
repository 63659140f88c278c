package queries

import (
	"time"

	"simstudio-backend/application/boundary"
	"simstudio-backend/application/planner"
	"simstudio-backend/domain/core/entities"
)

// RuntimeStatusResult describes the active deployment, if any
type RuntimeStatusResult struct {
	Deployed  bool       `json:"deployed"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Tabs      []string   `json:"tabs,omitempty"`
	Nodes     int        `json:"nodes"`
	Edges     int        `json:"edges"`
}

// PlanExecutionResult carries the computed execution order
type PlanExecutionResult struct {
	ExecutionOrder planner.ExecutionOrder `json:"execution_order"`
	TotalNodes     int                    `json:"total_nodes"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// AnalyzeBoundariesResult carries the analyzer findings
type AnalyzeBoundariesResult struct {
	Issues    []boundary.Issue `json:"issues"`
	Blocking  int              `json:"blocking"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// SimulateDebug is the optional trace attached to a simulated response
type SimulateDebug struct {
	APINode        entities.Node          `json:"api_node"`
	FinalNode      entities.Node          `json:"final_node"`
	ExecutionOrder planner.ExecutionOrder `json:"execution_order"`
}

// SimulateRequestResult is the outcome of one simulated dispatch. Matched
// false carries the request coordinates and the deploy timestamp so the
// caller can shape a not-found response that is reproducible.
type SimulateRequestResult struct {
	Matched   bool                   `json:"matched"`
	Status    int                    `json:"status,omitempty"`
	Body      map[string]interface{} `json:"body,omitempty"`
	Method    string                 `json:"method"`
	Path      string                 `json:"path"`
	UpdatedAt time.Time              `json:"updated_at"`
	Debug     *SimulateDebug         `json:"debug,omitempty"`
}

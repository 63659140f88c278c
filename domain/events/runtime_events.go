package events

import "time"

// GraphDeployed is raised when a graph collection is installed as the
// active runtime state
type GraphDeployed struct {
	BaseEvent
	Tabs  int `json:"tabs"`
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// NewGraphDeployed creates a GraphDeployed event
func NewGraphDeployed(deployID string, tabs, nodes, edges int, timestamp time.Time) GraphDeployed {
	return GraphDeployed{
		BaseEvent: BaseEvent{
			AggregateID: deployID,
			EventType:   "runtime.graph_deployed",
			Timestamp:   timestamp,
			Version:     1,
		},
		Tabs:  tabs,
		Nodes: nodes,
		Edges: edges,
	}
}

// SimulationExecuted is raised after each simulated request dispatch,
// whatever its outcome
type SimulationExecuted struct {
	BaseEvent
	Method  string `json:"method"`
	Path    string `json:"path"`
	Outcome string `json:"outcome"`
	Status  int    `json:"status"`
}

// NewSimulationExecuted creates a SimulationExecuted event
func NewSimulationExecuted(requestID, method, path, outcome string, status int, timestamp time.Time) SimulationExecuted {
	return SimulationExecuted{
		BaseEvent: BaseEvent{
			AggregateID: requestID,
			EventType:   "runtime.simulation_executed",
			Timestamp:   timestamp,
			Version:     1,
		},
		Method:  method,
		Path:    path,
		Outcome: outcome,
		Status:  status,
	}
}

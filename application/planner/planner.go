package planner

import (
	"go.uber.org/zap"

	"simstudio-backend/domain/core/aggregates"
	"simstudio-backend/domain/core/entities"
	"simstudio-backend/domain/core/valueobjects"
	pkgerrors "simstudio-backend/pkg/errors"
)

// PlannedNode is one slot of an execution order
type PlannedNode struct {
	Node  entities.Node `json:"node"`
	Index int           `json:"index"`
}

// ExecutionOrder is the deterministic topological sequence in which the
// collection's nodes would run
type ExecutionOrder []PlannedNode

// NodeIDs returns the ordered node ids, mainly for logging and tests
func (o ExecutionOrder) NodeIDs() []string {
	ids := make([]string, 0, len(o))
	for _, planned := range o {
		ids = append(ids, planned.Node.ID.String())
	}
	return ids
}

// OrderHook observes planning progress. It is invoked exactly once per node,
// strictly in output order, with a 0-based index and total equal to the
// final order length. Hooks never change the computed order.
type OrderHook func(node entities.Node, index, total int)

// Planner computes deterministic topological orders over graph collections
type Planner struct {
	logger *zap.Logger
}

// NewPlanner creates a planner
func NewPlanner(logger *zap.Logger) *Planner {
	return &Planner{logger: logger}
}

// Plan computes the execution order for a collection
func (p *Planner) Plan(collection *aggregates.GraphCollection) (ExecutionOrder, error) {
	return p.PlanWithHook(collection, nil)
}

// PlanWithHook computes the execution order and, on success, replays it
// through the hook. Hooks fire only after the full order exists so that a
// cyclic graph produces no partial observations.
//
// The algorithm is Kahn's: in-degrees are computed from the resolvable
// edges, zero-in-degree nodes are extracted repeatedly, and ties are broken
// by authoring order (node position flattened across tabs in declaration
// order) so repeated runs on the same input yield identical orders.
func (p *Planner) PlanWithHook(collection *aggregates.GraphCollection, hook OrderHook) (ExecutionOrder, error) {
	nodes := collection.Nodes()

	position := make(map[valueobjects.NodeID]int, len(nodes))
	for i, node := range nodes {
		// first occurrence wins on cross-tab id collisions, matching the
		// collection's lookup index
		if _, seen := position[node.ID]; !seen {
			position[node.ID] = i
		}
	}

	indegree := make(map[valueobjects.NodeID]int, len(nodes))
	successors := make(map[valueobjects.NodeID][]valueobjects.NodeID)
	for _, node := range nodes {
		if _, ok := indegree[node.ID]; !ok {
			indegree[node.ID] = 0
		}
	}
	resolved := collection.ResolvedEdges()
	for _, edge := range resolved {
		indegree[edge.Target]++
		successors[edge.Source] = append(successors[edge.Source], edge.Target)
	}

	if dropped := collection.DanglingEdges(); len(dropped) > 0 {
		p.logger.Warn("Ignoring dangling edges during planning",
			zap.Int("count", len(dropped)),
		)
	}

	// ready holds the zero-in-degree frontier; extraction always picks the
	// node with the lowest authoring position. Duplicate ids collapse to
	// their first occurrence, matching the collection's lookup index.
	var ready []valueobjects.NodeID
	for i, node := range nodes {
		if position[node.ID] == i && indegree[node.ID] == 0 {
			ready = append(ready, node.ID)
		}
	}

	order := make(ExecutionOrder, 0, len(indegree))
	for len(ready) > 0 {
		best := 0
		for i := 1; i < len(ready); i++ {
			if position[ready[i]] < position[ready[best]] {
				best = i
			}
		}
		id := ready[best]
		ready = append(ready[:best], ready[best+1:]...)

		node, _ := collection.NodeByID(id)
		order = append(order, PlannedNode{Node: node, Index: len(order)})

		for _, succ := range successors[id] {
			indegree[succ]--
			if indegree[succ] == 0 {
				ready = append(ready, succ)
			}
		}
	}

	if len(order) != len(indegree) {
		var remaining []string
		for _, node := range nodes {
			if deg, ok := indegree[node.ID]; ok && deg > 0 {
				remaining = append(remaining, node.ID.String())
			}
		}
		p.logger.Warn("Planning failed: cycle detected",
			zap.Strings("cyclic_nodes", remaining),
		)
		return nil, pkgerrors.NewCyclicGraphError(remaining)
	}

	if hook != nil {
		total := len(order)
		for _, planned := range order {
			hook(planned.Node, planned.Index, total)
		}
	}

	return order, nil
}

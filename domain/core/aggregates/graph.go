package aggregates

import (
	"simstudio-backend/domain/core/entities"
	"simstudio-backend/domain/core/valueobjects"
)

// Edge is a directed relation between two nodes: source execution enables
// the target
type Edge struct {
	Source valueobjects.NodeID `json:"source"`
	Target valueobjects.NodeID `json:"target"`
}

// Graph is one design tab's worth of nodes and edges. Node order is the
// authoring order in the editor and is the stable tie-break everywhere the
// runtime needs a deterministic sequence.
type Graph struct {
	Nodes []entities.Node `json:"nodes"`
	Edges []Edge          `json:"edges"`
}

// Tab is a named graph within a collection
type Tab struct {
	Name  string `json:"name"`
	Graph Graph  `json:"graph"`
}

// GraphCollection is the aggregate the runtime executes: every tab of the
// design, treated as one logical backend. Tab order is declaration order
// and is significant for planning. A collection is immutable once built;
// deploys replace it wholesale.
type GraphCollection struct {
	tabs []Tab

	// byID indexes the union of all tabs' nodes; on cross-tab id collisions
	// the first occurrence wins (the validators flag the collision)
	byID map[valueobjects.NodeID]int

	// flattened caches the authoring-order node sequence across tabs
	flattened []entities.Node
}

// NewGraphCollection builds a collection and its lookup index from ordered
// tabs. Structural problems (duplicate ids, dangling edges) are left to the
// validators; the index is usable either way.
func NewGraphCollection(tabs []Tab) *GraphCollection {
	c := &GraphCollection{
		tabs: tabs,
		byID: make(map[valueobjects.NodeID]int),
	}

	for _, tab := range tabs {
		for _, node := range tab.Graph.Nodes {
			if _, exists := c.byID[node.ID]; !exists {
				c.byID[node.ID] = len(c.flattened)
			}
			c.flattened = append(c.flattened, node)
		}
	}

	return c
}

// Tabs returns the ordered tabs
func (c *GraphCollection) Tabs() []Tab {
	return c.tabs
}

// TabNames returns the tab names in declaration order
func (c *GraphCollection) TabNames() []string {
	names := make([]string, 0, len(c.tabs))
	for _, tab := range c.tabs {
		names = append(names, tab.Name)
	}
	return names
}

// Tab looks up a tab's graph by name
func (c *GraphCollection) Tab(name string) (Graph, bool) {
	for _, tab := range c.tabs {
		if tab.Name == name {
			return tab.Graph, true
		}
	}
	return Graph{}, false
}

// Nodes returns every node across all tabs, flattened in tab-declaration
// order with authoring order preserved within each tab
func (c *GraphCollection) Nodes() []entities.Node {
	return c.flattened
}

// NodeByID resolves a node anywhere in the collection
func (c *GraphCollection) NodeByID(id valueobjects.NodeID) (entities.Node, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return entities.Node{}, false
	}
	return c.flattened[idx], true
}

// HasNode reports whether an id resolves anywhere in the collection
func (c *GraphCollection) HasNode(id valueobjects.NodeID) bool {
	_, ok := c.byID[id]
	return ok
}

// NodesOfKind returns all nodes of the given kind in authoring order
func (c *GraphCollection) NodesOfKind(kind entities.NodeKind) []entities.Node {
	var nodes []entities.Node
	for _, node := range c.flattened {
		if node.Kind == kind {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// Edges returns every edge across all tabs, including dangling ones
func (c *GraphCollection) Edges() []Edge {
	var edges []Edge
	for _, tab := range c.tabs {
		edges = append(edges, tab.Graph.Edges...)
	}
	return edges
}

// ResolvedEdges returns the edges whose endpoints both resolve within the
// collection; only these participate in ordering and policy checks
func (c *GraphCollection) ResolvedEdges() []Edge {
	var edges []Edge
	for _, edge := range c.Edges() {
		if c.HasNode(edge.Source) && c.HasNode(edge.Target) {
			edges = append(edges, edge)
		}
	}
	return edges
}

// DanglingEdges returns the edges with at least one unresolvable endpoint
func (c *GraphCollection) DanglingEdges() []Edge {
	var edges []Edge
	for _, edge := range c.Edges() {
		if !c.HasNode(edge.Source) || !c.HasNode(edge.Target) {
			edges = append(edges, edge)
		}
	}
	return edges
}

// Outgoing returns the resolved edges leaving a node
func (c *GraphCollection) Outgoing(id valueobjects.NodeID) []Edge {
	var edges []Edge
	for _, edge := range c.ResolvedEdges() {
		if edge.Source == id {
			edges = append(edges, edge)
		}
	}
	return edges
}

// Incoming returns the resolved edges entering a node
func (c *GraphCollection) Incoming(id valueobjects.NodeID) []Edge {
	var edges []Edge
	for _, edge := range c.ResolvedEdges() {
		if edge.Target == id {
			edges = append(edges, edge)
		}
	}
	return edges
}

// NodeCount returns the total node count across tabs
func (c *GraphCollection) NodeCount() int {
	return len(c.flattened)
}

// EdgeCount returns the total edge count across tabs
func (c *GraphCollection) EdgeCount() int {
	count := 0
	for _, tab := range c.tabs {
		count += len(tab.Graph.Edges)
	}
	return count
}

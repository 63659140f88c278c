package entities

import (
	"encoding/json"
	"fmt"

	"simstudio-backend/domain/core/valueobjects"
)

// NodeKind discriminates the design graph node types
type NodeKind string

const (
	NodeKindAPIBinding      NodeKind = "api_binding"
	NodeKindProcess         NodeKind = "process"
	NodeKindDatabase        NodeKind = "database"
	NodeKindQueue           NodeKind = "queue"
	NodeKindInfra           NodeKind = "infra"
	NodeKindServiceBoundary NodeKind = "service_boundary"
)

// Valid reports whether the kind is one of the known node kinds
func (k NodeKind) Valid() bool {
	switch k {
	case NodeKindAPIBinding, NodeKindProcess, NodeKindDatabase,
		NodeKindQueue, NodeKindInfra, NodeKindServiceBoundary:
		return true
	}
	return false
}

// Protocol identifies the transport an API binding simulates
type Protocol string

const (
	ProtocolREST Protocol = "rest"
	ProtocolWS   Protocol = "ws"
)

// Node is a typed vertex in the design graph. Exactly one of the
// kind-specific data fields is set, matching Kind; the tagged union is
// enforced during JSON decoding and by the graph validators.
type Node struct {
	ID    valueobjects.NodeID `json:"id"`
	Kind  NodeKind            `json:"kind"`
	Label string              `json:"label"`

	API      *APIBindingData `json:"-"`
	Process  *ProcessData    `json:"-"`
	Boundary *BoundaryData   `json:"-"`
	Resource *ResourceData   `json:"-"`
}

// APIBindingData is the kind-specific payload of an api_binding node
type APIBindingData struct {
	Protocol   Protocol            `json:"protocol"`
	Method     string              `json:"method,omitempty"`
	Route      string              `json:"route,omitempty"`
	ProcessRef valueobjects.NodeID `json:"process_ref,omitempty"`
}

// BoundaryData is the kind-specific payload of a service_boundary node.
// Owns lists the nodes the boundary claims; Interfaces lists outside nodes
// allowed to reach the boundary's data resources.
type BoundaryData struct {
	Owns       []valueobjects.NodeID `json:"owns,omitempty"`
	Interfaces []valueobjects.NodeID `json:"interfaces,omitempty"`
}

// ResourceData is the free-form payload of database, queue and infra nodes
type ResourceData struct {
	Engine     string                 `json:"engine,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// nodeJSON is the wire shape of a node
type nodeJSON struct {
	ID    string          `json:"id"`
	Kind  NodeKind        `json:"kind"`
	Label string          `json:"label"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// UnmarshalJSON decodes the kind-specific data payload according to Kind.
// Unknown kinds and payloads that do not fit the kind's shape are decode
// errors, surfaced upstream as a malformed graph.
func (n *Node) UnmarshalJSON(data []byte) error {
	var wire nodeJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	if wire.ID == "" {
		return fmt.Errorf("node is missing an id")
	}
	if !wire.Kind.Valid() {
		return fmt.Errorf("node %q has unknown kind %q", wire.ID, wire.Kind)
	}

	*n = Node{
		ID:    valueobjects.NodeID(wire.ID),
		Kind:  wire.Kind,
		Label: wire.Label,
	}

	raw := wire.Data
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	switch wire.Kind {
	case NodeKindAPIBinding:
		n.API = &APIBindingData{}
		if err := json.Unmarshal(raw, n.API); err != nil {
			return fmt.Errorf("node %q: invalid api_binding data: %w", wire.ID, err)
		}
	case NodeKindProcess:
		n.Process = &ProcessData{}
		if err := json.Unmarshal(raw, n.Process); err != nil {
			return fmt.Errorf("node %q: invalid process data: %w", wire.ID, err)
		}
	case NodeKindServiceBoundary:
		n.Boundary = &BoundaryData{}
		if err := json.Unmarshal(raw, n.Boundary); err != nil {
			return fmt.Errorf("node %q: invalid service_boundary data: %w", wire.ID, err)
		}
	case NodeKindDatabase, NodeKindQueue, NodeKindInfra:
		n.Resource = &ResourceData{}
		if err := json.Unmarshal(raw, n.Resource); err != nil {
			return fmt.Errorf("node %q: invalid resource data: %w", wire.ID, err)
		}
	default:
		return fmt.Errorf("node %q has unhandled kind %q", wire.ID, wire.Kind)
	}

	return nil
}

// MarshalJSON encodes the node back into the wire shape
func (n Node) MarshalJSON() ([]byte, error) {
	wire := nodeJSON{
		ID:    n.ID.String(),
		Kind:  n.Kind,
		Label: n.Label,
	}

	var payload interface{}
	switch n.Kind {
	case NodeKindAPIBinding:
		payload = n.API
	case NodeKindProcess:
		payload = n.Process
	case NodeKindServiceBoundary:
		payload = n.Boundary
	case NodeKindDatabase, NodeKindQueue, NodeKindInfra:
		payload = n.Resource
	default:
		return nil, fmt.Errorf("node %q has unhandled kind %q", n.ID, n.Kind)
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		wire.Data = raw
	}

	return json.Marshal(wire)
}

// IsRESTBinding reports whether the node is a REST api_binding
func (n Node) IsRESTBinding() bool {
	return n.Kind == NodeKindAPIBinding && n.API != nil && n.API.Protocol == ProtocolREST
}

// IsDataResource reports whether the node holds data that boundary policy
// protects
func (n Node) IsDataResource() bool {
	return n.Kind == NodeKindDatabase || n.Kind == NodeKindQueue
}

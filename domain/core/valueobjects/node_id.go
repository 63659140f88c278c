package valueobjects

import "errors"

// NodeID is a value object identifying a node within a design graph.
// Ids are authored in the studio editor and are opaque strings; uniqueness
// is enforced per graph by the validators, not by the id format.
type NodeID string

// NewNodeID creates a NodeID from a raw string
func NewNodeID(id string) (NodeID, error) {
	if id == "" {
		return "", errors.New("node ID cannot be empty")
	}
	return NodeID(id), nil
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return string(id)
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id == ""
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id == other
}

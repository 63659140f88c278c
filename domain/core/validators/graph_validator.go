package validators

import (
	"fmt"

	"simstudio-backend/domain/core/aggregates"
	"simstudio-backend/domain/core/entities"
	"simstudio-backend/domain/core/valueobjects"
	pkgerrors "simstudio-backend/pkg/errors"
)

// Warning is a non-fatal structural finding. Warned constructs are tolerated
// at deploy time: dangling edges are dropped from ordering, unresolved
// process refs simply never match a request.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Target  string `json:"target,omitempty"`
}

// GraphValidator validates structural well-formedness of a graph collection
type GraphValidator struct{}

// NewGraphValidator creates a graph validator
func NewGraphValidator() *GraphValidator {
	return &GraphValidator{}
}

// ValidateCollection checks a collection for structural problems. Fatal
// problems (duplicate ids within a tab, unusable api bindings) return a
// malformed graph error and the collection must not be deployed; everything
// else is returned as warnings.
func (v *GraphValidator) ValidateCollection(c *aggregates.GraphCollection) ([]Warning, error) {
	var warnings []Warning

	seen := map[valueobjects.NodeID]string{}
	for _, tab := range c.Tabs() {
		perTab := map[valueobjects.NodeID]bool{}
		for _, node := range tab.Graph.Nodes {
			if perTab[node.ID] {
				return nil, pkgerrors.NewMalformedGraphError(
					fmt.Sprintf("duplicate node id %q in tab %q", node.ID, tab.Name),
				).WithDetail("node_id", node.ID.String()).WithDetail("tab", tab.Name)
			}
			perTab[node.ID] = true

			if firstTab, dup := seen[node.ID]; dup {
				warnings = append(warnings, Warning{
					Code:    "duplicate_node_across_tabs",
					Message: fmt.Sprintf("node id %q appears in tabs %q and %q; the first occurrence is used", node.ID, firstTab, tab.Name),
					Target:  node.ID.String(),
				})
			} else {
				seen[node.ID] = tab.Name
			}

			if w, err := v.validateNode(node); err != nil {
				return nil, err
			} else if w != nil {
				warnings = append(warnings, w...)
			}
		}
	}

	for _, edge := range c.DanglingEdges() {
		warnings = append(warnings, Warning{
			Code:    "dangling_edge",
			Message: fmt.Sprintf("edge %s -> %s references a missing node and is ignored for ordering", edge.Source, edge.Target),
			Target:  edge.Source.String(),
		})
	}

	return warnings, nil
}

// validateNode applies per-kind structural rules
func (v *GraphValidator) validateNode(node entities.Node) ([]Warning, error) {
	var warnings []Warning

	switch node.Kind {
	case entities.NodeKindAPIBinding:
		binding := node.API
		if binding == nil {
			return nil, pkgerrors.NewMalformedGraphError(
				fmt.Sprintf("api_binding node %q has no binding data", node.ID),
			).WithDetail("node_id", node.ID.String())
		}
		if binding.Protocol == entities.ProtocolREST {
			if binding.Method == "" {
				warnings = append(warnings, Warning{
					Code:    "binding_missing_method",
					Message: fmt.Sprintf("rest binding %q has no method and will never match", node.ID),
					Target:  node.ID.String(),
				})
			}
			if binding.Route != "" {
				if _, err := valueobjects.ParseRouteTemplate(binding.Route); err != nil {
					return nil, pkgerrors.NewMalformedGraphError(
						fmt.Sprintf("rest binding %q has invalid route %q: %v", node.ID, binding.Route, err),
					).WithDetail("node_id", node.ID.String()).WithDetail("route", binding.Route)
				}
			}
		}
		if binding.ProcessRef.IsZero() {
			warnings = append(warnings, Warning{
				Code:    "binding_without_process",
				Message: fmt.Sprintf("api binding %q invokes no function block and will never match", node.ID),
				Target:  node.ID.String(),
			})
		}

	case entities.NodeKindProcess:
		if node.Process == nil {
			return nil, pkgerrors.NewMalformedGraphError(
				fmt.Sprintf("process node %q has no step data", node.ID),
			).WithDetail("node_id", node.ID.String())
		}
		stepIDs := map[string]bool{}
		for _, step := range node.Process.Steps {
			if stepIDs[step.ID] {
				return nil, pkgerrors.NewMalformedGraphError(
					fmt.Sprintf("process %q has duplicate step id %q", node.ID, step.ID),
				).WithDetail("node_id", node.ID.String()).WithDetail("step_id", step.ID)
			}
			stepIDs[step.ID] = true
		}

	case entities.NodeKindServiceBoundary, entities.NodeKindDatabase,
		entities.NodeKindQueue, entities.NodeKindInfra:
		// no structural rules beyond decoding

	default:
		return nil, pkgerrors.NewMalformedGraphError(
			fmt.Sprintf("node %q has unknown kind %q", node.ID, node.Kind),
		).WithDetail("node_id", node.ID.String())
	}

	return warnings, nil
}

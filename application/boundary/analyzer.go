package boundary

import (
	"fmt"

	"go.uber.org/zap"

	"simstudio-backend/domain/core/aggregates"
	"simstudio-backend/domain/core/entities"
	"simstudio-backend/domain/core/valueobjects"
)

// Severity classifies how load-bearing an issue is. Only error-severity
// issues block simulated execution; warnings and infos are advisory.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is a single boundary finding. Issues never mutate the graph.
type Issue struct {
	Severity Severity            `json:"severity"`
	Code     string              `json:"code"`
	Title    string              `json:"title"`
	Detail   string              `json:"detail,omitempty"`
	Target   valueobjects.NodeID `json:"target,omitempty"`
}

// Blocking filters the error-severity issues out of a finding list
func Blocking(issues []Issue) []Issue {
	var blocking []Issue
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			blocking = append(blocking, issue)
		}
	}
	return blocking
}

// HasBlocking reports whether any issue must block execution
func HasBlocking(issues []Issue) bool {
	return len(Blocking(issues)) > 0
}

// Analyzer inspects service_boundary nodes and the ownership they declare.
// Analyze is a pure function of the collection: no I/O, deterministic output
// order (boundaries in authoring order, checks in a fixed sequence).
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer creates a boundary analyzer
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

// Analyze inspects the collection for boundary violations
func (a *Analyzer) Analyze(collection *aggregates.GraphCollection) []Issue {
	var issues []Issue

	boundaries := collection.NodesOfKind(entities.NodeKindServiceBoundary)
	if len(boundaries) == 0 {
		return nil
	}

	// ownership maps each claimed node to its owning boundary; the first
	// claiming boundary in authoring order wins a contested node
	ownership := map[valueobjects.NodeID]valueobjects.NodeID{}
	interfaces := map[valueobjects.NodeID]map[valueobjects.NodeID]bool{}

	for _, boundaryNode := range boundaries {
		data := boundaryNode.Boundary
		if data == nil {
			continue
		}

		allowed := map[valueobjects.NodeID]bool{}
		for _, ref := range data.Interfaces {
			if !collection.HasNode(ref) {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Code:     "boundary_unresolved_ref",
					Title:    "Boundary interface references a missing node",
					Detail:   fmt.Sprintf("boundary %q declares interface %q which does not exist", boundaryNode.ID, ref),
					Target:   boundaryNode.ID,
				})
				continue
			}
			allowed[ref] = true
		}
		interfaces[boundaryNode.ID] = allowed

		ownsCompute := false
		for _, ref := range data.Owns {
			owned, ok := collection.NodeByID(ref)
			if !ok {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Code:     "boundary_unresolved_ref",
					Title:    "Boundary ownership references a missing node",
					Detail:   fmt.Sprintf("boundary %q declares ownership of %q which does not exist", boundaryNode.ID, ref),
					Target:   boundaryNode.ID,
				})
				continue
			}
			if _, claimed := ownership[ref]; !claimed {
				ownership[ref] = boundaryNode.ID
			}
			if owned.Kind == entities.NodeKindProcess {
				ownsCompute = true
			}
		}

		if !ownsCompute {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Code:     "boundary_no_compute",
				Title:    "Boundary has no linked compute target",
				Detail:   fmt.Sprintf("boundary %q owns no function block", boundaryNode.ID),
				Target:   boundaryNode.ID,
			})
		}
	}

	issues = append(issues, a.checkCrossInvocations(collection, ownership)...)
	issues = append(issues, a.checkDataAccess(collection, ownership, interfaces)...)
	issues = append(issues, a.checkUnclaimed(collection, ownership)...)

	return issues
}

// checkCrossInvocations flags api bindings that invoke a function block
// owned by a boundary the binding itself does not belong to
func (a *Analyzer) checkCrossInvocations(
	collection *aggregates.GraphCollection,
	ownership map[valueobjects.NodeID]valueobjects.NodeID,
) []Issue {
	var issues []Issue

	for _, binding := range collection.NodesOfKind(entities.NodeKindAPIBinding) {
		if binding.API == nil || binding.API.ProcessRef.IsZero() {
			continue
		}
		processOwner, processOwned := ownership[binding.API.ProcessRef]
		if !processOwned {
			continue
		}
		bindingOwner, bindingOwned := ownership[binding.ID]
		if !bindingOwned || bindingOwner != processOwner {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     "boundary_cross_invoke",
				Title:    "API binding invokes a function block outside its boundary",
				Detail: fmt.Sprintf("binding %q invokes %q owned by boundary %q, but is not owned by that boundary",
					binding.ID, binding.API.ProcessRef, processOwner),
				Target: binding.ID,
			})
		}
	}

	return issues
}

// checkDataAccess flags edges into boundary-owned data resources from nodes
// that are neither inside the boundary nor declared as an interface
func (a *Analyzer) checkDataAccess(
	collection *aggregates.GraphCollection,
	ownership map[valueobjects.NodeID]valueobjects.NodeID,
	interfaces map[valueobjects.NodeID]map[valueobjects.NodeID]bool,
) []Issue {
	var issues []Issue

	for _, edge := range collection.ResolvedEdges() {
		target, _ := collection.NodeByID(edge.Target)
		if !target.IsDataResource() {
			continue
		}
		dataOwner, owned := ownership[edge.Target]
		if !owned {
			continue
		}
		sourceOwner, sourceOwned := ownership[edge.Source]
		if sourceOwned && sourceOwner == dataOwner {
			continue
		}
		if allowed := interfaces[dataOwner]; allowed != nil && allowed[edge.Source] {
			continue
		}
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     "boundary_data_access",
			Title:    "Cross-boundary data access without a declared interface",
			Detail: fmt.Sprintf("node %q accesses %q owned by boundary %q without being a declared interface",
				edge.Source, edge.Target, dataOwner),
			Target: edge.Source,
		})
	}

	return issues
}

// checkUnclaimed reports nodes no boundary claims once boundaries exist
func (a *Analyzer) checkUnclaimed(
	collection *aggregates.GraphCollection,
	ownership map[valueobjects.NodeID]valueobjects.NodeID,
) []Issue {
	var issues []Issue

	for _, node := range collection.Nodes() {
		if node.Kind == entities.NodeKindServiceBoundary || node.Kind == entities.NodeKindInfra {
			continue
		}
		if _, claimed := ownership[node.ID]; !claimed {
			issues = append(issues, Issue{
				Severity: SeverityInfo,
				Code:     "boundary_unclaimed",
				Title:    "Node is not claimed by any service boundary",
				Detail:   fmt.Sprintf("node %q is outside every declared boundary", node.ID),
				Target:   node.ID,
			})
		}
	}

	return issues
}

package simulation

import (
	"strings"

	"simstudio-backend/domain/core/aggregates"
	"simstudio-backend/domain/core/entities"
	"simstudio-backend/domain/core/valueobjects"
)

// routeMatch is a resolved binding for an inbound request: the api node, the
// function block it invokes, and the bound path parameters
type routeMatch struct {
	apiNode entities.Node
	process entities.Node
	params  map[string]string
}

// matchRoute selects the rest binding for a method and path.
//
// A template matches segment-by-segment: literals must be equal, :name
// segments bind any non-empty segment. When several bindings match, the one
// with more literal segments wins (most specific first); remaining ties keep
// the earliest binding in authoring order. Bindings whose process ref does
// not resolve to a function block cannot produce a response and are skipped.
// nil means no match, which the caller maps to a not-found outcome.
func matchRoute(collection *aggregates.GraphCollection, method, path string) *routeMatch {
	method = strings.ToUpper(method)

	var best *routeMatch
	bestLiterals := -1

	for _, node := range collection.NodesOfKind(entities.NodeKindAPIBinding) {
		binding := node.API
		if binding == nil || binding.Protocol != entities.ProtocolREST {
			continue
		}
		if !strings.EqualFold(binding.Method, method) || binding.Route == "" {
			continue
		}

		template, err := valueobjects.ParseRouteTemplate(binding.Route)
		if err != nil {
			// invalid templates are rejected at deploy time
			continue
		}

		params, ok := template.Match(path)
		if !ok {
			continue
		}

		process, found := collection.NodeByID(binding.ProcessRef)
		if !found || process.Kind != entities.NodeKindProcess {
			continue
		}

		if literals := template.LiteralCount(); literals > bestLiterals {
			best = &routeMatch{apiNode: node, process: process, params: params}
			bestLiterals = literals
		}
	}

	return best
}

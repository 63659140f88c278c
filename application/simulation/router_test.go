package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simstudio-backend/domain/core/entities"
	"simstudio-backend/domain/core/valueobjects"
)

func binding(id, method, route, processRef string) entities.Node {
	return entities.Node{
		ID:   valueobjects.NodeID(id),
		Kind: entities.NodeKindAPIBinding,
		API: &entities.APIBindingData{
			Protocol:   entities.ProtocolREST,
			Method:     method,
			Route:      route,
			ProcessRef: valueobjects.NodeID(processRef),
		},
	}
}

func TestMatchRoute(t *testing.T) {
	handler := fn("handler", entities.Step{ID: "r", Kind: entities.StepKindReturn})

	t.Run("binds path parameters", func(t *testing.T) {
		c := testCollection(binding("api", "GET", "/users/:id", "handler"), handler)

		match := matchRoute(c, "GET", "/users/42")
		require.NotNil(t, match)
		assert.Equal(t, "api", match.apiNode.ID.String())
		assert.Equal(t, "handler", match.process.ID.String())
		assert.Equal(t, map[string]string{"id": "42"}, match.params)
	})

	t.Run("method is case insensitive", func(t *testing.T) {
		c := testCollection(binding("api", "get", "/users", "handler"), handler)
		assert.NotNil(t, matchRoute(c, "GET", "/users"))
	})

	t.Run("wrong method does not match", func(t *testing.T) {
		c := testCollection(binding("api", "POST", "/users", "handler"), handler)
		assert.Nil(t, matchRoute(c, "GET", "/users"))
	})

	t.Run("most literal segments wins", func(t *testing.T) {
		c := testCollection(
			binding("param-api", "GET", "/users/:id", "handler"),
			binding("literal-api", "GET", "/users/active", "handler"),
			handler,
		)

		match := matchRoute(c, "GET", "/users/active")
		require.NotNil(t, match)
		assert.Equal(t, "literal-api", match.apiNode.ID.String())

		match = matchRoute(c, "GET", "/users/42")
		require.NotNil(t, match)
		assert.Equal(t, "param-api", match.apiNode.ID.String())
	})

	t.Run("specificity ties keep authoring order", func(t *testing.T) {
		c := testCollection(
			binding("first", "GET", "/users/:id", "handler"),
			binding("second", "GET", "/users/:name", "handler"),
			handler,
		)

		match := matchRoute(c, "GET", "/users/42")
		require.NotNil(t, match)
		assert.Equal(t, "first", match.apiNode.ID.String())
	})

	t.Run("unresolvable process ref is skipped", func(t *testing.T) {
		c := testCollection(
			binding("broken", "GET", "/users", "ghost"),
			binding("working", "GET", "/users", "handler"),
			handler,
		)

		match := matchRoute(c, "GET", "/users")
		require.NotNil(t, match)
		assert.Equal(t, "working", match.apiNode.ID.String())
	})

	t.Run("non-rest bindings never match", func(t *testing.T) {
		ws := binding("ws-api", "GET", "/users", "handler")
		ws.API.Protocol = entities.ProtocolWS
		c := testCollection(ws, handler)

		assert.Nil(t, matchRoute(c, "GET", "/users"))
	})
}

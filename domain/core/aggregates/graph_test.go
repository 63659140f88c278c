package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simstudio-backend/domain/core/entities"
)

func TestGraphCollectionFlattening(t *testing.T) {
	c := NewGraphCollection([]Tab{
		{Name: "api", Graph: Graph{Nodes: []entities.Node{
			{ID: "a", Kind: entities.NodeKindAPIBinding},
			{ID: "b", Kind: entities.NodeKindProcess},
		}}},
		{Name: "data", Graph: Graph{Nodes: []entities.Node{
			{ID: "c", Kind: entities.NodeKindDatabase},
		}}},
	})

	assert.Equal(t, []string{"api", "data"}, c.TabNames())
	assert.Equal(t, 3, c.NodeCount())

	ids := make([]string, 0, 3)
	for _, n := range c.Nodes() {
		ids = append(ids, n.ID.String())
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestGraphCollectionLookup(t *testing.T) {
	c := NewGraphCollection([]Tab{
		{Name: "main", Graph: Graph{Nodes: []entities.Node{
			{ID: "a", Kind: entities.NodeKindProcess},
		}}},
	})

	found, ok := c.NodeByID("a")
	require.True(t, ok)
	assert.Equal(t, entities.NodeKindProcess, found.Kind)

	_, ok = c.NodeByID("missing")
	assert.False(t, ok)
	assert.False(t, c.HasNode("missing"))
}

func TestGraphCollectionFirstOccurrenceWins(t *testing.T) {
	c := NewGraphCollection([]Tab{
		{Name: "one", Graph: Graph{Nodes: []entities.Node{
			{ID: "dup", Kind: entities.NodeKindProcess, Label: "first"},
		}}},
		{Name: "two", Graph: Graph{Nodes: []entities.Node{
			{ID: "dup", Kind: entities.NodeKindDatabase, Label: "second"},
		}}},
	})

	found, ok := c.NodeByID("dup")
	require.True(t, ok)
	assert.Equal(t, "first", found.Label)
	// both occurrences stay in the flattened view
	assert.Equal(t, 2, c.NodeCount())
}

func TestGraphCollectionEdgeViews(t *testing.T) {
	c := NewGraphCollection([]Tab{
		{Name: "main", Graph: Graph{
			Nodes: []entities.Node{
				{ID: "a", Kind: entities.NodeKindProcess},
				{ID: "b", Kind: entities.NodeKindDatabase},
			},
			Edges: []Edge{
				{Source: "a", Target: "b"},
				{Source: "a", Target: "ghost"},
			},
		}},
	})

	assert.Len(t, c.Edges(), 2)
	assert.Equal(t, []Edge{{Source: "a", Target: "b"}}, c.ResolvedEdges())
	assert.Equal(t, []Edge{{Source: "a", Target: "ghost"}}, c.DanglingEdges())
	assert.Len(t, c.Outgoing("a"), 1)
	assert.Len(t, c.Incoming("b"), 1)
	assert.Empty(t, c.Incoming("a"))
}

func TestGraphCollectionNodesOfKind(t *testing.T) {
	c := NewGraphCollection([]Tab{
		{Name: "main", Graph: Graph{Nodes: []entities.Node{
			{ID: "a", Kind: entities.NodeKindAPIBinding},
			{ID: "b", Kind: entities.NodeKindAPIBinding},
			{ID: "c", Kind: entities.NodeKindQueue},
		}}},
	})

	bindings := c.NodesOfKind(entities.NodeKindAPIBinding)
	require.Len(t, bindings, 2)
	assert.Equal(t, "a", bindings[0].ID.String())
	assert.Equal(t, "b", bindings[1].ID.String())
}

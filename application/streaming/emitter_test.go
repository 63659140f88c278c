package streaming

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"simstudio-backend/application/planner"
	"simstudio-backend/domain/core/aggregates"
	"simstudio-backend/domain/core/entities"
	"simstudio-backend/domain/core/valueobjects"
)

func infra(id string) entities.Node {
	return entities.Node{
		ID:       valueobjects.NodeID(id),
		Kind:     entities.NodeKindInfra,
		Label:    id,
		Resource: &entities.ResourceData{},
	}
}

func collection(nodes []entities.Node, edges []aggregates.Edge) *aggregates.GraphCollection {
	return aggregates.NewGraphCollection([]aggregates.Tab{
		{Name: "main", Graph: aggregates.Graph{Nodes: nodes, Edges: edges}},
	})
}

type recordingSink struct {
	events  []Event
	failAt  int // 0 disables failure injection; 1-based event count otherwise
	failErr error
}

func (s *recordingSink) Send(event Event) error {
	if s.failAt > 0 && len(s.events)+1 >= s.failAt {
		return s.failErr
	}
	s.events = append(s.events, event)
	return nil
}

func names(events []Event) []EventName {
	out := make([]EventName, 0, len(events))
	for _, event := range events {
		out = append(out, event.Name)
	}
	return out
}

func TestEmitterRunLifecycle(t *testing.T) {
	emitter := NewEmitter(planner.NewPlanner(zap.NewNop()), zap.NewNop())

	c := collection(
		[]entities.Node{infra("a"), infra("b")},
		[]aggregates.Edge{{Source: "a", Target: "b"}},
	)

	sink := &recordingSink{}
	require.NoError(t, emitter.Run(c, sink))

	assert.Equal(t, []EventName{
		EventStatus,
		EventOrder, EventOrder,
		EventExecute, EventExecute,
		EventComplete,
	}, names(sink.events))

	assert.Equal(t, "runtime_started", sink.events[0].Payload["message"])

	firstOrder := sink.events[1].Payload
	assert.Equal(t, 0, firstOrder["index"])
	assert.Equal(t, 2, firstOrder["total"])

	complete := sink.events[len(sink.events)-1].Payload
	assert.Equal(t, 2, complete["totalNodes"])
	order, ok := complete["executionOrder"].(planner.ExecutionOrder)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, order.NodeIDs())
}

func TestEmitterCyclicGraphEmitsErrorTerminal(t *testing.T) {
	emitter := NewEmitter(planner.NewPlanner(zap.NewNop()), zap.NewNop())

	c := collection(
		[]entities.Node{infra("a"), infra("b")},
		[]aggregates.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "a"}},
	)

	sink := &recordingSink{}
	err := emitter.Run(c, sink)
	require.Error(t, err)

	// status then exactly one terminal error event, no order events
	assert.Equal(t, []EventName{EventStatus, EventError}, names(sink.events))
	assert.Equal(t, "runtime_start_failed", sink.events[1].Payload["error"])
	assert.NotEmpty(t, sink.events[1].Payload["message"])
}

func TestEmitterStopsAfterSinkFailure(t *testing.T) {
	emitter := NewEmitter(planner.NewPlanner(zap.NewNop()), zap.NewNop())

	c := collection([]entities.Node{infra("a"), infra("b"), infra("c")}, nil)

	sinkErr := errors.New("client went away")
	sink := &recordingSink{failAt: 3, failErr: sinkErr}

	err := emitter.Run(c, sink)
	require.ErrorIs(t, err, sinkErr)

	// everything before the failure was delivered, nothing after
	assert.Equal(t, []EventName{EventStatus, EventOrder}, names(sink.events))
}

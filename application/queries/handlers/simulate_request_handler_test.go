package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"simstudio-backend/application/boundary"
	"simstudio-backend/application/planner"
	"simstudio-backend/application/ports"
	"simstudio-backend/application/queries"
	"simstudio-backend/application/simulation"
	"simstudio-backend/domain/core/aggregates"
	"simstudio-backend/domain/core/entities"
	"simstudio-backend/domain/events"
	"simstudio-backend/infrastructure/persistence/memory"
	pkgerrors "simstudio-backend/pkg/errors"
)

type recordingBus struct {
	published []events.DomainEvent
}

func (b *recordingBus) Publish(_ context.Context, event events.DomainEvent) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) Subscribe(string, ports.EventHandler) {}

func healthCollection() *aggregates.GraphCollection {
	return aggregates.NewGraphCollection([]aggregates.Tab{
		{Name: "api", Graph: aggregates.Graph{Nodes: []entities.Node{
			{
				ID: "health-api", Kind: entities.NodeKindAPIBinding,
				API: &entities.APIBindingData{
					Protocol: entities.ProtocolREST, Method: "POST",
					Route: "/mock/health", ProcessRef: "health-fn",
				},
			},
			{
				ID: "health-fn", Kind: entities.NodeKindProcess,
				Process: &entities.ProcessData{Steps: []entities.Step{
					{ID: "r", Kind: entities.StepKindReturn, Config: map[string]interface{}{
						"status": float64(200),
						"body":   map[string]interface{}{"ok": true, "source": "mock-graph"},
					}},
				}},
			},
		}}},
	})
}

func newSimulateHandler(state ports.RuntimeState, bus ports.EventBus) *SimulateRequestHandler {
	logger := zap.NewNop()
	sim := simulation.NewSimulator(planner.NewPlanner(logger), boundary.NewAnalyzer(logger), 0, logger)
	return NewSimulateRequestHandler(state, sim, bus, logger)
}

func TestSimulateRequestHandler(t *testing.T) {
	t.Run("no deployment is a conflict", func(t *testing.T) {
		state := memory.NewRuntimeStateStore()
		bus := &recordingBus{}
		h := newSimulateHandler(state, bus)

		_, err := h.Handle(context.Background(), queries.SimulateRequestQuery{Method: "GET", Path: "/x"})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsNotInitialized(err))

		require.Len(t, bus.published, 1)
		sim, ok := bus.published[0].(events.SimulationExecuted)
		require.True(t, ok)
		assert.Equal(t, "not_initialized", sim.Outcome)
	})

	t.Run("matched request", func(t *testing.T) {
		state := memory.NewRuntimeStateStore()
		state.Install(healthCollection())
		bus := &recordingBus{}
		h := newSimulateHandler(state, bus)

		raw, err := h.Handle(context.Background(), queries.SimulateRequestQuery{Method: "POST", Path: "/mock/health"})
		require.NoError(t, err)

		result, ok := raw.(queries.SimulateRequestResult)
		require.True(t, ok)
		assert.True(t, result.Matched)
		assert.Equal(t, 200, result.Status)
		assert.Equal(t, map[string]interface{}{"ok": true, "source": "mock-graph"}, result.Body)
		assert.Nil(t, result.Debug)

		require.Len(t, bus.published, 1)
		sim := bus.published[0].(events.SimulationExecuted)
		assert.Equal(t, "dispatched", sim.Outcome)
		assert.Equal(t, 200, sim.Status)
	})

	t.Run("debug attaches the trace", func(t *testing.T) {
		state := memory.NewRuntimeStateStore()
		state.Install(healthCollection())
		h := newSimulateHandler(state, &recordingBus{})

		raw, err := h.Handle(context.Background(), queries.SimulateRequestQuery{
			Method: "POST", Path: "/mock/health", Debug: true,
		})
		require.NoError(t, err)

		result := raw.(queries.SimulateRequestResult)
		require.NotNil(t, result.Debug)
		assert.Equal(t, "health-api", result.Debug.APINode.ID.String())
		assert.Equal(t, "health-fn", result.Debug.FinalNode.ID.String())
		assert.Len(t, result.Debug.ExecutionOrder, 2)
	})

	t.Run("unmatched request is a normal result", func(t *testing.T) {
		state := memory.NewRuntimeStateStore()
		state.Install(healthCollection())
		bus := &recordingBus{}
		h := newSimulateHandler(state, bus)

		raw, err := h.Handle(context.Background(), queries.SimulateRequestQuery{Method: "GET", Path: "/nope"})
		require.NoError(t, err)

		result := raw.(queries.SimulateRequestResult)
		assert.False(t, result.Matched)
		assert.Equal(t, "GET", result.Method)
		assert.Equal(t, "/nope", result.Path)

		sim := bus.published[0].(events.SimulationExecuted)
		assert.Equal(t, "unmatched", sim.Outcome)
	})
}

package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"simstudio-backend/application/boundary"
	"simstudio-backend/application/planner"
	"simstudio-backend/domain/core/entities"
	"simstudio-backend/domain/core/valueobjects"
	pkgerrors "simstudio-backend/pkg/errors"
)

func newTestSimulator() *Simulator {
	logger := zap.NewNop()
	return NewSimulator(planner.NewPlanner(logger), boundary.NewAnalyzer(logger), 0, logger)
}

func TestExecuteRestRequestHealthFlow(t *testing.T) {
	c := testCollection(
		binding("health-api", "POST", "/mock/health", "health-fn"),
		fn("health-fn", entities.Step{
			ID: "r", Kind: entities.StepKindReturn,
			Config: map[string]interface{}{
				"status": float64(200),
				"body":   map[string]interface{}{"ok": true, "source": "mock-graph"},
			},
		}),
	)

	flow, err := newTestSimulator().ExecuteRestRequest(c, Request{Method: "POST", Path: "/mock/health"})
	require.NoError(t, err)
	require.NotNil(t, flow)
	assert.Equal(t, 200, flow.Response.Status)
	assert.Equal(t, map[string]interface{}{"ok": true, "source": "mock-graph"}, flow.Response.Body)
	assert.Equal(t, "health-api", flow.APINode.ID.String())
	assert.Equal(t, "health-fn", flow.FinalNode.ID.String())
	assert.Equal(t, []string{"health-api", "health-fn"}, flow.ExecutionOrder.NodeIDs())
}

func TestExecuteRestRequestNoMatch(t *testing.T) {
	c := testCollection(
		binding("api", "GET", "/users", "fn"),
		fn("fn", entities.Step{ID: "r", Kind: entities.StepKindReturn}),
	)

	flow, err := newTestSimulator().ExecuteRestRequest(c, Request{Method: "GET", Path: "/orders"})
	require.NoError(t, err)
	assert.Nil(t, flow)
}

func TestExecuteRestRequestPayloadReachesScope(t *testing.T) {
	c := testCollection(
		binding("echo-api", "POST", "/echo/:tag", "echo-fn"),
		fn("echo-fn", entities.Step{
			ID: "r", Kind: entities.StepKindReturn,
			Config: map[string]interface{}{
				"body": map[string]interface{}{
					"tag":  "$.params.tag",
					"name": "$.payload.name",
				},
			},
		}),
	)

	flow, err := newTestSimulator().ExecuteRestRequest(c, Request{
		Method:  "POST",
		Path:    "/echo/greeting",
		Payload: map[string]interface{}{"name": "ada"},
	})
	require.NoError(t, err)
	require.NotNil(t, flow)
	assert.Equal(t, map[string]interface{}{"tag": "greeting", "name": "ada"}, flow.Response.Body)
}

func TestExecuteRestRequestBoundaryGate(t *testing.T) {
	boundaryNode := entities.Node{
		ID:   "payments",
		Kind: entities.NodeKindServiceBoundary,
		Boundary: &entities.BoundaryData{
			Owns: []valueobjects.NodeID{"pay-fn"},
		},
	}
	c := testCollection(
		boundaryNode,
		binding("rogue-api", "POST", "/pay", "pay-fn"),
		fn("pay-fn", entities.Step{ID: "r", Kind: entities.StepKindReturn}),
	)

	flow, err := newTestSimulator().ExecuteRestRequest(c, Request{Method: "POST", Path: "/pay"})
	require.Error(t, err)
	assert.Nil(t, flow)
	assert.True(t, pkgerrors.IsBoundaryViolation(err))

	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	issues, ok := appErr.Details["issues"].([]boundary.Issue)
	require.True(t, ok)
	require.NotEmpty(t, issues)
	assert.Equal(t, "boundary_cross_invoke", issues[0].Code)
}

func TestExecuteRestRequestStepFailureBecomes500(t *testing.T) {
	c := testCollection(
		binding("api", "GET", "/broken", "broken-fn"),
		fn("broken-fn", entities.Step{
			ID: "call", Kind: entities.StepKindCallFunction, Ref: "ghost",
		}),
	)

	flow, err := newTestSimulator().ExecuteRestRequest(c, Request{Method: "GET", Path: "/broken"})
	require.NoError(t, err)
	require.NotNil(t, flow)
	assert.Equal(t, 500, flow.Response.Status)
	assert.Equal(t, string(pkgerrors.ErrorTypeStepExecution), flow.Response.Body["error"])
	assert.Equal(t, "/broken", flow.Response.Body["path"])
	assert.Equal(t, "broken-fn", flow.Response.Body["node_id"])
	assert.Equal(t, "call", flow.Response.Body["step_id"])
}

func TestExecuteRestRequestCyclicGraphStillDispatches(t *testing.T) {
	c := testCollectionWithEdges(
		[]entities.Node{
			binding("api", "GET", "/ok", "fn"),
			fn("fn", entities.Step{
				ID: "r", Kind: entities.StepKindReturn,
				Config: map[string]interface{}{"body": map[string]interface{}{"ok": true}},
			}),
		},
		[][2]string{{"api", "fn"}, {"fn", "api"}},
	)

	flow, err := newTestSimulator().ExecuteRestRequest(c, Request{Method: "GET", Path: "/ok"})
	require.NoError(t, err)
	require.NotNil(t, flow)
	assert.Equal(t, 200, flow.Response.Status)
	assert.Nil(t, flow.ExecutionOrder)
}

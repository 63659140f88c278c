package simulation

import (
	"go.uber.org/zap"

	"simstudio-backend/application/boundary"
	"simstudio-backend/application/planner"
	"simstudio-backend/domain/core/aggregates"
	"simstudio-backend/domain/core/entities"
	pkgerrors "simstudio-backend/pkg/errors"
)

// Request is one simulated inbound REST call
type Request struct {
	Method  string
	Path    string
	Payload map[string]interface{}
}

// FlowResult is the outcome of simulating one matched request. The
// execution order is the planner's order for the whole active collection,
// so the caller can render a trace of what would execute regardless of what
// the interpreter actually touched.
type FlowResult struct {
	Response       Response               `json:"response"`
	APINode        entities.Node          `json:"api_node"`
	FinalNode      entities.Node          `json:"final_node"`
	ExecutionOrder planner.ExecutionOrder `json:"execution_order"`
}

// Simulator routes simulated requests through the active graph and
// interprets the matched function block
type Simulator struct {
	planner    *planner.Planner
	analyzer   *boundary.Analyzer
	stepBudget int
	logger     *zap.Logger
}

// NewSimulator creates a simulator. stepBudget bounds the total steps one
// request may execute across nested function calls; zero selects the
// default.
func NewSimulator(p *planner.Planner, a *boundary.Analyzer, stepBudget int, logger *zap.Logger) *Simulator {
	return &Simulator{
		planner:    p,
		analyzer:   a,
		stepBudget: stepBudget,
		logger:     logger,
	}
}

// ExecuteRestRequest simulates one REST call against a collection.
//
// The boundary analyzer runs first: any error-severity issue refuses
// execution and surfaces the blocking issues unchanged. A nil result with a
// nil error means no binding matched, which the caller maps to not-found
// semantics. A failed step becomes a structured 500 response rather than an
// error; one bad step must not take down the simulated backend.
func (s *Simulator) ExecuteRestRequest(collection *aggregates.GraphCollection, req Request) (*FlowResult, error) {
	issues := s.analyzer.Analyze(collection)
	if boundary.HasBlocking(issues) {
		return nil, pkgerrors.NewBoundaryViolationError(boundary.Blocking(issues))
	}

	match := matchRoute(collection, req.Method, req.Path)
	if match == nil {
		return nil, nil
	}

	order, err := s.planner.Plan(collection)
	if err != nil {
		// the trace is advisory; dispatch still runs on an unplannable graph
		s.logger.Warn("Execution order unavailable for trace",
			zap.String("path", req.Path),
			zap.Error(err),
		)
		order = nil
	}

	sc := scope{
		"params":  paramsToScope(match.params),
		"payload": payloadToScope(req.Payload),
	}

	it := newInterpreter(collection, s.stepBudget)
	response, runErr := it.run(match.process, sc)
	if runErr != nil {
		appErr := pkgerrors.GetAppError(runErr)
		s.logger.Warn("Step execution failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.String("process", match.process.ID.String()),
			zap.Error(runErr),
		)
		response = stepFailureResponse(appErr, req.Path)
	}

	return &FlowResult{
		Response:       response,
		APINode:        match.apiNode,
		FinalNode:      match.process,
		ExecutionOrder: order,
	}, nil
}

// stepFailureResponse converts a step execution error into the structured
// failure body of the simulated call, keeping node id, step id and path
func stepFailureResponse(appErr *pkgerrors.AppError, path string) Response {
	body := map[string]interface{}{
		"error": string(pkgerrors.ErrorTypeStepExecution),
		"path":  path,
	}
	if appErr != nil {
		body["message"] = appErr.Message
		for key, value := range appErr.Details {
			body[key] = value
		}
	}
	return Response{Status: 500, Body: body}
}

// paramsToScope widens the matched path parameters for the scope
func paramsToScope(params map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(params))
	for key, value := range params {
		out[key] = value
	}
	return out
}

// payloadToScope normalizes a possibly nil payload
func payloadToScope(payload map[string]interface{}) map[string]interface{} {
	if payload == nil {
		return map[string]interface{}{}
	}
	return payload
}

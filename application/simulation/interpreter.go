package simulation

import (
	"fmt"
	"strings"

	"simstudio-backend/domain/core/aggregates"
	"simstudio-backend/domain/core/entities"
	"simstudio-backend/domain/core/valueobjects"
	pkgerrors "simstudio-backend/pkg/errors"
)

// Response is the simulated HTTP response a function block produces
type Response struct {
	Status int                    `json:"status"`
	Body   map[string]interface{} `json:"body"`
}

// scope is the interpreter-local variable environment. It is seeded with
// "params" (bound path parameters) and "payload" (request body or query
// values); each executed step records its output under its step id.
type scope map[string]interface{}

// interpreter executes a function block's ordered steps. All work is
// in-memory and single-pass; a shared step budget bounds nested calls so a
// pathological graph cannot run unbounded.
type interpreter struct {
	collection *aggregates.GraphCollection
	remaining  int
}

func newInterpreter(collection *aggregates.GraphCollection, stepBudget int) *interpreter {
	if stepBudget <= 0 {
		stepBudget = defaultStepBudget
	}
	return &interpreter{collection: collection, remaining: stepBudget}
}

const defaultStepBudget = 1000

// run executes a process node's steps strictly in order. Interpretation
// halts at the first return step; a sequence with no return yields the
// implicit empty 200.
func (it *interpreter) run(process entities.Node, sc scope) (Response, error) {
	if process.Process == nil {
		return Response{}, pkgerrors.NewStepExecutionError(
			process.ID.String(), "", "process node has no steps")
	}

	response, returned, err := it.runSteps(process, process.Process.Steps, sc)
	if err != nil {
		return Response{}, err
	}
	if !returned {
		return Response{Status: 200, Body: map[string]interface{}{}}, nil
	}
	return response, nil
}

// runSteps executes a step list against a scope. It returns the response of
// the first return step reached, with returned=false when the list ran out.
func (it *interpreter) runSteps(process entities.Node, steps []entities.Step, sc scope) (Response, bool, error) {
	for _, step := range steps {
		if it.remaining <= 0 {
			return Response{}, false, pkgerrors.NewStepExecutionError(
				process.ID.String(), step.ID, "step budget exhausted")
		}
		it.remaining--

		switch step.Kind {
		case entities.StepKindReturn:
			response, err := it.execReturn(process, step, sc)
			if err != nil {
				return Response{}, false, err
			}
			return response, true, nil

		case entities.StepKindCallFunction:
			if err := it.execCallFunction(process, step, sc); err != nil {
				return Response{}, false, err
			}

		case entities.StepKindQuery:
			if err := it.execQuery(process, step, sc); err != nil {
				return Response{}, false, err
			}

		case entities.StepKindBranch:
			response, returned, err := it.execBranch(process, step, sc)
			if err != nil {
				return Response{}, false, err
			}
			if returned {
				return response, true, nil
			}

		default:
			return Response{}, false, pkgerrors.NewStepExecutionError(
				process.ID.String(), step.ID,
				fmt.Sprintf("unknown step kind %q", step.Kind))
		}
	}

	return Response{}, false, nil
}

// execReturn produces the terminating response from the step config
func (it *interpreter) execReturn(process entities.Node, step entities.Step, sc scope) (Response, error) {
	status := 200
	if raw, ok := step.Config["status"]; ok {
		num, ok := raw.(float64)
		if !ok || num < 100 || num > 599 {
			return Response{}, pkgerrors.NewStepExecutionError(
				process.ID.String(), step.ID,
				fmt.Sprintf("invalid return status %v", raw))
		}
		status = int(num)
	}

	body := map[string]interface{}{}
	if raw, ok := step.Config["body"]; ok {
		resolved := resolveValue(raw, sc)
		asMap, ok := resolved.(map[string]interface{})
		if !ok {
			return Response{}, pkgerrors.NewStepExecutionError(
				process.ID.String(), step.ID, "return body must be an object")
		}
		body = asMap
	}

	return Response{Status: status, Body: body}, nil
}

// execCallFunction interprets the referenced function block in a child
// scope sharing the step budget and records its response as the step output
func (it *interpreter) execCallFunction(process entities.Node, step entities.Step, sc scope) error {
	if step.Ref == "" {
		return pkgerrors.NewStepExecutionError(
			process.ID.String(), step.ID, "call_function step has no ref")
	}

	callee, ok := it.collection.NodeByID(valueobjects.NodeID(step.Ref))
	if !ok || callee.Kind != entities.NodeKindProcess {
		return pkgerrors.NewStepExecutionError(
			process.ID.String(), step.ID,
			fmt.Sprintf("ref %q does not resolve to a function block", step.Ref))
	}

	child := scope{
		"params":  sc["params"],
		"payload": sc["payload"],
	}
	if input, ok := step.Config["input"]; ok {
		child["input"] = resolveValue(input, sc)
	}

	response, err := it.run(callee, child)
	if err != nil {
		return err
	}

	sc[step.ID] = map[string]interface{}{
		"status": float64(response.Status),
		"body":   response.Body,
	}
	return nil
}

// execQuery simulates a data access without any real I/O: the configured
// result literal becomes the step output, tagged with the queried resource
func (it *interpreter) execQuery(process entities.Node, step entities.Step, sc scope) error {
	var result interface{} = map[string]interface{}{}
	if raw, ok := step.Config["result"]; ok {
		result = resolveValue(raw, sc)
	}

	sc[step.ID] = map[string]interface{}{
		"source": step.Ref,
		"result": result,
	}
	return nil
}

// execBranch evaluates the configured condition and inlines the selected
// step list. Branches are data, not control recursion: the nested lists run
// against the same scope and count against the same budget.
func (it *interpreter) execBranch(process entities.Node, step entities.Step, sc scope) (Response, bool, error) {
	rawWhen, ok := step.Config["when"]
	if !ok {
		return Response{}, false, pkgerrors.NewStepExecutionError(
			process.ID.String(), step.ID, "branch step has no condition")
	}
	when, ok := rawWhen.(map[string]interface{})
	if !ok {
		return Response{}, false, pkgerrors.NewStepExecutionError(
			process.ID.String(), step.ID, "branch condition must be an object")
	}

	taken, err := evalCondition(process, step, when, sc)
	if err != nil {
		return Response{}, false, err
	}

	key := "then"
	if !taken {
		key = "else"
	}
	rawSteps, ok := step.Config[key]
	if !ok {
		return Response{}, false, nil
	}

	steps, err := stepsFromConfig(process, step, rawSteps)
	if err != nil {
		return Response{}, false, err
	}

	return it.runSteps(process, steps, sc)
}

// evalCondition evaluates a branch condition of the shape
// {left: scope path, op: eq|ne|exists, right: literal}
func evalCondition(process entities.Node, step entities.Step, when map[string]interface{}, sc scope) (bool, error) {
	leftPath, _ := when["left"].(string)
	op, _ := when["op"].(string)
	if leftPath == "" || op == "" {
		return false, pkgerrors.NewStepExecutionError(
			process.ID.String(), step.ID, "branch condition requires left and op")
	}

	left, found := lookupPath(sc, leftPath)

	switch op {
	case "exists":
		return found, nil
	case "eq":
		return found && valuesEqual(left, resolveValue(when["right"], sc)), nil
	case "ne":
		return !found || !valuesEqual(left, resolveValue(when["right"], sc)), nil
	default:
		return false, pkgerrors.NewStepExecutionError(
			process.ID.String(), step.ID,
			fmt.Sprintf("unknown branch operator %q", op))
	}
}

// stepsFromConfig decodes an inline step list out of a branch config
func stepsFromConfig(process entities.Node, step entities.Step, raw interface{}) ([]entities.Step, error) {
	list, ok := raw.([]interface{})
	if !ok {
		return nil, pkgerrors.NewStepExecutionError(
			process.ID.String(), step.ID, "branch step list must be an array")
	}

	steps := make([]entities.Step, 0, len(list))
	for _, item := range list {
		asMap, ok := item.(map[string]interface{})
		if !ok {
			return nil, pkgerrors.NewStepExecutionError(
				process.ID.String(), step.ID, "branch step entry must be an object")
		}

		id, _ := asMap["id"].(string)
		kindStr, _ := asMap["kind"].(string)
		kind := entities.StepKind(kindStr)
		if id == "" || !kind.Valid() {
			return nil, pkgerrors.NewStepExecutionError(
				process.ID.String(), step.ID,
				fmt.Sprintf("branch contains invalid step %q", id))
		}

		nested := entities.Step{ID: id, Kind: kind}
		if ref, ok := asMap["ref"].(string); ok {
			nested.Ref = ref
		}
		if config, ok := asMap["config"].(map[string]interface{}); ok {
			nested.Config = config
		}
		steps = append(steps, nested)
	}

	return steps, nil
}

// resolveValue substitutes scope references in config values. Strings of
// the form "$.dotted.path" resolve against the scope; objects and arrays
// are resolved recursively; everything else passes through.
func resolveValue(value interface{}, sc scope) interface{} {
	switch v := value.(type) {
	case string:
		if strings.HasPrefix(v, "$.") {
			if resolved, found := lookupPath(sc, v[2:]); found {
				return resolved
			}
			return nil
		}
		return v
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[key] = resolveValue(item, sc)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = resolveValue(item, sc)
		}
		return out
	default:
		return value
	}
}

// lookupPath walks a dotted path through nested maps in the scope
func lookupPath(sc scope, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")

	var current interface{} = map[string]interface{}(sc)
	for _, part := range parts {
		asMap, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = asMap[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// valuesEqual compares scalars the way JSON equality behaves
func valuesEqual(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

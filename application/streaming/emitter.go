package streaming

import (
	"fmt"

	"go.uber.org/zap"

	"simstudio-backend/application/planner"
	"simstudio-backend/domain/core/aggregates"
	"simstudio-backend/domain/core/entities"
)

// EventName identifies a lifecycle event in the deploy stream
type EventName string

const (
	EventStatus   EventName = "status"
	EventOrder    EventName = "order"
	EventExecute  EventName = "execute"
	EventComplete EventName = "complete"
	EventError    EventName = "error"
)

// Event is one formatted lifecycle event. Payload shapes are part of the
// streaming contract with the editor:
//
//	status   {message}
//	order    {index, total, node, message}
//	execute  {index, total, node, message}
//	complete {executionOrder, totalNodes}
//	error    {error, message}
type Event struct {
	Name    EventName
	Payload map[string]interface{}
}

// Sink receives the event stream. A send error aborts the run; the emitter
// never emits another event after a sink failure or a terminal event.
type Sink interface {
	Send(event Event) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(event Event) error

// Send implements Sink
func (f SinkFunc) Send(event Event) error {
	return f(event)
}

// ExecuteHook observes the dry run, with the same ordering contract as the
// planner's OrderHook
type ExecuteHook func(node entities.Node, index, total int)

// Emitter turns a plan plus dry run into an ordered event stream for one
// consumer. The emitter performs no I/O itself; the sink owns the
// transport. Exactly one terminal event (complete or error) ends every run.
type Emitter struct {
	planner *planner.Planner
	logger  *zap.Logger
}

// NewEmitter creates an emitter
func NewEmitter(p *planner.Planner, logger *zap.Logger) *Emitter {
	return &Emitter{planner: p, logger: logger}
}

// Run streams the runtime start lifecycle for a collection into the sink.
// The returned error reports why the stream ended early (plan failure after
// the error event, or a sink failure with no terminal event possible).
func (e *Emitter) Run(collection *aggregates.GraphCollection, sink Sink) error {
	if err := sink.Send(Event{
		Name:    EventStatus,
		Payload: map[string]interface{}{"message": "runtime_started"},
	}); err != nil {
		return err
	}

	var sinkErr error
	order, planErr := e.planner.PlanWithHook(collection, func(node entities.Node, index, total int) {
		if sinkErr != nil {
			return
		}
		sinkErr = sink.Send(Event{
			Name: EventOrder,
			Payload: map[string]interface{}{
				"index":   index,
				"total":   total,
				"node":    node,
				"message": fmt.Sprintf("ordered %s (%d/%d)", node.Label, index+1, total),
			},
		})
	})
	if sinkErr != nil {
		return sinkErr
	}
	if planErr != nil {
		e.logger.Warn("Runtime start failed during planning", zap.Error(planErr))
		if err := sink.Send(Event{
			Name: EventError,
			Payload: map[string]interface{}{
				"error":   "runtime_start_failed",
				"message": planErr.Error(),
			},
		}); err != nil {
			return err
		}
		return planErr
	}

	if err := e.dryRun(order, sink); err != nil {
		return err
	}

	return sink.Send(Event{
		Name: EventComplete,
		Payload: map[string]interface{}{
			"executionOrder": order,
			"totalNodes":     len(order),
		},
	})
}

// dryRun walks the planned order, touching every node once and emitting an
// execute event per touch
func (e *Emitter) dryRun(order planner.ExecutionOrder, sink Sink) error {
	total := len(order)
	for _, planned := range order {
		if err := sink.Send(Event{
			Name: EventExecute,
			Payload: map[string]interface{}{
				"index":   planned.Index,
				"total":   total,
				"node":    planned.Node,
				"message": fmt.Sprintf("executed %s (%d/%d)", planned.Node.Label, planned.Index+1, total),
			},
		}); err != nil {
			return err
		}
	}
	return nil
}

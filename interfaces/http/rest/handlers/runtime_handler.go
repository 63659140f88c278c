package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"simstudio-backend/application/commands"
	cmdbus "simstudio-backend/application/commands/bus"
	"simstudio-backend/application/queries"
	querybus "simstudio-backend/application/queries/bus"
	"simstudio-backend/domain/core/aggregates"
	"simstudio-backend/domain/core/entities"
	"simstudio-backend/pkg/common"
	pkgerrors "simstudio-backend/pkg/errors"
)

// RuntimeHandler handles deploy, status, plan and issue requests
type RuntimeHandler struct {
	commandBus *cmdbus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewRuntimeHandler creates a runtime handler
func NewRuntimeHandler(
	commandBus *cmdbus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *RuntimeHandler {
	return &RuntimeHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		validate:   validator.New(),
		logger:     logger,
	}
}

// deployRequest is the wire shape of a deploy. Tab order is the editor's
// declaration order and is preserved through decoding.
type deployRequest struct {
	Tabs []deployTab `json:"tabs" validate:"required,min=1,dive"`
}

type deployTab struct {
	Name  string            `json:"name" validate:"required"`
	Nodes []entities.Node   `json:"nodes"`
	Edges []aggregates.Edge `json:"edges"`
}

// Deploy handles POST /runtime/deploy
func (h *RuntimeHandler) Deploy(w http.ResponseWriter, r *http.Request) {
	var req deployRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewMalformedGraphError(err.Error()))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewMalformedGraphError(err.Error()))
		return
	}

	tabs := make([]aggregates.Tab, 0, len(req.Tabs))
	for _, tab := range req.Tabs {
		tabs = append(tabs, aggregates.Tab{
			Name: tab.Name,
			Graph: aggregates.Graph{
				Nodes: tab.Nodes,
				Edges: tab.Edges,
			},
		})
	}

	cmd := commands.DeployGraphCommand{Collection: aggregates.NewGraphCollection(tabs)}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetRuntimeStatusQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// Status handles GET /runtime/status
func (h *RuntimeHandler) Status(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetRuntimeStatusQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Plan handles POST /runtime/plan
func (h *RuntimeHandler) Plan(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.PlanExecutionQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Issues handles GET /runtime/issues
func (h *RuntimeHandler) Issues(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.AnalyzeBoundariesQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"simstudio-backend/application/queries"
	querybus "simstudio-backend/application/queries/bus"
	"simstudio-backend/pkg/common"
	pkgerrors "simstudio-backend/pkg/errors"
)

// SimulateHandler proxies arbitrary REST calls into the simulated backend
type SimulateHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewSimulateHandler creates a simulate handler
func NewSimulateHandler(
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *SimulateHandler {
	return &SimulateHandler{
		queryBus: queryBus,
		errors:   errorHandler,
		logger:   logger,
	}
}

// Dispatch handles ANY /sim/*. The wildcard suffix is the simulated path;
// the payload comes from the JSON body, or from query parameters on
// bodyless methods. debug=1 attaches the matched nodes and execution order.
func (h *SimulateHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	path := "/" + chi.URLParam(r, "*")

	payload, err := h.decodePayload(r)
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("request body must be a JSON object"))
		return
	}

	debug := r.URL.Query().Get("debug") == "1"

	result, err := h.queryBus.Ask(r.Context(), queries.SimulateRequestQuery{
		Method:  r.Method,
		Path:    path,
		Payload: payload,
		Debug:   debug,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	sim, ok := result.(queries.SimulateRequestResult)
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewInternalError("unexpected simulation result"))
		return
	}

	if !sim.Matched {
		common.RespondJSON(w, http.StatusNotFound, map[string]interface{}{
			"error":      "ROUTE_NOT_FOUND",
			"message":    "no api binding matches the simulated request",
			"method":     sim.Method,
			"path":       sim.Path,
			"updated_at": sim.UpdatedAt,
		})
		return
	}

	if debug {
		common.RespondJSON(w, sim.Status, map[string]interface{}{
			"status": sim.Status,
			"body":   sim.Body,
			"debug":  sim.Debug,
		})
		return
	}

	common.RespondJSON(w, sim.Status, sim.Body)
}

// decodePayload reads the simulated request payload. Bodyless methods take
// their payload from the query string; everything else expects a JSON
// object body, with an empty body meaning an empty payload.
func (h *SimulateHandler) decodePayload(r *http.Request) (map[string]interface{}, error) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodDelete {
		payload := make(map[string]interface{})
		for key, values := range r.URL.Query() {
			if key == "debug" {
				continue
			}
			if len(values) > 0 {
				payload[key] = values[0]
			}
		}
		return payload, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return map[string]interface{}{}, nil
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

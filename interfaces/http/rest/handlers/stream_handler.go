package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"simstudio-backend/application/ports"
	"simstudio-backend/application/streaming"
	pkgerrors "simstudio-backend/pkg/errors"
)

// StreamHandler serves the runtime start lifecycle as server-sent events
type StreamHandler struct {
	state   ports.RuntimeState
	emitter *streaming.Emitter
	errors  *pkgerrors.ErrorHandler
	logger  *zap.Logger
}

// NewStreamHandler creates a stream handler
func NewStreamHandler(
	state ports.RuntimeState,
	emitter *streaming.Emitter,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *StreamHandler {
	return &StreamHandler{
		state:   state,
		emitter: emitter,
		errors:  errorHandler,
		logger:  logger,
	}
}

// Start handles GET /runtime/start. Each request gets its own run over the
// snapshot current at connect time; later deploys do not affect a stream in
// flight. A disconnect mid-stream ends the run without a terminal event.
func (h *StreamHandler) Start(w http.ResponseWriter, r *http.Request) {
	snapshot := h.state.Current()
	if snapshot == nil {
		h.errors.Handle(w, r, pkgerrors.NewNotInitializedError())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.errors.HandleStatus(w, r, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	sink := streaming.SinkFunc(func(event streaming.Event) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		data, err := json.Marshal(event.Payload)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})

	if err := h.emitter.Run(snapshot.Collection, sink); err != nil {
		// the stream is already committed; nothing more can be written
		h.logger.Warn("Runtime start stream ended early",
			zap.String("remoteAddr", r.RemoteAddr),
			zap.Error(err),
		)
	}
}

package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	cmdbus "simstudio-backend/application/commands/bus"
	"simstudio-backend/application/ports"
	querybus "simstudio-backend/application/queries/bus"
	"simstudio-backend/application/streaming"
	"simstudio-backend/infrastructure/config"
	"simstudio-backend/interfaces/http/rest/handlers"
	"simstudio-backend/interfaces/http/rest/middleware"
	pkgerrors "simstudio-backend/pkg/errors"
	"simstudio-backend/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	config     *config.Config
	commandBus *cmdbus.CommandBus
	queryBus   *querybus.QueryBus
	state      ports.RuntimeState
	emitter    *streaming.Emitter
	errors     *pkgerrors.ErrorHandler
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	commandBus *cmdbus.CommandBus,
	queryBus *querybus.QueryBus,
	state ports.RuntimeState,
	emitter *streaming.Emitter,
	errorHandler *pkgerrors.ErrorHandler,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Router {
	return &Router{
		config:     cfg,
		commandBus: commandBus,
		queryBus:   queryBus,
		state:      state,
		emitter:    emitter,
		errors:     errorHandler,
		metrics:    metrics,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.config.EnableMetrics {
		router.Use(middleware.Metrics(rt.metrics))
	}

	// CORS configuration for the studio frontend
	if rt.config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	if rt.config.EnableMetrics {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.config, rt.logger))

		// Runtime lifecycle endpoints
		r.Route("/runtime", func(r chi.Router) {
			runtimeHandler := handlers.NewRuntimeHandler(rt.commandBus, rt.queryBus, rt.errors, rt.logger)
			r.Post("/deploy", runtimeHandler.Deploy)
			r.Get("/status", runtimeHandler.Status)
			r.Post("/plan", runtimeHandler.Plan)
			r.Get("/issues", runtimeHandler.Issues)

			streamHandler := handlers.NewStreamHandler(rt.state, rt.emitter, rt.errors, rt.logger)
			r.Get("/start", streamHandler.Start)
		})

		// Simulated backend dispatch
		simulateHandler := handlers.NewSimulateHandler(rt.queryBus, rt.errors, rt.logger)
		r.HandleFunc("/sim/*", simulateHandler.Dispatch)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests. The runtime is ready as
// soon as it can serve; a missing deployment is a normal state, not a
// readiness failure.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

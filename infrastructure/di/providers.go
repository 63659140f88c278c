package di

import (
	"go.uber.org/zap"

	"simstudio-backend/application/boundary"
	"simstudio-backend/application/commands"
	cmdbus "simstudio-backend/application/commands/bus"
	commands_handlers "simstudio-backend/application/commands/handlers"
	"simstudio-backend/application/planner"
	"simstudio-backend/application/ports"
	"simstudio-backend/application/queries"
	querybus "simstudio-backend/application/queries/bus"
	queries_handlers "simstudio-backend/application/queries/handlers"
	"simstudio-backend/application/simulation"
	"simstudio-backend/application/streaming"
	"simstudio-backend/domain/core/validators"
	"simstudio-backend/infrastructure/config"
	"simstudio-backend/infrastructure/messaging"
	"simstudio-backend/infrastructure/persistence/memory"
	pkgerrors "simstudio-backend/pkg/errors"
	"simstudio-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideRuntimeState creates the in-memory runtime state store
func ProvideRuntimeState() ports.RuntimeState {
	return memory.NewRuntimeStateStore()
}

// ProvideMetrics creates the Prometheus collectors
func ProvideMetrics() *observability.Metrics {
	return observability.NewMetrics()
}

// ProvideEventBus creates the in-process event dispatcher with its
// standard listeners subscribed
func ProvideEventBus(logger *zap.Logger, metrics *observability.Metrics) ports.EventBus {
	dispatcher := messaging.NewDispatcher(logger)
	messaging.RegisterListeners(dispatcher, logger, metrics)
	return dispatcher
}

// ProvideGraphValidator creates the structural graph validator
func ProvideGraphValidator() *validators.GraphValidator {
	return validators.NewGraphValidator()
}

// ProvidePlanner creates the execution order planner
func ProvidePlanner(logger *zap.Logger) *planner.Planner {
	return planner.NewPlanner(logger)
}

// ProvideAnalyzer creates the boundary analyzer
func ProvideAnalyzer(logger *zap.Logger) *boundary.Analyzer {
	return boundary.NewAnalyzer(logger)
}

// ProvideSimulator creates the request simulator
func ProvideSimulator(
	p *planner.Planner,
	a *boundary.Analyzer,
	cfg *config.Config,
	logger *zap.Logger,
) *simulation.Simulator {
	return simulation.NewSimulator(p, a, cfg.StepBudget, logger)
}

// ProvideEmitter creates the progress event emitter
func ProvideEmitter(p *planner.Planner, logger *zap.Logger) *streaming.Emitter {
	return streaming.NewEmitter(p, logger)
}

// ProvideErrorHandler creates the HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	state ports.RuntimeState,
	graphValidator *validators.GraphValidator,
	eventBus ports.EventBus,
	logger *zap.Logger,
) (*cmdbus.CommandBus, error) {
	commandBus := cmdbus.NewCommandBus()

	deployHandler := commands_handlers.NewDeployGraphHandler(state, graphValidator, eventBus, logger)
	if err := commandBus.Register(commands.DeployGraphCommand{}, deployHandler); err != nil {
		return nil, err
	}

	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	state ports.RuntimeState,
	p *planner.Planner,
	a *boundary.Analyzer,
	simulator *simulation.Simulator,
	eventBus ports.EventBus,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.GetRuntimeStatusQuery{}, queries_handlers.NewRuntimeStatusHandler(state)},
		{queries.PlanExecutionQuery{}, queries_handlers.NewPlanExecutionHandler(state, p)},
		{queries.AnalyzeBoundariesQuery{}, queries_handlers.NewAnalyzeBoundariesHandler(state, a)},
		{queries.SimulateRequestQuery{}, queries_handlers.NewSimulateRequestHandler(state, simulator, eventBus, logger)},
	}
	for _, reg := range registrations {
		if err := queryBus.Register(reg.query, reg.handler); err != nil {
			return nil, err
		}
	}

	return queryBus, nil
}

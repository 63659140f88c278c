package di

import (
	"go.uber.org/zap"

	"simstudio-backend/application/boundary"
	cmdbus "simstudio-backend/application/commands/bus"
	"simstudio-backend/application/planner"
	"simstudio-backend/application/ports"
	querybus "simstudio-backend/application/queries/bus"
	"simstudio-backend/application/simulation"
	"simstudio-backend/application/streaming"
	"simstudio-backend/infrastructure/config"
	pkgerrors "simstudio-backend/pkg/errors"
	"simstudio-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	RuntimeState ports.RuntimeState
	EventBus     ports.EventBus
	Planner      *planner.Planner
	Analyzer     *boundary.Analyzer
	Simulator    *simulation.Simulator
	Emitter      *streaming.Emitter
	CommandBus   *cmdbus.CommandBus
	QueryBus     *querybus.QueryBus
	Metrics      *observability.Metrics
	ErrorHandler *pkgerrors.ErrorHandler
}

package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"simstudio-backend/application/commands"
	"simstudio-backend/application/commands/bus"
	"simstudio-backend/application/ports"
	"simstudio-backend/domain/core/validators"
	"simstudio-backend/domain/events"
)

// DeployGraphHandler validates and installs graph collections
type DeployGraphHandler struct {
	state     ports.RuntimeState
	validator *validators.GraphValidator
	eventBus  ports.EventBus
	logger    *zap.Logger
}

// NewDeployGraphHandler creates a deploy handler
func NewDeployGraphHandler(
	state ports.RuntimeState,
	validator *validators.GraphValidator,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *DeployGraphHandler {
	return &DeployGraphHandler{
		state:     state,
		validator: validator,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// Handle implements bus.CommandHandler
func (h *DeployGraphHandler) Handle(ctx context.Context, cmd bus.Command) error {
	deploy, ok := cmd.(commands.DeployGraphCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", cmd)
	}

	warnings, err := h.validator.ValidateCollection(deploy.Collection)
	if err != nil {
		return err
	}
	for _, warning := range warnings {
		h.logger.Warn("Graph validation warning",
			zap.String("code", warning.Code),
			zap.String("target", warning.Target),
			zap.String("message", warning.Message),
		)
	}

	snapshot := h.state.Install(deploy.Collection)

	h.logger.Info("Graph collection deployed",
		zap.Strings("tabs", deploy.Collection.TabNames()),
		zap.Int("nodes", deploy.Collection.NodeCount()),
		zap.Int("edges", deploy.Collection.EdgeCount()),
		zap.Time("updated_at", snapshot.UpdatedAt),
	)

	event := events.NewGraphDeployed(
		uuid.New().String(),
		len(deploy.Collection.Tabs()),
		deploy.Collection.NodeCount(),
		deploy.Collection.EdgeCount(),
		time.Now(),
	)
	if err := h.eventBus.Publish(ctx, event); err != nil {
		// listeners are advisory; a publish failure never rolls back a deploy
		h.logger.Warn("Failed to publish deploy event", zap.Error(err))
	}

	return nil
}

package commands

import (
	"errors"

	"simstudio-backend/domain/core/aggregates"
)

// DeployGraphCommand installs a graph collection as the active runtime
// state. The collection arrives already decoded into the typed shape;
// structural validation happens in the handler before anything is swapped
// in, so a bad graph is never partially applied.
type DeployGraphCommand struct {
	Collection *aggregates.GraphCollection
}

// Validate implements bus.Command
func (c DeployGraphCommand) Validate() error {
	if c.Collection == nil {
		return errors.New("collection is required")
	}
	if len(c.Collection.Tabs()) == 0 {
		return errors.New("collection must contain at least one tab")
	}
	return nil
}

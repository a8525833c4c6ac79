package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-prefgraph/ownership"
	"github.com/goliatone/go-prefgraph/pkg/types"
)

// PreferenceDeleteInput names the instances to remove from a group. Removed,
// when set, receives the number of deleted instances.
type PreferenceDeleteInput struct {
	GroupName     string
	InstanceNames []string
	Removed       *int
}

// PreferenceDeleteCommand removes named instances; the group node survives
// even when emptied.
type PreferenceDeleteCommand struct {
	engine *ownership.Engine
	hooks  types.Hooks
	clock  types.Clock
}

// NewPreferenceDeleteCommand constructs the handler.
func NewPreferenceDeleteCommand(cfg PreferenceCommandConfig) *PreferenceDeleteCommand {
	return &PreferenceDeleteCommand{
		engine: cfg.Engine,
		hooks:  cfg.Hooks,
		clock:  safeClock(cfg.Clock),
	}
}

var _ gocommand.Commander[PreferenceDeleteInput] = (*PreferenceDeleteCommand)(nil)

// Execute runs the delete.
func (c *PreferenceDeleteCommand) Execute(ctx context.Context, input PreferenceDeleteInput) error {
	if c.engine == nil {
		return ErrEngineRequired
	}
	removed, err := c.engine.DeleteInstances(ctx, input.GroupName, input.InstanceNames)
	if err != nil {
		return err
	}
	if input.Removed != nil {
		*input.Removed = len(removed)
	}
	if c.hooks.AfterPreferenceDelete != nil {
		for _, name := range removed {
			c.hooks.AfterPreferenceDelete(ctx, types.PreferenceEvent{
				GroupName:    input.GroupName,
				InstanceName: name,
				Action:       "preference.delete",
				OccurredAt:   c.clock.Now(),
			})
		}
	}
	return nil
}

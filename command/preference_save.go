package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-masker"
	"github.com/goliatone/go-prefgraph/ownership"
	"github.com/goliatone/go-prefgraph/pkg/types"
	"github.com/goliatone/go-prefgraph/shape"
)

// PreferenceCommandConfig wires dependencies for the preference commands.
type PreferenceCommandConfig struct {
	Engine *ownership.Engine
	Hooks  types.Hooks
	Clock  types.Clock
	Masker *masker.Masker
}

// GridSaveInput captures a grid preference write. Result, when set, receives
// the refreshed external representation of the whole group.
type GridSaveInput struct {
	Preference shape.GridPreference
	Result     *shape.GridPreference
}

// GridSaveCommand validates, claims, and stores a grid preference.
type GridSaveCommand struct {
	engine  *ownership.Engine
	adapter *shape.GridAdapter
	hooks   types.Hooks
	clock   types.Clock
}

// NewGridSaveCommand constructs the handler.
func NewGridSaveCommand(cfg PreferenceCommandConfig) *GridSaveCommand {
	return &GridSaveCommand{
		engine:  cfg.Engine,
		adapter: shape.NewGridAdapter(shape.AdapterConfig{Masker: cfg.Masker}),
		hooks:   cfg.Hooks,
		clock:   safeClock(cfg.Clock),
	}
}

var _ gocommand.Commander[GridSaveInput] = (*GridSaveCommand)(nil)

// Execute runs the write. Shape validation happens before the engine so an
// invalid request never reaches the store.
func (c *GridSaveCommand) Execute(ctx context.Context, input GridSaveInput) error {
	if c.engine == nil {
		return ErrEngineRequired
	}
	request, err := c.adapter.FromExternal(input.Preference)
	if err != nil {
		return err
	}
	group, _, err := c.engine.ClaimAndStore(ctx, claimInput(request))
	if err != nil {
		return err
	}
	if input.Result != nil {
		external, err := c.adapter.ToExternal(group)
		if err != nil {
			return err
		}
		*input.Result = external
	}
	emitSaveHook(ctx, c.hooks, c.clock, request)
	return nil
}

// FormSaveInput captures a form preference write.
type FormSaveInput struct {
	Preference shape.FormPreference
	Result     *shape.FormPreference
}

// FormSaveCommand validates, claims, and stores a form preference.
type FormSaveCommand struct {
	engine  *ownership.Engine
	adapter *shape.FormAdapter
	hooks   types.Hooks
	clock   types.Clock
}

// NewFormSaveCommand constructs the handler.
func NewFormSaveCommand(cfg PreferenceCommandConfig) *FormSaveCommand {
	return &FormSaveCommand{
		engine:  cfg.Engine,
		adapter: shape.NewFormAdapter(shape.AdapterConfig{Masker: cfg.Masker}),
		hooks:   cfg.Hooks,
		clock:   safeClock(cfg.Clock),
	}
}

var _ gocommand.Commander[FormSaveInput] = (*FormSaveCommand)(nil)

// Execute runs the write.
func (c *FormSaveCommand) Execute(ctx context.Context, input FormSaveInput) error {
	if c.engine == nil {
		return ErrEngineRequired
	}
	request, err := c.adapter.FromExternal(input.Preference)
	if err != nil {
		return err
	}
	group, _, err := c.engine.ClaimAndStore(ctx, claimInput(request))
	if err != nil {
		return err
	}
	if input.Result != nil {
		external, err := c.adapter.ToExternal(group)
		if err != nil {
			return err
		}
		*input.Result = external
	}
	emitSaveHook(ctx, c.hooks, c.clock, request)
	return nil
}

func claimInput(request shape.WriteRequest) ownership.ClaimInput {
	return ownership.ClaimInput{
		GroupName:    request.GroupName,
		InstanceName: request.InstanceName,
		Owner:        request.Owner,
		Public:       request.Public,
		Description:  request.Description,
		Payload:      request.Payload,
	}
}

func emitSaveHook(ctx context.Context, hooks types.Hooks, clock types.Clock, request shape.WriteRequest) {
	if hooks.AfterPreferenceSave == nil {
		return
	}
	hooks.AfterPreferenceSave(ctx, types.PreferenceEvent{
		GroupName:    request.GroupName,
		InstanceName: request.InstanceName,
		Owner:        request.Owner,
		Action:       "preference.save",
		OccurredAt:   clock.Now(),
	})
}

func safeClock(clock types.Clock) types.Clock {
	if clock == nil {
		return types.SystemClock{}
	}
	return clock
}

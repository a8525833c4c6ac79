// Package service is the entry point for go-prefgraph. It wires the graph
// store, resolution engine, and command/query facades supplied by the host
// application; transports and authentication stay outside.
package service

import (
	"context"

	"github.com/goliatone/go-masker"
	"github.com/goliatone/go-prefgraph/command"
	"github.com/goliatone/go-prefgraph/ownership"
	"github.com/goliatone/go-prefgraph/pkg/types"
	"github.com/goliatone/go-prefgraph/query"
	"github.com/goliatone/go-prefgraph/shape"
)

// Config captures all required dependencies so callers can provide their own
// instances (neo4j or bun stores, hooks, clocks).
type Config struct {
	Store  types.GraphStore
	Hooks  types.Hooks
	Clock  types.Clock
	Logger types.Logger
	// Masker redacts owner contact fields in external representations.
	// Leave nil to expose them unchanged.
	Masker *masker.Masker
}

// Commands exposes the service write handlers.
type Commands struct {
	GridSave         *command.GridSaveCommand
	FormSave         *command.FormSaveCommand
	PreferenceDelete *command.PreferenceDeleteCommand
}

// Queries exposes the read helpers.
type Queries struct {
	GridByName          *query.GridByNameQuery
	FormByName          *query.FormByNameQuery
	AnyByUser           *query.AnyByUserQuery
	GridByUser          *query.GridByUserQuery
	FormByUser          *query.FormByUserQuery
	ExistsForOtherOwner *query.ExistsForOtherOwnerQuery
}

// Service bundles the preference operations behind one facade.
type Service struct {
	cfg      Config
	engine   *ownership.Engine
	commands Commands
	queries  Queries
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) (*Service, error) {
	cfg = normalizeConfig(cfg)
	engine, err := ownership.NewEngine(ownership.EngineConfig{
		Store:  cfg.Store,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	cmdCfg := command.PreferenceCommandConfig{
		Engine: engine,
		Hooks:  cfg.Hooks,
		Clock:  cfg.Clock,
		Masker: cfg.Masker,
	}
	qryCfg := query.QueryConfig{
		Store:  cfg.Store,
		Masker: cfg.Masker,
	}

	return &Service{
		cfg:    cfg,
		engine: engine,
		commands: Commands{
			GridSave:         command.NewGridSaveCommand(cmdCfg),
			FormSave:         command.NewFormSaveCommand(cmdCfg),
			PreferenceDelete: command.NewPreferenceDeleteCommand(cmdCfg),
		},
		queries: Queries{
			GridByName:          query.NewGridByNameQuery(qryCfg),
			FormByName:          query.NewFormByNameQuery(qryCfg),
			AnyByUser:           query.NewAnyByUserQuery(qryCfg),
			GridByUser:          query.NewGridByUserQuery(qryCfg),
			FormByUser:          query.NewFormByUserQuery(qryCfg),
			ExistsForOtherOwner: query.NewExistsForOtherOwnerQuery(qryCfg),
		},
	}, nil
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands { return s.commands }

// Queries returns the query facade.
func (s *Service) Queries() Queries { return s.queries }

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil && s.cfg.Store != nil && s.engine != nil
}

// GetAnyByUser lists every preference a user created, shape agnostic.
func (s *Service) GetAnyByUser(ctx context.Context, user string) ([]shape.AnyEntry, error) {
	return s.queries.AnyByUser.Query(ctx, query.ByUserInput{LoginName: user})
}

// DeleteAny removes the named instances from a group and reports how many
// were deleted. The group node is retained even when emptied.
func (s *Service) DeleteAny(ctx context.Context, groupName string, instanceNames []string) (int, error) {
	removed := 0
	err := s.commands.PreferenceDelete.Execute(ctx, command.PreferenceDeleteInput{
		GroupName:     groupName,
		InstanceNames: instanceNames,
		Removed:       &removed,
	})
	return removed, err
}

// SaveGrid claims and stores a grid preference, returning the refreshed
// group representation.
func (s *Service) SaveGrid(ctx context.Context, pref shape.GridPreference) (shape.GridPreference, error) {
	var result shape.GridPreference
	err := s.commands.GridSave.Execute(ctx, command.GridSaveInput{
		Preference: pref,
		Result:     &result,
	})
	return result, err
}

// GetGrid reads a grid group filtered by requester visibility. ownerScope
// narrows results to one owner when non-empty.
func (s *Service) GetGrid(ctx context.Context, gridName, ownerScope, requester string) (shape.GridPreference, error) {
	return s.queries.GridByName.Query(ctx, query.ByNameInput{
		GroupName:  gridName,
		OwnerScope: ownerScope,
		Requester:  requester,
	})
}

// GetGridByUser lists every grid preference a user created.
func (s *Service) GetGridByUser(ctx context.Context, user string) ([]shape.GridEntry, error) {
	return s.queries.GridByUser.Query(ctx, query.ByUserInput{LoginName: user})
}

// GridExistsForOtherOwner reports whether the named grid instance is already
// claimed by a different user.
func (s *Service) GridExistsForOtherOwner(ctx context.Context, gridName, prefName, excludedOwner string) (bool, error) {
	return s.queries.ExistsForOtherOwner.Query(ctx, query.ExistsInput{
		GroupName:     gridName,
		InstanceName:  prefName,
		ExcludedOwner: excludedOwner,
	})
}

// SaveForm claims and stores a form preference.
func (s *Service) SaveForm(ctx context.Context, pref shape.FormPreference) (shape.FormPreference, error) {
	var result shape.FormPreference
	err := s.commands.FormSave.Execute(ctx, command.FormSaveInput{
		Preference: pref,
		Result:     &result,
	})
	return result, err
}

// GetForm reads a form group filtered by requester visibility.
func (s *Service) GetForm(ctx context.Context, formName, ownerScope, requester string) (shape.FormPreference, error) {
	return s.queries.FormByName.Query(ctx, query.ByNameInput{
		GroupName:  formName,
		OwnerScope: ownerScope,
		Requester:  requester,
	})
}

// GetFormByUser lists every form preference a user created.
func (s *Service) GetFormByUser(ctx context.Context, user string) ([]shape.FormEntry, error) {
	return s.queries.FormByUser.Query(ctx, query.ByUserInput{LoginName: user})
}

// FormExistsForOtherOwner reports whether the named form instance is already
// claimed by a different user.
func (s *Service) FormExistsForOtherOwner(ctx context.Context, formName, prefName, excludedOwner string) (bool, error) {
	return s.queries.ExistsForOtherOwner.Query(ctx, query.ExistsInput{
		GroupName:     formName,
		InstanceName:  prefName,
		ExcludedOwner: excludedOwner,
	})
}

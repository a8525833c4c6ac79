// Package ownership implements the claim and store engine: a named
// preference instance binds to its first writer and stays bound to that user
// permanently. Later writes by the same user update the instance in place;
// writes by anyone else are rejected before any mutation applies.
package ownership

import (
	"context"
	"strings"

	"github.com/goliatone/go-prefgraph/pkg/types"
	"github.com/google/uuid"
)

// EngineConfig wires dependencies for the resolution engine.
type EngineConfig struct {
	Store  types.GraphStore
	Logger types.Logger
}

// Engine resolves preference groups and instances against the graph store.
// It is stateless and request scoped; atomicity is delegated to the store's
// RunInTx.
type Engine struct {
	store  types.GraphStore
	logger types.Logger
}

// ClaimInput captures one preference write.
type ClaimInput struct {
	GroupName    string
	InstanceName string
	Owner        string
	Public       bool
	Description  string
	Payload      string
}

// NewEngine constructs the resolution engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Store == nil {
		return nil, types.ErrMissingGraphStore
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Engine{store: cfg.Store, logger: logger}, nil
}

// ClaimAndStore finds or creates the group and the named instance, binds the
// instance to its first writer, and persists the mutable fields. The whole
// sequence runs in a single transaction: a rejected write leaves storage
// unchanged, and a concurrent second writer observes either the fully bound
// instance or fully absent state.
//
// The returned group carries its in-memory instance set including the saved
// instance, so shape adapters can map it without a re-read.
func (e *Engine) ClaimAndStore(ctx context.Context, input ClaimInput) (*types.PreferenceGroup, *types.PreferenceInstance, error) {
	if strings.TrimSpace(input.GroupName) == "" {
		return nil, nil, types.ErrGroupNameRequired
	}
	if strings.TrimSpace(input.InstanceName) == "" {
		return nil, nil, types.ErrInstanceNameRequired
	}
	if strings.TrimSpace(input.Owner) == "" {
		return nil, nil, types.ErrOwnerRequired
	}

	var (
		group    *types.PreferenceGroup
		instance *types.PreferenceInstance
	)
	err := e.store.RunInTx(ctx, func(ctx context.Context, tx types.GraphStore) error {
		owner, err := tx.FindUserByLoginName(ctx, input.Owner)
		if err != nil {
			return err
		}
		if owner == nil {
			return types.NewUnknownUserError(input.Owner)
		}

		group, err = tx.FindGroupWithInstancesByName(ctx, input.GroupName)
		if err != nil {
			return err
		}
		if group == nil {
			group, err = tx.SaveGroup(ctx, &types.PreferenceGroup{Name: input.GroupName})
			if err != nil {
				return err
			}
		}

		instance = group.FindInstance(input.InstanceName)
		if instance == nil {
			created, err := tx.SaveInstance(ctx, &types.PreferenceInstance{
				Name:        input.InstanceName,
				DisplayName: input.GroupName,
				Public:      input.Public,
				OwnerName:   input.Owner,
				Description: input.Description,
			})
			if err != nil {
				return err
			}
			if err := tx.LinkGroupToInstance(ctx, group.ID, created.ID); err != nil {
				return err
			}
			if err := tx.LinkInstanceToUser(ctx, created.ID, owner.ID); err != nil {
				return err
			}
			created.Owner = owner
			group.AddInstance(*created)
			instance = &group.Instances[len(group.Instances)-1]
		} else if instance.Owner == nil {
			// claimed lazily: the instance existed without a created-by
			// relationship, so the current writer becomes the owner
			if err := tx.LinkInstanceToUser(ctx, instance.ID, owner.ID); err != nil {
				return err
			}
			instance.Owner = owner
			instance.OwnerName = owner.LoginName
		} else if instance.Owner.ID != owner.ID {
			return types.NewOwnershipConflictError(input.InstanceName, input.Owner)
		}

		instance.Public = input.Public
		instance.Description = input.Description
		instance.Value = input.Payload
		if _, err := tx.SaveInstance(ctx, instance); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	e.logger.Debug("preference stored", "group", input.GroupName, "instance", input.InstanceName, "owner", input.Owner)
	return group, instance, nil
}

// DeleteInstances removes every instance in the group whose name appears in
// names, together with its created-by relationship. The group node survives
// even when left with zero instances. Names with no matching instance are
// skipped; the returned slice holds the names actually removed.
func (e *Engine) DeleteInstances(ctx context.Context, groupName string, names []string) ([]string, error) {
	if strings.TrimSpace(groupName) == "" {
		return nil, types.ErrGroupNameRequired
	}

	var removed []string
	err := e.store.RunInTx(ctx, func(ctx context.Context, tx types.GraphStore) error {
		group, err := tx.FindGroupWithInstancesByName(ctx, groupName)
		if err != nil {
			return err
		}
		if group == nil {
			return types.NewGroupNotFoundError(groupName)
		}

		wanted := make(map[string]struct{}, len(names))
		for _, name := range names {
			wanted[name] = struct{}{}
		}

		var ids []uuid.UUID
		remaining := group.Instances[:0]
		for _, instance := range group.Instances {
			if _, ok := wanted[instance.Name]; ok {
				ids = append(ids, instance.ID)
				removed = append(removed, instance.Name)
				continue
			}
			remaining = append(remaining, instance)
		}
		group.Instances = remaining

		if len(ids) == 0 {
			return nil
		}
		return tx.DeleteInstances(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("preference instances deleted", "group", groupName, "removed", len(removed))
	return removed, nil
}

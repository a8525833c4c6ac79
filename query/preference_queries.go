// Package query exposes the read side of the preference service: shaped
// group reads filtered by requester visibility, per-owner instance listings,
// and the exists-for-other-owner probe.
package query

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-masker"
	"github.com/goliatone/go-prefgraph/pkg/types"
	"github.com/goliatone/go-prefgraph/shape"
	"github.com/goliatone/go-prefgraph/visibility"
)

// QueryConfig wires dependencies shared by the preference queries.
type QueryConfig struct {
	Store  types.GraphStore
	Masker *masker.Masker
}

// ByNameInput scopes a shaped group read. OwnerScope narrows results to one
// owner when non-empty; Requester drives the publication predicate.
type ByNameInput struct {
	GroupName  string
	OwnerScope string
	Requester  string
}

// ByUserInput lists every instance created by one user.
type ByUserInput struct {
	LoginName string
}

// ExistsInput probes for an instance bound to a different owner.
type ExistsInput struct {
	GroupName     string
	InstanceName  string
	ExcludedOwner string
}

// GridByNameQuery reads a grid group filtered by requester visibility. An
// absent group yields an empty representation carrying the requested name.
type GridByNameQuery struct {
	store   types.GraphStore
	adapter *shape.GridAdapter
}

// NewGridByNameQuery constructs the query.
func NewGridByNameQuery(cfg QueryConfig) *GridByNameQuery {
	return &GridByNameQuery{
		store:   cfg.Store,
		adapter: shape.NewGridAdapter(shape.AdapterConfig{Masker: cfg.Masker}),
	}
}

var _ gocommand.Querier[ByNameInput, shape.GridPreference] = (*GridByNameQuery)(nil)

// Query runs the read.
func (q *GridByNameQuery) Query(ctx context.Context, input ByNameInput) (shape.GridPreference, error) {
	if q.store == nil {
		return shape.GridPreference{}, types.ErrMissingGraphStore
	}
	if strings.TrimSpace(input.Requester) == "" {
		return shape.GridPreference{}, types.ErrRequesterRequired
	}
	group, err := q.store.FindGroupWithInstancesByName(ctx, input.GroupName)
	if err != nil {
		return shape.GridPreference{}, err
	}
	if group == nil {
		return shape.EmptyGrid(input.GroupName), nil
	}
	group.Instances = visibility.Filter(group.Instances, input.Requester, input.OwnerScope)
	return q.adapter.ToExternal(group)
}

// FormByNameQuery reads a form group filtered by requester visibility.
type FormByNameQuery struct {
	store   types.GraphStore
	adapter *shape.FormAdapter
}

// NewFormByNameQuery constructs the query.
func NewFormByNameQuery(cfg QueryConfig) *FormByNameQuery {
	return &FormByNameQuery{
		store:   cfg.Store,
		adapter: shape.NewFormAdapter(shape.AdapterConfig{Masker: cfg.Masker}),
	}
}

var _ gocommand.Querier[ByNameInput, shape.FormPreference] = (*FormByNameQuery)(nil)

// Query runs the read.
func (q *FormByNameQuery) Query(ctx context.Context, input ByNameInput) (shape.FormPreference, error) {
	if q.store == nil {
		return shape.FormPreference{}, types.ErrMissingGraphStore
	}
	if strings.TrimSpace(input.Requester) == "" {
		return shape.FormPreference{}, types.ErrRequesterRequired
	}
	group, err := q.store.FindGroupWithInstancesByName(ctx, input.GroupName)
	if err != nil {
		return shape.FormPreference{}, err
	}
	if group == nil {
		return shape.EmptyForm(input.GroupName), nil
	}
	group.Instances = visibility.Filter(group.Instances, input.Requester, input.OwnerScope)
	return q.adapter.ToExternal(group)
}

// AnyByUserQuery lists every instance a user created, shape agnostic. The
// instances come back without relationships loaded; the owner label falls
// back to the denormalized field.
type AnyByUserQuery struct {
	store   types.GraphStore
	adapter *shape.AnyAdapter
}

// NewAnyByUserQuery constructs the query.
func NewAnyByUserQuery(cfg QueryConfig) *AnyByUserQuery {
	return &AnyByUserQuery{
		store:   cfg.Store,
		adapter: shape.NewAnyAdapter(shape.AdapterConfig{Masker: cfg.Masker}),
	}
}

var _ gocommand.Querier[ByUserInput, []shape.AnyEntry] = (*AnyByUserQuery)(nil)

// Query runs the read.
func (q *AnyByUserQuery) Query(ctx context.Context, input ByUserInput) ([]shape.AnyEntry, error) {
	if q.store == nil {
		return nil, types.ErrMissingGraphStore
	}
	instances, err := q.store.FindInstancesByOwner(ctx, input.LoginName)
	if err != nil {
		return nil, err
	}
	return q.adapter.Entries(instances), nil
}

// GridByUserQuery lists every grid instance a user created.
type GridByUserQuery struct {
	store   types.GraphStore
	adapter *shape.GridAdapter
}

// NewGridByUserQuery constructs the query.
func NewGridByUserQuery(cfg QueryConfig) *GridByUserQuery {
	return &GridByUserQuery{
		store:   cfg.Store,
		adapter: shape.NewGridAdapter(shape.AdapterConfig{Masker: cfg.Masker}),
	}
}

var _ gocommand.Querier[ByUserInput, []shape.GridEntry] = (*GridByUserQuery)(nil)

// Query runs the read.
func (q *GridByUserQuery) Query(ctx context.Context, input ByUserInput) ([]shape.GridEntry, error) {
	if q.store == nil {
		return nil, types.ErrMissingGraphStore
	}
	instances, err := q.store.FindInstancesByOwner(ctx, input.LoginName)
	if err != nil {
		return nil, err
	}
	return q.adapter.Entries(instances)
}

// FormByUserQuery lists every form instance a user created.
type FormByUserQuery struct {
	store   types.GraphStore
	adapter *shape.FormAdapter
}

// NewFormByUserQuery constructs the query.
func NewFormByUserQuery(cfg QueryConfig) *FormByUserQuery {
	return &FormByUserQuery{
		store:   cfg.Store,
		adapter: shape.NewFormAdapter(shape.AdapterConfig{Masker: cfg.Masker}),
	}
}

var _ gocommand.Querier[ByUserInput, []shape.FormEntry] = (*FormByUserQuery)(nil)

// Query runs the read.
func (q *FormByUserQuery) Query(ctx context.Context, input ByUserInput) ([]shape.FormEntry, error) {
	if q.store == nil {
		return nil, types.ErrMissingGraphStore
	}
	instances, err := q.store.FindInstancesByOwner(ctx, input.LoginName)
	if err != nil {
		return nil, err
	}
	return q.adapter.Entries(instances)
}

// ExistsForOtherOwnerQuery reports whether a named instance is already
// claimed by someone else, so callers can warn before a conflicting write.
// Grid and form shapes share the same probe.
type ExistsForOtherOwnerQuery struct {
	store types.GraphStore
}

// NewExistsForOtherOwnerQuery constructs the query.
func NewExistsForOtherOwnerQuery(cfg QueryConfig) *ExistsForOtherOwnerQuery {
	return &ExistsForOtherOwnerQuery{store: cfg.Store}
}

var _ gocommand.Querier[ExistsInput, bool] = (*ExistsForOtherOwnerQuery)(nil)

// Query runs the probe.
func (q *ExistsForOtherOwnerQuery) Query(ctx context.Context, input ExistsInput) (bool, error) {
	if q.store == nil {
		return false, types.ErrMissingGraphStore
	}
	return visibility.ExistsForOtherOwner(ctx, q.store, input.GroupName, input.InstanceName, input.ExcludedOwner)
}

// Package bunstore implements the graph store contract over a relational
// projection of the preference graph: nodes become rows, the has-instance
// and created-by relationships become foreign key columns. It backs tests
// and embedded deployments; neo4jstore is the native graph implementation.
package bunstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goliatone/go-prefgraph/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// StoreConfig wires dependencies for the bun-backed graph store.
type StoreConfig struct {
	DB    *bun.DB
	IDGen types.IDGenerator
}

// Store implements types.GraphStore. A Store constructed by RunInTx is bound
// to the enclosing bun transaction.
type Store struct {
	db    *bun.DB
	idb   bun.IDB
	idGen types.IDGenerator
}

// NewStore constructs the store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.DB == nil {
		return nil, errors.New("bunstore: db required")
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	return &Store{db: cfg.DB, idb: cfg.DB, idGen: idGen}, nil
}

var _ types.GraphStore = (*Store)(nil)

// FindGroupByName returns the group without its instances, or nil.
func (s *Store) FindGroupByName(ctx context.Context, name string) (*types.PreferenceGroup, error) {
	record := new(GroupRecord)
	err := s.idb.NewSelect().Model(record).Where("name = ?", name).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return groupToDomain(record), nil
}

// FindGroupWithInstancesByName eager loads the group's instances and their
// bound owners, or returns nil.
func (s *Store) FindGroupWithInstancesByName(ctx context.Context, name string) (*types.PreferenceGroup, error) {
	record := new(GroupRecord)
	err := s.idb.NewSelect().Model(record).
		Relation("Instances", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("name ASC")
		}).
		Relation("Instances.User").
		Where("g.name = ?", name).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return groupToDomain(record), nil
}

// SaveGroup inserts or updates the group, assigning an ID on first save.
func (s *Store) SaveGroup(ctx context.Context, group *types.PreferenceGroup) (*types.PreferenceGroup, error) {
	record := &GroupRecord{ID: group.ID, Name: group.Name}
	if record.ID == uuid.Nil {
		record.ID = s.idGen.UUID()
		if _, err := s.idb.NewInsert().Model(record).Exec(ctx); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.idb.NewUpdate().Model(record).WherePK().Exec(ctx); err != nil {
			return nil, err
		}
	}
	group.ID = record.ID
	return group, nil
}

// SaveInstance inserts or updates the instance, assigning an ID on first
// save. The created-by projection (user_id) is owned by LinkInstanceToUser
// and never written here.
func (s *Store) SaveInstance(ctx context.Context, instance *types.PreferenceInstance) (*types.PreferenceInstance, error) {
	record := &InstanceRecord{
		ID:          instance.ID,
		Name:        instance.Name,
		DisplayName: instance.DisplayName,
		Public:      instance.Public,
		OwnerName:   instance.OwnerName,
		Description: instance.Description,
		Value:       instance.Value,
	}
	if record.ID == uuid.Nil {
		record.ID = s.idGen.UUID()
		if _, err := s.idb.NewInsert().Model(record).Exec(ctx); err != nil {
			return nil, err
		}
	} else {
		_, err := s.idb.NewUpdate().Model(record).
			Column("name", "display_name", "public", "owner_name", "description", "value").
			WherePK().
			Exec(ctx)
		if err != nil {
			return nil, err
		}
	}
	instance.ID = record.ID
	return instance, nil
}

// DeleteInstances removes the rows; their relationship projections go with
// them.
func (s *Store) DeleteInstances(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.idb.NewDelete().Model((*InstanceRecord)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return err
}

// LinkGroupToInstance attaches the instance to the group.
func (s *Store) LinkGroupToInstance(ctx context.Context, groupID, instanceID uuid.UUID) error {
	_, err := s.idb.NewUpdate().Model((*InstanceRecord)(nil)).
		Set("group_id = ?", groupID).
		Where("id = ?", instanceID).
		Exec(ctx)
	return err
}

// LinkInstanceToUser establishes the created-by relationship.
func (s *Store) LinkInstanceToUser(ctx context.Context, instanceID, userID uuid.UUID) error {
	_, err := s.idb.NewUpdate().Model((*InstanceRecord)(nil)).
		Set("user_id = ?", userID).
		Where("id = ?", instanceID).
		Exec(ctx)
	return err
}

// FindInstancesNotOwnedBy returns instances matching the group and instance
// name whose bound owner differs from excludedOwner.
func (s *Store) FindInstancesNotOwnedBy(ctx context.Context, groupName, instanceName, excludedOwner string) ([]types.PreferenceInstance, error) {
	var records []*InstanceRecord
	err := s.idb.NewSelect().Model(&records).
		Relation("User").
		Join("JOIN preference_groups AS g ON g.id = i.group_id").
		Join("JOIN users AS u ON u.id = i.user_id").
		Where("g.name = ?", groupName).
		Where("i.name = ?", instanceName).
		Where("u.login_name <> ?", excludedOwner).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return instancesToDomain(records), nil
}

// FindInstancesByOwner lists instances bound to the user via created-by.
// Mirrors the graph query shape: relationships are not loaded.
func (s *Store) FindInstancesByOwner(ctx context.Context, loginName string) ([]types.PreferenceInstance, error) {
	var records []*InstanceRecord
	err := s.idb.NewSelect().Model(&records).
		Join("JOIN users AS u ON u.id = i.user_id").
		Where("u.login_name = ?", loginName).
		OrderExpr("i.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return instancesToDomain(records), nil
}

// FindUserByLoginName returns the user, or nil.
func (s *Store) FindUserByLoginName(ctx context.Context, name string) (*types.User, error) {
	record := new(UserRecord)
	err := s.idb.NewSelect().Model(record).Where("login_name = ?", name).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return userToDomain(record), nil
}

// RunInTx executes fn against a transaction-bound store. Nested calls reuse
// the enclosing transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx types.GraphStore) error) error {
	if _, ok := s.idb.(bun.Tx); ok {
		return fn(ctx, s)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &Store{db: s.db, idb: tx, idGen: s.idGen})
	})
}

func groupToDomain(record *GroupRecord) *types.PreferenceGroup {
	group := &types.PreferenceGroup{
		ID:   record.ID,
		Name: record.Name,
	}
	for _, inst := range record.Instances {
		group.Instances = append(group.Instances, *instanceToDomain(inst))
	}
	return group
}

func instanceToDomain(record *InstanceRecord) *types.PreferenceInstance {
	instance := &types.PreferenceInstance{
		ID:          record.ID,
		Name:        record.Name,
		DisplayName: record.DisplayName,
		Public:      record.Public,
		OwnerName:   record.OwnerName,
		Description: record.Description,
		Value:       record.Value,
	}
	if record.User != nil {
		instance.Owner = userToDomain(record.User)
	}
	return instance
}

func instancesToDomain(records []*InstanceRecord) []types.PreferenceInstance {
	out := make([]types.PreferenceInstance, 0, len(records))
	for _, record := range records {
		out = append(out, *instanceToDomain(record))
	}
	return out
}

func userToDomain(record *UserRecord) *types.User {
	return &types.User{
		ID:         record.ID,
		ExternalID: record.ExternalID,
		LoginName:  record.LoginName,
		FirstName:  record.FirstName,
		LastName:   record.LastName,
		Phone:      record.Phone,
		Email:      record.Email,
		Internal:   record.Internal,
		Active:     record.Active,
		Admin:      record.Admin,
		JoinedAt:   record.JoinedAt,
		TimeZone:   record.TimeZone,
		ModifiedBy: record.ModifiedBy,
		ModifiedAt: record.ModifiedAt,
	}
}

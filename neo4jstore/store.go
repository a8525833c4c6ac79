// Package neo4jstore implements the graph store contract natively on Neo4j.
// Groups, instances and users are nodes; HAS_INSTANCE and CREATED_BY are the
// relationships that the rest of the module reasons about.
package neo4jstore

import (
	"context"
	"errors"

	"github.com/goliatone/go-prefgraph/pkg/types"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// StoreConfig wires dependencies for the Neo4j-backed graph store.
type StoreConfig struct {
	Driver   neo4j.DriverWithContext
	Database string
	IDGen    types.IDGenerator
}

// Store implements types.GraphStore. A Store handed to a RunInTx callback is
// bound to the enclosing explicit transaction.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	idGen    types.IDGenerator
	tx       neo4j.ExplicitTransaction
}

// NewStore constructs the store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Driver == nil {
		return nil, errors.New("neo4jstore: driver required")
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	return &Store{driver: cfg.Driver, database: cfg.Database, idGen: idGen}, nil
}

var _ types.GraphStore = (*Store)(nil)

const instanceReturn = `
	i.id AS id, i.name AS name, i.display_name AS display_name,
	i.public AS public, i.owner_name AS owner_name,
	i.description AS description, i.value AS value`

const userReturn = `
	u.id AS user_id, u.external_id AS external_id, u.login_name AS login_name,
	u.first_name AS first_name, u.last_name AS last_name,
	u.phone AS phone, u.email AS email,
	u.internal AS internal, u.active AS active, u.admin AS admin,
	u.time_zone AS time_zone`

// FindGroupByName returns the group without its instances, or nil.
func (s *Store) FindGroupByName(ctx context.Context, name string) (*types.PreferenceGroup, error) {
	records, err := s.run(ctx, neo4j.AccessModeRead, `
		MATCH (g:PreferenceGroup {name: $name})
		RETURN g.id AS group_id, g.name AS group_name
		LIMIT 1`,
		map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return groupFromRecord(records[0]), nil
}

// FindGroupWithInstancesByName loads the group, its instances and their bound
// owners in one round trip, or returns nil.
func (s *Store) FindGroupWithInstancesByName(ctx context.Context, name string) (*types.PreferenceGroup, error) {
	records, err := s.run(ctx, neo4j.AccessModeRead, `
		MATCH (g:PreferenceGroup {name: $name})
		OPTIONAL MATCH (g)-[:HAS_INSTANCE]->(i:PreferenceInstance)
		OPTIONAL MATCH (i)-[:CREATED_BY]->(u:User)
		RETURN g.id AS group_id, g.name AS group_name,`+instanceReturn+`,`+userReturn+`
		ORDER BY i.name`,
		map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	group := groupFromRecord(records[0])
	for _, record := range records {
		if getString(record, "id") == "" {
			continue
		}
		group.Instances = append(group.Instances, *instanceFromRecord(record))
	}
	return group, nil
}

// SaveGroup creates the group node if it does not exist yet.
func (s *Store) SaveGroup(ctx context.Context, group *types.PreferenceGroup) (*types.PreferenceGroup, error) {
	id := group.ID
	if id == uuid.Nil {
		id = s.idGen.UUID()
	}
	records, err := s.run(ctx, neo4j.AccessModeWrite, `
		MERGE (g:PreferenceGroup {name: $name})
		ON CREATE SET g.id = $id
		RETURN g.id AS group_id, g.name AS group_name`,
		map[string]any{"name": group.Name, "id": id.String()})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("neo4jstore: merge returned no group")
	}
	group.ID = getUUID(records[0], "group_id")
	return group, nil
}

// SaveInstance creates or updates the instance node. Relationships are owned
// by the Link operations and never written here.
func (s *Store) SaveInstance(ctx context.Context, instance *types.PreferenceInstance) (*types.PreferenceInstance, error) {
	if instance.ID == uuid.Nil {
		instance.ID = s.idGen.UUID()
	}
	_, err := s.run(ctx, neo4j.AccessModeWrite, `
		MERGE (i:PreferenceInstance {id: $id})
		SET i.name = $name, i.display_name = $displayName, i.public = $public,
		    i.owner_name = $ownerName, i.description = $description, i.value = $value`,
		map[string]any{
			"id":          instance.ID.String(),
			"name":        instance.Name,
			"displayName": instance.DisplayName,
			"public":      instance.Public,
			"ownerName":   instance.OwnerName,
			"description": instance.Description,
			"value":       instance.Value,
		})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// DeleteInstances detaches and deletes the instance nodes. Group and user
// nodes survive.
func (s *Store) DeleteInstances(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}
	_, err := s.run(ctx, neo4j.AccessModeWrite, `
		MATCH (i:PreferenceInstance)
		WHERE i.id IN $ids
		DETACH DELETE i`,
		map[string]any{"ids": raw})
	return err
}

// LinkGroupToInstance establishes the HAS_INSTANCE relationship.
func (s *Store) LinkGroupToInstance(ctx context.Context, groupID, instanceID uuid.UUID) error {
	_, err := s.run(ctx, neo4j.AccessModeWrite, `
		MATCH (g:PreferenceGroup {id: $groupID})
		MATCH (i:PreferenceInstance {id: $instanceID})
		MERGE (g)-[:HAS_INSTANCE]->(i)`,
		map[string]any{"groupID": groupID.String(), "instanceID": instanceID.String()})
	return err
}

// LinkInstanceToUser establishes the CREATED_BY relationship.
func (s *Store) LinkInstanceToUser(ctx context.Context, instanceID, userID uuid.UUID) error {
	_, err := s.run(ctx, neo4j.AccessModeWrite, `
		MATCH (i:PreferenceInstance {id: $instanceID})
		MATCH (u:User {id: $userID})
		MERGE (i)-[:CREATED_BY]->(u)`,
		map[string]any{"instanceID": instanceID.String(), "userID": userID.String()})
	return err
}

// FindInstancesNotOwnedBy returns instances matching the group and instance
// name whose bound owner differs from excludedOwner.
func (s *Store) FindInstancesNotOwnedBy(ctx context.Context, groupName, instanceName, excludedOwner string) ([]types.PreferenceInstance, error) {
	records, err := s.run(ctx, neo4j.AccessModeRead, `
		MATCH (g:PreferenceGroup {name: $groupName})-[:HAS_INSTANCE]->(i:PreferenceInstance {name: $instanceName})-[:CREATED_BY]->(u:User)
		WHERE u.login_name <> $excludedOwner
		RETURN `+instanceReturn+`,`+userReturn,
		map[string]any{
			"groupName":     groupName,
			"instanceName":  instanceName,
			"excludedOwner": excludedOwner,
		})
	if err != nil {
		return nil, err
	}
	return instancesFromRecords(records), nil
}

// FindInstancesByOwner lists instances bound to the user via CREATED_BY.
func (s *Store) FindInstancesByOwner(ctx context.Context, loginName string) ([]types.PreferenceInstance, error) {
	records, err := s.run(ctx, neo4j.AccessModeRead, `
		MATCH (i:PreferenceInstance)-[:CREATED_BY]->(u:User {login_name: $loginName})
		RETURN `+instanceReturn+`,`+userReturn+`
		ORDER BY i.name`,
		map[string]any{"loginName": loginName})
	if err != nil {
		return nil, err
	}
	return instancesFromRecords(records), nil
}

// FindUserByLoginName returns the user, or nil.
func (s *Store) FindUserByLoginName(ctx context.Context, name string) (*types.User, error) {
	records, err := s.run(ctx, neo4j.AccessModeRead, `
		MATCH (u:User {login_name: $name})
		RETURN `+userReturn+`
		LIMIT 1`,
		map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return userFromRecord(records[0]), nil
}

// RunInTx executes fn against a transaction-bound store. Nested calls reuse
// the enclosing transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx types.GraphStore) error) error {
	if s.tx != nil {
		return fn(ctx, s)
	}
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	bound := &Store{driver: s.driver, database: s.database, idGen: s.idGen, tx: tx}
	if err := fn(ctx, bound); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// run executes the statement on the enclosing transaction when bound, or on
// a short-lived session otherwise. Records are collected before the session
// closes.
func (s *Store) run(ctx context.Context, mode neo4j.AccessMode, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	if s.tx != nil {
		result, err := s.tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	}
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return result.Collect(ctx)
}

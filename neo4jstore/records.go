package neo4jstore

import (
	"github.com/goliatone/go-prefgraph/pkg/types"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func groupFromRecord(record *neo4j.Record) *types.PreferenceGroup {
	return &types.PreferenceGroup{
		ID:   getUUID(record, "group_id"),
		Name: getString(record, "group_name"),
	}
}

func instanceFromRecord(record *neo4j.Record) *types.PreferenceInstance {
	instance := &types.PreferenceInstance{
		ID:          getUUID(record, "id"),
		Name:        getString(record, "name"),
		DisplayName: getString(record, "display_name"),
		Public:      getBool(record, "public"),
		OwnerName:   getString(record, "owner_name"),
		Description: getString(record, "description"),
		Value:       getString(record, "value"),
	}
	if getString(record, "login_name") != "" {
		instance.Owner = userFromRecord(record)
	}
	return instance
}

func instancesFromRecords(records []*neo4j.Record) []types.PreferenceInstance {
	out := make([]types.PreferenceInstance, 0, len(records))
	for _, record := range records {
		out = append(out, *instanceFromRecord(record))
	}
	return out
}

func userFromRecord(record *neo4j.Record) *types.User {
	return &types.User{
		ID:         getUUID(record, "user_id"),
		ExternalID: getInt64(record, "external_id"),
		LoginName:  getString(record, "login_name"),
		FirstName:  getString(record, "first_name"),
		LastName:   getString(record, "last_name"),
		Phone:      getString(record, "phone"),
		Email:      getString(record, "email"),
		Internal:   getBool(record, "internal"),
		Active:     getBool(record, "active"),
		Admin:      getBool(record, "admin"),
		TimeZone:   getString(record, "time_zone"),
	}
}

func getString(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getBool(record *neo4j.Record, key string) bool {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return false
	}
	if b, ok := val.(bool); ok {
		return b
	}
	return false
}

func getInt64(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return i
	}
	if i, ok := val.(int); ok {
		return int64(i)
	}
	return 0
}

func getUUID(record *neo4j.Record, key string) uuid.UUID {
	id, err := uuid.Parse(getString(record, key))
	if err != nil {
		return uuid.Nil
	}
	return id
}

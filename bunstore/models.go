package bunstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GroupRecord models the preference_groups row.
type GroupRecord struct {
	bun.BaseModel `bun:"table:preference_groups,alias:g"`

	ID   uuid.UUID `bun:"id,pk,type:uuid"`
	Name string    `bun:"name"`

	Instances []*InstanceRecord `bun:"rel:has-many,join:id=group_id"`
}

// InstanceRecord models the preference_instances row. The has-instance and
// created-by graph relationships project to the group_id and user_id
// columns; user_id stays NULL until the instance is claimed.
type InstanceRecord struct {
	bun.BaseModel `bun:"table:preference_instances,alias:i"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	GroupID     uuid.UUID `bun:"group_id,type:uuid,nullzero"`
	UserID      uuid.UUID `bun:"user_id,type:uuid,nullzero"`
	Name        string    `bun:"name"`
	DisplayName string    `bun:"display_name"`
	Public      bool      `bun:"public"`
	OwnerName   string    `bun:"owner_name"`
	Description string    `bun:"description"`
	Value       string    `bun:"value"`

	User *UserRecord `bun:"rel:belongs-to,join:user_id=id"`
}

// UserRecord models the users row. Rows are provisioned by the external
// identity system; this store only reads them.
type UserRecord struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	ExternalID int64     `bun:"external_id"`
	LoginName  string    `bun:"login_name"`
	FirstName  string    `bun:"first_name"`
	LastName   string    `bun:"last_name"`
	Phone      string    `bun:"phone"`
	Email      string    `bun:"email"`
	Internal   bool      `bun:"internal"`
	Active     bool      `bun:"active"`
	Admin      bool      `bun:"admin"`
	JoinedAt   time.Time `bun:"joined_at,nullzero"`
	TimeZone   string    `bun:"time_zone"`
	ModifiedBy string    `bun:"modified_by"`
	ModifiedAt time.Time `bun:"modified_at,nullzero"`
}

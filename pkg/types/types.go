package types

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PreferenceGroup is a named collection of preference instances. Groups are
// created lazily on the first write that references their name and are never
// deleted, even when the last instance is removed.
type PreferenceGroup struct {
	ID        uuid.UUID
	Name      string
	Instances []PreferenceInstance
}

// AddInstance appends an instance to the group's in-memory collection.
func (g *PreferenceGroup) AddInstance(instance PreferenceInstance) {
	g.Instances = append(g.Instances, instance)
}

// FindInstance returns the first instance whose name matches. The first match
// is authoritative; duplicate names within a group are a caller error the
// store does not prevent.
func (g *PreferenceGroup) FindInstance(name string) *PreferenceInstance {
	for i := range g.Instances {
		if g.Instances[i].Name == name {
			return &g.Instances[i]
		}
	}
	return nil
}

// PreferenceInstance is one named setting within a group. The Value field
// holds an opaque serialized payload; the codec package decomposes it into
// shape-specific collections on read.
type PreferenceInstance struct {
	ID          uuid.UUID
	Name        string
	DisplayName string
	Public      bool
	OwnerName   string
	Description string
	Value       string
	Owner       *User
}

// OwnerLogin resolves the instance owner, preferring the bound user over the
// denormalized OwnerName captured at creation time. The fallback covers
// stores that return instances without their created-by relationship loaded.
func (i PreferenceInstance) OwnerLogin() string {
	if i.Owner != nil {
		return i.Owner.LoginName
	}
	return i.OwnerName
}

// User identifies a person who may own or request preferences. Users are
// provisioned by an external identity system; this module only reads them.
type User struct {
	ID         uuid.UUID
	ExternalID int64
	LoginName  string
	FirstName  string
	LastName   string
	Phone      string
	Email      string
	Internal   bool
	Active     bool
	Admin      bool
	JoinedAt   time.Time
	TimeZone   string
	ModifiedBy string
	ModifiedAt time.Time
}

// FullName joins the user's first and last names, falling back to the login
// name when both are blank.
func (u User) FullName() string {
	var sb strings.Builder
	if strings.TrimSpace(u.FirstName) != "" {
		sb.WriteString(u.FirstName)
	}
	if strings.TrimSpace(u.LastName) != "" {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(u.LastName)
	}
	if sb.Len() == 0 {
		return u.LoginName
	}
	return sb.String()
}

// GraphStore is the minimal graph contract the resolution engine consumes.
// Find methods return nil (not an error) when the target does not exist.
// Implementations must make RunInTx atomic: either every write inside the
// callback is visible or none is.
type GraphStore interface {
	FindGroupByName(ctx context.Context, name string) (*PreferenceGroup, error)
	// FindGroupWithInstancesByName eager loads the group's instances and
	// their bound owners.
	FindGroupWithInstancesByName(ctx context.Context, name string) (*PreferenceGroup, error)
	// SaveGroup persists the group, assigning an ID on first save.
	SaveGroup(ctx context.Context, group *PreferenceGroup) (*PreferenceGroup, error)
	SaveInstance(ctx context.Context, instance *PreferenceInstance) (*PreferenceInstance, error)
	DeleteInstances(ctx context.Context, ids []uuid.UUID) error
	LinkGroupToInstance(ctx context.Context, groupID, instanceID uuid.UUID) error
	// LinkInstanceToUser creates the created-by relationship. The engine
	// establishes it at most once per instance.
	LinkInstanceToUser(ctx context.Context, instanceID, userID uuid.UUID) error
	FindInstancesNotOwnedBy(ctx context.Context, groupName, instanceName, excludedOwner string) ([]PreferenceInstance, error)
	FindInstancesByOwner(ctx context.Context, loginName string) ([]PreferenceInstance, error)
	FindUserByLoginName(ctx context.Context, name string) (*User, error)
	// RunInTx executes fn against a transaction-bound view of the store.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx GraphStore) error) error
}

// PreferenceEvent signals preference mutations so downstream systems can
// invalidate caches or push notifications.
type PreferenceEvent struct {
	GroupName    string
	InstanceName string
	Owner        string
	Action       string
	OccurredAt   time.Time
}

// Hooks groups optional callbacks invoked after write workflows complete.
type Hooks struct {
	AfterPreferenceSave   func(context.Context, PreferenceEvent)
	AfterPreferenceDelete func(context.Context, PreferenceEvent)
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the service.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID implements IDGenerator.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

var (
	// ErrMissingGraphStore occurs when no graph store was supplied.
	ErrMissingGraphStore = errors.New("go-prefgraph: missing graph store")
	// ErrGroupNameRequired indicates the group name was blank.
	ErrGroupNameRequired = errors.New("go-prefgraph: group name required")
	// ErrInstanceNameRequired indicates the instance name was blank.
	ErrInstanceNameRequired = errors.New("go-prefgraph: instance name required")
	// ErrOwnerRequired indicates the owner login was blank.
	ErrOwnerRequired = errors.New("go-prefgraph: owner required")
	// ErrRequesterRequired indicates the requesting user login was blank.
	ErrRequesterRequired = errors.New("go-prefgraph: requesting user required")
)

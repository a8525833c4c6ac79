package shape

import (
	"github.com/goliatone/go-masker"
	"github.com/goliatone/go-prefgraph/pkg/types"
	"github.com/google/uuid"
)

// AnyPreference is the shape-agnostic representation of a preference group:
// the stored value passes through unchanged.
type AnyPreference struct {
	ID          uuid.UUID  `json:"id,omitempty"`
	Name        string     `json:"name"`
	Preferences []AnyEntry `json:"preferences"`
	Owners      []UserView `json:"owners,omitempty"`
}

// AnyEntry is one named setting with its raw serialized value.
type AnyEntry struct {
	ID          uuid.UUID `json:"id,omitempty"`
	PrefName    string    `json:"prefName"`
	Name        string    `json:"name"`
	Public      bool      `json:"public"`
	Owner       string    `json:"owner"`
	Description string    `json:"description"`
	Value       string    `json:"value"`
}

// AnyAdapter converts between graph entities and the raw representation.
type AnyAdapter struct {
	mask *masker.Masker
}

// NewAnyAdapter constructs the passthrough shape adapter.
func NewAnyAdapter(cfg AdapterConfig) *AnyAdapter {
	return &AnyAdapter{mask: cfg.Masker}
}

// ToExternal maps a group with its (already filtered) instances.
func (a *AnyAdapter) ToExternal(group *types.PreferenceGroup) (AnyPreference, error) {
	mapper := newUserViewMapper(a.mask)
	return AnyPreference{
		ID:          group.ID,
		Name:        group.Name,
		Preferences: a.Entries(group.Instances),
		Owners:      ownerViews(mapper, group.Instances),
	}, nil
}

// Entries maps instances without a surrounding group. No decoding happens;
// the value stays opaque, so this mapping cannot fail.
func (a *AnyAdapter) Entries(instances []types.PreferenceInstance) []AnyEntry {
	entries := make([]AnyEntry, 0, len(instances))
	for _, instance := range instances {
		entries = append(entries, AnyEntry{
			ID:          instance.ID,
			PrefName:    instance.Name,
			Name:        instance.DisplayName,
			Public:      instance.Public,
			Owner:       resolveOwner(instance),
			Description: instance.Description,
			Value:       instance.Value,
		})
	}
	return entries
}

// FromExternal validates a raw write and normalizes it for the engine. The
// value is stored verbatim.
func (a *AnyAdapter) FromExternal(pref AnyPreference) (WriteRequest, error) {
	if len(pref.Preferences) != 1 {
		return WriteRequest{}, types.NewInvalidRequestShapeError(pref.Name, len(pref.Preferences))
	}
	entry := pref.Preferences[0]
	return WriteRequest{
		GroupName:    pref.Name,
		InstanceName: entry.PrefName,
		Owner:        entry.Owner,
		Public:       entry.Public,
		Description:  entry.Description,
		Payload:      entry.Value,
	}, nil
}

package shape

import (
	"github.com/goliatone/go-masker"
	"github.com/goliatone/go-prefgraph/codec"
	"github.com/goliatone/go-prefgraph/pkg/types"
	"github.com/google/uuid"
)

// GridPreference is the external representation of a preference group for
// grid components.
type GridPreference struct {
	ID          uuid.UUID   `json:"id,omitempty"`
	GridName    string      `json:"gridName"`
	Preferences []GridEntry `json:"preferences"`
	Owners      []UserView  `json:"owners,omitempty"`
}

// GridEntry is one named grid setting. The column and filter collections are
// stored serialized inside the instance value; node fields repeated in the
// payload are accepted on write.
type GridEntry struct {
	ID            uuid.UUID      `json:"id,omitempty"`
	PrefName      string         `json:"prefName"`
	GridName      string         `json:"gridName"`
	Public        bool           `json:"public"`
	Owner         string         `json:"owner"`
	Description   string         `json:"description"`
	OrderColumns  []string       `json:"orderColumns"`
	HideColumns   []string       `json:"hideColumns"`
	FreezeColumns []string       `json:"freezeColumns"`
	UDFColumns    []string       `json:"udfColumns"`
	Filters       []codec.Filter `json:"filters"`
}

// GridAdapter converts between graph entities and the grid representation.
type GridAdapter struct {
	mask *masker.Masker
}

// NewGridAdapter constructs the grid shape adapter.
func NewGridAdapter(cfg AdapterConfig) *GridAdapter {
	return &GridAdapter{mask: cfg.Masker}
}

// EmptyGrid returns the representation of an absent group: just the name.
func EmptyGrid(gridName string) GridPreference {
	return GridPreference{GridName: gridName, Preferences: []GridEntry{}}
}

// ToExternal maps a group with its (already filtered) instances.
func (a *GridAdapter) ToExternal(group *types.PreferenceGroup) (GridPreference, error) {
	entries, err := a.Entries(group.Instances)
	if err != nil {
		return GridPreference{}, err
	}
	mapper := newUserViewMapper(a.mask)
	return GridPreference{
		ID:          group.ID,
		GridName:    group.Name,
		Preferences: entries,
		Owners:      ownerViews(mapper, group.Instances),
	}, nil
}

// Entries maps instances without a surrounding group, decoding each value
// into its grid sub-collections.
func (a *GridAdapter) Entries(instances []types.PreferenceInstance) ([]GridEntry, error) {
	entries := make([]GridEntry, 0, len(instances))
	for _, instance := range instances {
		grid, err := codec.DecodeGrid(instance.Value)
		if err != nil {
			return nil, err
		}
		entries = append(entries, GridEntry{
			ID:            instance.ID,
			PrefName:      instance.Name,
			GridName:      instance.DisplayName,
			Public:        instance.Public,
			Owner:         resolveOwner(instance),
			Description:   instance.Description,
			OrderColumns:  grid.OrderColumns,
			HideColumns:   grid.HideColumns,
			FreezeColumns: grid.FreezeColumns,
			UDFColumns:    grid.UDFColumns,
			Filters:       grid.Filters,
		})
	}
	return entries, nil
}

// FromExternal validates a grid write and normalizes it for the engine. The
// whole entry is serialized as the stored payload.
func (a *GridAdapter) FromExternal(pref GridPreference) (WriteRequest, error) {
	if len(pref.Preferences) != 1 {
		return WriteRequest{}, types.NewInvalidRequestShapeError(pref.GridName, len(pref.Preferences))
	}
	entry := pref.Preferences[0]
	payload, err := codec.Encode(entry)
	if err != nil {
		return WriteRequest{}, err
	}
	return WriteRequest{
		GroupName:    pref.GridName,
		InstanceName: entry.PrefName,
		Owner:        entry.Owner,
		Public:       entry.Public,
		Description:  entry.Description,
		Payload:      payload,
	}, nil
}

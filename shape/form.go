package shape

import (
	"github.com/goliatone/go-masker"
	"github.com/goliatone/go-prefgraph/codec"
	"github.com/goliatone/go-prefgraph/pkg/types"
	"github.com/google/uuid"
)

// FormPreference is the external representation of a preference group for
// form components.
type FormPreference struct {
	ID          uuid.UUID   `json:"id,omitempty"`
	FormName    string      `json:"formName"`
	Preferences []FormEntry `json:"preferences"`
	Owners      []UserView  `json:"owners,omitempty"`
}

// FormEntry is one named form setting; user-defined field keys are stored
// serialized inside the instance value.
type FormEntry struct {
	ID          uuid.UUID `json:"id,omitempty"`
	PrefName    string    `json:"prefName"`
	FormName    string    `json:"formName"`
	Public      bool      `json:"public"`
	Owner       string    `json:"owner"`
	Description string    `json:"description"`
	UDFs        []string  `json:"udfs"`
}

// FormAdapter converts between graph entities and the form representation.
type FormAdapter struct {
	mask *masker.Masker
}

// NewFormAdapter constructs the form shape adapter.
func NewFormAdapter(cfg AdapterConfig) *FormAdapter {
	return &FormAdapter{mask: cfg.Masker}
}

// EmptyForm returns the representation of an absent group: just the name.
func EmptyForm(formName string) FormPreference {
	return FormPreference{FormName: formName, Preferences: []FormEntry{}}
}

// ToExternal maps a group with its (already filtered) instances.
func (a *FormAdapter) ToExternal(group *types.PreferenceGroup) (FormPreference, error) {
	entries, err := a.Entries(group.Instances)
	if err != nil {
		return FormPreference{}, err
	}
	mapper := newUserViewMapper(a.mask)
	return FormPreference{
		ID:          group.ID,
		FormName:    group.Name,
		Preferences: entries,
		Owners:      ownerViews(mapper, group.Instances),
	}, nil
}

// Entries maps instances without a surrounding group.
func (a *FormAdapter) Entries(instances []types.PreferenceInstance) ([]FormEntry, error) {
	entries := make([]FormEntry, 0, len(instances))
	for _, instance := range instances {
		form, err := codec.DecodeForm(instance.Value)
		if err != nil {
			return nil, err
		}
		entries = append(entries, FormEntry{
			ID:          instance.ID,
			PrefName:    instance.Name,
			FormName:    instance.DisplayName,
			Public:      instance.Public,
			Owner:       resolveOwner(instance),
			Description: instance.Description,
			UDFs:        form.UDFs,
		})
	}
	return entries, nil
}

// FromExternal validates a form write and normalizes it for the engine.
func (a *FormAdapter) FromExternal(pref FormPreference) (WriteRequest, error) {
	if len(pref.Preferences) != 1 {
		return WriteRequest{}, types.NewInvalidRequestShapeError(pref.FormName, len(pref.Preferences))
	}
	entry := pref.Preferences[0]
	payload, err := codec.Encode(entry)
	if err != nil {
		return WriteRequest{}, err
	}
	return WriteRequest{
		GroupName:    pref.FormName,
		InstanceName: entry.PrefName,
		Owner:        entry.Owner,
		Public:       entry.Public,
		Description:  entry.Description,
		Payload:      payload,
	}, nil
}

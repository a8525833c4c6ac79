package shape

import (
	"sync"
	"time"

	"github.com/goliatone/go-masker"
	"github.com/goliatone/go-prefgraph/pkg/types"
	"github.com/google/uuid"
)

// UserView is the external projection of a preference owner.
type UserView struct {
	ID         uuid.UUID `json:"id"`
	ExternalID int64     `json:"externalId"`
	LoginName  string    `json:"loginName"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	FullName   string    `json:"fullName"`
	Phone      string    `json:"phone,omitempty"`
	Email      string    `json:"email,omitempty"`
	Internal   bool      `json:"internal"`
	Active     bool      `json:"active"`
	Admin      bool      `json:"admin"`
	JoinedAt   time.Time `json:"joinedAt"`
	TimeZone   string    `json:"timeZone,omitempty"`
}

var defaultMaskerOnce sync.Once

// DefaultMasker returns a masker configured to redact owner contact fields.
func DefaultMasker() *masker.Masker {
	defaultMaskerOnce.Do(func() {
		if masker.Default == nil {
			return
		}
		registerContactMaskFields(masker.Default)
	})
	return masker.Default
}

func registerContactMaskFields(mask *masker.Masker) {
	if mask == nil {
		return
	}
	mask.RegisterMaskField("Phone", "filled4")
	mask.RegisterMaskField("Email", "filled4")
}

// userViewMapper maps users to their external views, memoizing by entity
// identity. One mapper serves one response and is discarded with it; it is
// never shared across requests.
type userViewMapper struct {
	mask *masker.Masker
	seen map[uuid.UUID]UserView
}

func newUserViewMapper(mask *masker.Masker) *userViewMapper {
	return &userViewMapper{
		mask: mask,
		seen: map[uuid.UUID]UserView{},
	}
}

func (m *userViewMapper) Map(user *types.User) UserView {
	if view, ok := m.seen[user.ID]; ok {
		return view
	}
	view := UserView{
		ID:         user.ID,
		ExternalID: user.ExternalID,
		LoginName:  user.LoginName,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		FullName:   user.FullName(),
		Phone:      user.Phone,
		Email:      user.Email,
		Internal:   user.Internal,
		Active:     user.Active,
		Admin:      user.Admin,
		JoinedAt:   user.JoinedAt,
		TimeZone:   user.TimeZone,
	}
	if m.mask != nil {
		if masked, err := m.mask.Mask(view); err == nil {
			if cast, ok := masked.(UserView); ok {
				view = cast
			}
		}
	}
	m.seen[user.ID] = view
	return view
}

// ownerViews collects the distinct bound owners of the instances, in first
// appearance order.
func ownerViews(mapper *userViewMapper, instances []types.PreferenceInstance) []UserView {
	var views []UserView
	for _, instance := range instances {
		if instance.Owner == nil {
			continue
		}
		if _, ok := mapper.seen[instance.Owner.ID]; ok {
			continue
		}
		views = append(views, mapper.Map(instance.Owner))
	}
	return views
}

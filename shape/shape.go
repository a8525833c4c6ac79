// Package shape maps between canonical graph entities and the three external
// preference representations (any, grid, form). Each adapter decodes the
// stored value blob through the codec with its own sub-field names, and
// validates that write requests carry exactly one instance before the
// resolution engine runs.
package shape

import (
	"github.com/goliatone/go-masker"
	"github.com/goliatone/go-prefgraph/pkg/types"
)

// AdapterConfig carries the optional collaborators shared by all adapters.
type AdapterConfig struct {
	// Masker redacts owner contact fields in UserView projections. Nil
	// leaves contact fields untouched.
	Masker *masker.Masker
}

// WriteRequest is the normalized write payload every adapter produces for
// the ownership engine: one group, one instance, one owner.
type WriteRequest struct {
	GroupName    string
	InstanceName string
	Owner        string
	Public       bool
	Description  string
	Payload      string
}

func resolveOwner(instance types.PreferenceInstance) string {
	return instance.OwnerLogin()
}

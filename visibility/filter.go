// Package visibility implements the read-time access rule for preference
// instances: private instances are visible only to their owner, and results
// can be narrowed to a single owner's instances.
package visibility

import (
	"context"

	"github.com/goliatone/go-prefgraph/pkg/types"
)

// Filter prunes instances the requester is not entitled to see, preserving
// the original ordering. An empty ownerScope means no owner narrowing. An
// instance survives when both predicates hold:
//
//   - ownerScope is unset, or the instance owner equals ownerScope
//   - the instance is public, or the instance owner equals requester
//
// Ownership is resolved through OwnerLogin, so instances loaded without
// their created-by relationship still filter correctly.
func Filter(instances []types.PreferenceInstance, requester, ownerScope string) []types.PreferenceInstance {
	filtered := make([]types.PreferenceInstance, 0, len(instances))
	for _, instance := range instances {
		owner := instance.OwnerLogin()
		if ownerScope != "" && owner != ownerScope {
			continue
		}
		if !instance.Public && owner != requester {
			continue
		}
		filtered = append(filtered, instance)
	}
	return filtered
}

// ExistsForOtherOwner reports whether any instance matching the group and
// instance name is bound to an owner other than excludedOwner. Callers use
// it to warn before a write that would hit an ownership conflict.
func ExistsForOtherOwner(ctx context.Context, store types.GraphStore, groupName, instanceName, excludedOwner string) (bool, error) {
	instances, err := store.FindInstancesNotOwnedBy(ctx, groupName, instanceName, excludedOwner)
	if err != nil {
		return false, err
	}
	return len(instances) > 0, nil
}

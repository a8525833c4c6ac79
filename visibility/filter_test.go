package visibility

import (
	"context"
	"testing"

	"github.com/goliatone/go-prefgraph/pkg/types"
	"github.com/stretchr/testify/require"
)

func instance(name, owner string, public bool) types.PreferenceInstance {
	return types.PreferenceInstance{Name: name, OwnerName: owner, Public: public}
}

func TestFilter_PrivateInstancesHiddenFromOtherUsers(t *testing.T) {
	instances := []types.PreferenceInstance{
		instance("resumen", "adminTEST", false),
		instance("detalle", "adminTEST", true),
	}

	visible := Filter(instances, "userTEST", "")
	require.Len(t, visible, 1)
	require.Equal(t, "detalle", visible[0].Name)

	// the owner still sees both
	visible = Filter(instances, "adminTEST", "")
	require.Len(t, visible, 2)
}

func TestFilter_PrivateHiddenEvenInsideOwnerScope(t *testing.T) {
	instances := []types.PreferenceInstance{
		instance("resumen", "adminTEST", false),
	}
	visible := Filter(instances, "userTEST", "adminTEST")
	require.Empty(t, visible)
}

func TestFilter_OwnerScopeNarrowsResults(t *testing.T) {
	instances := []types.PreferenceInstance{
		instance("resumen", "adminTEST", true),
		instance("detalle", "userTEST", true),
	}
	visible := Filter(instances, "userTEST", "adminTEST")
	require.Len(t, visible, 1)
	require.Equal(t, "resumen", visible[0].Name)
}

func TestFilter_PreservesOrdering(t *testing.T) {
	instances := []types.PreferenceInstance{
		instance("c", "adminTEST", true),
		instance("a", "adminTEST", true),
		instance("b", "adminTEST", true),
	}
	visible := Filter(instances, "userTEST", "")
	require.Equal(t, "c", visible[0].Name)
	require.Equal(t, "a", visible[1].Name)
	require.Equal(t, "b", visible[2].Name)
}

func TestFilter_PrefersBoundOwnerOverDenormalizedName(t *testing.T) {
	bound := types.PreferenceInstance{
		Name:      "resumen",
		OwnerName: "stale-owner",
		Owner:     &types.User{LoginName: "adminTEST"},
		Public:    false,
	}
	visible := Filter([]types.PreferenceInstance{bound}, "adminTEST", "")
	require.Len(t, visible, 1)
}

type notOwnedStore struct {
	types.GraphStore
	instances []types.PreferenceInstance
	err       error
}

func (s *notOwnedStore) FindInstancesNotOwnedBy(context.Context, string, string, string) ([]types.PreferenceInstance, error) {
	return s.instances, s.err
}

func TestExistsForOtherOwner(t *testing.T) {
	ctx := context.Background()

	exists, err := ExistsForOtherOwner(ctx, &notOwnedStore{
		instances: []types.PreferenceInstance{instance("resumen", "adminTEST", false)},
	}, "Posicion_Reporto", "Resumen", "userTEST")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = ExistsForOtherOwner(ctx, &notOwnedStore{}, "Posicion_Reporto", "Resumen", "adminTEST")
	require.NoError(t, err)
	require.False(t, exists)
}

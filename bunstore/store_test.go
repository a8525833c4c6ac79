package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/goliatone/go-prefgraph/pkg/types"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestStore_GroupAndInstanceLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	store, err := NewStore(StoreConfig{DB: db})
	require.NoError(t, err)

	owner := seedUser(t, db, "admin@example.com")

	group, err := store.SaveGroup(ctx, &types.PreferenceGroup{Name: "Posicion_Reporto"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, group.ID)

	instance, err := store.SaveInstance(ctx, &types.PreferenceInstance{
		Name:        "columnas",
		DisplayName: "Columnas",
		Public:      true,
		OwnerName:   "admin@example.com",
		Value:       `{"orderColumns":["fecha"]}`,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, instance.ID)

	require.NoError(t, store.LinkGroupToInstance(ctx, group.ID, instance.ID))
	require.NoError(t, store.LinkInstanceToUser(ctx, instance.ID, owner.ID))

	loaded, err := store.FindGroupWithInstancesByName(ctx, "Posicion_Reporto")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, group.ID, loaded.ID)
	require.Len(t, loaded.Instances, 1)
	require.Equal(t, "columnas", loaded.Instances[0].Name)
	require.NotNil(t, loaded.Instances[0].Owner)
	require.Equal(t, "admin@example.com", loaded.Instances[0].Owner.LoginName)

	instance.Description = "updated"
	instance.Public = false
	_, err = store.SaveInstance(ctx, instance)
	require.NoError(t, err)

	reloaded, err := store.FindGroupWithInstancesByName(ctx, "Posicion_Reporto")
	require.NoError(t, err)
	require.Equal(t, "updated", reloaded.Instances[0].Description)
	require.False(t, reloaded.Instances[0].Public)
	// the created-by projection survives value updates
	require.NotNil(t, reloaded.Instances[0].Owner)

	require.NoError(t, store.DeleteInstances(ctx, []uuid.UUID{instance.ID}))

	emptied, err := store.FindGroupWithInstancesByName(ctx, "Posicion_Reporto")
	require.NoError(t, err)
	require.NotNil(t, emptied)
	require.Len(t, emptied.Instances, 0)
}

func TestStore_FindGroupByNameReturnsNilWhenAbsent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	store, err := NewStore(StoreConfig{DB: db})
	require.NoError(t, err)

	group, err := store.FindGroupByName(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, group)

	group, err = store.FindGroupWithInstancesByName(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, group)
}

func TestStore_OwnerQueries(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	store, err := NewStore(StoreConfig{DB: db})
	require.NoError(t, err)

	admin := seedUser(t, db, "admin@example.com")
	other := seedUser(t, db, "user@example.com")

	group, err := store.SaveGroup(ctx, &types.PreferenceGroup{Name: "Resumen"})
	require.NoError(t, err)

	mine, err := store.SaveInstance(ctx, &types.PreferenceInstance{Name: "layout", OwnerName: "admin@example.com"})
	require.NoError(t, err)
	require.NoError(t, store.LinkGroupToInstance(ctx, group.ID, mine.ID))
	require.NoError(t, store.LinkInstanceToUser(ctx, mine.ID, admin.ID))

	theirs, err := store.SaveInstance(ctx, &types.PreferenceInstance{Name: "layout", OwnerName: "user@example.com"})
	require.NoError(t, err)
	require.NoError(t, store.LinkGroupToInstance(ctx, group.ID, theirs.ID))
	require.NoError(t, store.LinkInstanceToUser(ctx, theirs.ID, other.ID))

	foreign, err := store.FindInstancesNotOwnedBy(ctx, "Resumen", "layout", "admin@example.com")
	require.NoError(t, err)
	require.Len(t, foreign, 1)
	require.Equal(t, theirs.ID, foreign[0].ID)

	none, err := store.FindInstancesNotOwnedBy(ctx, "Resumen", "other-name", "admin@example.com")
	require.NoError(t, err)
	require.Len(t, none, 0)

	owned, err := store.FindInstancesByOwner(ctx, "admin@example.com")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	require.Equal(t, mine.ID, owned[0].ID)

	user, err := store.FindUserByLoginName(ctx, "user@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, other.ID, user.ID)

	user, err = store.FindUserByLoginName(ctx, "ghost@example.com")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestStore_RunInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	store, err := NewStore(StoreConfig{DB: db})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.RunInTx(ctx, func(ctx context.Context, tx types.GraphStore) error {
		if _, err := tx.SaveGroup(ctx, &types.PreferenceGroup{Name: "doomed"}); err != nil {
			return err
		}
		// nested calls reuse the enclosing transaction
		return tx.RunInTx(ctx, func(ctx context.Context, inner types.GraphStore) error {
			group, err := inner.FindGroupByName(ctx, "doomed")
			if err != nil {
				return err
			}
			require.NotNil(t, group)
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	group, err := store.FindGroupByName(ctx, "doomed")
	require.NoError(t, err)
	require.Nil(t, group)
}

func seedUser(t *testing.T, db *bun.DB, loginName string) *types.User {
	t.Helper()
	record := &UserRecord{
		ID:        uuid.New(),
		LoginName: loginName,
		FirstName: "Test",
		LastName:  "User",
		Email:     loginName,
		Active:    true,
	}
	_, err := db.NewInsert().Model(record).Exec(context.Background())
	require.NoError(t, err)
	return userToDomain(record)
}

func newTestDB(t *testing.T) *bun.DB {
	sqldb, err := sql.Open("sqlite3", ":memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})
	return db
}

func applyDDL(t *testing.T, db *bun.DB) {
	t.Helper()
	for _, file := range []string{
		"../data/sql/migrations/000001_users.sql",
		"../data/sql/migrations/000002_preference_graph.sql",
	} {
		content, err := os.ReadFile(file)
		require.NoError(t, err)
		for _, stmt := range splitStatements(string(content)) {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			_, err := db.Exec(stmt)
			require.NoError(t, err)
		}
	}
}

func splitStatements(sql string) []string {
	lines := strings.Split(sql, "\n")
	var builder strings.Builder
	var statements []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		if strings.HasSuffix(line, ";") {
			statements = append(statements, strings.TrimSuffix(builder.String(), ";"))
			builder.Reset()
		} else {
			builder.WriteString(" ")
		}
	}
	if builder.Len() > 0 {
		statements = append(statements, builder.String())
	}
	return statements
}

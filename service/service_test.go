package service_test

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/goliatone/go-prefgraph/bunstore"
	"github.com/goliatone/go-prefgraph/pkg/types"
	"github.com/goliatone/go-prefgraph/service"
	"github.com/goliatone/go-prefgraph/shape"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestService_GridLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t, service.Config{})

	seedUser(t, db, "adminTEST", true)
	seedUser(t, db, "userTEST", false)

	saved, err := svc.SaveGrid(ctx, shape.GridPreference{
		GridName: "Posicion_Reporto",
		Preferences: []shape.GridEntry{{
			PrefName:     "columnas",
			GridName:     "Posicion_Reporto",
			Public:       true,
			Owner:        "adminTEST",
			Description:  "shared layout",
			OrderColumns: []string{"fecha", "monto"},
			HideColumns:  []string{"interno"},
		}},
	})
	require.NoError(t, err)
	require.Equal(t, "Posicion_Reporto", saved.GridName)
	require.Len(t, saved.Preferences, 1)
	require.Equal(t, []string{"fecha", "monto"}, saved.Preferences[0].OrderColumns)
	require.Equal(t, "adminTEST", saved.Preferences[0].Owner)

	// public instances are visible to everyone
	view, err := svc.GetGrid(ctx, "Posicion_Reporto", "", "userTEST")
	require.NoError(t, err)
	require.Len(t, view.Preferences, 1)
	require.Equal(t, "columnas", view.Preferences[0].PrefName)
	require.Len(t, view.Owners, 1)
	require.Equal(t, "adminTEST", view.Owners[0].LoginName)

	// a second writer cannot rebind the instance
	_, err = svc.SaveGrid(ctx, shape.GridPreference{
		GridName: "Posicion_Reporto",
		Preferences: []shape.GridEntry{{
			PrefName: "columnas",
			Owner:    "userTEST",
		}},
	})
	require.True(t, types.IsOwnershipConflict(err))

	taken, err := svc.GridExistsForOtherOwner(ctx, "Posicion_Reporto", "columnas", "userTEST")
	require.NoError(t, err)
	require.True(t, taken)

	free, err := svc.GridExistsForOtherOwner(ctx, "Posicion_Reporto", "columnas", "adminTEST")
	require.NoError(t, err)
	require.False(t, free)
}

func TestService_PrivateInstancesStayPrivate(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t, service.Config{})

	seedUser(t, db, "adminTEST", true)
	seedUser(t, db, "userTEST", false)

	_, err := svc.SaveGrid(ctx, gridWrite("Resumen", "mine", "userTEST", false))
	require.NoError(t, err)
	_, err = svc.SaveGrid(ctx, gridWrite("Resumen", "shared", "adminTEST", true))
	require.NoError(t, err)

	adminView, err := svc.GetGrid(ctx, "Resumen", "", "adminTEST")
	require.NoError(t, err)
	require.Len(t, adminView.Preferences, 1)
	require.Equal(t, "shared", adminView.Preferences[0].PrefName)

	userView, err := svc.GetGrid(ctx, "Resumen", "", "userTEST")
	require.NoError(t, err)
	require.Len(t, userView.Preferences, 2)

	// owner scope narrows to a single creator's instances
	scoped, err := svc.GetGrid(ctx, "Resumen", "userTEST", "userTEST")
	require.NoError(t, err)
	require.Len(t, scoped.Preferences, 1)
	require.Equal(t, "mine", scoped.Preferences[0].PrefName)

	_, err = svc.GetGrid(ctx, "Resumen", "", "")
	require.ErrorIs(t, err, types.ErrRequesterRequired)
}

func TestService_AbsentGroupReadsEmpty(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, service.Config{})

	view, err := svc.GetGrid(ctx, "NoSuchGrid", "", "anyone")
	require.NoError(t, err)
	require.Equal(t, "NoSuchGrid", view.GridName)
	require.Len(t, view.Preferences, 0)

	form, err := svc.GetForm(ctx, "NoSuchForm", "", "anyone")
	require.NoError(t, err)
	require.Equal(t, "NoSuchForm", form.FormName)
	require.Len(t, form.Preferences, 0)
}

func TestService_UnknownOwnerRejectedBeforeWrite(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, service.Config{})

	_, err := svc.SaveGrid(ctx, gridWrite("Posicion_Reporto", "columnas", "ghost", true))
	require.True(t, types.IsUnknownUser(err))

	view, err := svc.GetGrid(ctx, "Posicion_Reporto", "", "anyone")
	require.NoError(t, err)
	require.Len(t, view.Preferences, 0)
}

func TestService_FormAndByUserReads(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t, service.Config{})

	seedUser(t, db, "adminTEST", true)

	saved, err := svc.SaveForm(ctx, shape.FormPreference{
		FormName: "Captura",
		Preferences: []shape.FormEntry{{
			PrefName: "defaults",
			Public:   true,
			Owner:    "adminTEST",
			UDFs:     []string{"udf1", "udf2"},
		}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"udf1", "udf2"}, saved.Preferences[0].UDFs)

	_, err = svc.SaveGrid(ctx, gridWrite("Posicion_Reporto", "columnas", "adminTEST", false))
	require.NoError(t, err)

	// by-user listings are shape lenient: every owned instance comes back,
	// rendered in the requested shape
	forms, err := svc.GetFormByUser(ctx, "adminTEST")
	require.NoError(t, err)
	require.Len(t, forms, 2)
	require.Equal(t, "columnas", forms[0].PrefName)
	require.Equal(t, "defaults", forms[1].PrefName)
	require.Equal(t, []string{"udf1", "udf2"}, forms[1].UDFs)

	grids, err := svc.GetGridByUser(ctx, "adminTEST")
	require.NoError(t, err)
	require.Len(t, grids, 2)

	all, err := svc.GetAnyByUser(ctx, "adminTEST")
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestService_DeleteEmitsHooksAndKeepsGroup(t *testing.T) {
	ctx := context.Background()

	var events []types.PreferenceEvent
	svc, db := newTestService(t, service.Config{
		Hooks: types.Hooks{
			AfterPreferenceDelete: func(_ context.Context, evt types.PreferenceEvent) {
				events = append(events, evt)
			},
		},
	})

	seedUser(t, db, "adminTEST", true)

	_, err := svc.SaveGrid(ctx, gridWrite("Resumen", "layout", "adminTEST", true))
	require.NoError(t, err)

	removed, err := svc.DeleteAny(ctx, "Resumen", []string{"layout", "missing"})
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.Len(t, events, 1)
	require.Equal(t, "layout", events[0].InstanceName)

	// the group node survives its last instance
	view, err := svc.GetGrid(ctx, "Resumen", "", "adminTEST")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, view.ID)
	require.Len(t, view.Preferences, 0)

	_, err = svc.DeleteAny(ctx, "NoSuchGroup", []string{"layout"})
	require.True(t, types.IsGroupNotFound(err))
}

func gridWrite(gridName, prefName, owner string, public bool) shape.GridPreference {
	return shape.GridPreference{
		GridName: gridName,
		Preferences: []shape.GridEntry{{
			PrefName: prefName,
			Public:   public,
			Owner:    owner,
		}},
	}
}

func newTestService(t *testing.T, cfg service.Config) (*service.Service, *bun.DB) {
	t.Helper()
	db := newTestDB(t)
	applyDDL(t, db)

	store, err := bunstore.NewStore(bunstore.StoreConfig{DB: db})
	require.NoError(t, err)

	cfg.Store = store
	svc, err := service.New(cfg)
	require.NoError(t, err)
	require.True(t, svc.Ready())
	return svc, db
}

func seedUser(t *testing.T, db *bun.DB, loginName string, admin bool) {
	t.Helper()
	record := &bunstore.UserRecord{
		ID:        uuid.New(),
		LoginName: loginName,
		FirstName: "Test",
		LastName:  loginName,
		Email:     loginName + "@example.com",
		Phone:     "555-0100",
		Active:    true,
		Admin:     admin,
	}
	_, err := db.NewInsert().Model(record).Exec(context.Background())
	require.NoError(t, err)
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

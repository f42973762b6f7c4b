package diagnostics_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairdesk/internal/core/apperror"
	appctx "repairdesk/internal/core/context"
	"repairdesk/internal/domain/diagnostics"
	"repairdesk/internal/infrastructure/storage/memory"
	"repairdesk/pkg/logger"
)

func newService() (*diagnostics.Service, *memory.DiagnosticsRepo, context.Context) {
	store := memory.New()
	repos := store.Repositories()
	ctx := appctx.WithUser(logger.WithLogger(context.Background(), logger.Nop()), &appctx.UserContext{UserID: "tech-7", TenantID: 1})
	return diagnostics.NewService(repos.Diagnostics, store), repos.Diagnostics, ctx
}

func TestSave_NoItems(t *testing.T) {
	svc, _, ctx := newService()

	snap, err := svc.Save(ctx, 1, nil)
	require.NoError(t, err)
	assert.Nil(t, snap)

	_, err = svc.Get(ctx, 1)
	assert.True(t, apperror.IsNotFound(err))
}

func TestSave_EveryCheckFailedKeepsSummary(t *testing.T) {
	svc, _, ctx := newService()

	snap, err := svc.Save(ctx, 1, []diagnostics.Item{{ID: "battery", Label: "Batteria"}})
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "Problemi rilevati: Batteria", snap.Summary)
	assert.False(t, snap.Get(diagnostics.FieldBattery))

	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
}

func TestSave_StoresFieldsAndSummary(t *testing.T) {
	svc, _, ctx := newService()

	snap, err := svc.Save(ctx, 1, []diagnostics.Item{
		{ID: "wifi", Label: "Wi-Fi", Active: true},
		{ID: "lcd", Label: "Display", Active: true},
		{ID: "battery", Label: "Batteria"},
	})
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.True(t, snap.Get(diagnostics.FieldWiFi))
	assert.True(t, snap.Get(diagnostics.FieldScreen))
	assert.False(t, snap.Get(diagnostics.FieldBattery))
	assert.Equal(t, "Componenti funzionanti: Wi-Fi, Display\nProblemi rilevati: Batteria", snap.Summary)
	assert.Equal(t, "tech-7", snap.CreatedBy)

	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
}

func TestReplace_KeepsHistory(t *testing.T) {
	svc, repo, ctx := newService()

	first, err := svc.Save(ctx, 1, []diagnostics.Item{{ID: "wifi", Active: true}})
	require.NoError(t, err)

	second, err := svc.Replace(ctx, 1, []diagnostics.Item{{ID: "gps", Active: true}})
	require.NoError(t, err)
	require.NotNil(t, second)

	live, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, second.ID, live.ID)
	assert.True(t, live.Get(diagnostics.FieldGPS))
	assert.False(t, live.Get(diagnostics.FieldWiFi))

	history := repo.History(1)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	assert.True(t, history[0].IsDeleted)
	assert.False(t, history[1].IsDeleted)
}

func TestReplace_NothingActiveClearsSnapshot(t *testing.T) {
	svc, _, ctx := newService()

	_, err := svc.Save(ctx, 1, []diagnostics.Item{{ID: "wifi", Active: true}})
	require.NoError(t, err)

	snap, err := svc.Replace(ctx, 1, []diagnostics.Item{{ID: "wifi"}})
	require.NoError(t, err)
	assert.Nil(t, snap)

	_, err = svc.Get(ctx, 1)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	svc, _, ctx := newService()

	require.NoError(t, svc.Delete(ctx, 1), "no live snapshot is not an error")

	_, err := svc.Save(ctx, 1, []diagnostics.Item{{ID: "nfc", Active: true}, {ID: "wifi", Active: true}})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, 1))

	_, err = svc.Get(ctx, 1)
	assert.True(t, apperror.IsNotFound(err))
}

package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ofrenda/core/internal/entity"
	"github.com/ofrenda/core/internal/store"
)

// newTestContainer wires a container to a store on a temp database.
func newTestContainer(t *testing.T) (*Container, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	c := New(WithStore(s))
	return c, s
}

func newMemorial(name string) entity.Memorial {
	m := entity.NewMemorial(name, "padre")
	m.AltarLevel = 1
	return m
}

func TestAddMemorial(t *testing.T) {
	c, s := newTestContainer(t)
	ctx := context.Background()

	saved, err := c.AddMemorial(ctx, newMemorial("Juan García"))
	require.NoError(t, err)
	assert.Equal(t, entity.SyncStatusLocal, saved.SyncStatus)

	// Mirror and store agree.
	list, ok := c.Get("memorials").([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, itemID(list[0]))

	stored, err := s.GetMemorial(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Juan García", stored.Name)
}

func TestAddMemorial_InvalidLeavesMirrorUntouched(t *testing.T) {
	c, _ := newTestContainer(t)

	bad := newMemorial("")
	_, err := c.AddMemorial(context.Background(), bad)
	require.Error(t, err)
	assert.True(t, store.IsValidationError(err))

	list, _ := c.Get("memorials").([]any)
	assert.Empty(t, list)
}

func TestUpdateMemorial_RefreshesMirror(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()

	saved, err := c.AddMemorial(ctx, newMemorial("Juan García"))
	require.NoError(t, err)

	story := "Nueva historia"
	updated, err := c.UpdateMemorial(ctx, saved.ID, store.MemorialPatch{Story: &story})
	require.NoError(t, err)
	assert.Equal(t, entity.SyncStatusPending, updated.SyncStatus)

	list, _ := c.Get("memorials").([]any)
	require.Len(t, list, 1)
	mirrored, ok := list[0].(entity.Memorial)
	require.True(t, ok)
	assert.Equal(t, "Nueva historia", mirrored.Story)
	assert.Equal(t, entity.SyncStatusPending, mirrored.SyncStatus)
}

func TestDeleteMemorial_DropsBothMirrors(t *testing.T) {
	c, s := newTestContainer(t)
	ctx := context.Background()

	m, err := c.AddMemorial(ctx, newMemorial("Juan García"))
	require.NoError(t, err)
	other, err := c.AddMemorial(ctx, newMemorial("Rosa"))
	require.NoError(t, err)

	_, err = c.PlaceOffering(ctx, entity.NewVirtualOffering(entity.OfferingVela, m.ID))
	require.NoError(t, err)
	keptOffering, err := c.PlaceOffering(ctx, entity.NewVirtualOffering(entity.OfferingCempasuchil, other.ID))
	require.NoError(t, err)

	require.NoError(t, c.DeleteMemorial(ctx, m.ID))

	memorials, _ := c.Get("memorials").([]any)
	require.Len(t, memorials, 1)
	assert.Equal(t, other.ID, itemID(memorials[0]))

	offerings, _ := c.Get("offerings").([]any)
	require.Len(t, offerings, 1)
	assert.Equal(t, keptOffering.ID, itemID(offerings[0]))

	stored, err := s.GetOfferingsByMemorial(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestDeleteMemorial_HandlesSnapshotRestoredItems(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()

	m, err := c.AddMemorial(ctx, newMemorial("Juan García"))
	require.NoError(t, err)

	// Simulate a mirror restored from a snapshot, where items are plain maps.
	c.Set("memorials", []any{map[string]any{"id": m.ID, "name": "Juan García"}})
	c.Set("offerings", []any{map[string]any{"id": "o-1", "memorialId": m.ID}})

	require.NoError(t, c.DeleteMemorial(ctx, m.ID))

	memorials, _ := c.Get("memorials").([]any)
	assert.Empty(t, memorials)
	offerings, _ := c.Get("offerings").([]any)
	assert.Empty(t, offerings)
}

func TestPlaceOffering_RequiresMemorial(t *testing.T) {
	c, _ := newTestContainer(t)

	_, err := c.PlaceOffering(context.Background(), entity.NewVirtualOffering(entity.OfferingVela, "no-such-id"))
	require.Error(t, err)

	offerings, _ := c.Get("offerings").([]any)
	assert.Empty(t, offerings)
}

func TestSetLanguage_UpdatesMirrorAndPreferences(t *testing.T) {
	c, s := newTestContainer(t)
	ctx := context.Background()

	c.Set("user.id", "user-1")
	require.NoError(t, c.SetLanguage(ctx, "nah"))

	assert.Equal(t, "nah", c.Get("user.language"))

	prefs, err := s.GetPreferences(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, prefs)
	assert.Equal(t, "nah", prefs.Language)
}

func TestSetLanguage_AnonymousUserSkipsPersistence(t *testing.T) {
	c, s := newTestContainer(t)
	ctx := context.Background()

	require.NoError(t, c.SetLanguage(ctx, "en"))
	assert.Equal(t, "en", c.Get("user.language"))

	prefs, err := s.GetPreferences(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, prefs)
}

func TestNotificationLifecycle(t *testing.T) {
	c := New()

	c.ShowNotification("Memorial guardado", "success")
	note, ok := c.Get("ui.notification").(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Memorial guardado", note["message"])
	assert.Equal(t, "success", note["kind"])

	c.ClearNotification()
	assert.Nil(t, c.Get("ui.notification"))
}

func TestARSessionLifecycle(t *testing.T) {
	c := New()

	c.StartARSession()
	session, ok := c.Get("arSession").(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, session["active"])
	assert.NotEmpty(t, session["startedAt"])

	c.EndARSession()
	session, ok = c.Get("arSession").(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, session["active"])
}

func TestLoadEntities_ReconcilesMirror(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	m, err := s.SaveMemorial(ctx, newMemorial("Juan García"))
	require.NoError(t, err)
	_, err = s.SaveOffering(ctx, entity.NewVirtualOffering(entity.OfferingVela, m.ID))
	require.NoError(t, err)
	g, err := s.SaveFamilyGroup(ctx, entity.NewFamilyGroup("Familia", "user-1", "rosa@example.com"))
	require.NoError(t, err)

	// A fresh container starts empty; the stale snapshot fast path is
	// replaced by the store's truth.
	c := New(WithStore(s))
	c.Set("memorials", []any{map[string]any{"id": "stale"}})

	require.NoError(t, c.LoadEntities(ctx))

	memorials, _ := c.Get("memorials").([]any)
	require.Len(t, memorials, 1)
	assert.Equal(t, m.ID, itemID(memorials[0]))

	offerings, _ := c.Get("offerings").([]any)
	assert.Len(t, offerings, 1)

	groups, _ := c.Get("familyGroups").([]any)
	require.Len(t, groups, 1)
	assert.Equal(t, g.GroupID, itemID(groups[0]))
}

func TestEntityActions_WithoutStore(t *testing.T) {
	c := New()
	ctx := context.Background()

	_, err := c.AddMemorial(ctx, newMemorial("Juan"))
	assert.ErrorIs(t, err, ErrNoStore)
	_, err = c.UpdateMemorial(ctx, "id", store.MemorialPatch{})
	assert.ErrorIs(t, err, ErrNoStore)
	assert.ErrorIs(t, c.DeleteMemorial(ctx, "id"), ErrNoStore)
	_, err = c.PlaceOffering(ctx, entity.NewVirtualOffering(entity.OfferingVela, ""))
	assert.ErrorIs(t, err, ErrNoStore)
	assert.ErrorIs(t, c.LoadEntities(ctx), ErrNoStore)
}

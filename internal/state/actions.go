package state

import (
	"context"
	"errors"
	"time"

	"github.com/ofrenda/core/internal/entity"
	"github.com/ofrenda/core/internal/store"
)

// ErrNoStore is returned by entity actions on a container constructed
// without WithStore.
var ErrNoStore = errors.New("no entity store configured")

// AddMemorial commits a new memorial to the store and, on success, pushes
// it into the "memorials" mirror. Validation failures reject the action
// without touching either the store or the mirror.
func (c *Container) AddMemorial(ctx context.Context, m entity.Memorial) (entity.Memorial, error) {
	if c.store == nil {
		return entity.Memorial{}, ErrNoStore
	}
	saved, err := c.store.SaveMemorial(ctx, m)
	if err != nil {
		return entity.Memorial{}, err
	}
	c.Push("memorials", saved)
	return saved, nil
}

// UpdateMemorial merges a partial update into a stored memorial (forcing
// syncStatus=pending) and refreshes the mirror entry.
func (c *Container) UpdateMemorial(ctx context.Context, id string, patch store.MemorialPatch) (entity.Memorial, error) {
	if c.store == nil {
		return entity.Memorial{}, ErrNoStore
	}
	updated, err := c.store.UpdateMemorial(ctx, id, patch)
	if err != nil {
		return entity.Memorial{}, err
	}

	list, _ := c.Get("memorials").([]any)
	replaced := make([]any, len(list))
	for i, item := range list {
		if itemID(item) == id {
			replaced[i] = updated
		} else {
			replaced[i] = item
		}
	}
	c.Set("memorials", replaced)
	return updated, nil
}

// DeleteMemorial removes a memorial (cascading to its offerings in the
// store) and drops it and its offerings from the mirrors.
func (c *Container) DeleteMemorial(ctx context.Context, id string) error {
	if c.store == nil {
		return ErrNoStore
	}
	if err := c.store.DeleteMemorial(ctx, id); err != nil {
		return err
	}
	c.Remove("memorials", func(item any) bool {
		return itemID(item) == id
	})
	c.Remove("offerings", func(item any) bool {
		return itemMemorialID(item) == id
	})
	return nil
}

// PlaceOffering commits a new offering and pushes it into the "offerings"
// mirror.
func (c *Container) PlaceOffering(ctx context.Context, o entity.VirtualOffering) (entity.VirtualOffering, error) {
	if c.store == nil {
		return entity.VirtualOffering{}, ErrNoStore
	}
	saved, err := c.store.SaveOffering(ctx, o)
	if err != nil {
		return entity.VirtualOffering{}, err
	}
	c.Push("offerings", saved)
	return saved, nil
}

// SetLanguage records the interface language and persists it to the user's
// preferences when a store and user are present. The mirror updates even
// when preferences persistence fails; language is UI state first.
func (c *Container) SetLanguage(ctx context.Context, lang string) error {
	c.Set("user.language", lang)

	if c.store == nil {
		return nil
	}
	userID, _ := c.Get("user.id").(string)
	if userID == "" {
		return nil
	}

	prefs, err := c.store.GetPreferences(ctx, userID)
	if err != nil {
		return err
	}
	p := entity.DefaultPreferences(userID)
	if prefs != nil {
		p = *prefs
	}
	p.Language = lang
	_, err = c.store.SavePreferences(ctx, p)
	return err
}

// ShowNotification sets a transient UI notification.
func (c *Container) ShowNotification(message, kind string) {
	c.Set("ui.notification", map[string]any{
		"message": message,
		"kind":    kind,
		"shownAt": time.Now().UTC().Format(time.RFC3339),
	})
}

// ClearNotification removes the current notification.
func (c *Container) ClearNotification() {
	c.Set("ui.notification", nil)
}

// StartARSession marks an AR session active.
func (c *Container) StartARSession() {
	c.Set("arSession", map[string]any{
		"active":    true,
		"startedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

// EndARSession marks the AR session inactive.
func (c *Container) EndARSession() {
	c.Set("arSession", map[string]any{
		"active": false,
	})
}

// LoadEntities reconciles the mirror against the store: the memorials,
// offerings, and familyGroups collections are re-read and replace whatever
// the snapshot fast path restored.
func (c *Container) LoadEntities(ctx context.Context) error {
	if c.store == nil {
		return ErrNoStore
	}

	memorials, err := c.store.GetMemorials(ctx)
	if err != nil {
		return err
	}
	offerings, err := c.store.GetOfferings(ctx)
	if err != nil {
		return err
	}
	groups, err := c.store.GetFamilyGroups(ctx)
	if err != nil {
		return err
	}

	c.Set("memorials", toAnySlice(memorials))
	c.Set("offerings", toAnySlice(offerings))
	c.Set("familyGroups", toAnySlice(groups))
	return nil
}

// itemID extracts an entity id from a mirror item, which may be a typed
// entity (placed by an action) or a plain map (restored from a snapshot).
func itemID(item any) string {
	switch v := item.(type) {
	case entity.Memorial:
		return v.ID
	case entity.VirtualOffering:
		return v.ID
	case entity.FamilyGroup:
		return v.GroupID
	case map[string]any:
		if id, ok := v["id"].(string); ok {
			return id
		}
		if id, ok := v["groupId"].(string); ok {
			return id
		}
	}
	return ""
}

// itemMemorialID extracts the memorial reference from a mirror offering.
func itemMemorialID(item any) string {
	switch v := item.(type) {
	case entity.VirtualOffering:
		return v.MemorialID
	case map[string]any:
		if id, ok := v["memorialId"].(string); ok {
			return id
		}
	}
	return ""
}

func toAnySlice[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

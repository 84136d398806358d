package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ofrenda/core/internal/entity"
	"github.com/ofrenda/core/internal/validate"
)

// ExportVersion tags export documents so future readers can adapt.
const ExportVersion = "1"

// ErrInvalidImport is returned when an import document fails the top-level
// shape check. It is rejected before any write occurs.
var ErrInvalidImport = errors.New("invalid import data format")

// ExportDocument is a complete dump of the store: a version tag, an export
// timestamp, and the full contents of all four collections.
type ExportDocument struct {
	Version          string                   `json:"version"`
	ExportedAt       time.Time                `json:"exportedAt"`
	Memorials        []entity.Memorial        `json:"memorials"`
	FamilyGroups     []entity.FamilyGroup     `json:"familyGroups"`
	VirtualOfferings []entity.VirtualOffering `json:"virtualOfferings"`
	UserPreferences  []entity.UserPreferences `json:"userPreferences"`
}

// ExportData dumps all four collections into one document.
func (s *Store) ExportData(ctx context.Context) (ExportDocument, error) {
	memorials, err := s.GetMemorials(ctx)
	if err != nil {
		return ExportDocument{}, fmt.Errorf("export: %w", err)
	}
	groups, err := s.GetFamilyGroups(ctx)
	if err != nil {
		return ExportDocument{}, fmt.Errorf("export: %w", err)
	}
	offerings, err := s.GetOfferings(ctx)
	if err != nil {
		return ExportDocument{}, fmt.Errorf("export: %w", err)
	}
	prefs, err := s.getAllPreferences(ctx)
	if err != nil {
		return ExportDocument{}, fmt.Errorf("export: %w", err)
	}

	return ExportDocument{
		Version:          ExportVersion,
		ExportedAt:       time.Now().UTC(),
		Memorials:        memorials,
		FamilyGroups:     groups,
		VirtualOfferings: offerings,
		UserPreferences:  prefs,
	}, nil
}

// ParseExportDocument decodes and shape-checks raw import bytes. The
// version must be present and every collection must be present and
// array-typed; anything else is ErrInvalidImport. Record-level validation
// happens later, inside ImportData's transaction.
func ParseExportDocument(data []byte) (ExportDocument, error) {
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(data, &shape); err != nil {
		return ExportDocument{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	var version string
	if raw, ok := shape["version"]; !ok || json.Unmarshal(raw, &version) != nil || version == "" {
		return ExportDocument{}, fmt.Errorf("%w: missing version", ErrInvalidImport)
	}

	for _, key := range []string{"memorials", "familyGroups", "virtualOfferings", "userPreferences"} {
		raw, ok := shape[key]
		if !ok {
			return ExportDocument{}, fmt.Errorf("%w: missing collection %q", ErrInvalidImport, key)
		}
		var probe []json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return ExportDocument{}, fmt.Errorf("%w: collection %q is not an array", ErrInvalidImport, key)
		}
	}

	var doc ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return ExportDocument{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	return doc, nil
}

// ImportData replaces the entire dataset with the document's contents.
//
// Import is a replace, not a merge: inside one transaction every collection
// is cleared and the incoming records inserted, so importing the same
// document twice is idempotent but anything absent from the document is
// destroyed. Each record passes the validation gate; one bad record aborts
// the whole import and the pre-import dataset survives untouched.
func (s *Store) ImportData(ctx context.Context, doc ExportDocument) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	if doc.Version == "" ||
		doc.Memorials == nil || doc.FamilyGroups == nil ||
		doc.VirtualOfferings == nil || doc.UserPreferences == nil {
		return ErrInvalidImport
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, table := range []string{"virtual_offerings", "memorials", "family_groups", "user_preferences"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("import: clear %s: %w", table, err)
		}
	}

	for _, m := range doc.Memorials {
		res := validate.Memorial(m)
		if !res.Valid {
			return &ValidationError{Entity: "memorial", Errors: res.Errors}
		}
		m = res.Sanitized
		docJSON, err := marshalDoc(m)
		if err != nil {
			return fmt.Errorf("import memorial: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO memorials
			(id, name, altar_level, sync_status, has_photo, has_audio, data, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			m.ID, m.Name, m.AltarLevel, string(m.SyncStatus),
			boolInt(m.Photo != ""), boolInt(m.Audio != ""), docJSON,
			m.CreatedAt.UTC().Format(time.RFC3339Nano),
			m.UpdatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("import memorial %s: %w", m.ID, err)
		}
	}

	for _, g := range doc.FamilyGroups {
		res := validate.FamilyGroup(g)
		if !res.Valid {
			return &ValidationError{Entity: "family group", Errors: res.Errors}
		}
		g = res.Sanitized
		docJSON, err := marshalDoc(g)
		if err != nil {
			return fmt.Errorf("import family group: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO family_groups (group_id, name, invite_code, data, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, g.GroupID, g.Name, g.InviteCode, docJSON, g.CreatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("import family group %s: %w", g.GroupID, err)
		}
	}

	for _, o := range doc.VirtualOfferings {
		res := validate.Offering(o)
		if !res.Valid {
			return &ValidationError{Entity: "offering", Errors: res.Errors}
		}
		o = res.Sanitized
		docJSON, err := marshalDoc(o)
		if err != nil {
			return fmt.Errorf("import offering: %w", err)
		}
		var memorialID any
		if o.MemorialID != "" {
			memorialID = o.MemorialID
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO virtual_offerings (id, type, memorial_id, data, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, o.ID, string(o.Type), memorialID, docJSON, o.CreatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("import offering %s: %w", o.ID, err)
		}
	}

	for _, p := range doc.UserPreferences {
		res := validate.Preferences(p)
		if !res.Valid {
			return &ValidationError{Entity: "preferences", Errors: res.Errors}
		}
		p = res.Sanitized
		docJSON, err := marshalDoc(p)
		if err != nil {
			return fmt.Errorf("import preferences: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_preferences (user_id, data, updated_at)
			VALUES (?, ?, ?)
		`, p.UserID, docJSON, p.UpdatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("import preferences %s: %w", p.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import: commit: %w", err)
	}

	s.logger.Info("import complete",
		zap.Int("memorials", len(doc.Memorials)),
		zap.Int("familyGroups", len(doc.FamilyGroups)),
		zap.Int("offerings", len(doc.VirtualOfferings)),
	)
	return nil
}

// ClearAll wipes every collection in one transaction. This is the only
// operation that removes user preferences.
func (s *Store) ClearAll(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clear all: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"virtual_offerings", "memorials", "family_groups", "user_preferences"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear all: %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clear all: commit: %w", err)
	}
	return nil
}

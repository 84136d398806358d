package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ofrenda/core/internal/entity"
	"github.com/ofrenda/core/internal/validate"
)

// ErrNotFound is returned by mutating operations that target a missing
// entity. Point lookups (GetMemorial and friends) return nil instead.
var ErrNotFound = errors.New("not found")

// SaveMemorial validates, sanitizes, and upserts a memorial in one
// transaction. An invalid memorial is rejected with a ValidationError and
// nothing is written. Returns the sanitized entity as committed.
func (s *Store) SaveMemorial(ctx context.Context, m entity.Memorial) (entity.Memorial, error) {
	db, err := s.conn()
	if err != nil {
		return entity.Memorial{}, err
	}

	res := validate.Memorial(m)
	if !res.Valid {
		return entity.Memorial{}, &ValidationError{Entity: "memorial", Errors: res.Errors}
	}
	m = res.Sanitized

	doc, err := marshalDoc(m)
	if err != nil {
		return entity.Memorial{}, fmt.Errorf("save memorial: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO memorials
		(id, name, altar_level, sync_status, has_photo, has_audio, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name        = excluded.name,
			altar_level = excluded.altar_level,
			sync_status = excluded.sync_status,
			has_photo   = excluded.has_photo,
			has_audio   = excluded.has_audio,
			data        = excluded.data,
			updated_at  = excluded.updated_at
	`,
		m.ID,
		m.Name,
		m.AltarLevel,
		string(m.SyncStatus),
		boolInt(m.Photo != ""),
		boolInt(m.Audio != ""),
		doc,
		m.CreatedAt.UTC().Format(time.RFC3339Nano),
		m.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return entity.Memorial{}, fmt.Errorf("save memorial: %w", err)
	}

	return m, nil
}

// GetMemorial retrieves a memorial by id. Returns (nil, nil) when the id
// does not exist; not-found is not an error.
func (s *Store) GetMemorial(ctx context.Context, id string) (*entity.Memorial, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var doc string
	err = db.QueryRowContext(ctx, `SELECT data FROM memorials WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get memorial: %w", err)
	}

	m, err := unmarshalMemorial(doc)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMemorials returns every memorial, ordered by creation time then id
// for deterministic results. Returns an empty slice, never nil.
func (s *Store) GetMemorials(ctx context.Context) ([]entity.Memorial, error) {
	return s.queryMemorials(ctx, `
		SELECT data FROM memorials
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
}

// GetMemorialsByLevel returns memorials on one altar level via the
// altar_level index. The result set equals a full scan filtered on
// AltarLevel; tests hold the store to that equivalence.
func (s *Store) GetMemorialsByLevel(ctx context.Context, level int) ([]entity.Memorial, error) {
	return s.queryMemorials(ctx, `
		SELECT data FROM memorials
		WHERE altar_level = ?
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`, level)
}

// queryMemorials runs a data-column query and rehydrates each row.
func (s *Store) queryMemorials(ctx context.Context, query string, args ...any) ([]entity.Memorial, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query memorials: %w", err)
	}
	defer rows.Close()

	memorials := []entity.Memorial{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan memorial: %w", err)
		}
		m, err := unmarshalMemorial(doc)
		if err != nil {
			return nil, err
		}
		memorials = append(memorials, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memorials: %w", err)
	}

	return memorials, nil
}

// MemorialPatch carries a partial memorial update. Nil fields are left
// untouched by UpdateMemorial.
type MemorialPatch struct {
	Name              *string
	Relationship      *string
	BirthDate         *time.Time
	DeathDate         *time.Time
	Story             *string
	Photo             *string
	Audio             *string
	AltarLevel        *int
	FamilyConnections *entity.FamilyConnections
	VirtualOfferings  *entity.OfferingLayout
	Sharing           *entity.Sharing
}

// apply shallow-merges the patch over the memorial.
func (p MemorialPatch) apply(m *entity.Memorial) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Relationship != nil {
		m.Relationship = *p.Relationship
	}
	if p.BirthDate != nil {
		m.BirthDate = p.BirthDate
	}
	if p.DeathDate != nil {
		m.DeathDate = p.DeathDate
	}
	if p.Story != nil {
		m.Story = *p.Story
	}
	if p.Photo != nil {
		m.Photo = *p.Photo
	}
	if p.Audio != nil {
		m.Audio = *p.Audio
	}
	if p.AltarLevel != nil {
		m.AltarLevel = *p.AltarLevel
	}
	if p.FamilyConnections != nil {
		m.FamilyConnections = *p.FamilyConnections
	}
	if p.VirtualOfferings != nil {
		m.VirtualOfferings = *p.VirtualOfferings
	}
	if p.Sharing != nil {
		m.Sharing = *p.Sharing
	}
}

// UpdateMemorial reads the current memorial, shallow-merges the patch over
// it, forces syncStatus=pending, re-validates, and commits. The read and
// write share one transaction.
func (s *Store) UpdateMemorial(ctx context.Context, id string, patch MemorialPatch) (entity.Memorial, error) {
	db, err := s.conn()
	if err != nil {
		return entity.Memorial{}, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return entity.Memorial{}, fmt.Errorf("update memorial: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var doc string
	err = tx.QueryRowContext(ctx, `SELECT data FROM memorials WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Memorial{}, fmt.Errorf("update memorial %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return entity.Memorial{}, fmt.Errorf("update memorial: %w", err)
	}

	m, err := unmarshalMemorial(doc)
	if err != nil {
		return entity.Memorial{}, err
	}

	patch.apply(&m)
	m.Touch()

	res := validate.Memorial(m)
	if !res.Valid {
		return entity.Memorial{}, &ValidationError{Entity: "memorial", Errors: res.Errors}
	}
	m = res.Sanitized

	newDoc, err := marshalDoc(m)
	if err != nil {
		return entity.Memorial{}, fmt.Errorf("update memorial: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE memorials
		SET name = ?, altar_level = ?, sync_status = ?, has_photo = ?, has_audio = ?,
		    data = ?, updated_at = ?
		WHERE id = ?
	`,
		m.Name,
		m.AltarLevel,
		string(m.SyncStatus),
		boolInt(m.Photo != ""),
		boolInt(m.Audio != ""),
		newDoc,
		m.UpdatedAt.UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return entity.Memorial{}, fmt.Errorf("update memorial: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return entity.Memorial{}, fmt.Errorf("update memorial: commit: %w", err)
	}

	return m, nil
}

// MarkSynced transitions a memorial to syncStatus=synced. This is the only
// path to the synced state; the store never sets it on its own.
func (s *Store) MarkSynced(ctx context.Context, id string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mark synced: begin tx: %w", err)
	}
	defer tx.Rollback()

	var doc string
	err = tx.QueryRowContext(ctx, `SELECT data FROM memorials WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("mark synced %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	m, err := unmarshalMemorial(doc)
	if err != nil {
		return err
	}
	m.SyncStatus = entity.SyncStatusSynced

	newDoc, err := marshalDoc(m)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE memorials SET sync_status = ?, data = ? WHERE id = ?
	`, string(entity.SyncStatusSynced), newDoc, id)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mark synced: commit: %w", err)
	}
	return nil
}

// DeleteMemorial removes a memorial and, in the same transaction, every
// offering whose memorial_id references it. An offering never outlives its
// memorial.
func (s *Store) DeleteMemorial(ctx context.Context, id string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete memorial: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM virtual_offerings WHERE memorial_id = ?`, id); err != nil {
		return fmt.Errorf("delete memorial: cascade offerings: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM memorials WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete memorial: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete memorial: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete memorial %s: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete memorial: commit: %w", err)
	}
	return nil
}

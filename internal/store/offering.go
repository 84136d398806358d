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

// SaveOffering validates and upserts a virtual offering. When the offering
// references a memorial, that memorial must exist; an offering is never
// allowed to dangle at write time.
func (s *Store) SaveOffering(ctx context.Context, o entity.VirtualOffering) (entity.VirtualOffering, error) {
	db, err := s.conn()
	if err != nil {
		return entity.VirtualOffering{}, err
	}

	res := validate.Offering(o)
	if !res.Valid {
		return entity.VirtualOffering{}, &ValidationError{Entity: "offering", Errors: res.Errors}
	}
	o = res.Sanitized

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return entity.VirtualOffering{}, fmt.Errorf("save offering: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if o.MemorialID != "" {
		var exists int
		err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM memorials WHERE id = ?`, o.MemorialID).Scan(&exists)
		if err != nil {
			return entity.VirtualOffering{}, fmt.Errorf("save offering: check memorial: %w", err)
		}
		if exists == 0 {
			return entity.VirtualOffering{}, fmt.Errorf("save offering: memorial %s: %w", o.MemorialID, ErrNotFound)
		}
	}

	doc, err := marshalDoc(o)
	if err != nil {
		return entity.VirtualOffering{}, fmt.Errorf("save offering: %w", err)
	}

	var memorialID any
	if o.MemorialID != "" {
		memorialID = o.MemorialID
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO virtual_offerings (id, type, memorial_id, data, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type        = excluded.type,
			memorial_id = excluded.memorial_id,
			data        = excluded.data
	`,
		o.ID,
		string(o.Type),
		memorialID,
		doc,
		o.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return entity.VirtualOffering{}, fmt.Errorf("save offering: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return entity.VirtualOffering{}, fmt.Errorf("save offering: commit: %w", err)
	}

	return o, nil
}

// GetOffering retrieves an offering by id. Returns (nil, nil) when missing.
func (s *Store) GetOffering(ctx context.Context, id string) (*entity.VirtualOffering, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var doc string
	err = db.QueryRowContext(ctx, `SELECT data FROM virtual_offerings WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get offering: %w", err)
	}

	o, err := unmarshalOffering(doc)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOfferings returns every offering with deterministic ordering.
func (s *Store) GetOfferings(ctx context.Context) ([]entity.VirtualOffering, error) {
	return s.queryOfferings(ctx, `
		SELECT data FROM virtual_offerings
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
}

// GetOfferingsByMemorial returns the offerings placed on one memorial via
// the memorial_id index.
func (s *Store) GetOfferingsByMemorial(ctx context.Context, memorialID string) ([]entity.VirtualOffering, error) {
	return s.queryOfferings(ctx, `
		SELECT data FROM virtual_offerings
		WHERE memorial_id = ?
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`, memorialID)
}

// GetOfferingsByType returns all offerings of one type.
func (s *Store) GetOfferingsByType(ctx context.Context, typ entity.OfferingType) ([]entity.VirtualOffering, error) {
	return s.queryOfferings(ctx, `
		SELECT data FROM virtual_offerings
		WHERE type = ?
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`, string(typ))
}

// queryOfferings runs a data-column query and rehydrates each row.
func (s *Store) queryOfferings(ctx context.Context, query string, args ...any) ([]entity.VirtualOffering, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query offerings: %w", err)
	}
	defer rows.Close()

	offerings := []entity.VirtualOffering{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan offering: %w", err)
		}
		o, err := unmarshalOffering(doc)
		if err != nil {
			return nil, err
		}
		offerings = append(offerings, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offerings: %w", err)
	}

	return offerings, nil
}

// DeleteOffering removes one offering by id.
func (s *Store) DeleteOffering(ctx context.Context, id string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM virtual_offerings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete offering: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete offering: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete offering %s: %w", id, ErrNotFound)
	}
	return nil
}

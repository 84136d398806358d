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

// SavePreferences validates and upserts one user's preferences. There is a
// single row per user; repeated saves replace it. Preferences are never
// deleted individually, only by ClearAll.
func (s *Store) SavePreferences(ctx context.Context, p entity.UserPreferences) (entity.UserPreferences, error) {
	db, err := s.conn()
	if err != nil {
		return entity.UserPreferences{}, err
	}

	res := validate.Preferences(p)
	if !res.Valid {
		return entity.UserPreferences{}, &ValidationError{Entity: "preferences", Errors: res.Errors}
	}
	p = res.Sanitized
	p.UpdatedAt = time.Now().UTC()

	doc, err := marshalDoc(p)
	if err != nil {
		return entity.UserPreferences{}, fmt.Errorf("save preferences: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			data       = excluded.data,
			updated_at = excluded.updated_at
	`, p.UserID, doc, p.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return entity.UserPreferences{}, fmt.Errorf("save preferences: %w", err)
	}

	return p, nil
}

// GetPreferences retrieves one user's preferences. Returns (nil, nil) when
// the user has none stored yet.
func (s *Store) GetPreferences(ctx context.Context, userID string) (*entity.UserPreferences, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var doc string
	err = db.QueryRowContext(ctx, `SELECT data FROM user_preferences WHERE user_id = ?`, userID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	p, err := unmarshalPreferences(doc)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// getAllPreferences returns every stored preferences row, for export.
func (s *Store) getAllPreferences(ctx context.Context) ([]entity.UserPreferences, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT data FROM user_preferences
		ORDER BY user_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query preferences: %w", err)
	}
	defer rows.Close()

	prefs := []entity.UserPreferences{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan preferences: %w", err)
		}
		p, err := unmarshalPreferences(doc)
		if err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate preferences: %w", err)
	}

	return prefs, nil
}

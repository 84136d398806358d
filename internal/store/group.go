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

// SaveFamilyGroup validates and upserts a family group. The invite code's
// uniqueness is enforced by the store's unique index; a collision surfaces
// as a transaction error.
func (s *Store) SaveFamilyGroup(ctx context.Context, g entity.FamilyGroup) (entity.FamilyGroup, error) {
	db, err := s.conn()
	if err != nil {
		return entity.FamilyGroup{}, err
	}

	res := validate.FamilyGroup(g)
	if !res.Valid {
		return entity.FamilyGroup{}, &ValidationError{Entity: "family group", Errors: res.Errors}
	}
	g = res.Sanitized

	doc, err := marshalDoc(g)
	if err != nil {
		return entity.FamilyGroup{}, fmt.Errorf("save family group: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO family_groups (group_id, name, invite_code, data, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(group_id) DO UPDATE SET
			name        = excluded.name,
			invite_code = excluded.invite_code,
			data        = excluded.data
	`,
		g.GroupID,
		g.Name,
		g.InviteCode,
		doc,
		g.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return entity.FamilyGroup{}, fmt.Errorf("save family group: %w", err)
	}

	return g, nil
}

// GetFamilyGroup retrieves a group by id. Returns (nil, nil) when missing.
func (s *Store) GetFamilyGroup(ctx context.Context, groupID string) (*entity.FamilyGroup, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var doc string
	err = db.QueryRowContext(ctx, `SELECT data FROM family_groups WHERE group_id = ?`, groupID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family group: %w", err)
	}

	g, err := unmarshalGroup(doc)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetFamilyGroupByInviteCode looks a group up via the invite_code index.
// Returns (nil, nil) when no group carries the code.
func (s *Store) GetFamilyGroupByInviteCode(ctx context.Context, code string) (*entity.FamilyGroup, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var doc string
	err = db.QueryRowContext(ctx, `SELECT data FROM family_groups WHERE invite_code = ?`, code).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family group by invite code: %w", err)
	}

	g, err := unmarshalGroup(doc)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetFamilyGroups returns every group with deterministic ordering.
func (s *Store) GetFamilyGroups(ctx context.Context) ([]entity.FamilyGroup, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT data FROM family_groups
		ORDER BY created_at ASC, group_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query family groups: %w", err)
	}
	defer rows.Close()

	groups := []entity.FamilyGroup{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan family group: %w", err)
		}
		g, err := unmarshalGroup(doc)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate family groups: %w", err)
	}

	return groups, nil
}

// DeleteFamilyGroup removes a group by id.
func (s *Store) DeleteFamilyGroup(ctx context.Context, groupID string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM family_groups WHERE group_id = ?`, groupID)
	if err != nil {
		return fmt.Errorf("delete family group: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete family group: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete family group %s: %w", groupID, ErrNotFound)
	}
	return nil
}

// AddGroupMember appends a member to a group. The member is validated
// individually; the updated group is re-validated before commit.
func (s *Store) AddGroupMember(ctx context.Context, groupID string, m entity.Member) (entity.FamilyGroup, error) {
	return s.mutateGroup(ctx, groupID, func(g *entity.FamilyGroup) error {
		mr := validate.Member(m)
		if !mr.Valid {
			return &ValidationError{Entity: "member", Errors: mr.Errors}
		}
		member := mr.Sanitized
		if member.JoinedAt.IsZero() {
			member.JoinedAt = time.Now().UTC()
		}
		for _, existing := range g.Members {
			if existing.UserID == member.UserID {
				return fmt.Errorf("user %s is already a member", member.UserID)
			}
		}
		g.Members = append(g.Members, member)
		return nil
	})
}

// RemoveGroupMember removes a member by user id. When the last member
// leaves, the group itself is deleted; when the last admin leaves with
// members remaining, the longest-standing member is promoted so the
// at-least-one-admin invariant keeps holding.
func (s *Store) RemoveGroupMember(ctx context.Context, groupID, userID string) (*entity.FamilyGroup, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("remove group member: begin tx: %w", err)
	}
	defer tx.Rollback()

	g, err := groupForUpdate(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}

	found := false
	members := g.Members[:0:0]
	for _, m := range g.Members {
		if m.UserID == userID {
			found = true
			continue
		}
		members = append(members, m)
	}
	if !found {
		return nil, fmt.Errorf("remove group member %s: %w", userID, ErrNotFound)
	}
	g.Members = members

	if len(g.Members) == 0 {
		// Empty groups are deleted, not kept around invalid.
		if _, err := tx.ExecContext(ctx, `DELETE FROM family_groups WHERE group_id = ?`, groupID); err != nil {
			return nil, fmt.Errorf("remove group member: delete empty group: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("remove group member: commit: %w", err)
		}
		return nil, nil
	}

	if g.AdminCount() == 0 {
		g.Members[0].Role = entity.RoleAdmin
	}

	if err := writeGroup(ctx, tx, g); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("remove group member: commit: %w", err)
	}
	return &g, nil
}

// AddSharedMemorial records a memorial as shared with a group. Adding an
// already-shared memorial is a no-op.
func (s *Store) AddSharedMemorial(ctx context.Context, groupID, memorialID string) (entity.FamilyGroup, error) {
	return s.mutateGroup(ctx, groupID, func(g *entity.FamilyGroup) error {
		for _, id := range g.SharedMemorials {
			if id == memorialID {
				return nil
			}
		}
		g.SharedMemorials = append(g.SharedMemorials, memorialID)
		return nil
	})
}

// mutateGroup runs a read-modify-validate-write cycle on one group inside
// a transaction.
func (s *Store) mutateGroup(ctx context.Context, groupID string, fn func(*entity.FamilyGroup) error) (entity.FamilyGroup, error) {
	db, err := s.conn()
	if err != nil {
		return entity.FamilyGroup{}, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return entity.FamilyGroup{}, fmt.Errorf("mutate family group: begin tx: %w", err)
	}
	defer tx.Rollback()

	g, err := groupForUpdate(ctx, tx, groupID)
	if err != nil {
		return entity.FamilyGroup{}, err
	}

	if err := fn(&g); err != nil {
		return entity.FamilyGroup{}, err
	}

	res := validate.FamilyGroup(g)
	if !res.Valid {
		return entity.FamilyGroup{}, &ValidationError{Entity: "family group", Errors: res.Errors}
	}
	g = res.Sanitized

	if err := writeGroup(ctx, tx, g); err != nil {
		return entity.FamilyGroup{}, err
	}
	if err := tx.Commit(); err != nil {
		return entity.FamilyGroup{}, fmt.Errorf("mutate family group: commit: %w", err)
	}
	return g, nil
}

// groupForUpdate reads one group inside a transaction.
func groupForUpdate(ctx context.Context, tx *sql.Tx, groupID string) (entity.FamilyGroup, error) {
	var doc string
	err := tx.QueryRowContext(ctx, `SELECT data FROM family_groups WHERE group_id = ?`, groupID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.FamilyGroup{}, fmt.Errorf("family group %s: %w", groupID, ErrNotFound)
	}
	if err != nil {
		return entity.FamilyGroup{}, fmt.Errorf("read family group: %w", err)
	}
	return unmarshalGroup(doc)
}

// writeGroup persists a group inside a transaction.
func writeGroup(ctx context.Context, tx *sql.Tx, g entity.FamilyGroup) error {
	doc, err := marshalDoc(g)
	if err != nil {
		return fmt.Errorf("write family group: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE family_groups SET name = ?, invite_code = ?, data = ? WHERE group_id = ?
	`, g.Name, g.InviteCode, doc, g.GroupID)
	if err != nil {
		return fmt.Errorf("write family group: %w", err)
	}
	return nil
}

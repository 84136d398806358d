package store

import (
	"context"
	"fmt"
)

// Stats aggregates dataset counts. Computed by scanning the collections;
// read-only, no side effects.
type Stats struct {
	TotalMemorials    int            `json:"totalMemorials"`
	MemorialsByLevel  map[int]int    `json:"memorialsByLevel"`
	WithPhoto         int            `json:"withPhoto"`
	WithAudio         int            `json:"withAudio"`
	TotalFamilyGroups int            `json:"totalFamilyGroups"`
	TotalOfferings    int            `json:"totalOfferings"`
	OfferingsByType   map[string]int `json:"offeringsByType"`
}

// GetStats reports counts across all collections: total memorials, the
// altar-level distribution, how many carry photo/audio media, group and
// offering totals, and the per-type offering distribution.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	db, err := s.conn()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		MemorialsByLevel: map[int]int{},
		OfferingsByType:  map[string]int{},
	}

	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(has_photo), 0),
		       COALESCE(SUM(has_audio), 0)
		FROM memorials
	`).Scan(&stats.TotalMemorials, &stats.WithPhoto, &stats.WithAudio)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: memorials: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT altar_level, COUNT(*) FROM memorials GROUP BY altar_level
	`)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: memorials by level: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var level, count int
		if err := rows.Scan(&level, &count); err != nil {
			return Stats{}, fmt.Errorf("stats: scan level: %w", err)
		}
		stats.MemorialsByLevel[level] = count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("stats: iterate levels: %w", err)
	}

	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM family_groups`).Scan(&stats.TotalFamilyGroups)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: family groups: %w", err)
	}

	typeRows, err := db.QueryContext(ctx, `
		SELECT type, COUNT(*) FROM virtual_offerings GROUP BY type
	`)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: offerings by type: %w", err)
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var typ string
		var count int
		if err := typeRows.Scan(&typ, &count); err != nil {
			return Stats{}, fmt.Errorf("stats: scan type: %w", err)
		}
		stats.OfferingsByType[typ] = count
		stats.TotalOfferings += count
	}
	if err := typeRows.Err(); err != nil {
		return Stats{}, fmt.Errorf("stats: iterate types: %w", err)
	}

	return stats, nil
}

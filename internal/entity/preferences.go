package entity

import "time"

// UserPreferences holds per-user settings. One row per user, upserted in
// place; never deleted independently, only by a full data clear.
type UserPreferences struct {
	UserID       string    `json:"userId"`
	Language     string    `json:"language"`
	AutoSync     bool      `json:"autoSync"`
	ExportFormat string    `json:"exportFormat"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DefaultPreferences returns the preferences assigned to a user on first
// contact: Spanish interface, auto-sync on, JSON export.
func DefaultPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID:       userID,
		Language:     "es",
		AutoSync:     true,
		ExportFormat: "json",
		UpdatedAt:    time.Now().UTC(),
	}
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// SyncStatus tracks whether an entity has unconfirmed local edits.
//
// The lifecycle is local → pending → synced. "synced" is a placeholder
// state settable only by an explicit synchronization process; nothing in
// this core transitions to it automatically.
type SyncStatus string

const (
	// SyncStatusLocal marks an entity created locally and never synced.
	SyncStatusLocal SyncStatus = "local"
	// SyncStatusPending marks an entity with local edits awaiting sync.
	SyncStatusPending SyncStatus = "pending"
	// SyncStatusSynced marks an entity confirmed by a sync process.
	SyncStatusSynced SyncStatus = "synced"
)

// ValidSyncStatuses defines the closed set of sync states.
var ValidSyncStatuses = map[SyncStatus]bool{
	SyncStatusLocal:   true,
	SyncStatusPending: true,
	SyncStatusSynced:  true,
}

// Altar level bounds. Levels map to the three tiers of a traditional altar.
const (
	MinAltarLevel = 1
	MaxAltarLevel = 3
	// DefaultAltarLevel is the middle tier, used when a caller omits the level.
	DefaultAltarLevel = 2
)

// ValidPermissions defines the closed set of sharing permissions.
var ValidPermissions = map[string]bool{
	"view":    true,
	"edit":    true,
	"comment": true,
}

// Position is a point in altar space. Coordinates must be finite (no NaN
// or Inf); the validation gate enforces this before persistence.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FamilyConnections links a memorial into the family tree by memorial id.
type FamilyConnections struct {
	Parents  []string `json:"parents"`
	Children []string `json:"children"`
	Spouse   string   `json:"spouse,omitempty"`
}

// OfferingLayout records where offerings cluster on a memorial and which
// offering types are displayed with it.
type OfferingLayout struct {
	Position Position `json:"position"`
	Items    []string `json:"items"`
}

// Sharing controls who can see or edit a memorial outside its owner.
type Sharing struct {
	IsShared    bool     `json:"isShared"`
	SharedWith  []string `json:"sharedWith"`
	ShareCode   string   `json:"shareCode,omitempty"`
	Permissions []string `json:"permissions"`
}

// Memorial is a remembrance record for one person.
//
// Invariants (enforced by internal/validate before any write):
//   - AltarLevel ∈ {1, 2, 3}
//   - BirthDate ≤ DeathDate when both are present; neither may be in the future
//   - Name is 1–100 characters after sanitization; Story at most 5000
type Memorial struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Relationship      string            `json:"relationship"`
	BirthDate         *time.Time        `json:"birthDate,omitempty"`
	DeathDate         *time.Time        `json:"deathDate,omitempty"`
	Story             string            `json:"story"`
	Photo             string            `json:"photo,omitempty"`
	Audio             string            `json:"audio,omitempty"`
	AltarLevel        int               `json:"altarLevel"`
	FamilyConnections FamilyConnections `json:"familyConnections"`
	VirtualOfferings  OfferingLayout    `json:"virtualOfferings"`
	Sharing           Sharing           `json:"sharing"`
	SyncStatus        SyncStatus        `json:"syncStatus"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// NewMemorial creates a memorial with a fresh UUIDv7 id, syncStatus=local,
// and both timestamps set to now. Name and relationship are taken as given;
// callers run the result through the validation gate before persisting.
func NewMemorial(name, relationship string) Memorial {
	now := time.Now().UTC()
	return Memorial{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Name:         name,
		Relationship: relationship,
		AltarLevel:   DefaultAltarLevel,
		FamilyConnections: FamilyConnections{
			Parents:  []string{},
			Children: []string{},
		},
		VirtualOfferings: OfferingLayout{Items: []string{}},
		Sharing: Sharing{
			SharedWith:  []string{},
			Permissions: []string{"view"},
		},
		SyncStatus: SyncStatusLocal,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch marks the memorial as locally edited: syncStatus becomes pending
// and UpdatedAt advances. Every field update routes through this.
func (m *Memorial) Touch() {
	m.SyncStatus = SyncStatusPending
	m.UpdatedAt = time.Now().UTC()
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// OfferingType identifies the kind of a virtual offering.
type OfferingType string

// The traditional offering kinds placed on an altar.
const (
	OfferingCempasuchil    OfferingType = "cempasuchil"
	OfferingPanDeMuerto    OfferingType = "pan_de_muerto"
	OfferingAgua           OfferingType = "agua"
	OfferingSal            OfferingType = "sal"
	OfferingFoto           OfferingType = "foto"
	OfferingVela           OfferingType = "vela"
	OfferingIncienso       OfferingType = "incienso"
	OfferingComidaFavorita OfferingType = "comida_favorita"
)

// ValidOfferingTypes defines the closed set of offering types.
var ValidOfferingTypes = map[OfferingType]bool{
	OfferingCempasuchil:    true,
	OfferingPanDeMuerto:    true,
	OfferingAgua:           true,
	OfferingSal:            true,
	OfferingFoto:           true,
	OfferingVela:           true,
	OfferingIncienso:       true,
	OfferingComidaFavorita: true,
}

// VirtualOffering is one placed offering. It is owned by its memorial for
// lifecycle purposes (deleting the memorial cascades to its offerings) but
// stored independently so it can be queried by memorial and by type.
//
// MemorialID and PlacedBy are nullable references; an empty string means
// the offering is unattached.
type VirtualOffering struct {
	ID         string       `json:"id"`
	Type       OfferingType `json:"type"`
	Position   Position     `json:"position"`
	MemorialID string       `json:"memorialId,omitempty"`
	PlacedBy   string       `json:"placedBy,omitempty"`
	Message    string       `json:"message"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// NewVirtualOffering creates an offering of the given type attached to a
// memorial (memorialID may be empty for free-standing offerings).
func NewVirtualOffering(typ OfferingType, memorialID string) VirtualOffering {
	return VirtualOffering{
		ID:         uuid.Must(uuid.NewV7()).String(),
		Type:       typ,
		MemorialID: memorialID,
		CreatedAt:  time.Now().UTC(),
	}
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// Role is a family-group membership role.
type Role string

const (
	// RoleAdmin can manage members and group settings.
	RoleAdmin Role = "admin"
	// RoleMember can view and contribute per the group's default permissions.
	RoleMember Role = "member"
)

// ValidRoles defines the closed set of member roles.
var ValidRoles = map[Role]bool{
	RoleAdmin:  true,
	RoleMember: true,
}

// Member is one participant in a family group.
type Member struct {
	UserID   string    `json:"userId"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// GroupSettings controls how a family group admits members and what new
// members may do by default.
type GroupSettings struct {
	AllowNewMembers    bool     `json:"allowNewMembers"`
	RequireApproval    bool     `json:"requireApproval"`
	DefaultPermissions []string `json:"defaultPermissions"`
}

// FamilyGroup is a sharing unit: a set of members collaborating on a set
// of shared memorials.
//
// Invariants: at least one member, at least one admin, unique invite code.
// A group whose membership drops to zero is deleted by the store.
type FamilyGroup struct {
	GroupID         string        `json:"groupId"`
	Name            string        `json:"name"`
	Members         []Member      `json:"members"`
	SharedMemorials []string      `json:"sharedMemorials"`
	InviteCode      string        `json:"inviteCode"`
	Settings        GroupSettings `json:"settings"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// NewFamilyGroup creates a group with the creator as sole admin and a
// derived invite code.
func NewFamilyGroup(name, creatorUserID, creatorEmail string) FamilyGroup {
	now := time.Now().UTC()
	return FamilyGroup{
		GroupID: uuid.Must(uuid.NewV7()).String(),
		Name:    name,
		Members: []Member{{
			UserID:   creatorUserID,
			Email:    creatorEmail,
			Role:     RoleAdmin,
			JoinedAt: now,
		}},
		SharedMemorials: []string{},
		InviteCode:      NewInviteCode(),
		Settings: GroupSettings{
			AllowNewMembers:    true,
			RequireApproval:    true,
			DefaultPermissions: []string{"view"},
		},
		CreatedAt: now,
	}
}

// NewInviteCode derives a short shareable code. The first UUID block gives
// 32 bits of randomness, plenty for per-user group counts, and stays easy
// to read aloud.
func NewInviteCode() string {
	return uuid.NewString()[:8]
}

// AdminCount returns the number of members with the admin role.
func (g *FamilyGroup) AdminCount() int {
	n := 0
	for _, m := range g.Members {
		if m.Role == RoleAdmin {
			n++
		}
	}
	return n
}

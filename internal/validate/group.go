package validate

import (
	"fmt"
	"strings"

	"github.com/ofrenda/core/internal/entity"
)

// FamilyGroup validates and sanitizes a family group, including every
// embedded member. Member-level problems surface inline, prefixed with the
// member's position ("member 2: ...").
//
// Invariants: a non-empty name, at least one member, and at least one admin.
func FamilyGroup(g entity.FamilyGroup) Result[entity.FamilyGroup] {
	c := &checker{}

	g.Name = SanitizeText(g.Name, MaxNameLength)
	if g.Name == "" {
		c.addError("group name is required")
	}

	if len(g.Members) == 0 {
		c.addError("group must have at least one member")
	}

	admins := 0
	for i, m := range g.Members {
		mr := Member(m)
		for _, e := range mr.Errors {
			c.addError("member %d: %s", i+1, e)
		}
		g.Members[i] = mr.Sanitized
		if mr.Sanitized.Role == entity.RoleAdmin {
			admins++
		}
	}
	if len(g.Members) > 0 && admins == 0 {
		c.addError("group must have at least one admin")
	}

	if strings.TrimSpace(g.InviteCode) == "" {
		g.InviteCode = entity.NewInviteCode()
	}

	g.Settings.DefaultPermissions = FilterPermissions(g.Settings.DefaultPermissions, entity.ValidPermissions)

	return result(c, g)
}

// Member validates one group member. Role is a closed enum; unknown roles
// are an error, not coerced.
func Member(m entity.Member) Result[entity.Member] {
	c := &checker{}

	if strings.TrimSpace(m.UserID) == "" {
		c.addError("member user id is required")
	}

	m.Email = strings.TrimSpace(strings.ToLower(m.Email))
	if m.Email == "" {
		c.addError("member email is required")
	} else if !ValidEmail(m.Email) {
		c.addError("email address %q is invalid", m.Email)
	}

	if m.Role == "" {
		m.Role = entity.RoleMember
	} else if !entity.ValidRoles[m.Role] {
		c.addError("role must be admin or member, got %q", m.Role)
	}

	return result(c, m)
}

// FamilyGroupRaw gates untyped group input. Settings booleans are coerced
// from their loose encodings; members must be a list of objects.
func FamilyGroupRaw(raw map[string]any) Result[entity.FamilyGroup] {
	c := &checker{}
	g := entity.FamilyGroup{
		SharedMemorials: []string{},
		Settings: entity.GroupSettings{
			AllowNewMembers:    true,
			RequireApproval:    true,
			DefaultPermissions: []string{"view"},
		},
	}

	nameOK := false
	if name, ok := rawString(c, raw, "name", "group name is required and must be text"); ok {
		g.Name = name
		nameOK = true
	}

	if v, present := raw["members"]; present {
		list, ok := v.([]any)
		if !ok {
			c.addError("members must be a list")
		} else {
			for i, item := range list {
				mm, ok := item.(map[string]any)
				if !ok {
					c.addError("member %d: must be an object", i+1)
					continue
				}
				g.Members = append(g.Members, entity.Member{
					UserID: stringOr(mm["userId"], ""),
					Email:  stringOr(mm["email"], ""),
					Role:   entity.Role(stringOr(mm["role"], "")),
				})
			}
		}
	}

	if v, present := raw["settings"]; present {
		if sm, ok := v.(map[string]any); ok {
			g.Settings.AllowNewMembers = CoerceBool(sm["allowNewMembers"], true)
			g.Settings.RequireApproval = CoerceBool(sm["requireApproval"], true)
			if perms, ok := sm["defaultPermissions"].([]any); ok {
				ps := make([]string, 0, len(perms))
				for _, p := range perms {
					ps = append(ps, fmt.Sprint(p))
				}
				g.Settings.DefaultPermissions = ps
			}
		} else {
			c.addError("settings must be an object")
		}
	}

	typed := FamilyGroup(g)
	for _, e := range typed.Errors {
		if !nameOK && e == "group name is required" {
			continue
		}
		c.errs = append(c.errs, e)
	}
	return result(c, typed.Sanitized)
}

// stringOr returns v as a string, or fallback when v is absent or not text.
func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

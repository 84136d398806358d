package validate

import (
	"math"
	"time"

	"github.com/ofrenda/core/internal/entity"
)

// Memorial validates and sanitizes a constructed memorial.
//
// All problems are accumulated: an empty name and an out-of-range altar
// level produce two independent errors, not one. The returned sanitized
// copy has its free-text fields cleaned and its permission list filtered.
func Memorial(m entity.Memorial) Result[entity.Memorial] {
	c := &checker{}

	m.Name = SanitizeText(m.Name, MaxNameLength)
	if m.Name == "" {
		c.addError("name cannot be empty after sanitization")
	}

	m.Relationship = SanitizeText(m.Relationship, MaxNameLength)
	if m.Relationship == "" {
		c.addError("relationship is required")
	}

	m.Story = SanitizeText(m.Story, MaxStoryLength)

	if m.AltarLevel < entity.MinAltarLevel || m.AltarLevel > entity.MaxAltarLevel {
		c.addError("altar level must be between %d and %d", entity.MinAltarLevel, entity.MaxAltarLevel)
	}

	checkDates(c, m.BirthDate, m.DeathDate)

	if m.SyncStatus == "" {
		m.SyncStatus = entity.SyncStatusLocal
	} else if !entity.ValidSyncStatuses[m.SyncStatus] {
		c.addError("sync status %q is not recognized", m.SyncStatus)
	}

	m.Sharing.Permissions = FilterPermissions(m.Sharing.Permissions, entity.ValidPermissions)
	if m.Sharing.SharedWith != nil {
		for _, email := range m.Sharing.SharedWith {
			if !ValidEmail(email) {
				c.addError("shared-with address %q is invalid", email)
			}
		}
	}

	checkPosition(c, m.VirtualOfferings.Position)

	return result(c, m)
}

// MemorialRaw gates untyped memorial input (decoded JSON, CLI flags).
//
// Presence and type failures produce their own messages ("name is required
// and must be text") before the typed invariants run, so a caller sees both
// classes of error in one pass.
func MemorialRaw(raw map[string]any) Result[entity.Memorial] {
	c := &checker{}
	m := entity.NewMemorial("", "")

	nameOK := false
	if name, ok := rawString(c, raw, "name", "name is required and must be text"); ok {
		m.Name = name
		nameOK = true
	}
	relOK := false
	if rel, ok := rawString(c, raw, "relationship", "relationship is required and must be text"); ok {
		m.Relationship = rel
		relOK = true
	}
	if story, ok := rawOptionalString(c, raw, "story", "story must be text"); ok {
		m.Story = story
	}
	if photo, ok := rawOptionalString(c, raw, "photo", "photo reference must be text"); ok {
		m.Photo = photo
	}
	if audio, ok := rawOptionalString(c, raw, "audio", "audio reference must be text"); ok {
		m.Audio = audio
	}

	if v, present := raw["altarLevel"]; present {
		if level, ok := rawInt(v); ok {
			m.AltarLevel = level
		} else {
			c.addError("altar level must be a number")
		}
	}

	m.BirthDate = rawDate(c, raw, "birthDate", "birth date is not a valid date")
	m.DeathDate = rawDate(c, raw, "deathDate", "death date is not a valid date")

	typed := Memorial(m)
	for _, e := range typed.Errors {
		// The presence/type message already covers these; don't stack the
		// post-sanitization variant on top of it.
		if !nameOK && e == "name cannot be empty after sanitization" {
			continue
		}
		if !relOK && e == "relationship is required" {
			continue
		}
		c.errs = append(c.errs, e)
	}
	return result(c, typed.Sanitized)
}

// checkDates enforces the birth/death ordering invariant: neither date may
// be in the future, and birth must not come after death.
func checkDates(c *checker, birth, death *time.Time) {
	now := time.Now()
	if birth != nil && birth.After(now) {
		c.addError("birth date cannot be in the future")
	}
	if death != nil && death.After(now) {
		c.addError("death date cannot be in the future")
	}
	if birth != nil && death != nil && birth.After(*death) {
		c.addError("birth date must be before death date")
	}
}

// checkPosition rejects non-finite coordinates.
func checkPosition(c *checker, p entity.Position) {
	for _, v := range []float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			c.addError("position coordinates must be finite numbers")
			return
		}
	}
}

// rawString fetches a required string field. A missing field or non-string
// value yields the given message; a blank string passes through so the
// typed validator can report the post-sanitization case distinctly.
func rawString(c *checker, raw map[string]any, key, msg string) (string, bool) {
	v, present := raw[key]
	if !present {
		c.addError("%s", msg)
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		c.addError("%s", msg)
		return "", false
	}
	return s, true
}

// rawOptionalString fetches a string field that may be absent but, when
// present, must be a string.
func rawOptionalString(c *checker, raw map[string]any, key, msg string) (string, bool) {
	v, present := raw[key]
	if !present {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		c.addError("%s", msg)
		return "", false
	}
	return s, true
}

// rawInt accepts the numeric encodings JSON decoding produces.
func rawInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	}
	return 0, false
}

// rawDate parses an optional date field. Accepts RFC 3339 timestamps and
// plain YYYY-MM-DD dates; anything else yields msg.
func rawDate(c *checker, raw map[string]any, key, msg string) *time.Time {
	v, present := raw[key]
	if !present || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		c.addError("%s", msg)
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	c.addError("%s", msg)
	return nil
}

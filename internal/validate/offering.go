package validate

import (
	"strings"

	"github.com/ofrenda/core/internal/entity"
)

// Offering validates and sanitizes a virtual offering. The type is a
// closed enum; unknown types are an error, never coerced. Coordinates
// must be finite numbers.
func Offering(o entity.VirtualOffering) Result[entity.VirtualOffering] {
	c := &checker{}

	if o.Type == "" {
		c.addError("offering type is required")
	} else if !entity.ValidOfferingTypes[o.Type] {
		c.addError("offering type %q is not recognized", o.Type)
	}

	checkPosition(c, o.Position)

	o.Message = SanitizeText(o.Message, MaxMessageLength)

	return result(c, o)
}

// OfferingRaw gates untyped offering input.
func OfferingRaw(raw map[string]any) Result[entity.VirtualOffering] {
	c := &checker{}
	o := entity.VirtualOffering{}

	if typ, ok := rawString(c, raw, "type", "offering type is required and must be text"); ok {
		o.Type = entity.OfferingType(strings.TrimSpace(typ))
	}
	if id, ok := rawOptionalString(c, raw, "memorialId", "memorial id must be text"); ok {
		o.MemorialID = id
	}
	if by, ok := rawOptionalString(c, raw, "placedBy", "placed-by must be text"); ok {
		o.PlacedBy = by
	}
	if msg, ok := rawOptionalString(c, raw, "message", "message must be text"); ok {
		o.Message = msg
	}

	if v, present := raw["position"]; present {
		pm, ok := v.(map[string]any)
		if !ok {
			c.addError("position must be an object with x, y, z")
		} else {
			o.Position.X = rawCoord(c, pm, "x")
			o.Position.Y = rawCoord(c, pm, "y")
			o.Position.Z = rawCoord(c, pm, "z")
		}
	}

	typedOK := o.Type != ""
	typed := Offering(o)
	for _, e := range typed.Errors {
		if !typedOK && e == "offering type is required" {
			continue
		}
		c.errs = append(c.errs, e)
	}
	return result(c, typed.Sanitized)
}

// rawCoord reads one coordinate; a missing coordinate defaults to zero,
// a non-numeric one is an error. The zero returned on error keeps the
// finite-coordinate check from reporting the same field twice.
func rawCoord(c *checker, pm map[string]any, key string) float64 {
	v, present := pm[key]
	if !present {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	c.addError("position %s must be a number", key)
	return 0
}

// Preferences validates user preference updates. Language falls back to
// Spanish; the export format is constrained to the supported encodings.
func Preferences(p entity.UserPreferences) Result[entity.UserPreferences] {
	c := &checker{}

	if strings.TrimSpace(p.UserID) == "" {
		c.addError("user id is required")
	}

	p.Language = strings.ToLower(strings.TrimSpace(p.Language))
	if p.Language == "" {
		p.Language = "es"
	}

	p.ExportFormat = strings.ToLower(strings.TrimSpace(p.ExportFormat))
	switch p.ExportFormat {
	case "":
		p.ExportFormat = "json"
	case "json":
	default:
		c.addError("export format %q is not supported", p.ExportFormat)
	}

	return result(c, p)
}

package validate

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Maximum lengths for free-text fields, in runes, applied after stripping.
const (
	MaxNameLength    = 100
	MaxStoryLength   = 5000
	MaxMessageLength = 500
)

var (
	// tagPattern matches markup tags, including unterminated ones.
	tagPattern = regexp.MustCompile(`<[^>]*>?`)

	// protocolPattern matches script-carrying pseudo-protocols.
	protocolPattern = regexp.MustCompile(`(?i)(javascript|vbscript|data)\s*:`)

	// handlerPattern matches inline event-handler attributes (onclick=, onload=, ...).
	handlerPattern = regexp.MustCompile(`(?i)\bon\w+\s*=`)
)

// SanitizeText neutralizes markup and script-like substrings in free text
// and truncates the result to max runes.
//
// The input is NFC-normalized first so that equivalent Unicode sequences
// sanitize identically, then markup tags, pseudo-protocols, and inline
// event-handler attributes are stripped, and surrounding whitespace trimmed.
func SanitizeText(s string, max int) string {
	s = norm.NFC.String(s)
	s = tagPattern.ReplaceAllString(s, "")
	s = protocolPattern.ReplaceAllString(s, "")
	s = handlerPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) > max {
		s = strings.TrimSpace(string(runes[:max]))
	}
	return s
}

// emailPattern is a pragmatic address check: one @, a non-empty local part,
// and a dotted domain. Full RFC 5322 parsing is deliberately out of scope.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like a deliverable email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// CoerceBool interprets boolean-like settings values. Unlike enum fields,
// which reject out-of-set values, settings accept the usual permissive
// encodings: "true"/"false", "1"/"0", numeric 0/1, and real booleans.
// The fallback is returned for anything unrecognized.
func CoerceBool(v any, fallback bool) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no", "":
			return false
		}
	case float64:
		return b != 0
	case int:
		return b != 0
	}
	return fallback
}

// FilterPermissions drops unknown values from a permission list rather than
// failing validation. Duplicates are removed; order of first appearance is
// preserved.
func FilterPermissions(perms []string, valid map[string]bool) []string {
	out := make([]string, 0, len(perms))
	seen := make(map[string]bool, len(perms))
	for _, p := range perms {
		p = strings.ToLower(strings.TrimSpace(p))
		if valid[p] && !seen[p] {
			out = append(out, p)
			seen[p] = true
		}
	}
	return out
}

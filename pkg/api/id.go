package api

import (
	"regexp"
	"strings"
)

type (
	// TourID identifies an animated tour (deployment flow, ingress flow...)
	TourID string

	// SessionID identifies a live sequencer owned by one mounted view
	SessionID string

	// ComponentID identifies a cluster component; doubles as an active tag
	ComponentID string
)

// InvalidIDChars matches characters not permitted in tour and component IDs.
// Valid characters are: letters, digits, underscore, dot, hyphen, plus, space
var InvalidIDChars = regexp.MustCompile(`[^a-zA-Z0-9_.\-+ ]`)

// SanitizeID lowercases an ID, removes invalid characters, replaces spaces
// with hyphens, and trims leading and trailing hyphens
func SanitizeID[T ~string](id T) T {
	lower := strings.ToLower(string(id))
	sanitized := InvalidIDChars.ReplaceAllString(lower, "")
	sanitized = strings.ReplaceAll(sanitized, " ", "-")
	return T(strings.Trim(sanitized, "-"))
}

// IsCanonicalID reports whether an ID is already in sanitized form
func IsCanonicalID[T ~string](id T) bool {
	return id != "" && SanitizeID(id) == id
}

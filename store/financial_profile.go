package store

import "strings"

// NormalizeProfileName maps a person's display name to the key used by the
// profile driver: lowercase with whitespace runs collapsed to a hyphen, so
// "Ram Vilas" resolves to "ram-vilas".
func NormalizeProfileName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), "-")
}

// Package utils holds various utility functions.
package utils

import "strings"

// visibleSecretChars is how many trailing characters MaskSecret leaves readable.
const visibleSecretChars = 4

// MaskSecret returns s with all but its last few characters replaced by asterisks.
// Short secrets are masked entirely.
func MaskSecret(s string) string {
	n := len([]rune(s))
	if n <= visibleSecretChars*2 {
		return strings.Repeat("*", n)
	}
	r := []rune(s)
	return strings.Repeat("*", n-visibleSecretChars) + string(r[n-visibleSecretChars:])
}

package common

import "strings"

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Blank reports whether s is empty once surrounding whitespace is removed.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

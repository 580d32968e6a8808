package common

import "strings"

// HasAny returns true if s contains any of the substrings. Matching is
// case-sensitive; callers lowercase s when scanning keyword lexicons.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

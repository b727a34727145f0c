// Package slug derives URL-safe identifiers from product titles.
package slug

import "strings"

// Make converts a title into its base slug: lowercase, runs of
// non-alphanumeric characters collapsed into single hyphens, no leading or
// trailing hyphen. The result is deterministic for a given title.
//
// Uniqueness against existing products is resolved by the repository, which
// appends a numeric suffix on collision.
func Make(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	hyphenPending := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if hyphenPending && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphenPending = false
			b.WriteRune(r)
		default:
			hyphenPending = true
		}
	}

	return b.String()
}

// Package author handles BibTeX author lists.
package author

import "strings"

// Separator joins names in a BibTeX author list.
const Separator = " and "

// Others is the marker appended to a truncated list.
const Others = "others"

// split splits an author list on Separator and trims each name.
func split(authors string) []string {
	names := strings.Split(authors, Separator)
	for i, n := range names {
		names[i] = strings.TrimSpace(n)
	}
	return names
}

// Count returns the number of names in an author list.
// An empty list has zero names.
func Count(authors string) int {
	if authors == "" {
		return 0
	}
	return len(split(authors))
}

// Truncate shortens an author list to at most limit names followed by
// "and others".
//
// A negative limit disables truncation. When no truncation happens the
// input is returned byte-for-byte, without trimming whitespace around names.
//
// Examples (limit 2):
//   - "A and B and C" → "A and B and others"
//   - "A and  B"      → "A and  B" (unchanged)
func Truncate(authors string, limit int) string {
	if authors == "" || limit < 0 {
		return authors
	}

	names := split(authors)
	if len(names) <= limit {
		return authors
	}

	return strings.Join(names[:limit], Separator) + Separator + Others
}

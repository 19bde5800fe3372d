package titlecase

import (
	"regexp"
	"strings"
	"unicode"
)

// ExceptionSet holds normalized terms that are never recased.
// It is built once and only read afterwards.
type ExceptionSet map[string]struct{}

// fragmentSep splits a term into words on whitespace and hyphen runs.
var fragmentSep = regexp.MustCompile(`[\s\-]+`)

// BuildExceptions expands configured terms into a lookup set.
//
// For every term, and for every whitespace/hyphen separated fragment of it,
// both the lowercase form and the lowercase alphanumeric-only form are added.
// "Monte-Carlo" therefore contributes "monte-carlo", "montecarlo", "monte"
// and "carlo". An empty term list gives an empty set.
func BuildExceptions(terms []string) ExceptionSet {
	set := make(ExceptionSet)
	for _, term := range terms {
		set.add(term)
		for _, frag := range fragmentSep.Split(term, -1) {
			set.add(frag)
		}
	}
	return set
}

func (s ExceptionSet) add(term string) {
	if lower := strings.ToLower(strings.TrimSpace(term)); lower != "" {
		s[lower] = struct{}{}
	}
	if san := sanitize(term); san != "" {
		s[san] = struct{}{}
	}
}

// Contains reports whether a normalized form is in the set.
func (s ExceptionSet) Contains(form string) bool {
	if form == "" {
		return false
	}
	_, ok := s[form]
	return ok
}

// sanitize lowercases s and drops every rune that is not a letter or digit.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

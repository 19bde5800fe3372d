// Package abbrev replaces journal and conference names with configured
// abbreviations.
package abbrev

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Table maps abbreviations to the full names they stand for.
// It is read-only once built.
type Table struct {
	// Journals maps an abbreviation to one full journal name.
	Journals map[string]string
	// Conferences maps an abbreviation to the spellings of the conference name.
	Conferences map[string][]string

	journalKeys    []string
	conferenceKeys []string
}

// NewTable builds a table. The maps are not copied and must not be
// modified afterwards.
func NewTable(journals map[string]string, conferences map[string][]string) *Table {
	t := &Table{Journals: journals, Conferences: conferences}
	for k := range journals {
		t.journalKeys = append(t.journalKeys, k)
	}
	for k := range conferences {
		t.conferenceKeys = append(t.conferenceKeys, k)
	}
	// Sorted keys make the first match deterministic.
	sort.Strings(t.journalKeys)
	sort.Strings(t.conferenceKeys)
	return t
}

// Empty reports whether the table has no abbreviations at all.
func (t *Table) Empty() bool {
	return t == nil || (len(t.Journals) == 0 && len(t.Conferences) == 0)
}

// Normalize prepares a name for comparison: NFC form, lowercase, every rune
// that is not a letter, digit or space removed, then trimmed.
// "J. Applied Mech." becomes "j applied mech".
func Normalize(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// ResolveJournal returns the abbreviation whose full journal name equals
// name after normalization.
func (t *Table) ResolveJournal(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	target := Normalize(name)
	if target == "" {
		return "", false
	}
	for _, abbr := range t.journalKeys {
		if Normalize(t.Journals[abbr]) == target {
			return abbr, true
		}
	}
	return "", false
}

// ResolveConference returns the abbreviation having a full-name variant
// equal to name after normalization.
func (t *Table) ResolveConference(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	target := Normalize(name)
	if target == "" {
		return "", false
	}
	for _, abbr := range t.conferenceKeys {
		for _, variant := range t.Conferences[abbr] {
			if Normalize(variant) == target {
				return abbr, true
			}
		}
	}
	return "", false
}

// ResolveConferenceLoose is the substring variant of ResolveConference used
// for inproceedings booktitles. It matches when the normalized abbreviation,
// or any normalized variant, occurs anywhere inside the normalized name, so
// "Proceedings of the 37th International Conference on Machine Learning"
// resolves through the variant "International Conference on Machine Learning".
func (t *Table) ResolveConferenceLoose(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	target := Normalize(name)
	if target == "" {
		return "", false
	}
	for _, abbr := range t.conferenceKeys {
		if a := Normalize(abbr); a != "" && strings.Contains(target, a) {
			return abbr, true
		}
		for _, variant := range t.Conferences[abbr] {
			if v := Normalize(variant); v != "" && strings.Contains(target, v) {
				return abbr, true
			}
		}
	}
	return "", false
}

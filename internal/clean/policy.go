package clean

import (
	"sort"
	"strings"
)

// AuthorOrEditor is reported when an entry of an either-or type has
// neither an author nor an editor.
const AuthorOrEditor = "author or editor"

// FallbackType supplies the required fields of unknown entry types.
const FallbackType = "misc"

// Policy says which fields each entry type requires. Only required fields
// survive cleaning. A Policy is immutable; With returns a modified copy.
type Policy struct {
	required map[string]map[string]struct{}
	// eitherOr lists the types where author and editor substitute for
	// each other.
	eitherOr map[string]struct{}
}

// defaultRequired is the table used by DefaultPolicy.
var defaultRequired = map[string][]string{
	"article":       {"author", "title", "journal", "year", "volume", "number", "pages"},
	"book":          {"author", "editor", "title", "year", "publisher"},
	"incollection":  {"author", "title", "booktitle", "publisher", "year", "pages"},
	"inproceedings": {"author", "title", "booktitle", "year"},
	"proceedings":   {"author", "editor", "title", "year"},
	"booklet":       {"title", "year"},
	"manual":        {"title", "year"},
	"techreport":    {"author", "title", "institution", "year"},
	"mastersthesis": {"author", "title", "school", "year"},
	"phdthesis":     {"author", "title", "school", "year"},
	"misc":          {"title", "year"},
	"unpublished":   {"author", "title", "note", "year"},
}

// DefaultPolicy returns the built-in required-field table.
// book and proceedings accept either an author or an editor.
func DefaultPolicy() Policy {
	return NewPolicy(defaultRequired, []string{"book", "proceedings"})
}

// NewPolicy builds a policy from a type → fields table. Type and field
// names are lowercased. The inputs are copied.
func NewPolicy(required map[string][]string, eitherOr []string) Policy {
	p := Policy{
		required: make(map[string]map[string]struct{}, len(required)),
		eitherOr: make(map[string]struct{}, len(eitherOr)),
	}
	for entryType, fields := range required {
		p.required[strings.ToLower(entryType)] = fieldSet(fields)
	}
	for _, entryType := range eitherOr {
		p.eitherOr[strings.ToLower(entryType)] = struct{}{}
	}
	return p
}

// With returns a copy of p where the listed types require exactly the
// given fields. Other types are unchanged.
func (p Policy) With(required map[string][]string) Policy {
	out := Policy{
		required: make(map[string]map[string]struct{}, len(p.required)+len(required)),
		eitherOr: p.eitherOr,
	}
	for entryType, fields := range p.required {
		out.required[entryType] = fields
	}
	for entryType, fields := range required {
		out.required[strings.ToLower(entryType)] = fieldSet(fields)
	}
	return out
}

// WithEitherOr returns a copy of p in which exactly the listed types accept
// either an author or an editor.
func (p Policy) WithEitherOr(types []string) Policy {
	return Policy{required: p.required, eitherOr: NewPolicy(nil, types).eitherOr}
}

// EitherOrTypes returns the types accepting author or editor, sorted.
func (p Policy) EitherOrTypes() []string {
	return sortedKeys(p.eitherOr)
}

// Required returns the required field set for an entry type. Unknown
// types use the FallbackType set. The returned map must not be modified.
func (p Policy) Required(entryType string) map[string]struct{} {
	entryType = strings.ToLower(entryType)
	if fields, ok := p.required[entryType]; ok {
		return fields
	}
	return p.required[FallbackType]
}

// EitherOr reports whether author and editor substitute for each other.
func (p Policy) EitherOr(entryType string) bool {
	_, ok := p.eitherOr[strings.ToLower(entryType)]
	return ok
}

// Fields returns the required fields of an entry type, sorted.
func (p Policy) Fields(entryType string) []string {
	return sortedKeys(p.Required(entryType))
}

// Types returns the entry types the policy knows, sorted.
func (p Policy) Types() []string {
	types := make([]string, 0, len(p.required))
	for t := range p.required {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func fieldSet(fields []string) map[string]struct{} {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			set[f] = struct{}{}
		}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package reference defines the core domain types for bibliography entries.
package reference

import "strings"

// Field is a single BibTeX field. Name keeps the spelling it was read with.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Entry represents one bibliography record: an entry type, a citation key,
// and an ordered list of fields. Field names are matched case-insensitively.
type Entry struct {
	Type   string  `json:"type"` // Lowercase entry type: article, book, inproceedings, ...
	Key    string  `json:"key"`  // Citation key, unique within a file
	Fields []Field `json:"fields"`
}

// New creates an entry with no fields.
func New(entryType, key string) Entry {
	return Entry{Type: strings.ToLower(entryType), Key: key}
}

// index returns the position of the named field, or -1.
func (e *Entry) index(name string) int {
	for i, f := range e.Fields {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

// Get returns the value of the named field and whether it exists.
func (e Entry) Get(name string) (string, bool) {
	if i := e.index(name); i >= 0 {
		return e.Fields[i].Value, true
	}
	return "", false
}

// Has reports whether the named field exists.
func (e Entry) Has(name string) bool {
	return e.index(name) >= 0
}

// Set replaces the value of an existing field (keeping its position and
// spelling) or appends a new one.
func (e *Entry) Set(name, value string) {
	if i := e.index(name); i >= 0 {
		e.Fields[i].Value = value
		return
	}
	e.Fields = append(e.Fields, Field{Name: name, Value: value})
}

// Names returns the field names in order.
func (e Entry) Names() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return names
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyFile overrides the required fields of some entry types and,
// when author_or_editor is present, the types that accept either.
//
//	required:
//	  article: [author, title, journal, year]
//	  misc: [title, year, howpublished]
//	author_or_editor: [book, proceedings]
type PolicyFile struct {
	Required       map[string][]string `yaml:"required"`
	AuthorOrEditor []string            `yaml:"author_or_editor,omitempty"`
}

// LoadPolicy reads a policy file. Unlike the abbreviation file, a policy
// path is always given explicitly, so a missing file is an error.
func LoadPolicy(path string) (*PolicyFile, error) {
	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("reading policy: %w", err)
	}

	var p PolicyFile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing policy %s: %w", path, err)
	}
	for entryType, fields := range p.Required {
		if len(fields) == 0 {
			return nil, fmt.Errorf("policy %s: entry type %q lists no required fields", path, entryType)
		}
	}

	return &p, nil
}

// Package config loads bibfix configuration files: the abbreviation file,
// the global settings file, and required-field policy files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/bibfix/internal/abbrev"
	"github.com/matsen/bibfix/internal/titlecase"
)

const (
	// DefaultAbbreviationsFile is looked up in the working directory.
	DefaultAbbreviationsFile = "abbreviations.json"
	// DefaultManuscriptFile is scanned for citation keys.
	DefaultManuscriptFile = "main.tex"
)

// Abbreviations is the content of the abbreviation file.
type Abbreviations struct {
	Capitalize              []string            `json:"capitalize"`               // Terms never recased
	JournalAbbreviations    map[string]string   `json:"journal_abbreviations"`    // Abbreviation → full name
	ConferenceAbbreviations map[string][]string `json:"conference_abbreviations"` // Abbreviation → name variants

	path string
}

// Unconfigured is the state used when no abbreviation file exists.
// Recasing has no exceptions and nothing is abbreviated.
func Unconfigured() *Abbreviations {
	return &Abbreviations{}
}

// Configured reports whether the abbreviations were read from a file.
func (a *Abbreviations) Configured() bool {
	return a != nil && a.path != ""
}

// Path returns the file the abbreviations were read from.
func (a *Abbreviations) Path() string {
	if a == nil {
		return ""
	}
	return a.path
}

// Exceptions builds the title-case exception set.
func (a *Abbreviations) Exceptions() titlecase.ExceptionSet {
	if a == nil {
		return titlecase.BuildExceptions(nil)
	}
	return titlecase.BuildExceptions(a.Capitalize)
}

// Table builds the abbreviation lookup table.
func (a *Abbreviations) Table() *abbrev.Table {
	if a == nil {
		return abbrev.NewTable(nil, nil)
	}
	return abbrev.NewTable(a.JournalAbbreviations, a.ConferenceAbbreviations)
}

// LoadAbbreviations reads the abbreviation file at path.
// A missing file returns Unconfigured() and no error.
func LoadAbbreviations(path string) (*Abbreviations, error) {
	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return Unconfigured(), nil
		}
		return nil, fmt.Errorf("reading abbreviations: %w", err)
	}

	var a Abbreviations
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing abbreviations %s: %w", path, err)
	}
	a.path = path

	return &a, nil
}

// Starter returns a small abbreviation file to edit, as written by
// 'bibfix config init'.
func Starter() *Abbreviations {
	return &Abbreviations{
		Capitalize: []string{"Bayesian", "DNA", "Monte Carlo"},
		JournalAbbreviations: map[string]string{
			"J. Mach. Learn. Res.": "Journal of Machine Learning Research",
			"Nat. Methods":         "Nature Methods",
		},
		ConferenceAbbreviations: map[string][]string{
			"NeurIPS": {"Advances in Neural Information Processing Systems", "Neural Information Processing Systems"},
			"ICML":    {"International Conference on Machine Learning"},
		},
	}
}

// Save writes the abbreviations to path as indented JSON. Unless overwrite
// is set, an existing file is left alone and the error wraps os.ErrExist.
func (a *Abbreviations) Save(path string, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(ExpandPath(path), flags, 0644)
	if err != nil {
		return fmt.Errorf("writing abbreviations: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(a); err != nil {
		f.Close()
		return fmt.Errorf("encoding abbreviations: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing abbreviations: %w", err)
	}
	a.path = path

	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}

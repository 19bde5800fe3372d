// Package clean reduces bibliography entries to their required fields and
// normalizes what remains.
//
// For every entry the Cleaner keeps only the fields its type requires,
// normalizes the month, optionally re-cases the title and abbreviates the
// venue, truncates the author list, and reports required fields that are
// missing. Input entries are never modified; a new entry is built.
package clean

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matsen/bibfix/internal/abbrev"
	"github.com/matsen/bibfix/internal/author"
	"github.com/matsen/bibfix/internal/citekey"
	"github.com/matsen/bibfix/internal/month"
	"github.com/matsen/bibfix/internal/reference"
	"github.com/matsen/bibfix/internal/titlecase"
	"github.com/rs/zerolog"
)

// NoLimit disables author truncation.
const NoLimit = -1

// Options control the optional normalizations.
type Options struct {
	MaxAuthors   int                    // NoLimit (or any negative value) keeps every author
	RecaseTitles bool                   // Sentence-case titles of non-book entries
	Exceptions   titlecase.ExceptionSet // Terms never recased
	Abbreviate   bool                   // Replace journal/booktitle with abbreviations
	Table        *abbrev.Table          // Abbreviations; nil disables abbreviation
	Logger       *zerolog.Logger        // Debug events; nil discards them
}

// Cleaner applies a Policy and Options to entries.
type Cleaner struct {
	policy Policy
	opts   Options
	log    zerolog.Logger
}

// New creates a Cleaner.
func New(policy Policy, opts Options) *Cleaner {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Cleaner{policy: policy, opts: opts, log: log}
}

// Result is the outcome of cleaning one entry.
type Result struct {
	Entry   reference.Entry // Cleaned entry
	Missing []string        // Missing required fields, sorted
	Warning string          // Empty when nothing is missing
	Changes []string        // Human-readable list of rewrites applied
}

// Reconcile cleans a single entry.
func (c *Cleaner) Reconcile(e reference.Entry) Result {
	entryType := strings.ToLower(e.Type)
	required := c.policy.Required(entryType)
	eitherOr := c.policy.EitherOr(entryType)

	log := c.log.With().Str("key", e.Key).Str("type", entryType).Logger()
	log.Debug().Msg("processing entry")

	out := reference.New(entryType, e.Key)
	found := make(map[string]bool)
	hasAuthorOrEditor := false
	var dropped []string

	for _, f := range e.Fields {
		name := strings.ToLower(f.Name)
		if eitherOr && (name == "author" || name == "editor") {
			hasAuthorOrEditor = true
		}
		if _, ok := required[name]; !ok {
			dropped = append(dropped, name)
			continue
		}
		out.Set(name, f.Value)
		found[name] = true
	}
	if len(dropped) > 0 {
		log.Debug().Strs("fields", dropped).Strs("kept", out.Names()).Msg("removed fields")
	}

	res := Result{}

	if v, ok := out.Get("month"); ok {
		if m := month.Normalize(v); m != v {
			out.Set("month", m)
			res.Changes = append(res.Changes, fmt.Sprintf("month %q -> %q", v, m))
		}
	}

	if v, ok := out.Get("title"); ok && c.opts.RecaseTitles && entryType != "book" {
		if t := titlecase.Apply(v, c.opts.Exceptions); t != v {
			out.Set("title", t)
			res.Changes = append(res.Changes, "recased title")
			log.Debug().Str("title", t).Msg("recased title")
		}
	}

	if c.opts.Abbreviate && !c.opts.Table.Empty() {
		res.Changes = append(res.Changes, c.abbreviate(&out, log)...)
	}

	if v, ok := out.Get("author"); ok {
		if a := author.Truncate(v, c.opts.MaxAuthors); a != v {
			out.Set("author", a)
			res.Changes = append(res.Changes, fmt.Sprintf("truncated authors from %d to %d", author.Count(v), c.opts.MaxAuthors))
			log.Debug().Int("authors", author.Count(v)).Int("max", c.opts.MaxAuthors).Msg("truncated authors")
		}
	}

	res.Entry = out
	res.Missing = missingFields(required, found, eitherOr, hasAuthorOrEditor)
	if len(res.Missing) > 0 {
		res.Warning = fmt.Sprintf("Entry '%s' missing: %s", e.Key, strings.Join(res.Missing, ", "))
		log.Debug().Strs("missing", res.Missing).Msg("missing required fields")
	}
	return res
}

// abbreviate replaces venue names in out. article entries need an exact
// normalized match; inproceedings booktitles match on substrings.
func (c *Cleaner) abbreviate(out *reference.Entry, log zerolog.Logger) []string {
	var changes []string
	replace := func(field string, resolve func(string) (string, bool)) {
		v, ok := out.Get(field)
		if !ok {
			return
		}
		abbr, ok := resolve(v)
		if !ok || abbr == v {
			return
		}
		out.Set(field, abbr)
		changes = append(changes, fmt.Sprintf("abbreviated %s %q -> %q", field, v, abbr))
		log.Debug().Str("field", field).Str("from", v).Str("to", abbr).Msg("abbreviated venue")
	}

	table := c.opts.Table
	switch out.Type {
	case "article":
		replace("journal", table.ResolveJournal)
		replace("booktitle", table.ResolveConference)
	case "inproceedings":
		replace("booktitle", table.ResolveConferenceLoose)
	}
	return changes
}

// missingFields computes required − found, sorted. For either-or types
// author and editor are never reported individually; AuthorOrEditor is
// reported when neither was present.
func missingFields(required map[string]struct{}, found map[string]bool, eitherOr, hasAuthorOrEditor bool) []string {
	var missing []string
	for name := range required {
		if found[name] {
			continue
		}
		if eitherOr && (name == "author" || name == "editor") {
			continue
		}
		missing = append(missing, name)
	}
	if eitherOr && !hasAuthorOrEditor {
		missing = append(missing, AuthorOrEditor)
	}
	sort.Strings(missing)
	return missing
}

// Summary is the outcome of cleaning a whole file.
type Summary struct {
	Entries  []reference.Entry // Cleaned entries, in input order
	Results  []Result          // One per cleaned entry
	Warnings []string          // Missing-field warnings, in input order
	Dropped  []string          // Keys removed by citation filtering
}

// Run filters entries by keys (nil keeps everything) and cleans the rest
// in input order.
func (c *Cleaner) Run(entries []reference.Entry, keys citekey.Set) Summary {
	kept, dropped := Filter(entries, keys)
	if keys != nil {
		c.log.Info().Int("kept", len(kept)).Int("dropped", len(dropped)).Msg("filtered entries by citation keys")
	}

	s := Summary{Dropped: dropped}
	for _, e := range kept {
		res := c.Reconcile(e)
		s.Entries = append(s.Entries, res.Entry)
		s.Results = append(s.Results, res)
		if res.Warning != "" {
			s.Warnings = append(s.Warnings, res.Warning)
		}
	}
	return s
}

// Filter keeps the entries whose key is in keys. A nil set keeps all
// entries. Order is preserved.
func Filter(entries []reference.Entry, keys citekey.Set) (kept []reference.Entry, dropped []string) {
	if keys == nil {
		return entries, nil
	}
	for _, e := range entries {
		if keys.Has(e.Key) {
			kept = append(kept, e)
		} else {
			dropped = append(dropped, e.Key)
		}
	}
	return kept, dropped
}

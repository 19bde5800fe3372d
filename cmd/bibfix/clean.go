package main

import (
	"errors"
	"strconv"
	"strings"

	"github.com/matsen/bibfix/internal/bibtex"
	"github.com/matsen/bibfix/internal/citekey"
	"github.com/matsen/bibfix/internal/clean"
	"github.com/matsen/bibfix/internal/config"
	"github.com/matsen/bibfix/internal/reference"
	"github.com/matsen/bibfix/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/encoding"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file.bib>",
	Short: "Write a cleaned copy of a BibTeX file",
	Long: `Write a cleaned copy of a BibTeX file.

Only the fields required for each entry type are kept. Months are
normalized, long author lists truncated, and required fields that are
missing are listed after writing. The output goes next to the input
with a _cleaned suffix unless --output is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func init() {
	addCleaningFlags(cleanCmd)
	cleanCmd.Flags().StringP("output", "o", "", "Output file (default: <input>_cleaned.bib)")
	cleanCmd.Flags().String("report", "", "Also write missing-field warnings to this JSONL file")
	cleanCmd.Flags().Bool("json", false, "Print the summary as JSON")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	input := args[0]
	output, _ := cmd.Flags().GetString("output")
	report, _ := cmd.Flags().GetString("report")
	asJSON, _ := cmd.Flags().GetBool("json")
	if output == "" {
		output = bibtex.CleanedPath(input)
	}

	enc, err := fileEncoding(settings)
	if err != nil {
		return err
	}
	summary, err := cleanFile(settings, input, enc)
	if err != nil {
		return err
	}

	if err := bibtex.WriteFile(output, summary.Entries, enc); err != nil {
		return withExit(ExitError, "%v", err)
	}
	warnings := storage.WarningsFrom(summary.Results)
	if report != "" {
		if err := storage.WriteAll(report, warnings); err != nil {
			return withExit(ExitError, "%v", err)
		}
	}

	w := cmd.OutOrStdout()
	if asJSON {
		if warnings == nil {
			warnings = []storage.Warning{}
		}
		changes := make(map[string][]string)
		for _, r := range summary.Results {
			if len(r.Changes) > 0 {
				changes[r.Entry.Key] = r.Changes
			}
		}
		return outputJSON(w, CleanResponse{
			Output:   output,
			Entries:  len(summary.Entries),
			Dropped:  summary.Dropped,
			Changes:  changes,
			Warnings: warnings,
		})
	}

	outputHuman(w, "Wrote %d entries to %s\n", len(summary.Entries), output)
	outputWarnings(w, summary.Warnings)
	return nil
}

// cleanFile parses input and runs it through a Cleaner configured from v.
// A nil enc reads the input as UTF-8.
func cleanFile(v *viper.Viper, input string, enc encoding.Encoding) (clean.Summary, error) {
	cleaner, keys, err := newCleaner(v)
	if err != nil {
		return clean.Summary{}, err
	}

	entries, err := parseInput(input, enc)
	if err != nil {
		return clean.Summary{}, err
	}
	logger.Debug().Str("path", input).Int("entries", len(entries)).Msg("parsed bibliography")

	return cleaner.Run(entries, keys), nil
}

// parseInput maps parser failures to data errors.
func parseInput(path string, enc encoding.Encoding) ([]reference.Entry, error) {
	entries, err := bibtex.ParseFile(path, enc)
	if err != nil {
		var perr *bibtex.ParseError
		switch {
		case errors.Is(err, bibtex.ErrInputNotFound):
			return nil, withExit(ExitDataError, "%v", err)
		case errors.As(err, &perr):
			return nil, withExit(ExitDataError, "parsing %s: %v", path, err)
		default:
			return nil, withExit(ExitDataError, "%v", err)
		}
	}
	return entries, nil
}

// fileEncoding resolves the encoding setting of v.
func fileEncoding(v *viper.Viper) (encoding.Encoding, error) {
	enc, err := bibtex.LookupEncoding(v.GetString(keyEncoding))
	if err != nil {
		return nil, withExit(ExitError, "--encoding: %v", err)
	}
	return enc, nil
}

// newCleaner builds the policy, tables and citation filter from v.
// A nil key set disables filtering.
func newCleaner(v *viper.Viper) (*clean.Cleaner, citekey.Set, error) {
	raw := v.GetString(keyMaxAuthors)
	maxAuthors, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, nil, withExit(ExitError, "invalid max-authors value %q: want a positive number, or -1 to keep every author", raw)
	}
	if maxAuthors == 0 {
		return nil, nil, withExit(ExitError, "--max-authors must be positive, or -1 to keep every author")
	}

	abbrevs, err := config.LoadAbbreviations(v.GetString(keyAbbreviations))
	if err != nil {
		return nil, nil, withExit(ExitConfigError, "%v", err)
	}
	if abbrevs.Configured() {
		logger.Debug().Str("path", abbrevs.Path()).Msg("loaded abbreviations")
	} else {
		logger.Debug().Str("path", v.GetString(keyAbbreviations)).Msg("no abbreviation file, abbreviation and capitalization exceptions disabled")
	}

	policy := clean.DefaultPolicy()
	if path := v.GetString(keyPolicy); path != "" {
		pf, err := config.LoadPolicy(path)
		if err != nil {
			return nil, nil, withExit(ExitConfigError, "%v", err)
		}
		policy = policy.With(pf.Required)
		if pf.AuthorOrEditor != nil {
			policy = policy.WithEitherOr(pf.AuthorOrEditor)
		}
	}

	var keys citekey.Set
	if v.GetBool(keyFilterCited) {
		manuscript := v.GetString(keyManuscript)
		keys, err = citekey.ExtractFile(manuscript)
		if err != nil {
			return nil, nil, withExit(ExitDataError, "%v", err)
		}
		if keys == nil {
			logger.Warn().Str("path", manuscript).Msg("manuscript not found, keeping all entries")
		}
	}

	cleaner := clean.New(policy, clean.Options{
		MaxAuthors:   maxAuthors,
		RecaseTitles: v.GetBool(keyRecaseTitles),
		Exceptions:   abbrevs.Exceptions(),
		Abbreviate:   v.GetBool(keyAbbreviate),
		Table:        abbrevs.Table(),
		Logger:       &logger,
	})
	return cleaner, keys, nil
}

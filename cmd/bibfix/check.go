package main

import (
	"github.com/matsen/bibfix/internal/storage"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.bib>",
	Short: "Report missing required fields without writing anything",
	Long: `Report missing required fields without writing anything.

Exits with status 3 when any entry lacks a required field, so check can
guard a build or a pre-commit hook.

With --baseline, warnings already listed in a report written by
'clean --report' are accepted and only new ones are reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	addCleaningFlags(checkCmd)
	checkCmd.Flags().Bool("json", false, "Print the warnings as JSON")
	checkCmd.Flags().String("baseline", "", "JSONL report of accepted warnings (from clean --report)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	baselinePath, _ := cmd.Flags().GetString("baseline")

	enc, err := fileEncoding(settings)
	if err != nil {
		return err
	}
	summary, err := cleanFile(settings, args[0], enc)
	if err != nil {
		return err
	}

	warnings := storage.WarningsFrom(summary.Results)
	if baselinePath != "" {
		baseline, err := storage.ReadAll(baselinePath)
		if err != nil {
			return withExit(ExitConfigError, "reading baseline: %v", err)
		}
		fresh := storage.NewSince(baseline, warnings)
		logger.Info().
			Str("baseline", baselinePath).
			Int("accepted", len(warnings)-len(fresh)).
			Int("new", len(fresh)).
			Msg("compared with baseline")
		warnings = fresh
	}

	w := cmd.OutOrStdout()
	if asJSON {
		if warnings == nil {
			warnings = []storage.Warning{}
		}
		if err := outputJSON(w, CheckResponse{Entries: len(summary.Entries), Warnings: warnings}); err != nil {
			return err
		}
	} else {
		messages := make([]string, 0, len(warnings))
		for _, warning := range warnings {
			messages = append(messages, warning.Message)
		}
		outputWarnings(w, messages)
	}

	if len(warnings) > 0 {
		return &exitError{code: ExitDataError}
	}
	return nil
}

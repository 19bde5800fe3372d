package main

import (
	"github.com/matsen/bibfix/internal/citekey"
	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys [manuscript.tex]",
	Short: "List the citation keys of a LaTeX manuscript",
	Long: `List the keys cited with \cite, \citet and \citep in a LaTeX manuscript,
sorted, one per line. Commented-out lines are ignored. Without an
argument the configured manuscript is read.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKeys,
}

func init() {
	keysCmd.Flags().Bool("json", false, "Print the keys as JSON")
	rootCmd.AddCommand(keysCmd)
}

func runKeys(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	manuscript := settings.GetString(keyManuscript)
	if len(args) == 1 {
		manuscript = args[0]
	}

	keys, err := citekey.ExtractFile(manuscript)
	if err != nil {
		return withExit(ExitDataError, "%v", err)
	}
	if keys == nil {
		return withExit(ExitDataError, "manuscript not found: %s", manuscript)
	}

	w := cmd.OutOrStdout()
	sorted := keys.Sorted()
	if asJSON {
		if sorted == nil {
			sorted = []string{}
		}
		return outputJSON(w, KeysResponse{Manuscript: manuscript, Keys: sorted})
	}
	for _, key := range sorted {
		outputHuman(w, "%s\n", key)
	}
	return nil
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/matsen/bibfix/internal/clean"
	"github.com/matsen/bibfix/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and create bibfix configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings as YAML",
	Long: `Print the effective settings as YAML, after applying the global config
file and BIBFIX_* environment variables.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPolicyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Print the required fields for every entry type as YAML",
	Args:  cobra.NoArgs,
	RunE:  runConfigPolicy,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter abbreviation file",
	Long: `Write a starter abbreviation file to edit, at the --abbreviations path
(default: abbreviations.json in the working directory).

An existing file is kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().String(keyAbbreviations, config.DefaultAbbreviationsFile, "Abbreviation file to create")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPolicyCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(currentSettings(settings))
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// runConfigPolicy prints the default policy in the format read by --policy,
// as a starting point for a custom one.
func runConfigPolicy(cmd *cobra.Command, args []string) error {
	policy := clean.DefaultPolicy()
	doc := config.PolicyFile{
		Required:       make(map[string][]string),
		AuthorOrEditor: policy.EitherOrTypes(),
	}
	for _, entryType := range policy.Types() {
		doc.Required[entryType] = policy.Fields(entryType)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding policy: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path := settings.GetString(keyAbbreviations)

	if err := config.Starter().Save(path, force); err != nil {
		if errors.Is(err, os.ErrExist) {
			return withExit(ExitError, "%s already exists, use --force to overwrite it", path)
		}
		return withExit(ExitError, "%v", err)
	}
	logger.Debug().Str("path", path).Bool("force", force).Msg("wrote starter abbreviations")

	outputHuman(cmd.OutOrStdout(), "Wrote starter abbreviations to %s\n", path)
	return nil
}

// Package main provides the bibfix CLI entry point.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/matsen/bibfix/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// settings holds the effective configuration of the running command.
	settings *viper.Viper
	// logger is configured from --verbose and LOG_LEVEL before each command.
	logger = logging.Nop
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(reportError(os.Stderr, err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibfix",
	Short: "Normalize BibTeX bibliographies",
	Long: `bibfix reduces a BibTeX file to the fields each entry type requires
and normalizes what remains.

It reports missing required fields, truncates long author lists,
normalizes months, and can optionally sentence-case titles, abbreviate
journal and conference names, and keep only entries cited in a LaTeX
manuscript.

Settings come from flags, BIBFIX_* environment variables (a .env file is
read first), and ~/.config/bibfix/config.yml, in that order of precedence.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Log every change at debug level")
	rootCmd.PersistentFlags().String("config", "", "Global config file (default: ~/.config/bibfix/config.yml)")
	rootCmd.Version = Version
}

// setup loads .env, the global config, and the logger for every command.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	v, err := loadSettings(cmd)
	if err != nil {
		return withExit(ExitConfigError, "loading config: %v", err)
	}
	settings = v
	logger = logging.New(cmd.ErrOrStderr(), logging.Level(v.GetBool("verbose")))
	return nil
}

// exitError carries the process exit code for a failed command.
// An empty message means the command already reported the failure.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

// withExit builds an error that makes main exit with code.
func withExit(code int, format string, args ...interface{}) error {
	return &exitError{code: code, msg: fmt.Sprintf(format, args...)}
}

// reportError prints err to w and returns the exit code for it.
func reportError(w io.Writer, err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintf(w, "error: %s\n", ee.msg)
		}
		return ee.code
	}
	// Cobra errors such as unknown flags or missing arguments
	fmt.Fprintf(w, "Error: %s\n", err)
	return ExitError
}

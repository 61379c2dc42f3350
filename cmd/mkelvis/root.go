// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"mkelvis-cli/internal/config"
	"mkelvis-cli/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// cfg is the configuration loaded during initialization. Commands read
	// it through loadedConfig, which falls back to defaults.
	cfg *config.Config

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "mkelvis",
		Short: "Generate surfraw elvi from option directives",
		Long: TitleStyle.Render("mkelvis") + SubtitleStyle.Render(" - Generate surfraw elvi from option directives") + `

mkelvis compiles declarative option directives (--yes-no, --enum, --list,
--flag, --alias, ...) into a ready-to-install surfraw elvis: a POSIX shell
script that parses its own options, validates enum values, assembles the
search URL and hands it to the surfraw dispatch framework.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Pick an elvis name, its base URL and its search URL
  2. Declare options as directives
  3. Install the generated script into your surfraw elvi directory

` + SubtitleStyle.Render("Examples:") + `
  mkelvis gen example example.com 'example.com/search?q='
  mkelvis gen example example.com 'example.com/search?' \
      --enum sort:relevance:relevance,date --map sort:s --query-parameter q
  mkelvis opensearch https://example.com/opensearch.xml
  mkelvis config show       Show current configuration`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/mkelvis/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(opensearchCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		// Errors without a code are cobra's own: unknown flags, missing
		// arguments. Those are usage errors.
		os.Exit(ExitUsage)
	}
	os.Exit(ExitOK)
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	loaded, err := config.NewProvider().Load(context.Background(), config.LoadOptions{
		ConfigFilePath: cfgFile,
	})
	if err != nil {
		renderIssue(issue.ConfigLoadFailedId)
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}
	cfg = loaded

	// Apply verbose from config if not set via flag
	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// loadedConfig returns the configuration loaded at startup, or defaults when
// loading failed (the warning has already been printed).
func loadedConfig() *config.Config {
	if cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderIssue prints the markdown card for id to stderr. Card rendering is
// best-effort; the error itself is always printed separately.
func renderIssue(id issue.Id) {
	rendered, err := issue.Get(id).Render("dark")
	if err != nil {
		return
	}
	fmt.Fprint(os.Stderr, rendered)
}

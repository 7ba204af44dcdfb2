// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for scanbridge.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/scanbridge/scanbridge/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	var inv invocation

	rootCmd := &cobra.Command{
		Use:   "scanbridge",
		Short: "Feed multi-module JVM and Android builds to a code analysis engine",
		Long: TitleStyle.Render("scanbridge") + SubtitleStyle.Render(" - Feed multi-module builds to a code analysis engine") + `

scanbridge reads a snapshot of a Gradle-style project graph (modules, source
sets, classpaths, Android variants), reduces it to the flat, module-prefixed
property map an analysis engine expects and runs the engine on it.

Snapshots are written in CUE. Without an argument every command reads
'scanbridge.cue' from the current directory.

` + SubtitleStyle.Render("Examples:") + `
  scanbridge tree                       Show the module tree
  scanbridge properties -f json         Print the analysis properties as JSON
  scanbridge analyze -D sonar.token=abc Run the analysis engine
  scanbridge analyze --dry-run          Print what would be analyzed
  scanbridge config init                Create a default configuration file`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(contextWithInvocation(cmd.Context(), inv))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&inv.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&inv.configPath, "config", "", "config file (default is $HOME/.config/scanbridge/config.cue)")

	rootCmd.AddCommand(
		newAnalyzeCommand(app),
		newPropertiesCommand(app),
		newTreeCommand(app),
		newConfigCommand(app),
		newVersionCommand(app),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}

	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
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

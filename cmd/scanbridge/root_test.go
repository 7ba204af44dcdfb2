// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/scanbridge/scanbridge/internal/issue"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q, want %q", got, "dev (built from source)")
		}
	})
}

func TestFormatErrorForDisplay(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk on fire")
	ae := issue.NewErrorContext().
		WithOperation("load project snapshot").
		WithResource("scanbridge.cue").
		WithSuggestion("Export the snapshot again").
		Wrap(cause).
		Build()

	plain := formatErrorForDisplay(ae, false)
	if !strings.Contains(plain, "Export the snapshot again") {
		t.Errorf("non-verbose output missing suggestion: %q", plain)
	}
	if strings.Contains(plain, "Error chain") {
		t.Errorf("non-verbose output shows the chain: %q", plain)
	}

	if verbose := formatErrorForDisplay(ae, true); !strings.Contains(verbose, "1. disk on fire") {
		t.Errorf("verbose output missing chain: %q", verbose)
	}

	if got := formatErrorForDisplay(cause, true); got != "disk on fire" {
		t.Errorf("formatErrorForDisplay(plain) = %q", got)
	}
}

func TestNewRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	app, err := NewApp(Dependencies{})
	if err != nil {
		t.Fatal(err)
	}
	root := NewRootCommand(app)
	for _, name := range []string{"analyze", "properties", "tree", "config", "version"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil || root.PersistentFlags().Lookup("verbose") == nil {
		t.Error("global flags not registered")
	}
}

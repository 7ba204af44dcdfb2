// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scanbridge/scanbridge/internal/config"
)

// newConfigCommand creates the `scanbridge config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage scanbridge configuration",
		Long: `Manage scanbridge configuration.

Configuration is read from, in order of precedence:
  - the file given with --config
  - Linux: ~/.config/scanbridge/config.cue
  - macOS: ~/Library/Application Support/scanbridge/config.cue
  - Windows: %APPDATA%\scanbridge\config.cue
  - .scanbridge.cue in the current directory

Any key can be overridden with a SCANBRIDGE_ environment variable, for
example SCANBRIDGE_ENGINE_COMMAND.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := showConfig(cmd.Context(), app); err != nil {
				return app.fail(cmd, err)
			}
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cmd.Context(), app); err != nil {
				return app.fail(cmd, err)
			}
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath(cmd.Context())
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	source := SubtitleStyle.Render("(using defaults)")
	if cfg.Path != "" {
		source = cfg.Path
	}
	fmt.Fprintf(app.stderr, "%s: %s\n", CmdStyle.Render("Config file"), source)
	fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
	return nil
}

func initConfig(ctx context.Context, app *App) error {
	path, err := configFilePath(ctx)
	if err != nil {
		return err
	}

	created, err := config.CreateDefaultConfig(path)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}

	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

// configFilePath is the --config file, or the platform default.
func configFilePath(ctx context.Context) (string, error) {
	if p := invocationFromContext(ctx).configPath; p != "" {
		return p, nil
	}
	return config.FilePath()
}

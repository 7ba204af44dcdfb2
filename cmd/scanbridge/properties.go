// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/scanbridge/scanbridge/internal/config"
	"github.com/scanbridge/scanbridge/internal/watch"
)

type propertiesFlags struct {
	pipelineFlags
	format        string
	watch         bool
	watchPatterns []string
}

func newPropertiesCommand(app *App) *cobra.Command {
	var flags propertiesFlags

	cmd := &cobra.Command{
		Use:   "properties [snapshot]",
		Short: "Print the analysis properties of a snapshot",
		Long: `Print the fully materialized analysis properties without running the engine.
Keys are sorted, so the output of an unchanged snapshot is byte-identical
between runs.

With --watch the properties are printed again whenever the snapshot or the
configuration file changes, until interrupted. Files next to them whose
base name matches a --watch-pattern glob (default "*.cue") also trigger a
new run, so a configuration written by "config init" is picked up.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProperties(cmd, app, &flags, args)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format: properties, json, yaml or toml (default from config)")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "print again whenever the snapshot or configuration changes")
	cmd.Flags().StringArrayVar(&flags.watchPatterns, "watch-pattern", []string{"*.cue"}, "base-name glob of sibling files that also trigger --watch (repeatable)")

	return cmd
}

func runProperties(cmd *cobra.Command, app *App, flags *propertiesFlags, args []string) error {
	ctx := cmd.Context()

	cfgPath, err := printProperties(ctx, app, flags, args)
	if err != nil {
		return app.fail(cmd, err)
	}
	if !flags.watch {
		return nil
	}

	wcfg := watchConfig(app, flags, args, cfgPath)
	w, err := watch.New(wcfg)
	if err != nil {
		return app.fail(cmd, err)
	}
	app.logger.Info("watching for changes", "files", wcfg.Inputs, "patterns", wcfg.Patterns)
	if err := w.Run(ctx); err != nil {
		return app.fail(cmd, err)
	}
	return nil
}

// watchConfig watches the snapshot and the configuration file in use. The
// local configuration file is watched as well when none was loaded, so
// creating one starts a new run.
func watchConfig(app *App, flags *propertiesFlags, args []string, cfgPath string) watch.Config {
	inputs := []string{snapshotPath(args)}
	if cfgPath != "" {
		inputs = append(inputs, cfgPath)
	} else {
		inputs = append(inputs, config.LocalConfigFileName)
	}
	return watch.Config{
		Inputs:   inputs,
		Patterns: flags.watchPatterns,
		Logger:   app.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			app.logger.Info("inputs changed, reducing again", "files", changed)
			if _, err := printProperties(ctx, app, flags, args); err != nil {
				renderServiceError(app.stderr, asServiceError(err, invocationFromContext(ctx).verbose))
			}
			return nil
		},
	}
}

// printProperties runs the pipeline once and writes the map to stdout. It
// returns the configuration file that was used, if any.
func printProperties(ctx context.Context, app *App, flags *propertiesFlags, args []string) (string, error) {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return "", err
	}
	format, err := outputFormat(flags.format, cfg)
	if err != nil {
		return cfg.Path, err
	}
	req, err := flags.request(args, cfg)
	if err != nil {
		return cfg.Path, err
	}

	report, err := app.Analysis.Properties(ctx, req)
	if err != nil {
		return cfg.Path, err
	}
	app.Diagnostics.Render(ctx, report.Diagnostics, app.stderr)

	return cfg.Path, report.Properties.Encode(app.stdout, format)
}

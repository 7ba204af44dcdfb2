// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanbridge/scanbridge/internal/config"
	"github.com/scanbridge/scanbridge/internal/engine"
	"github.com/scanbridge/scanbridge/internal/props"
)

type analyzeFlags struct {
	pipelineFlags
	dryRun bool
	format string
}

func newAnalyzeCommand(app *App) *cobra.Command {
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze [snapshot]",
		Short: "Reduce the snapshot and run the analysis engine",
		Long: `Reduce the project snapshot to analysis properties and run the configured
analysis engine on them. The engine's exit status becomes the exit status of
scanbridge. Nothing is run when any module fails to resolve.

The engine command comes from the 'engine.command' configuration key. The
properties file it reads is exported as $` + engine.PropertiesEnv + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, app, &flags, args)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the properties instead of running the engine")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "dry-run output format: properties, json, yaml or toml (default from config)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, app *App, flags *analyzeFlags, args []string) error {
	ctx := cmd.Context()

	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return app.fail(cmd, err)
	}
	req, err := flags.request(args, cfg)
	if err != nil {
		return app.fail(cmd, err)
	}
	eng, err := newEngine(app, cfg, flags)
	if err != nil {
		return app.fail(cmd, err)
	}

	report, err := app.Analysis.Analyze(ctx, req, eng)
	if err != nil {
		return app.fail(cmd, err)
	}
	app.Diagnostics.Render(ctx, report.Diagnostics, app.stderr)

	if flags.dryRun || report.Engine.Skipped {
		return nil
	}
	if !report.Engine.ExitCode.IsSuccess() {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		fmt.Fprintf(app.stderr, "%s analysis engine exited with status %d\n", ErrorStyle.Render("✗"), report.Engine.ExitCode)
		return &ExitError{Code: int(report.Engine.ExitCode)}
	}

	fmt.Fprintf(app.stderr, "%s Analysis finished (%s)\n", SuccessStyle.Render("✓"), report.Engine.PropertiesFile)
	return nil
}

// newEngine picks the dump engine for --dry-run and the process engine otherwise.
func newEngine(app *App, cfg *config.Config, flags *analyzeFlags) (engine.Engine, error) {
	if flags.dryRun {
		format, err := outputFormat(flags.format, cfg)
		if err != nil {
			return nil, err
		}
		return &engine.DumpEngine{Out: app.stdout, Format: format}, nil
	}

	return &engine.ProcessEngine{
		Command:        cfg.Engine.Command,
		WorkingDir:     cfg.Engine.WorkingDir,
		PropertiesFile: cfg.Engine.PropertiesFile,
		Stdout:         app.stdout,
		Stderr:         app.stderr,
		Env:            os.Environ(),
		Logger:         app.logger,
	}, nil
}

// outputFormat resolves a --format flag against the configured default.
func outputFormat(flag string, cfg *config.Config) (props.Format, error) {
	if flag == "" {
		return cfg.Output.Format, nil
	}
	return props.ParseFormat(flag)
}

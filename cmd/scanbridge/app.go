// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/scanbridge/scanbridge/internal/analyzer"
	"github.com/scanbridge/scanbridge/internal/config"
	"github.com/scanbridge/scanbridge/internal/engine"
	"github.com/scanbridge/scanbridge/internal/issue"
	"github.com/scanbridge/scanbridge/internal/model"
)

type (
	invocationContextKey struct{}

	// invocation holds the global flag values of one CLI run.
	invocation struct {
		configPath string
		verbose    bool
	}

	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: all Cobra command handlers receive an App reference and delegate
	// business logic through its service interfaces (Config, Analysis).
	App struct {
		Config      ConfigProvider
		Analysis    AnalysisService
		Diagnostics DiagnosticRenderer
		logger      *log.Logger
		stdout      io.Writer
		stderr      io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp. Tests can supply mock implementations
	// to isolate specific service behavior.
	Dependencies struct {
		Config      ConfigProvider
		Analysis    AnalysisService
		Diagnostics DiagnosticRenderer
		Logger      *log.Logger
		Stdout      io.Writer
		Stderr      io.Writer
	}

	// AnalysisService runs the snapshot pipeline. Implementations must not write
	// to stdout/stderr; diagnostics come back in the report for the CLI to render.
	AnalysisService interface {
		Tree(ctx context.Context, req analyzer.Request) (*analyzer.Report, error)
		Properties(ctx context.Context, req analyzer.Request) (*analyzer.Report, error)
		Analyze(ctx context.Context, req analyzer.Request, eng engine.Engine) (*analyzer.Report, error)
	}

	// DiagnosticRenderer renders structured diagnostics.
	DiagnosticRenderer interface {
		Render(ctx context.Context, diags []model.Diagnostic, stderr io.Writer)
	}

	// ConfigProvider loads configuration using explicit options.
	// This abstraction enables testing with custom config sources or mock implementations.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	defaultDiagnosticRenderer struct{}
)

// NewApp creates the CLI composition root.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Logger == nil {
		deps.Logger = log.NewWithOptions(deps.Stderr, log.Options{
			Prefix: config.AppName,
			Level:  log.InfoLevel,
		})
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Analysis == nil {
		deps.Analysis = analyzer.New(deps.Logger)
	}
	if deps.Diagnostics == nil {
		deps.Diagnostics = &defaultDiagnosticRenderer{}
	}

	return &App{
		Config:      deps.Config,
		Analysis:    deps.Analysis,
		Diagnostics: deps.Diagnostics,
		logger:      deps.Logger,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}, nil
}

func contextWithInvocation(ctx context.Context, inv invocation) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, invocationContextKey{}, inv)
}

func invocationFromContext(ctx context.Context) invocation {
	if v, ok := ctx.Value(invocationContextKey{}).(invocation); ok {
		return v
	}
	return invocation{}
}

// loadConfig loads the configuration named by --config and applies its log
// level. --verbose always wins over the configured level.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	inv := invocationFromContext(ctx)
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: inv.configPath})
	if err != nil {
		return nil, newServiceError(err, issue.ConfigLoadFailedId,
			ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, inv.verbose)+"\n")
	}

	if inv.verbose {
		a.logger.SetLevel(log.DebugLevel)
		return cfg, nil
	}
	level, err := log.ParseLevel(string(cfg.LogLevel))
	if err != nil {
		level = log.InfoLevel
	}
	a.logger.SetLevel(level)
	return cfg, nil
}

// fail renders err on stderr and turns it into a silent exit with code 1.
func (a *App) fail(cmd *cobra.Command, err error) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	renderServiceError(a.stderr, asServiceError(err, invocationFromContext(cmd.Context()).verbose))
	return &ExitError{Code: 1, Err: err}
}

func (r *defaultDiagnosticRenderer) Render(_ context.Context, diags []model.Diagnostic, stderr io.Writer) {
	for _, diag := range diags {
		prefix := WarningStyle.Render("warning")
		if diag.Severity == model.SeverityError {
			prefix = ErrorStyle.Render("error")
		}
		prefix += " " + CmdStyle.Render("["+diag.Code+"]")
		if diag.Module != "" {
			prefix += " " + modulePathStyle.Render(diag.Module)
		}

		if diag.Path != "" {
			_, _ = fmt.Fprintf(stderr, "%s: %s (%s)\n", prefix, diag.Message, diag.Path)
			continue
		}

		_, _ = fmt.Fprintf(stderr, "%s: %s\n", prefix, diag.Message)
	}
}

// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/shell"

	"github.com/scanbridge/scanbridge/internal/issue"
	"github.com/scanbridge/scanbridge/internal/props"
)

// PropertiesEnv names the variable holding the properties file path. It is
// exported to the engine and may be referenced in the command line.
const PropertiesEnv = "SCANBRIDGE_PROPERTIES"

// ProcessEngine runs an external scanner on a properties file.
type ProcessEngine struct {
	// Command is split into words with shell quoting rules; $VARS are
	// expanded from Env and PropertiesEnv.
	Command string
	// WorkingDir receives the properties file and is the scanner's working
	// directory. It defaults to sonar.working.directory, then to the
	// current directory.
	WorkingDir string
	// PropertiesFile is relative to WorkingDir unless absolute.
	PropertiesFile string
	Stdout         io.Writer
	Stderr         io.Writer
	// Env is the scanner's base environment, os.Environ() when nil.
	Env    []string
	Logger *log.Logger
}

// Run writes the properties file and runs the scanner. A non-zero scanner
// exit is returned in Result.ExitCode with a nil error.
func (p *ProcessEngine) Run(ctx context.Context, m props.Map) (Result, error) {
	if strings.TrimSpace(p.Command) == "" {
		return Result{}, issue.NewErrorContext().
			WithOperation("run analysis engine").
			WithSuggestions(
				"Set engine.command in the configuration file",
				"Use --dry-run to only write the properties",
			).
			WithIssue(issue.EngineNotConfiguredId).
			BuildError()
	}

	dir := p.workDir(m)
	file := p.PropertiesFile
	if file == "" {
		file = DefaultPropertiesFile
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(dir, file)
	}
	if err := writeFile(file, m, props.FormatProperties); err != nil {
		return Result{}, engineError(err)
	}

	env := p.Env
	if env == nil {
		env = os.Environ()
	}
	env = append(env[:len(env):len(env)], PropertiesEnv+"="+file)

	words, err := shell.Fields(p.Command, lookup(env))
	if err != nil {
		return Result{}, engineError(fmt.Errorf("invalid engine command %q: %w", p.Command, err))
	}
	if len(words) == 0 {
		return Result{}, engineError(fmt.Errorf("engine command %q expands to nothing", p.Command))
	}

	if p.Logger != nil {
		p.Logger.Debug("starting analysis engine", "command", words[0], "args", len(words)-1, "properties", file)
	}

	cmd := exec.CommandContext(ctx, words[0], words[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdout = p.Stdout
	cmd.Stderr = p.Stderr

	res := Result{PropertiesFile: file}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			res.ExitCode = ExitCode(exitErr.ExitCode())
			return res, nil
		}
		return Result{}, engineError(fmt.Errorf("failed to execute %s: %w", words[0], err))
	}
	return res, nil
}

func (p *ProcessEngine) workDir(m props.Map) string {
	if p.WorkingDir != "" {
		return p.WorkingDir
	}
	if wd := m[props.WorkingDirectory]; wd != "" {
		return wd
	}
	return "."
}

// lookup resolves variables from an environment slice, later entries
// winning.
func lookup(env []string) func(string) string {
	return func(name string) string {
		for i := len(env) - 1; i >= 0; i-- {
			if k, v, ok := strings.Cut(env[i], "="); ok && k == name {
				return v
			}
		}
		return ""
	}
}

func engineError(err error) error {
	return issue.NewErrorContext().
		WithOperation("run analysis engine").
		WithSuggestion("Check engine.command and that the scanner is installed").
		WithIssue(issue.EngineFailedId).
		Wrap(err).
		BuildError()
}

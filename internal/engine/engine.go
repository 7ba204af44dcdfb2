// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"

	"github.com/scanbridge/scanbridge/internal/model"
	"github.com/scanbridge/scanbridge/internal/props"
)

// DefaultPropertiesFile is the name of the properties file written into the
// working directory.
const DefaultPropertiesFile = "sonar-project.properties"

type (
	// ExitCode is the exit status reported by the engine. Zero means the
	// analysis succeeded.
	ExitCode int

	// Engine consumes a final property map.
	Engine interface {
		Run(ctx context.Context, m props.Map) (Result, error)
	}

	// Result describes one engine invocation. A non-zero ExitCode is a
	// normal outcome, not an error; errors are reserved for failures to
	// start the engine at all.
	Result struct {
		ExitCode ExitCode
		// PropertiesFile is where the map was written, empty when it went
		// to a stream.
		PropertiesFile string
		// Skipped is set when the engine was not invoked.
		Skipped     bool
		Diagnostics []model.Diagnostic
	}
)

// IsSuccess reports whether the engine exited with status zero.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// Invoke runs e unless the map asks to skip the analysis or is empty. A
// skip is reported as a warning diagnostic and exit code zero.
func Invoke(ctx context.Context, e Engine, m props.Map) (Result, error) {
	switch {
	case len(m) == 0:
		return skipped("no properties were produced, analysis skipped"), nil
	case m.Bool(props.Skip):
		return skipped(props.Skip + " is set, analysis skipped"), nil
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return e.Run(ctx, m)
}

func skipped(msg string) Result {
	return Result{
		Skipped:     true,
		Diagnostics: []model.Diagnostic{model.Warning(model.CodeAnalysisSkipped, model.RootPath, "", msg, nil)},
	}
}

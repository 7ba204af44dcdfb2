// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"fmt"

	"github.com/scanbridge/scanbridge/internal/issue"
)

// DependencyResolutionError reports a classpath entry that cannot be turned
// into a file. It is always fatal: a partial classpath corrupts analysis.
type DependencyResolutionError struct {
	Module        string
	Configuration string
	// Dependency is the artifact coordinate or reference that failed.
	Dependency string
	Reason     string
}

func (e *DependencyResolutionError) Error() string {
	return fmt.Sprintf("module %s: %s: cannot resolve %s: %s", e.Module, e.Configuration, e.Dependency, e.Reason)
}

func resolutionError(e *DependencyResolutionError) error {
	return issue.NewErrorContext().
		WithOperation("resolve classpath").
		WithResource(e.Module).
		WithSuggestion("Run the build's dependency resolution and export the snapshot again").
		WithIssue(issue.DependencyResolutionFailedId).
		Wrap(e).
		BuildError()
}

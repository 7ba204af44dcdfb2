// SPDX-License-Identifier: MPL-2.0

package reducer

import (
	"fmt"

	"github.com/scanbridge/scanbridge/internal/issue"
)

// ConflictError reports two declarations of the same key on one module
// that come from different origins and disagree.
type ConflictError struct {
	Module  string
	Key     string
	Values  [2]string
	Origins [2]string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("module %s: conflicting configuration for %s: %q from %s and %q from %s",
		e.Module, e.Key, e.Values[0], e.Origins[0], e.Values[1], e.Origins[1])
}

func conflictError(err error) error {
	return issue.NewErrorContext().
		WithOperation("reduce analysis properties").
		WithSuggestion("Declare each property once per module, or give both declarations the same value").
		WithIssue(issue.ConflictingConfigurationId).
		Wrap(err).
		BuildError()
}

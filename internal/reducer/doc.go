// SPDX-License-Identifier: MPL-2.0

// Package reducer folds the resolved module tree into a property plan.
//
// Every emitting module contributes computed defaults, the declarations it
// inherits from its ancestors and its own declarations, in increasing
// precedence. Invocation overrides apply to the root last. Module keys are
// namespaced by the dotted module id; keys that only make sense once per
// analysis stay at the root.
package reducer

// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown help
// pages for the failures a user can fix: missing or malformed snapshots,
// unresolvable dependencies, conflicting property declarations, and engine
// invocation problems.
package issue

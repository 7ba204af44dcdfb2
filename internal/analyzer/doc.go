// SPDX-License-Identifier: MPL-2.0

// Package analyzer runs the scanbridge pipeline: load the project snapshot,
// build and resolve the module tree, reduce it to a property plan,
// materialize the plan and hand the result to an analysis engine.
//
// The service never writes to stdout or stderr. Diagnostics are collected
// in the returned Report for the CLI to render.
package analyzer

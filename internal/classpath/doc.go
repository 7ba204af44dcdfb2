// SPDX-License-Identifier: MPL-2.0

// Package classpath collects the ordered classpath entries of each module and
// materializes planned properties into the final property map.
//
// Collection runs concurrently, one module per worker, and never touches
// task outputs: entries that come from another task or module stay deferred.
// Materialize runs once on a single goroutine after every module is resolved.
// It expands deferred entries in declaration order, checks the task graph for
// cycles, drops computed paths that do not exist and joins lists as CSV.
package classpath

// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// The helpers build project workspaces on disk (MustMkdirAll, MustWriteFile,
// WriteTree) for tests that load snapshots and resolve source directories.
package testutil

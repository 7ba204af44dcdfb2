// SPDX-License-Identifier: MPL-2.0

// Package walker turns the flat project list of a snapshot into a module
// tree and resolves every module on a bounded pool of workers.
//
// Traversal is depth-first preorder with children sorted by path, so a parent
// is always handled before its children and the order does not depend on the
// order the build exported its projects in. Skipping a module only silences
// that module: its descendants are still visited and resolved.
package walker

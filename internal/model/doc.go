// SPDX-License-Identifier: MPL-2.0

// Package model holds the in-memory module tree built once per analysis from a
// project snapshot, together with the per-module facts discovered for it:
// module kind and capabilities, source sets, classpath entries and
// diagnostics.
//
// The tree owns its nodes in a single slice. Parents are referenced by index
// so the structure has no pointer cycles and can be shared read-only between
// workers.
package model

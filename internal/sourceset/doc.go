// SPDX-License-Identifier: MPL-2.0

// Package sourceset discovers the source and resource directories of a single
// module. JVM languages layered on one module are unioned per role, Android
// modules contribute one source set per role of their active variant, and
// Kotlin multiplatform modules union their *Main and *Test sets.
//
// Directories that do not exist are kept; the materializer drops them later.
// Unreadable directories and symlink loops become warnings.
//
// The package also implements the scan-all collector, which walks the root
// project directory for files no module declares.
package sourceset

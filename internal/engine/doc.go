// SPDX-License-Identifier: MPL-2.0

// Package engine hands the final property map to the analysis engine.
//
// The process engine writes the map as a Java properties file and runs an
// external scanner command; the dump engine only writes the map. Neither
// retries, and the scanner's exit code is reported unchanged.
package engine

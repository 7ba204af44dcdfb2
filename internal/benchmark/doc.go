// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for PGO profile generation.
// These benchmarks cover the hot paths of a scanbridge run:
//   - CUE snapshot parsing and schema validation
//   - Module tree construction
//   - Concurrent source-set and classpath resolution
//   - Property reduction and end-to-end materialization
//
// To generate a PGO profile, run:
//
//	go test -run '^$' -bench . -cpuprofile default.pgo ./internal/benchmark
package benchmark

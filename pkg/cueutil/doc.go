// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides the shared CUE decoding flow used for project
// snapshots and the application config file.
//
// Every CUE document goes through the same three steps:
//
//  1. Compile the embedded schema and look up its root definition
//  2. Compile the user document and unify it with that definition
//  3. Validate and decode the unified value into a Go struct
//
// Example:
//
//	//go:embed snapshot_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[Snapshot](schema, data, "#Snapshot",
//		cueutil.WithFilename("snapshot.cue"))
//	if err != nil {
//		return nil, err // error lines carry the CUE path of the bad field
//	}
//	return res.Value, nil
package cueutil

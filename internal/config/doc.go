// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/scanbridge/config.cue (or the XDG equivalent on
// Linux, ~/Library/Application Support/scanbridge/config.cue on macOS,
// %APPDATA%\scanbridge\config.cue on Windows), falling back to .scanbridge.cue in the
// current directory. Environment variables prefixed with SCANBRIDGE_ override file values.
//
// Files are validated against an embedded CUE schema (config_schema.cue) before they
// reach Viper, so type errors are reported with their CUE path.
package config

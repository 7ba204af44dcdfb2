// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// MustMkdirAll creates a directory and all parents.
// The test fails immediately if directory creation fails.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustWriteFile writes content to path, creating parent directories.
// The test fails immediately if the write fails.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// WriteTree materializes entries under root. Keys are slash-separated paths
// relative to root; a key ending in "/" creates a directory, any other key a
// file with the mapped content. Entries are written in sorted order.
func WriteTree(t testing.TB, root string, entries map[string]string) {
	t.Helper()
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, rel := range keys {
		path := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(rel, "/")))
		if strings.HasSuffix(rel, "/") {
			MustMkdirAll(t, path, 0o755)
			continue
		}
		MustWriteFile(t, path, entries[rel])
	}
}

// Path joins a slash-separated relative path onto root.
func Path(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

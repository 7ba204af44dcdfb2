// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteTree(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	WriteTree(t, root, map[string]string{
		"app/src/main/java/":         "",
		"app/src/main/java/App.java": "class App {}",
		"scanbridge.cue":             "rootDir: \".\"",
	})

	info, err := os.Stat(filepath.Join(root, "app", "src", "main", "java"))
	if err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}
	data, err := os.ReadFile(Path(root, "app/src/main/java/App.java"))
	if err != nil || string(data) != "class App {}" {
		t.Errorf("App.java = %q, %v", data, err)
	}
	if _, err := os.Stat(Path(root, "scanbridge.cue")); err != nil {
		t.Errorf("scanbridge.cue missing: %v", err)
	}
}

func TestMustWriteFile_CreatesParents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "c.txt")
	MustWriteFile(t, path, "x")
	if data, err := os.ReadFile(path); err != nil || string(data) != "x" {
		t.Errorf("ReadFile() = %q, %v", data, err)
	}
}

// SPDX-License-Identifier: MPL-2.0

package sourceset

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/scanbridge/scanbridge/internal/model"
)

var (
	excludedDirNames = map[string]bool{
		"bin":     true,
		"build":   true,
		"dist":    true,
		"nbbuild": true,
		"nbdist":  true,
		"out":     true,
		"target":  true,
		"tmp":     true,
	}

	excludedExtensions = []string{
		".jar", ".war", ".class", ".ear", ".nar",
		".ds_store", ".zip", ".7z", ".rar", ".gz", ".tar", ".xz",
		".log",
		".bak", ".tmp", ".swp",
		".iml", ".ipr", ".iws", ".nib",
	}

	jvmExtensions = []string{".java", ".jav", ".kt"}
)

// CollectOptions configure the scan-all collector.
type CollectOptions struct {
	// Existing are source or test paths already declared by some module.
	// Files equal to or inside them are not collected again.
	Existing []string
	// IgnoreDirs are skipped entirely (typically module build dirs).
	IgnoreDirs []string
	// Exclusions are doublestar globs matched against slash-separated paths
	// relative to the root.
	Exclusions []string
	// IncludeJVM also collects .java and .kt files. It is false when a
	// language plugin already reports those.
	IncludeJVM bool
}

// Collect walks root and returns the regular files no module declares,
// sorted. Hidden entries, build output directories, archives, IDE files and
// symbolic links are skipped. Directories that cannot be read are reported
// as warnings.
func Collect(root string, opts CollectOptions) ([]string, []model.Diagnostic, error) {
	for _, pattern := range opts.Exclusions {
		if !doublestar.ValidatePattern(pattern) {
			return nil, nil, fmt.Errorf("invalid exclusion pattern %q", pattern)
		}
	}

	existing := make(map[string]bool, len(opts.Existing))
	for _, p := range opts.Existing {
		existing[filepath.Clean(p)] = true
	}
	ignore := make(map[string]bool, len(opts.IgnoreDirs))
	for _, p := range opts.IgnoreDirs {
		ignore[filepath.Clean(p)] = true
	}
	exts := excludedExtensions
	if !opts.IncludeJVM {
		exts = append(slices.Clone(excludedExtensions), jvmExtensions...)
	}

	var (
		files []string
		diags []model.Diagnostic
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			diags = append(diags, model.Warning(model.CodeScanAllUnreadable, model.RootPath, path,
				fmt.Sprintf("scan-all skipped %s: %v", path, err), err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		slashRel := filepath.ToSlash(rel)
		name := d.Name()

		if d.IsDir() {
			if strings.HasPrefix(name, ".") || excludedDirNames[strings.ToLower(name)] ||
				ignore[path] || existing[path] || excluded(opts.Exclusions, slashRel+"/") {
				return fs.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || !d.Type().IsRegular() || existing[path] {
			return nil
		}
		lower := strings.ToLower(name)
		for _, ext := range exts {
			if strings.HasSuffix(lower, ext) {
				return nil
			}
		}
		if excluded(opts.Exclusions, slashRel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, diags, err
	}
	slices.Sort(files)
	return files, diags, nil
}

// excluded matches rel against the glob patterns. Directory paths carry a
// trailing slash so "**/generated/**" prunes the whole directory.
func excluded(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if strings.HasSuffix(rel, "/") {
			if ok, _ := doublestar.Match(p, strings.TrimSuffix(rel, "/")); ok {
				return true
			}
		}
	}
	return false
}

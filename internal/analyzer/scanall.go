// SPDX-License-Identifier: MPL-2.0

package analyzer

import (
	"path/filepath"
	"strings"

	"github.com/scanbridge/scanbridge/internal/model"
	"github.com/scanbridge/scanbridge/internal/props"
	"github.com/scanbridge/scanbridge/internal/sourceset"
	"github.com/scanbridge/scanbridge/internal/walker"
)

// scanAll collects the files under the root project directory that no
// module declares as sources or tests.
func scanAll(t *model.Tree, res *walker.Result, plan *props.Plan, exclusions []string) ([]string, []model.Diagnostic, error) {
	opts := sourceset.CollectOptions{Exclusions: exclusions, IncludeJVM: true}
	dirs := make(map[string]string, t.Len())

	for i, n := range t.Nodes {
		dirs[n.ID()] = n.Project.Dir
		opts.IgnoreDirs = append(opts.IgnoreDirs, n.Project.BuildDir)
		if n.Caps.Has(model.CapJava) || n.Caps.Has(model.CapKotlin) {
			opts.IncludeJVM = false
		}
		m := res.Modules[i]
		for _, ss := range m.SourceSets {
			opts.Existing = append(opts.Existing, ss.Dirs()...)
		}
		opts.Existing = append(opts.Existing, m.Scripts...)
	}

	// Declared sources and tests count as known too. Relative values are
	// relative to the declaring module.
	for key, value := range plan.Literals() {
		id, ok := declaringModule(key)
		if !ok {
			continue
		}
		for _, p := range props.SplitCSV(value) {
			if !filepath.IsAbs(p) {
				p = filepath.Join(dirs[id], p)
			}
			opts.Existing = append(opts.Existing, p)
		}
	}

	return sourceset.Collect(t.Root().Project.Dir, opts)
}

// declaringModule returns the module id of a sources or tests key.
func declaringModule(key string) (string, bool) {
	for _, suffix := range []string{props.Sources, props.Tests} {
		if key == suffix {
			return "", true
		}
		if id, ok := strings.CutSuffix(key, "."+suffix); ok {
			return id, true
		}
	}
	return "", false
}

// SPDX-License-Identifier: MPL-2.0

package sourceset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/scanbridge/scanbridge/internal/issue"
	"github.com/scanbridge/scanbridge/internal/model"
	"github.com/scanbridge/scanbridge/internal/snapshot"
)

const (
	mainSet = "main"
	testSet = "test"

	settingsScript = "settings.gradle.kts"
)

type (
	// Options tune resolution for a whole analysis.
	Options struct {
		// AndroidVariant is used for Android modules that do not choose a
		// variant themselves. A module without it keeps its default variant
		// and gets a warning.
		AndroidVariant string
	}

	// Result is the outcome of resolving one module.
	Result struct {
		SourceSets []model.SourceSet
		// Scripts are Kotlin build scripts analyzed with the main sources.
		// They do not make an otherwise empty module emit.
		Scripts []string
		// Variant is the active Android variant, empty for other kinds.
		Variant     string
		Diagnostics []model.Diagnostic
	}

	// UnknownVariantError reports a configured Android variant the module
	// does not have.
	UnknownVariantError struct {
		Module     string
		Variant    string
		Candidates []string
	}
)

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("module %s has no Android variant %q (available: %s)",
		e.Module, e.Variant, strings.Join(e.Candidates, ", "))
}

// Resolve discovers the source sets of one module. The only error it returns
// is a wrapped *UnknownVariantError; everything else degrades to diagnostics.
func Resolve(n *model.Node, opts Options) (Result, error) {
	var (
		res Result
		err error
	)
	p := n.Project

	switch {
	case n.Kind.IsAndroid():
		res, err = resolveAndroid(n, opts)
		if err != nil {
			return Result{}, err
		}
	case n.Kind == model.KindKotlinMultiplatform:
		res.SourceSets = resolveMultiplatform(p)
	case n.Kind != model.KindNone:
		res.SourceSets = resolveJVM(p)
	}

	res.Scripts = kotlinScripts(n)

	d := checker{module: n.Path, diags: res.Diagnostics}
	for i := range res.SourceSets {
		ss := &res.SourceSets[i]
		ss.Sources = filterNested(d.keep(ss.Sources))
		ss.Resources = filterNested(d.keep(ss.Resources))
	}
	res.Diagnostics = d.diags
	return res, nil
}

// resolveJVM unions the Java, Groovy and Kotlin directories of the main and
// test source sets. Other source sets (integrationTest, ...) are not analyzed.
func resolveJVM(p *snapshot.Project) []model.SourceSet {
	var out []model.SourceSet
	for _, role := range []model.Role{model.RoleMain, model.RoleTest} {
		name := mainSet
		if role == model.RoleTest {
			name = testSet
		}
		for _, ss := range p.SourceSets {
			if ss.Name != name {
				continue
			}
			out = append(out, model.SourceSet{
				Name:      name,
				Role:      role,
				Sources:   union(ss.Java, ss.Groovy, ss.Kotlin),
				Resources: union(ss.Resources),
				Outputs:   outputs(ss.Outputs),
			})
		}
	}
	return out
}

// resolveMultiplatform merges every Kotlin source set whose name ends in
// "main" or "test" (commonMain, jvmTest, ...) into one set per role.
func resolveMultiplatform(p *snapshot.Project) []model.SourceSet {
	main := model.SourceSet{Name: mainSet, Role: model.RoleMain}
	test := model.SourceSet{Name: testSet, Role: model.RoleTest}
	for _, ks := range p.KotlinSourceSets {
		lower := strings.ToLower(ks.Name)
		var dst *model.SourceSet
		switch {
		case strings.HasSuffix(lower, mainSet):
			dst = &main
		case strings.HasSuffix(lower, testSet):
			dst = &test
		default:
			continue
		}
		dst.Sources = union(dst.Sources, ks.Kotlin)
		dst.Resources = union(dst.Resources, ks.Resources)
		dst.Outputs = model.AppendUnique(dst.Outputs, outputs(ks.Outputs)...)
	}

	var out []model.SourceSet
	for _, ss := range []model.SourceSet{main, test} {
		if len(ss.Sources)+len(ss.Resources) > 0 {
			out = append(out, ss)
		}
	}
	return out
}

// kotlinScripts returns the module's own .kts build script and the
// settings.gradle.kts found in its directory.
func kotlinScripts(n *model.Node) []string {
	p := n.Project
	var out []string
	if strings.HasSuffix(p.BuildFile, ".kts") {
		out = append(out, p.BuildFile)
	}
	settings := filepath.Join(p.Dir, settingsScript)
	if info, err := os.Stat(settings); err == nil && info.Mode().IsRegular() {
		out = append(out, settings)
	}
	return out
}

// union concatenates lists keeping the first occurrence of each path.
func union(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, p := range list {
			p = filepath.Clean(p)
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func outputs(entries []snapshot.Entry) []model.Entry {
	var out []model.Entry
	for _, e := range entries {
		switch {
		case e.Task != "":
			out = model.AppendUnique(out, model.TaskOutput(e.Task, e.Output))
		case e.Project != "":
			out = model.AppendUnique(out, model.ProjectOutput(e.Project, e.SourceSet))
		case e.File != "":
			out = model.AppendUnique(out, model.File(e.File))
		}
	}
	return out
}

// filterNested drops paths that lie inside another listed path.
func filterNested(paths []string) []string {
	var out []string
	for _, p := range paths {
		nested := false
		for _, other := range paths {
			if other != p && isWithin(p, other) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, p)
		}
	}
	return out
}

func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// checker drops directories that exist but cannot be used and records why.
type checker struct {
	module string
	diags  []model.Diagnostic
}

func (c *checker) keep(paths []string) []string {
	var out []string
	for _, p := range paths {
		if _, err := filepath.EvalSymlinks(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.diags = append(c.diags, model.Warning(model.CodeSourceDirCycle, c.module, p,
				fmt.Sprintf("ignoring %s: cannot resolve symbolic links: %v", p, err), err))
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				c.diags = append(c.diags, model.Warning(model.CodeSourceDirUnreadable, c.module, p,
					fmt.Sprintf("ignoring %s: %v", p, err), err))
				continue
			}
			out = append(out, p)
			continue
		}
		if info.IsDir() {
			f, err := os.Open(p)
			if err != nil {
				c.diags = append(c.diags, model.Warning(model.CodeSourceDirUnreadable, c.module, p,
					fmt.Sprintf("ignoring unreadable directory %s: %v", p, err), err))
				continue
			}
			_, err = f.Readdirnames(1)
			_ = f.Close()
			if err != nil && !errors.Is(err, io.EOF) {
				c.diags = append(c.diags, model.Warning(model.CodeSourceDirUnreadable, c.module, p,
					fmt.Sprintf("ignoring unreadable directory %s: %v", p, err), err))
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func variantError(module, variant string, candidates []string) error {
	return issue.NewErrorContext().
		WithOperation("select Android variant").
		WithResource(module).
		WithSuggestion("Set the module's androidVariant to one of: " + strings.Join(candidates, ", ")).
		WithIssue(issue.UnknownAndroidVariantId).
		Wrap(&UnknownVariantError{Module: module, Variant: variant, Candidates: candidates}).
		BuildError()
}

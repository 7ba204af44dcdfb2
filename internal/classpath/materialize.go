// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"regexp"
	"slices"

	"github.com/scanbridge/scanbridge/internal/dag"
	"github.com/scanbridge/scanbridge/internal/issue"
	"github.com/scanbridge/scanbridge/internal/model"
	"github.com/scanbridge/scanbridge/internal/props"
	"github.com/scanbridge/scanbridge/internal/snapshot"
)

var junitReport = regexp.MustCompile(`^TESTS?-.*\.xml$`)

type (
	// ModuleOutputs are the compiled outputs of one module, used to expand
	// project references. Main is the main-role output list; Sets is keyed
	// by source set name.
	ModuleOutputs struct {
		Main []model.Entry
		Sets map[string][]model.Entry
	}

	// Materializer flattens a plan into the final property map.
	Materializer struct {
		tasks   map[string]*snapshot.Task
		graph   *dag.Graph
		modules map[string]ModuleOutputs
	}
)

// NewMaterializer indexes the tasks of every project in snap and the
// resolved outputs of every module.
func NewMaterializer(snap *snapshot.Snapshot, modules map[string]ModuleOutputs) *Materializer {
	m := &Materializer{
		tasks:   make(map[string]*snapshot.Task),
		graph:   dag.New(),
		modules: modules,
	}
	for i := range snap.Projects {
		p := &snap.Projects[i]
		for j := range p.Tasks {
			t := &p.Tasks[j]
			m.tasks[t.Path] = t
			m.graph.AddNode(t.Path)
		}
	}
	for _, path := range sortedTaskPaths(m.tasks) {
		for _, dep := range m.tasks[path].DependsOn {
			m.graph.AddEdge(dep, path)
		}
	}
	return m
}

// Materialize expands every planned value. Computed paths that do not exist
// are dropped, JUnit lists keep only directories holding reports, and a key
// whose value ends up empty is omitted.
func (m *Materializer) Materialize(plan *props.Plan) (props.Map, error) {
	if err := m.checkTasks(plan); err != nil {
		return nil, err
	}

	out := make(props.Map, plan.Len())
	var errs []error
	for _, key := range plan.Keys() {
		v, _ := plan.Get(key)
		if v.List == nil {
			if v.Literal != "" {
				out[key] = v.Literal
			}
			continue
		}

		paths, err := m.expandAll(v.List)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		paths = slices.DeleteFunc(paths, func(p string) bool { return !keepPath(p, v.List.JUnit) })
		if len(paths) > 0 {
			out[key] = props.JoinCSV(paths)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// checkTasks orders every referenced task and its dependencies, failing on
// a dependency cycle.
func (m *Materializer) checkTasks(plan *props.Plan) error {
	var (
		refs     []string
		seen     = make(map[string]bool)
		projects = make(map[string]bool)
	)
	var walk func(entries []model.Entry)
	walk = func(entries []model.Entry) {
		for _, e := range entries {
			switch e.Kind {
			case model.EntryTaskOutput:
				if !seen[e.Ref] {
					seen[e.Ref] = true
					refs = append(refs, e.Ref)
				}
			case model.EntryProjectOutput:
				if projects[e.String()] {
					continue
				}
				projects[e.String()] = true
				if mo, ok := m.modules[e.Ref]; ok {
					walk(mo.Main)
					for _, name := range sortedSetNames(mo.Sets) {
						walk(mo.Sets[name])
					}
				}
			}
		}
	}
	for _, key := range plan.Keys() {
		if v, _ := plan.Get(key); v.List != nil {
			walk(v.List.Entries)
		}
	}
	if len(refs) == 0 {
		return nil
	}

	if _, err := m.graph.Ancestors(refs...); err != nil {
		var ce *dag.CycleError
		if errors.As(err, &ce) {
			return issue.NewErrorContext().
				WithOperation("order task outputs").
				WithSuggestion("Break the dependsOn loop between the listed tasks").
				WithIssue(issue.DependencyCycleId).
				Wrap(err).
				BuildError()
		}
		return err
	}
	return nil
}

func (m *Materializer) expandAll(list *props.PathList) ([]string, error) {
	var (
		out  []string
		seen = make(map[string]bool)
	)
	for _, e := range list.Entries {
		paths, err := m.expand(list.Module, e, nil)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (m *Materializer) expand(module string, e model.Entry, visiting []string) ([]string, error) {
	switch e.Kind {
	case model.EntryFile:
		return []string{e.Ref}, nil

	case model.EntryTaskOutput:
		t, ok := m.tasks[e.Ref]
		if !ok {
			return nil, m.fail(module, e, "unknown task")
		}
		var out []string
		for _, o := range t.Outputs {
			if e.Name == "" || o.Name == e.Name {
				out = append(out, o.Path)
			}
		}
		if e.Name != "" && len(out) == 0 {
			return nil, m.fail(module, e, fmt.Sprintf("task has no output named %q", e.Name))
		}
		return out, nil

	case model.EntryProjectOutput:
		ref := e.String()
		if slices.Contains(visiting, ref) {
			return nil, m.fail(module, e, "circular project output reference")
		}
		mo, ok := m.modules[e.Ref]
		if !ok {
			return nil, m.fail(module, e, "unknown project")
		}
		entries := mo.Main
		if e.Name != "" {
			if entries, ok = mo.Sets[e.Name]; !ok {
				return nil, m.fail(module, e, fmt.Sprintf("project has no source set %q", e.Name))
			}
		}
		var out []string
		for _, inner := range entries {
			paths, err := m.expand(module, inner, append(visiting, ref))
			if err != nil {
				return nil, err
			}
			out = append(out, paths...)
		}
		return out, nil

	default:
		return nil, m.fail(module, e, "unknown entry kind")
	}
}

func (m *Materializer) fail(module string, e model.Entry, reason string) error {
	return resolutionError(&DependencyResolutionError{
		Module:        module,
		Configuration: "classpath",
		Dependency:    e.String(),
		Reason:        reason,
	})
}

func keepPath(path string, junit bool) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if !junit {
		return true
	}
	if !info.IsDir() {
		return false
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	return slices.ContainsFunc(entries, func(d os.DirEntry) bool {
		return !d.IsDir() && junitReport.MatchString(d.Name())
	})
}

func sortedTaskPaths(tasks map[string]*snapshot.Task) []string {
	return slices.Sorted(maps.Keys(tasks))
}

func sortedSetNames(sets map[string][]model.Entry) []string {
	return slices.Sorted(maps.Keys(sets))
}

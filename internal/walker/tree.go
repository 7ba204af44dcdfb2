// SPDX-License-Identifier: MPL-2.0

package walker

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/scanbridge/scanbridge/internal/issue"
	"github.com/scanbridge/scanbridge/internal/model"
	"github.com/scanbridge/scanbridge/internal/snapshot"
)

// TreeError reports a project list that does not form a tree.
type TreeError struct {
	Path   string
	Reason string
}

func (e *TreeError) Error() string {
	return fmt.Sprintf("project %s: %s", e.Path, e.Reason)
}

// Build creates the module tree from snap. Paths must be unique, the root
// ":" must exist and every other project's parent must be present. Modules
// listed in skip, or marked skip in the snapshot, are flagged but kept.
func Build(snap *snapshot.Snapshot, skip []string) (*model.Tree, error) {
	byPath := make(map[string]*snapshot.Project, len(snap.Projects))
	var errs []error
	for i := range snap.Projects {
		p := &snap.Projects[i]
		if _, dup := byPath[p.Path]; dup {
			errs = append(errs, &TreeError{Path: p.Path, Reason: "duplicate project path"})
			continue
		}
		byPath[p.Path] = p
	}
	if _, ok := byPath[model.RootPath]; !ok {
		errs = append(errs, &TreeError{Path: model.RootPath, Reason: "root project is missing"})
	}

	children := make(map[string][]string)
	for _, path := range sortedPaths(byPath) {
		if path == model.RootPath {
			continue
		}
		parent := model.ParentPath(path)
		if _, ok := byPath[parent]; !ok {
			errs = append(errs, &TreeError{Path: path, Reason: fmt.Sprintf("parent project %s is missing", parent)})
			continue
		}
		children[parent] = append(children[parent], path)
	}
	for _, unknown := range unknownSkips(byPath, skip) {
		errs = append(errs, &TreeError{Path: unknown, Reason: "configured to be skipped but not in the snapshot"})
	}
	if len(errs) > 0 {
		return nil, treeError(errors.Join(errs...))
	}

	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}

	nodes := make([]model.Node, 0, len(byPath))
	var add func(path string, parent int)
	add = func(path string, parent int) {
		p := byPath[path]
		kind, caps := model.Classify(p)
		idx := len(nodes)
		nodes = append(nodes, model.Node{
			Path:    path,
			Parent:  parent,
			Skip:    p.Skip || skipped[path],
			Kind:    kind,
			Caps:    caps,
			Project: p,
		})
		for _, c := range children[path] {
			nodes[idx].Children = append(nodes[idx].Children, len(nodes))
			add(c, idx)
		}
	}
	add(model.RootPath, -1)

	return model.NewTree(nodes), nil
}

// Walk calls fn for every node in preorder and stops at the first error.
func Walk(t *model.Tree, fn func(i int, n *model.Node) error) error {
	for i := range t.Nodes {
		if err := fn(i, &t.Nodes[i]); err != nil {
			return err
		}
	}
	return nil
}

// sortedPaths orders module paths segment by segment so ":a:b" sorts right
// after ":a" and before ":a-b".
func sortedPaths(byPath map[string]*snapshot.Project) []string {
	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	slices.SortFunc(paths, ComparePaths)
	return paths
}

// ComparePaths orders module paths by their segments.
func ComparePaths(a, b string) int {
	return slices.Compare(strings.Split(a, ":"), strings.Split(b, ":"))
}

func unknownSkips(byPath map[string]*snapshot.Project, skip []string) []string {
	var out []string
	for _, s := range skip {
		if _, ok := byPath[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

func treeError(err error) error {
	return issue.NewErrorContext().
		WithOperation("build module tree").
		WithSuggestion("Export the snapshot again so that it contains every project of the build").
		WithIssue(issue.InvalidProjectTreeId).
		Wrap(err).
		BuildError()
}

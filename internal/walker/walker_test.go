// SPDX-License-Identifier: MPL-2.0

package walker

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/scanbridge/scanbridge/internal/issue"
	"github.com/scanbridge/scanbridge/internal/model"
	"github.com/scanbridge/scanbridge/internal/snapshot"
	"github.com/scanbridge/scanbridge/internal/sourceset"
)

func javaProject(root, path string) snapshot.Project {
	dir := filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(strings.TrimPrefix(path, ":"), ":", "/")))
	return snapshot.Project{
		Path:     path,
		Name:     path[strings.LastIndex(path, ":")+1:],
		Dir:      dir,
		BuildDir: filepath.Join(dir, "build"),
		Plugins:  []string{"java"},
		SourceSets: []snapshot.SourceSet{
			{Name: "main", Java: []string{filepath.Join(dir, "src", "main", "java")}},
			{Name: "test", Java: []string{filepath.Join(dir, "src", "test", "java")}},
		},
	}
}

func aggregator(root, path string) snapshot.Project {
	p := javaProject(root, path)
	p.Plugins = nil
	p.SourceSets = nil
	return p
}

func paths(t *model.Tree) []string {
	out := make([]string, 0, t.Len())
	for _, n := range t.Nodes {
		out = append(out, n.Path)
	}
	return out
}

func TestBuild_PreorderFromUnsortedInput(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	snap := &snapshot.Snapshot{RootDir: root, Projects: []snapshot.Project{
		javaProject(root, ":b"),
		javaProject(root, ":a:y"),
		aggregator(root, ":"),
		javaProject(root, ":a-b"),
		javaProject(root, ":a"),
		javaProject(root, ":a:x"),
	}}

	tree, err := Build(snap, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	want := []string{":", ":a", ":a:x", ":a:y", ":a-b", ":b"}
	if got := paths(tree); !reflect.DeepEqual(got, want) {
		t.Errorf("preorder = %v, want %v", got, want)
	}

	for i, n := range tree.Nodes {
		if n.IsRoot() {
			continue
		}
		if n.Parent >= i {
			t.Errorf("%s visited before its parent", n.Path)
		}
		if got := tree.Nodes[n.Parent].Path; got != model.ParentPath(n.Path) {
			t.Errorf("%s parent = %s", n.Path, got)
		}
	}
}

func TestBuild_InvalidTrees(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	tests := []struct {
		name     string
		projects []snapshot.Project
		skip     []string
		wantPath string
	}{
		{
			name:     "duplicate path",
			projects: []snapshot.Project{aggregator(root, ":"), javaProject(root, ":a"), javaProject(root, ":a")},
			wantPath: ":a",
		},
		{
			name:     "missing root",
			projects: []snapshot.Project{javaProject(root, ":a")},
			wantPath: ":",
		},
		{
			name:     "missing parent",
			projects: []snapshot.Project{aggregator(root, ":"), javaProject(root, ":a:b")},
			wantPath: ":a:b",
		},
		{
			name:     "unknown skip path",
			projects: []snapshot.Project{aggregator(root, ":")},
			skip:     []string{":ghost"},
			wantPath: ":ghost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Build(&snapshot.Snapshot{RootDir: root, Projects: tt.projects}, tt.skip)
			if err == nil {
				t.Fatal("Build() succeeded, want error")
			}
			var te *TreeError
			if !errors.As(err, &te) {
				t.Fatalf("error %v is not a *TreeError", err)
			}
			if te.Path != tt.wantPath {
				t.Errorf("TreeError.Path = %s, want %s", te.Path, tt.wantPath)
			}
			if got := issue.IDOf(err); got != issue.InvalidProjectTreeId {
				t.Errorf("issue id = %v, want InvalidProjectTreeId", got)
			}
		})
	}
}

func TestWalk_VisitsEveryNodeOnceParentFirst(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	snap := &snapshot.Snapshot{RootDir: root, Projects: []snapshot.Project{
		aggregator(root, ":"),
		javaProject(root, ":c"),
		javaProject(root, ":c:d"),
		javaProject(root, ":a"),
		javaProject(root, ":a:b"),
	}}
	tree, err := Build(snap, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	seen := make(map[string]int)
	var order []string
	err = Walk(tree, func(_ int, n *model.Node) error {
		if !n.IsRoot() && seen[model.ParentPath(n.Path)] == 0 {
			t.Errorf("%s visited before its parent", n.Path)
		}
		seen[n.Path]++
		order = append(order, n.Path)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	for path, count := range seen {
		if count != 1 {
			t.Errorf("%s visited %d times", path, count)
		}
	}
	if want := []string{":", ":a", ":a:b", ":c", ":c:d"}; !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestResolve_SkippedModuleStillDescends(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	skipped := javaProject(root, ":skippedModule")
	skipped.Skip = true
	snap := &snapshot.Snapshot{RootDir: root, Projects: []snapshot.Project{
		aggregator(root, ":"),
		skipped,
		javaProject(root, ":skippedModule:skippedSubmodule"),
		javaProject(root, ":configSkipped"),
		aggregator(root, ":empty"),
	}}
	tree, err := Build(snap, []string{":configSkipped"})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	res, err := Resolve(context.Background(), tree, Options{Workers: 2})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	want := map[string]bool{
		":":                               true,
		":configSkipped":                  false,
		":empty":                          false,
		":skippedModule":                  false,
		":skippedModule:skippedSubmodule": true,
	}
	for i, n := range tree.Nodes {
		if res.Emits[i] != want[n.Path] {
			t.Errorf("Emits[%s] = %v, want %v", n.Path, res.Emits[i], want[n.Path])
		}
	}
	i, _ := tree.Lookup(":skippedModule:skippedSubmodule")
	if got := len(res.Modules[i].SourceSets); got != 2 {
		t.Errorf("skippedSubmodule has %d source sets, want 2", got)
	}
}

func TestResolve_SameResultForAnyWorkerCount(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	projects := []snapshot.Project{aggregator(root, ":")}
	for _, p := range []string{":a", ":a:x", ":b", ":b:x", ":c", ":d", ":e"} {
		projects = append(projects, javaProject(root, p))
	}
	tree, err := Build(&snapshot.Snapshot{RootDir: root, Projects: projects}, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	serial, err := Resolve(context.Background(), tree, Options{Workers: 1})
	if err != nil {
		t.Fatalf("Resolve(workers=1) error: %v", err)
	}
	parallel, err := Resolve(context.Background(), tree, Options{Workers: 8})
	if err != nil {
		t.Fatalf("Resolve(workers=8) error: %v", err)
	}
	if !reflect.DeepEqual(serial, parallel) {
		t.Error("results differ between one and eight workers")
	}

	outputs := serial.Outputs(tree)
	if len(outputs) != tree.Len() {
		t.Errorf("Outputs() has %d modules, want %d", len(outputs), tree.Len())
	}
}

func TestResolve_JoinsErrorsInPathOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	android := func(path string) snapshot.Project {
		p := aggregator(root, path)
		p.Plugins = []string{"com.android.library"}
		p.AndroidVariant = "release"
		p.Android = &snapshot.Android{Variants: []snapshot.AndroidVariant{{Name: "debug", BuildType: "debug"}}}
		return p
	}
	tree, err := Build(&snapshot.Snapshot{RootDir: root, Projects: []snapshot.Project{
		aggregator(root, ":"), android(":z"), android(":b"),
	}}, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	_, err = Resolve(context.Background(), tree, Options{Workers: 4})
	if err == nil {
		t.Fatal("Resolve() succeeded, want error")
	}
	msg := err.Error()
	b, z := strings.Index(msg, ":b"), strings.Index(msg, ":z")
	if b < 0 || z < 0 || b > z {
		t.Errorf("errors not joined in path order: %s", msg)
	}
	var uv *sourceset.UnknownVariantError
	if !errors.As(err, &uv) {
		t.Errorf("error %v does not wrap *UnknownVariantError", err)
	}
}

func TestResolve_CanceledContextStopsDispatch(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	tree, err := Build(&snapshot.Snapshot{RootDir: root, Projects: []snapshot.Project{
		aggregator(root, ":"), javaProject(root, ":a"),
	}}, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Resolve(ctx, tree, Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Resolve() error = %v, want context.Canceled", err)
	}
}

func TestComparePaths(t *testing.T) {
	t.Parallel()

	got := []string{":a-b", ":b", ":a:b", ":a", ":"}
	slices.SortFunc(got, ComparePaths)
	if want := []string{":", ":a", ":a:b", ":a-b", ":b"}; !slices.Equal(got, want) {
		t.Errorf("sorted = %v, want %v", got, want)
	}
}

// SPDX-License-Identifier: MPL-2.0

package walker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/scanbridge/scanbridge/internal/classpath"
	"github.com/scanbridge/scanbridge/internal/model"
	"github.com/scanbridge/scanbridge/internal/sourceset"
)

type (
	// Options configure Resolve.
	Options struct {
		// Workers bounds concurrent module resolution. Zero or less means
		// runtime.GOMAXPROCS(0).
		Workers int
		// Sources is passed to the source-set resolver of every module.
		Sources sourceset.Options
		// Logger receives debug output. Nil disables logging.
		Logger *log.Logger
	}

	// Module is everything resolved for one node.
	Module struct {
		SourceSets  []model.SourceSet
		Scripts     []string
		Variant     string
		Classpaths  model.Classpaths
		Diagnostics []model.Diagnostic
	}

	// Result holds one Module per tree node, indexed like Tree.Nodes.
	Result struct {
		Modules []Module
		// Emits reports, per node, whether the module contributes
		// properties of its own.
		Emits []bool
	}
)

// Resolve resolves every module of t. Jobs are dispatched in preorder and run
// on at most opts.Workers goroutines; each job writes only its own slot. Resolve
// waits for every dispatched job. A canceled context stops further dispatch
// but never interrupts a running job. All module errors are joined in
// preorder.
func Resolve(ctx context.Context, t *model.Tree, opts Options) (*Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	modules := make([]Module, t.Len())
	errs := make([]error, t.Len())

	var g errgroup.Group
	g.SetLimit(workers)

	dispatchErr := Walk(t, func(i int, n *model.Node) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.Go(func() error {
			logger.Debug("resolving module", "path", n.Path, "kind", n.Kind)
			modules[i], errs[i] = resolveModule(n, opts.Sources)
			return nil
		})
		return nil
	})
	_ = g.Wait()

	if dispatchErr != nil {
		return nil, fmt.Errorf("module resolution interrupted: %w", dispatchErr)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	res := &Result{Modules: modules, Emits: make([]bool, t.Len())}
	for i := range t.Nodes {
		res.Emits[i] = emits(t, i, &modules[i])
	}
	return res, nil
}

// Diagnostics returns every module's diagnostics in preorder.
func (r *Result) Diagnostics() []model.Diagnostic {
	var out []model.Diagnostic
	for _, m := range r.Modules {
		out = append(out, m.Diagnostics...)
	}
	return out
}

// Outputs indexes compiled outputs by module path for project references.
func (r *Result) Outputs(t *model.Tree) map[string]classpath.ModuleOutputs {
	out := make(map[string]classpath.ModuleOutputs, t.Len())
	for i, n := range t.Nodes {
		m := r.Modules[i]
		mo := classpath.ModuleOutputs{
			Main: m.Classpaths.MainBinaries,
			Sets: make(map[string][]model.Entry, len(m.SourceSets)),
		}
		for _, ss := range m.SourceSets {
			mo.Sets[ss.Name] = ss.Outputs
		}
		out[n.Path] = mo
	}
	return out
}

func resolveModule(n *model.Node, opts sourceset.Options) (Module, error) {
	sets, err := sourceset.Resolve(n, opts)
	if err != nil {
		return Module{}, fmt.Errorf("module %s: %w", n.Path, err)
	}
	cp, err := classpath.Collect(n, sets.SourceSets, sets.Variant)
	if err != nil {
		return Module{}, err
	}
	return Module{
		SourceSets:  sets.SourceSets,
		Scripts:     sets.Scripts,
		Variant:     sets.Variant,
		Classpaths:  cp,
		Diagnostics: sets.Diagnostics,
	}, nil
}

// emits applies the skip policy: skipped modules are silent, and so is a
// module without children and without any declared source directory. The
// root always emits unless skipped.
func emits(t *model.Tree, i int, m *Module) bool {
	n := &t.Nodes[i]
	if n.Skip {
		return false
	}
	if n.IsRoot() || len(n.Children) > 0 {
		return true
	}
	for _, ss := range m.SourceSets {
		if len(ss.Sources)+len(ss.Resources) > 0 {
			return true
		}
	}
	return false
}

// SPDX-License-Identifier: MPL-2.0

package reducer

import (
	"errors"
	"maps"
	"path/filepath"
	"strings"

	"github.com/scanbridge/scanbridge/internal/model"
	"github.com/scanbridge/scanbridge/internal/props"
	"github.com/scanbridge/scanbridge/internal/walker"
)

type (
	// Options configure Reduce.
	Options struct {
		// Overrides are invocation-level properties. They take precedence
		// over everything else and apply to the root only.
		Overrides map[string]string
		// ExtraSources are appended to the root's computed sources.
		ExtraSources []string
	}

	// Result is the reduced plan plus the diagnostics raised while reducing.
	Result struct {
		Plan        *props.Plan
		Diagnostics []model.Diagnostic
	}
)

// Reduce builds the property plan for t from the per-module resolution in
// res. It is deterministic: equal inputs give equal plans.
func Reduce(t *model.Tree, res *walker.Result, opts Options) (*Result, error) {
	out := &Result{Plan: props.NewPlan()}

	own := make([]map[string]string, t.Len())
	inherited := make([]map[string]string, t.Len())
	var errs []error
	for i := range t.Nodes {
		n := &t.Nodes[i]
		values, conflicts := declared(n)
		errs = append(errs, conflicts...)
		kept, dropped := split(n, values)
		out.Diagnostics = append(out.Diagnostics, dropped...)
		own[i] = kept

		inherited[i] = make(map[string]string)
		if !n.IsRoot() {
			maps.Copy(inherited[i], inherited[n.Parent])
			maps.Copy(inherited[i], inheritable(own[n.Parent]))
		}
	}
	if len(errs) > 0 {
		return nil, conflictError(errors.Join(errs...))
	}

	if t.Root().Skip {
		out.Plan.Set(props.Skip, "true")
		return out, nil
	}

	var rootKey string
	for i := range t.Nodes {
		if !res.Emits[i] {
			continue
		}
		n := &t.Nodes[i]
		var extra []string
		if n.IsRoot() {
			extra = opts.ExtraSources
		}
		l := computed(t, i, &res.Modules[i], extra)
		overlay(l, inherited[i])
		overlay(l, own[i])
		if n.IsRoot() {
			overlay(l, opts.Overrides)
			rootKey = l[props.ProjectKey].Literal
		} else if _, ok := l[props.ModuleKey]; !ok {
			l.literal(props.ModuleKey, rootKey+n.Path)
		}
		emit(out.Plan, n, l)
	}

	for i, ids := range moduleIDs(t, res.Emits) {
		out.Plan.Set(props.Prefixed(t.Nodes[i].ID(), props.Modules), strings.Join(ids, ","))
	}
	rebaseRoot(out.Plan)
	return out, nil
}

// overlay applies a higher precedence level of declared strings. An empty
// value removes the key.
func overlay(l level, values map[string]string) {
	for k, v := range values {
		if v == "" {
			delete(l, k)
			continue
		}
		l[k] = props.Value{Literal: v}
	}
}

func emit(plan *props.Plan, n *model.Node, l level) {
	id := n.ID()
	for key, v := range l {
		if !props.IsRootOnly(key) {
			key = props.Prefixed(id, key)
		}
		if v.List != nil {
			plan.SetList(key, v.List)
		} else {
			plan.Set(key, v.Literal)
		}
	}
}

// moduleIDs groups every emitting module under its nearest emitting
// ancestor. Ids keep preorder, which is path order. Each id is relative to
// the ancestor, so the ancestor's key prefix plus "." plus the listed id is
// the module's own key prefix.
func moduleIDs(t *model.Tree, emits []bool) map[int][]string {
	out := make(map[int][]string)
	for i := range t.Nodes {
		if !emits[i] || t.Nodes[i].IsRoot() {
			continue
		}
		for _, a := range t.Ancestors(i) {
			if emits[a] {
				out[a] = append(out[a], relativeID(t.Nodes[a].ID(), t.Nodes[i].ID()))
				break
			}
		}
	}
	return out
}

func relativeID(ancestor, id string) string {
	if ancestor == "" {
		return id
	}
	return strings.TrimPrefix(id, ancestor+".")
}

// rebaseRoot moves the root base directory up to the deepest directory
// containing every module base directory on the same volume.
func rebaseRoot(plan *props.Plan) {
	v, ok := plan.Get(props.ProjectBaseDir)
	if !ok || v.List != nil {
		return
	}
	base := filepath.Clean(v.Literal)
	for _, key := range plan.Keys() {
		if !strings.HasSuffix(key, "."+props.ProjectBaseDir) {
			continue
		}
		mv, _ := plan.Get(key)
		base = commonDir(base, filepath.Clean(mv.Literal))
	}
	plan.Set(props.ProjectBaseDir, base)
}

func commonDir(a, b string) string {
	if !filepath.IsAbs(a) || !filepath.IsAbs(b) || filepath.VolumeName(a) != filepath.VolumeName(b) {
		return a
	}
	sep := string(filepath.Separator)
	as := strings.Split(a, sep)
	bs := strings.Split(b, sep)
	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	common := strings.Join(as[:n], sep)
	if common == "" || common == filepath.VolumeName(a) {
		return common + sep
	}
	return common
}

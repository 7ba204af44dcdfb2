// SPDX-License-Identifier: MPL-2.0

package props

import (
	"maps"
	"slices"

	"github.com/scanbridge/scanbridge/internal/model"
)

type (
	// Value is one planned property: either a literal string or a list of
	// paths and classpath entries flattened at materialization.
	Value struct {
		Literal string
		List    *PathList
	}

	// PathList is a lazily flattened path-valued property. Entries keep
	// their declaration order.
	PathList struct {
		// Module is the path of the module the list belongs to.
		Module  string
		Entries []model.Entry
		// JUnit keeps only directories holding TEST-*.xml reports.
		JUnit bool
	}

	// Plan is the reducer's output: the final key set with values that may
	// still reference task or project outputs.
	Plan struct {
		values map[string]Value
	}
)

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{values: make(map[string]Value)}
}

// Files builds a PathList of concrete paths.
func Files(module string, paths ...string) *PathList {
	l := &PathList{Module: module, Entries: make([]model.Entry, 0, len(paths))}
	for _, p := range paths {
		l.Entries = model.AppendUnique(l.Entries, model.File(p))
	}
	return l
}

// Classpath builds a PathList from classpath entries.
func Classpath(module string, entries []model.Entry) *PathList {
	return &PathList{Module: module, Entries: model.AppendUnique(nil, entries...)}
}

// Empty reports whether the list has nothing to flatten.
func (l *PathList) Empty() bool {
	return l == nil || len(l.Entries) == 0
}

// Set stores a literal value. An empty value removes the key.
func (p *Plan) Set(key, literal string) {
	if literal == "" {
		delete(p.values, key)
		return
	}
	p.values[key] = Value{Literal: literal}
}

// SetList stores a path list. An empty list removes the key.
func (p *Plan) SetList(key string, list *PathList) {
	if list.Empty() {
		delete(p.values, key)
		return
	}
	p.values[key] = Value{List: list}
}

// Get returns the planned value for key.
func (p *Plan) Get(key string) (Value, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Delete removes key.
func (p *Plan) Delete(key string) {
	delete(p.values, key)
}

// Len returns the number of planned keys.
func (p *Plan) Len() int {
	return len(p.values)
}

// Keys returns the planned keys sorted.
func (p *Plan) Keys() []string {
	return slices.Sorted(maps.Keys(p.values))
}

// Literals returns the literal values only. Tests and the tree view use it
// to inspect a plan without touching the file system.
func (p *Plan) Literals() Map {
	out := make(Map)
	for k, v := range p.values {
		if v.List == nil {
			out[k] = v.Literal
		}
	}
	return out
}

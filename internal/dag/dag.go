// SPDX-License-Identifier: MPL-2.0

// Package dag orders build tasks so that every task comes after the tasks it
// depends on. Materialization uses it to flatten task-output classpath
// references in producer order and to reject dependency cycles.
package dag

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// CycleError reports a dependency loop. Cycle lists the tasks along the
	// loop with the first task repeated at the end.
	CycleError struct {
		Cycle []string
	}

	// Graph is a directed graph keyed by task path. An edge from A to B means
	// A produces something B consumes, so A must come first.
	Graph struct {
		// successors maps a node to the nodes that depend on it.
		successors map[string][]string
		// predecessors maps a node to the nodes it depends on.
		predecessors map[string][]string
		// nodes in insertion order.
		nodes []string
		index map[string]int
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		successors:   make(map[string][]string),
		predecessors: make(map[string][]string),
		index:        make(map[string]int),
	}
}

// AddNode adds a node. Adding an existing node is a no-op.
func (g *Graph) AddNode(name string) {
	if _, ok := g.index[name]; ok {
		return
	}
	g.index[name] = len(g.nodes)
	g.nodes = append(g.nodes, name)
}

// Has reports whether name was added.
func (g *Graph) Has(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// AddEdge records that from must come before to. Both nodes are added if
// missing. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if slices.Contains(g.successors[from], to) {
		return
	}
	g.successors[from] = append(g.successors[from], to)
	g.predecessors[to] = append(g.predecessors[to], from)
}

// TopologicalSort returns every node in dependency order using Kahn's
// algorithm. Ties are broken by insertion order, so the result is stable for
// a given sequence of AddNode/AddEdge calls.
func (g *Graph) TopologicalSort() ([]string, error) {
	return g.sort(g.nodes)
}

// Ancestors returns the targets plus every node they transitively depend on,
// in dependency order. Unknown targets are ignored.
func (g *Graph) Ancestors(targets ...string) ([]string, error) {
	keep := make(map[string]bool)
	stack := make([]string, 0, len(targets))
	for _, t := range targets {
		if g.Has(t) && !keep[t] {
			keep[t] = true
			stack = append(stack, t)
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range g.predecessors[n] {
			if !keep[p] {
				keep[p] = true
				stack = append(stack, p)
			}
		}
	}

	subset := make([]string, 0, len(keep))
	for _, n := range g.nodes {
		if keep[n] {
			subset = append(subset, n)
		}
	}
	return g.sort(subset)
}

func (g *Graph) sort(subset []string) ([]string, error) {
	if len(subset) == 0 {
		return nil, nil
	}

	member := make(map[string]bool, len(subset))
	for _, n := range subset {
		member[n] = true
	}

	inDegree := make(map[string]int, len(subset))
	for _, n := range subset {
		for _, p := range g.predecessors[n] {
			if member[p] {
				inDegree[n]++
			}
		}
	}

	queue := make([]string, 0, len(subset))
	for _, n := range subset {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	result := make([]string, 0, len(subset))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		result = append(result, n)
		for _, s := range g.successors[n] {
			if !member[s] {
				continue
			}
			inDegree[s]--
			if inDegree[s] == 0 {
				queue = append(queue, s)
			}
		}
	}

	if len(result) != len(subset) {
		return nil, &CycleError{Cycle: g.findCycle(member, inDegree)}
	}
	return result, nil
}

// findCycle walks successor edges among the nodes Kahn's algorithm could not
// release until a node repeats. Every such node lies on or downstream of a
// cycle and has a remaining predecessor, so walking predecessors terminates
// in a loop.
func (g *Graph) findCycle(member map[string]bool, inDegree map[string]int) []string {
	var start string
	for _, n := range g.nodes {
		if member[n] && inDegree[n] > 0 {
			start = n
			break
		}
	}

	seen := make(map[string]int)
	var path []string
	n := start
	for {
		if i, ok := seen[n]; ok {
			loop := slices.Clone(path[i:])
			slices.Reverse(loop)
			return append(loop, loop[0])
		}
		seen[n] = len(path)
		path = append(path, n)
		for _, p := range g.predecessors[n] {
			if member[p] && inDegree[p] > 0 {
				n = p
				break
			}
		}
	}
}

// SPDX-License-Identifier: MPL-2.0

package model

import (
	"strings"

	"github.com/scanbridge/scanbridge/internal/snapshot"
)

// RootPath is the path of the root module.
const RootPath = ":"

type (
	// Node is one module in the tree.
	Node struct {
		// Path is the module path, ":" for the root and ":a:b" below it.
		Path string
		// Parent is the index of the parent node in Tree.Nodes, -1 for the root.
		Parent int
		// Children are indices into Tree.Nodes, ordered by path.
		Children []int
		// Skip marks a module that emits no properties of its own. Its
		// descendants are still visited.
		Skip bool
		Kind Kind
		Caps Caps
		// Project is the snapshot descriptor the node was built from.
		Project *snapshot.Project
	}

	// Tree owns every node of one analysis. Nodes[0] is the root and the
	// slice is in depth-first preorder, children sorted by path.
	Tree struct {
		Nodes []Node
		index map[string]int
	}
)

// NewTree wraps nodes already in preorder. Callers outside this package use
// the walker to build trees from a snapshot.
func NewTree(nodes []Node) *Tree {
	t := &Tree{Nodes: nodes, index: make(map[string]int, len(nodes))}
	for i := range nodes {
		t.index[nodes[i].Path] = i
	}
	return t
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return &t.Nodes[0]
}

// Lookup returns the index of the node with the given path.
func (t *Tree) Lookup(path string) (int, bool) {
	i, ok := t.index[path]
	return i, ok
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.Nodes)
}

// Ancestors returns the indices of i's ancestors, nearest first.
func (t *Tree) Ancestors(i int) []int {
	var out []int
	for p := t.Nodes[i].Parent; p >= 0; p = t.Nodes[p].Parent {
		out = append(out, p)
	}
	return out
}

// Descendants returns the indices of every node below i in preorder.
func (t *Tree) Descendants(i int) []int {
	var out []int
	var visit func(int)
	visit = func(n int) {
		for _, c := range t.Nodes[n].Children {
			out = append(out, c)
			visit(c)
		}
	}
	visit(i)
	return out
}

// IsRoot reports whether the node is the root module.
func (n *Node) IsRoot() bool {
	return n.Parent < 0
}

// ID returns the dotted module identifier used to namespace property keys:
// ":a:b" becomes "a.b" and the root has the empty id.
func (n *Node) ID() string {
	return PathID(n.Path)
}

// PathID converts a module path to its dotted identifier.
func PathID(path string) string {
	return strings.ReplaceAll(strings.TrimPrefix(path, ":"), ":", ".")
}

// ParentPath returns the path of the parent of a non-root module path.
func ParentPath(path string) string {
	i := strings.LastIndex(path, ":")
	if i <= 0 {
		return RootPath
	}
	return path[:i]
}

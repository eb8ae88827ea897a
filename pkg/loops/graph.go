// Package loops enumerates closed loops in a directed graph.
//
// The finder follows successor lists forward from seed nodes, forking at
// branching nodes, and reports each closed path once. It is used for face
// outline reconstruction in the mesh package and works on any comparable node
// type.
package loops

import (
	"cmp"
	"maps"
	"slices"
)

// Graph is a directed graph with deterministic iteration order:
// nodes are kept in insertion order and successor lists keep their order.
type Graph[T comparable] struct {
	nodes []T
	succ  map[T][]T
}

// NewGraph creates an empty graph
func NewGraph[T comparable]() *Graph[T] {
	return &Graph[T]{succ: make(map[T][]T)}
}

// FromMap builds a graph from an adjacency map. Keys are inserted in sorted
// order so seeding is reproducible.
func FromMap[T cmp.Ordered](adjacency map[T][]T) *Graph[T] {
	g := NewGraph[T]()
	keys := slices.Sorted(maps.Keys(adjacency))
	for _, k := range keys {
		g.AddNode(k)
	}
	for _, k := range keys {
		for _, to := range adjacency[k] {
			g.AddEdge(k, to)
		}
	}
	return g
}

// AddNode adds n if it is not present yet
func (g *Graph[T]) AddNode(n T) {
	if _, ok := g.succ[n]; ok {
		return
	}
	g.nodes = append(g.nodes, n)
	g.succ[n] = nil
}

// AddEdge adds the directed edge from -> to, adding both nodes if needed.
// Parallel edges are kept.
func (g *Graph[T]) AddEdge(from, to T) {
	g.AddNode(from)
	g.AddNode(to)
	g.succ[from] = append(g.succ[from], to)
}

// Nodes returns the nodes in insertion order
func (g *Graph[T]) Nodes() []T {
	return slices.Clone(g.nodes)
}

// Successors returns the ordered successors of n. The slice must not be modified.
func (g *Graph[T]) Successors(n T) []T {
	return g.succ[n]
}

// Len returns the number of nodes
func (g *Graph[T]) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of directed edges
func (g *Graph[T]) EdgeCount() int {
	count := 0
	for _, s := range g.succ {
		count += len(s)
	}
	return count
}

// Components splits g into its weakly connected components. Components are
// ordered by their first node and keep the node and successor order of g.
func (g *Graph[T]) Components() []*Graph[T] {
	parent := make(map[T]T, len(g.nodes))
	find := func(n T) T {
		for parent[n] != n {
			parent[n] = parent[parent[n]]
			n = parent[n]
		}
		return n
	}
	for _, n := range g.nodes {
		parent[n] = n
	}
	for _, n := range g.nodes {
		for _, to := range g.succ[n] {
			if a, b := find(n), find(to); a != b {
				parent[b] = a
			}
		}
	}

	byRoot := make(map[T]*Graph[T])
	var out []*Graph[T]
	for _, n := range g.nodes {
		root := find(n)
		c, ok := byRoot[root]
		if !ok {
			c = NewGraph[T]()
			byRoot[root] = c
			out = append(out, c)
		}
		c.AddNode(n)
	}
	for _, n := range g.nodes {
		c := byRoot[find(n)]
		for _, to := range g.succ[n] {
			c.AddEdge(n, to)
		}
	}
	return out
}

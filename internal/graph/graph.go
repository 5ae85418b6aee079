package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"shardflow/internal/thunk"
)

// Graph is the immutable, arena-backed dependents index for a single run.
// It is built once at init by a single traversal of the DAG rooted at
// root_task (spec.md §4.7) and never mutated afterward.
type Graph struct {
	nodes []*thunk.Thunk // canonical order, indexed by arena index
	index map[thunk.TaskId]int
	deps  [][]thunk.TaskId // deps[i] = dependents of nodes[i]
}

// BuildFromNodes builds the dependents index from every thunk reachable
// from the run's root (including the root itself). It assigns each thunk a
// dense arena index, then wires dependents as index-addressable TaskId
// lists (Design Notes §9).
func BuildFromNodes(nodes []*thunk.Thunk) *Graph {
	g := &Graph{index: make(map[thunk.TaskId]int, len(nodes))}
	for _, n := range nodes {
		g.AddNode(n)
	}
	for _, n := range nodes {
		for _, childId := range n.ThunkInputs() {
			g.AddEdge(childId, n.Id)
		}
	}
	return g
}

// AddNode registers a thunk in the arena if not already present, returning
// its canonical index.
func (g *Graph) AddNode(t *thunk.Thunk) int {
	if idx, ok := g.index[t.Id]; ok {
		return idx
	}
	idx := len(g.nodes)
	g.index[t.Id] = idx
	g.nodes = append(g.nodes, t)
	g.deps = append(g.deps, nil)
	return idx
}

// AddEdge records that `dependent` consumes `producer`'s result. Both must
// already have been added via AddNode. Duplicate edges are ignored.
func (g *Graph) AddEdge(producer, dependent thunk.TaskId) {
	pi, ok := g.index[producer]
	if !ok {
		return
	}
	for _, existing := range g.deps[pi] {
		if existing == dependent {
			return
		}
	}
	g.deps[pi] = append(g.deps[pi], dependent)
}

// Dependents returns the TaskIds of thunks that consume id's result.
func (g *Graph) Dependents(id thunk.TaskId) []thunk.TaskId {
	idx, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.deps[idx]
}

// DependentCount is a fast path for the keep recursion's "fewer than 2
// dependents" test (spec.md §4.2), avoiding a slice copy.
func (g *Graph) DependentCount(id thunk.TaskId) int {
	idx, ok := g.index[id]
	if !ok {
		return 0
	}
	return len(g.deps[idx])
}

// Node returns the thunk registered under id, if any.
func (g *Graph) Node(id thunk.TaskId) (*thunk.Thunk, bool) {
	idx, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[idx], true
}

// Len returns the number of thunks in the arena.
func (g *Graph) Len() int { return len(g.nodes) }

// AllNodes returns a copy of the thunks in canonical arena order.
func (g *Graph) AllNodes() []*thunk.Thunk {
	out := make([]*thunk.Thunk, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Hash derives a stable identifier for the DAG's shape from the sorted set
// of its node TaskIds, independent of arena insertion order. It is the
// GraphHash an ExecutionTrace is stamped with, so two independent runs of
// the same DAG can be told apart from runs of a different one when
// comparing trace hashes (spec.md §8's "same DAG twice produces the same
// result" determinism claim).
func (g *Graph) Hash() string {
	ids := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		ids[i] = n.Id.String()
	}
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

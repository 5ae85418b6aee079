// Package graph builds the dependents index the scheduler precomputes once
// at init (spec.md §3, "dependents... computed once at init, immutable for
// the run").
//
// Thunks are assigned a dense canonical index on insertion, and each
// node's dependents are held as a TaskId list addressed by that index
// (inputs stay on the Thunk itself), following Design Notes §9 ("assign each Thunk a dense integer
// index during init, store thunks in a contiguous arena").
package graph

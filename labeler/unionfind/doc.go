// Package unionfind implements connected-components clustering with an
// in-memory disjoint-set structure.
//
// This is the fast path: path compression and union by rank make it
// near-linear in the number of edges, it needs no iteration cap and its
// result is always exact. The trade-off is that the whole edge set is pulled
// into process memory, so it only suits workloads that fit. For out-of-core
// or distributed execution use labeler/iterative instead; both strategies
// satisfy the same output contract.
package unionfind

// Package namespace maps arbitrary record identities into a dense uint64
// handle space and back.
//
// Handles are assigned by rank over the total order of relation.Compare, not
// by hashing, so the numbering is deterministic for a given identity set. The
// Policy type selects how the two identity columns of an edge relation share
// the handle space.
package namespace

// Package partition provides queryable views over a clustering result.
//
// A Partition indexes the (identity, component) relations produced by a
// clustering run: identities are interned into a dense handle arena and each
// component's membership is held as a Roaring bitmap, so membership and
// same-cluster checks are cheap even for millions of records.
package partition

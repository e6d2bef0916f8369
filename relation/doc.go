// Package relation defines the narrow relational capability the clustering
// engine requires from its host data substrate.
//
// The engine never materializes a full graph in process memory; it expresses
// every step of the clustering algorithm as a sequence of relational
// transforms (project, rename, distinct, union, equi-join, group-by-min and a
// handful of scalar extensions). Any engine that can evaluate these transforms
// (an embedded columnar engine, a SQL database, a distributed query engine)
// can host the clustering by implementing Table.
//
// MemTable is the in-memory reference substrate. It evaluates every transform
// eagerly and is the default host used by tests and small workloads.
package relation

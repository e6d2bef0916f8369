// Package iterative implements connected-components clustering as an
// iterative fixpoint of relational transforms.
//
// The algorithm follows the classic label propagation formulation over SQL:
// every node seen in an edge starts labeled with itself, then each round
// discovers which labels are bridged by an edge, substitutes the minimum
// label of each bridged group, and repeats until no label changes. Runtime is
// linear in the diameter of the largest component, which is acceptable for
// entity resolution where components are expected to be small.
//
// Because every step is a relational transform, the strategy never holds the
// graph in process memory and can run against any substrate implementing
// relation.Table. Each round's labeling is explicitly materialized before the
// next round is built on top of it; without that boundary the deferred
// expression would grow with every round and planning cost would degrade
// super-linearly on lazy substrates.
package iterative

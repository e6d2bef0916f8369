// Package clustergo computes connected components over pairwise record
// links, the terminal stage of an entity-resolution pipeline.
//
// Upstream blocking and pairwise comparison produce noisy, partial evidence
// that two records refer to the same real-world entity. Clustergo turns that
// pairwise evidence into a consistent global partition: every record that is
// transitively linked ends up with one shared component identifier.
//
// Features:
//
//   - Two interchangeable strategies: in-memory union-find (exact,
//     near-linear, preferred when the edge set fits in memory) and iterative
//     relational label propagation (runs against any substrate implementing
//     relation.Table, suited to out-of-core or distributed execution)
//   - Deterministic dense-handle namespaces with a per-role or unified policy
//   - Bounded iteration with an explicit converged/capped distinction
//   - Component membership views backed by Roaring bitmaps (partition)
//   - Result export to local, in-memory, S3 or MinIO blob storage with
//     optional zstd/lz4 compression (export, blobstore)
//
// # Quick Start
//
// Cluster an edge relation with the default columns (record_id_l,
// record_id_r):
//
//	edges := relation.NewMemTable(
//	    []string{"record_id_l", "record_id_r"},
//	    [][]relation.Value{
//	        {"a", "x"},
//	        {"b", "x"},
//	        {"g", "h"},
//	    },
//	)
//
//	result, err := clustergo.ConnectedComponents(ctx, edges)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// result.Left labels a, b, g; result.Right labels x, h.
//
// Cap the iteration count for very large, high-diameter graphs:
//
//	result, err := clustergo.ConnectedComponents(ctx, edges,
//	    clustergo.WithMaxIter(10),
//	)
//	if !result.Converged {
//	    // under-merged approximation; rerun with a higher cap if needed
//	}
//
// Component identifiers are synthetic and only meaningful within a single
// call: they are not stable across invocations or edge-set changes.
package clustergo

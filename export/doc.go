// Package export persists clustering results as versioned artifacts.
//
// An Exporter writes the label relations of a run to a blobstore.Store, one
// file per role, encoded as CSV or JSON lines and compressed with zstandard
// or LZ4. Each run commits a JSON manifest and advances the CURRENT pointer,
// so readers always see a complete run. ReadEdges and ReadLabels load edge
// lists and committed label files back into in-memory relations.
package export

package export

import (
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/clustergo/blobstore"
	"github.com/hupe1980/clustergo/labeler"
	"github.com/hupe1980/clustergo/relation"
	"github.com/hupe1980/clustergo/resource"
)

// ReadEdges loads an edge list blob into an in-memory relation with the
// given identity columns. The blob must use the configured format and
// compression.
func ReadEdges(ctx context.Context, store blobstore.Store, name, leftColumn, rightColumn string, optFns ...func(o *Options)) (*relation.MemTable, error) {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	cols := []string{leftColumn, rightColumn}
	rows, err := readBlob(ctx, store, name, cols, opts)
	if err != nil {
		return nil, fmt.Errorf("export: read edges %s: %w", name, err)
	}
	return relation.NewMemTable(cols, rows), nil
}

// ReadLabels loads one exported label file of a committed run back into an
// in-memory relation of (identity, component) rows. identityColumn names
// the identity column the run was exported with.
func ReadLabels(ctx context.Context, store blobstore.Store, m *Manifest, role, identityColumn string, optFns ...func(o *Options)) (*relation.MemTable, error) {
	opts := DefaultOptions()
	var err error
	if opts.Format, err = ParseFormat(m.Format); err != nil {
		return nil, err
	}
	if opts.Compression, err = ParseCompression(m.Compression); err != nil {
		return nil, err
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	file, ok := m.File(role)
	if !ok {
		return nil, fmt.Errorf("export: run %s has no %s labels", m.RunID, role)
	}

	cols := []string{identityColumn, labeler.ComponentColumn}
	rows, err := readBlob(ctx, store, file.Name, cols, opts)
	if err != nil {
		return nil, fmt.Errorf("export: read labels %s: %w", file.Name, err)
	}
	return relation.NewMemTable(cols, rows), nil
}

func readBlob(ctx context.Context, store blobstore.Store, name string, cols []string, opts Options) ([][]relation.Value, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = blob.Close() }()

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	var r io.Reader = rc
	if opts.Controller != nil {
		r = resource.NewRateLimitedReader(ctx, r, opts.Controller)
	}

	cr, err := opts.Compression.newReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cr.Close() }()

	return opts.Format.readRows(cr, cols)
}

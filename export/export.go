package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/clustergo"
	"github.com/hupe1980/clustergo/blobstore"
	"github.com/hupe1980/clustergo/relation"
	"github.com/hupe1980/clustergo/resource"
)

// Options configures an Exporter.
type Options struct {
	// Format selects the row encoding. Default: FormatCSV.
	Format Format

	// Compression selects the codec. Default: CompressionZstd.
	Compression Compression

	// Controller bounds concurrency and IO throughput. Nil means unlimited
	// writers and no throttle.
	Controller *resource.Controller

	// Metrics receives one RecordExport per Export call. Nil disables it.
	Metrics clustergo.MetricsCollector
}

// DefaultOptions returns the default exporter options.
func DefaultOptions() Options {
	return Options{
		Format:      FormatCSV,
		Compression: CompressionZstd,
	}
}

// Exporter writes clustering results to a blob store and commits them under
// a run manifest.
type Exporter struct {
	store blobstore.Store
	opts  Options
}

// New creates an Exporter on top of the given store.
func New(store blobstore.Store, optFns ...func(o *Options)) *Exporter {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Exporter{store: store, opts: opts}
}

// Export writes the label relations of result under runID, one file per
// role, then commits a manifest and advances the CURRENT pointer. Roles are
// written concurrently; a failed role aborts the whole export and nothing is
// committed.
func (e *Exporter) Export(ctx context.Context, runID string, result *clustergo.Result) (*Manifest, error) {
	start := time.Now()

	var written atomic.Int64
	m, err := e.export(ctx, runID, result, &written)
	if e.opts.Metrics != nil {
		e.opts.Metrics.RecordExport(written.Load(), time.Since(start), err)
	}
	return m, err
}

func (e *Exporter) export(ctx context.Context, runID string, result *clustergo.Result, written *atomic.Int64) (*Manifest, error) {
	if runID == "" {
		return nil, fmt.Errorf("export: empty run id")
	}
	if result == nil {
		return nil, fmt.Errorf("export: nil result")
	}

	roles := []struct {
		name  string
		table relation.Table
	}{
		{name: "left", table: result.Left},
		{name: "right", table: result.Right},
		{name: "extra", table: result.Extra},
	}

	var (
		mu    sync.Mutex
		files []FileInfo
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, role := range roles {
		if role.table == nil {
			continue
		}
		g.Go(func() error {
			if err := e.opts.Controller.AcquireWorker(gctx); err != nil {
				return err
			}
			defer e.opts.Controller.ReleaseWorker()

			info, err := e.writeRole(gctx, runID, role.name, role.table, written)
			if err != nil {
				return fmt.Errorf("export %s labels: %w", role.name, err)
			}

			mu.Lock()
			files = append(files, info)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Stable role order regardless of which writer finished first.
	ordered := make([]FileInfo, 0, len(files))
	for _, role := range roles {
		for _, f := range files {
			if f.Role == role.name {
				ordered = append(ordered, f)
			}
		}
	}

	m := &Manifest{
		Version:     ManifestVersion,
		RunID:       runID,
		CreatedAt:   time.Now().UTC(),
		Format:      e.opts.Format.String(),
		Compression: e.opts.Compression.String(),
		Converged:   result.Converged,
		Rounds:      result.Rounds,
		Files:       ordered,
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: encode manifest: %w", err)
	}

	name := manifestName(runID)
	if err := e.store.Put(ctx, name, data); err != nil {
		return nil, fmt.Errorf("export: write manifest: %w", err)
	}
	written.Add(int64(len(data)))
	if err := e.store.Put(ctx, CurrentKey, []byte(name)); err != nil {
		return nil, fmt.Errorf("export: commit %s: %w", CurrentKey, err)
	}
	return m, nil
}

func (e *Exporter) writeRole(ctx context.Context, runID, role string, t relation.Table, written *atomic.Int64) (FileInfo, error) {
	rows, err := t.Rows(ctx)
	if err != nil {
		return FileInfo{}, err
	}

	name := path.Join(runID, role+e.opts.Format.extension()+e.opts.Compression.extension())

	blob, err := e.store.Create(ctx, name)
	if err != nil {
		return FileInfo{}, err
	}

	var w io.Writer = &countingWriter{w: blob, n: written}
	if e.opts.Controller != nil {
		w = resource.NewRateLimitedWriter(ctx, w, e.opts.Controller)
	}

	cw, err := e.opts.Compression.newWriter(w)
	if err != nil {
		_ = blob.Close()
		return FileInfo{}, err
	}

	n, err := e.opts.Format.writeRows(cw, t.Columns(), rows)
	if err != nil {
		_ = cw.Close()
		_ = blob.Close()
		return FileInfo{}, err
	}
	if err := cw.Close(); err != nil {
		_ = blob.Close()
		return FileInfo{}, err
	}
	if err := blob.Close(); err != nil {
		return FileInfo{}, err
	}

	return FileInfo{Role: role, Name: name, Rows: n}, nil
}

type countingWriter struct {
	w io.Writer
	n *atomic.Int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n.Add(int64(n))
	return n, err
}

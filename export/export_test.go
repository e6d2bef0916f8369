package export

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/clustergo"
	"github.com/hupe1980/clustergo/blobstore"
	"github.com/hupe1980/clustergo/labeler"
	"github.com/hupe1980/clustergo/relation"
	"github.com/hupe1980/clustergo/resource"
)

func clusterResult(t *testing.T) *clustergo.Result {
	t.Helper()
	edges := relation.NewMemTable(
		[]string{labeler.DefaultLeftColumn, labeler.DefaultRightColumn},
		[][]relation.Value{{"a", "b"}, {"b", "c"}, {"x", "y"}},
	)
	result, err := clustergo.ConnectedComponents(context.Background(), edges)
	require.NoError(t, err)
	return result
}

func labelsOf(t *testing.T, tbl relation.Table) map[string]uint64 {
	t.Helper()
	cols := tbl.Columns()
	idCol := cols[0]
	if idCol == labeler.ComponentColumn {
		idCol = cols[1]
	}
	rows, err := tbl.Rows(context.Background())
	require.NoError(t, err)

	out := make(map[string]uint64, len(rows))
	for _, r := range rows {
		c, ok := relation.AsUint64(r[labeler.ComponentColumn])
		require.True(t, ok)
		out[fmt.Sprint(r[idCol])] = c
	}
	return out
}

func TestExport_Roundtrip(t *testing.T) {
	result := clusterResult(t)

	formats := []Format{FormatCSV, FormatJSONL}
	codecs := []Compression{CompressionNone, CompressionZstd, CompressionLZ4}

	for _, format := range formats {
		for _, codec := range codecs {
			t.Run(fmt.Sprintf("%s_%s", format, codec), func(t *testing.T) {
				ctx := context.Background()
				store := blobstore.NewMemoryStore()
				exp := New(store, func(o *Options) {
					o.Format = format
					o.Compression = codec
				})

				m, err := exp.Export(ctx, "run-1", result)
				require.NoError(t, err)
				assert.Equal(t, "run-1", m.RunID)
				assert.Equal(t, format.String(), m.Format)
				assert.Equal(t, codec.String(), m.Compression)
				assert.True(t, m.Converged)
				require.Len(t, m.Files, 2) // left and right, no extra

				loaded, err := LoadManifest(ctx, store)
				require.NoError(t, err)
				assert.Equal(t, m.RunID, loaded.RunID)
				assert.Equal(t, m.Files, loaded.Files)

				left, err := ReadLabels(ctx, store, loaded, "left", labeler.DefaultLeftColumn)
				require.NoError(t, err)
				assert.Equal(t, labelsOf(t, result.Left), labelsOf(t, left))

				right, err := ReadLabels(ctx, store, loaded, "right", labeler.DefaultRightColumn)
				require.NoError(t, err)
				assert.Equal(t, labelsOf(t, result.Right), labelsOf(t, right))
			})
		}
	}
}

func TestExport_RowCounts(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	m, err := New(store).Export(ctx, "run-7", clusterResult(t))
	require.NoError(t, err)

	left, ok := m.File("left")
	require.True(t, ok)
	assert.Equal(t, int64(3), left.Rows) // a, b, x

	right, ok := m.File("right")
	require.True(t, ok)
	assert.Equal(t, int64(3), right.Rows) // b, c, y

	_, ok = m.File("extra")
	assert.False(t, ok)
}

func TestExport_CurrentPointer(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	exp := New(store)
	result := clusterResult(t)

	_, err := exp.Export(ctx, "run-1", result)
	require.NoError(t, err)
	_, err = exp.Export(ctx, "run-2", result)
	require.NoError(t, err)

	// The pointer follows the latest committed run.
	current, err := blobstore.ReadAll(ctx, store, CurrentKey)
	require.NoError(t, err)
	assert.Equal(t, manifestName("run-2"), string(current))

	m, err := LoadManifest(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "run-2", m.RunID)

	// Both runs' artifacts remain addressable.
	names, err := store.List(ctx, "run-1/")
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestExport_Validation(t *testing.T) {
	store := blobstore.NewMemoryStore()
	exp := New(store)

	_, err := exp.Export(context.Background(), "", clusterResult(t))
	require.Error(t, err)

	_, err = exp.Export(context.Background(), "run-1", nil)
	require.Error(t, err)
}

func TestExport_WithController(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	rc := resource.NewController(resource.Config{MaxExportWorkers: 1})

	exp := New(store, func(o *Options) {
		o.Controller = rc
	})

	m, err := exp.Export(ctx, "run-1", clusterResult(t))
	require.NoError(t, err)
	require.Len(t, m.Files, 2)

	// All worker slots were released.
	assert.True(t, rc.TryAcquireWorker())
}

func TestExport_Metrics(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	metrics := &clustergo.BasicMetricsCollector{}

	exp := New(store, func(o *Options) {
		o.Metrics = metrics
	})

	_, err := exp.Export(ctx, "run-1", clusterResult(t))
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.ExportCount)
	assert.Equal(t, int64(0), stats.ExportErrors)
	assert.Greater(t, stats.ExportBytes, int64(0))

	_, err = exp.Export(ctx, "", clusterResult(t))
	require.Error(t, err)
	assert.Equal(t, int64(1), metrics.GetStats().ExportErrors)
}

func TestReadEdges(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	data := "left,right\na,b\nb,c\n"
	require.NoError(t, store.Put(ctx, "edges.csv", []byte(data)))

	edges, err := ReadEdges(ctx, store, "edges.csv", "left", "right", func(o *Options) {
		o.Compression = CompressionNone
	})
	require.NoError(t, err)

	n, err := edges.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rows, err := edges.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", rows[0]["left"])
	assert.Equal(t, "b", rows[0]["right"])
}

func TestReadEdges_ThenCluster(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	data := "left,right\na,b\nb,c\nx,y\n"
	require.NoError(t, store.Put(ctx, "edges.csv", []byte(data)))

	edges, err := ReadEdges(ctx, store, "edges.csv", "left", "right", func(o *Options) {
		o.Compression = CompressionNone
	})
	require.NoError(t, err)

	result, err := clustergo.ConnectedComponents(ctx, edges, clustergo.WithColumns("left", "right"))
	require.NoError(t, err)
	assert.True(t, result.Converged)

	left := labelsOf(t, result.Left)
	right := labelsOf(t, result.Right)
	assert.Equal(t, left["a"], right["b"])
	assert.Equal(t, left["b"], right["c"])
	assert.NotEqual(t, left["a"], left["x"])
}

func TestReadLabels_UnknownRole(t *testing.T) {
	m := &Manifest{RunID: "run-1", Format: "csv", Compression: "none"}
	_, err := ReadLabels(context.Background(), blobstore.NewMemoryStore(), m, "extra", "id")
	require.Error(t, err)
}

func TestParseRoundtrip(t *testing.T) {
	for _, f := range []Format{FormatCSV, FormatJSONL} {
		got, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseFormat("parquet")
	require.Error(t, err)
	_, err = ParseCompression("gzip")
	require.Error(t, err)
}

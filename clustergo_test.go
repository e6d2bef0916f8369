package clustergo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/clustergo/labeler"
	"github.com/hupe1980/clustergo/namespace"
	"github.com/hupe1980/clustergo/relation"
)

func newEdges(pairs ...[2]relation.Value) *relation.MemTable {
	rows := make([][]relation.Value, len(pairs))
	for i, p := range pairs {
		rows[i] = []relation.Value{p[0], p[1]}
	}
	return relation.NewMemTable([]string{labeler.DefaultLeftColumn, labeler.DefaultRightColumn}, rows)
}

func clusters(t *testing.T, tables ...relation.Table) []string {
	t.Helper()

	groups := make(map[uint64]map[string]struct{})
	for _, tbl := range tables {
		if tbl == nil {
			continue
		}
		cols := tbl.Columns()
		idCol := cols[0]
		if idCol == labeler.ComponentColumn {
			idCol = cols[1]
		}
		rows, err := tbl.Rows(context.Background())
		require.NoError(t, err)
		for _, r := range rows {
			c, ok := relation.AsUint64(r[labeler.ComponentColumn])
			require.True(t, ok)
			if groups[c] == nil {
				groups[c] = make(map[string]struct{})
			}
			groups[c][fmt.Sprint(r[idCol])] = struct{}{}
		}
	}

	out := make([]string, 0, len(groups))
	for _, ids := range groups {
		sorted := make([]string, 0, len(ids))
		for id := range ids {
			sorted = append(sorted, id)
		}
		sort.Strings(sorted)
		out = append(out, strings.Join(sorted, " "))
	}
	sort.Strings(out)
	return out
}

func TestConnectedComponents(t *testing.T) {
	edges := newEdges(
		[2]relation.Value{0, 10}, [2]relation.Value{1, 10},
		[2]relation.Value{1, 11}, [2]relation.Value{2, 11},
		[2]relation.Value{2, 12}, [2]relation.Value{9, 20},
	)

	result, err := ConnectedComponents(context.Background(), edges)
	require.NoError(t, err)

	// In-memory edges without a cap take the exact union-find path.
	assert.True(t, result.Converged)
	assert.Equal(t, 0, result.Rounds)
	assert.Nil(t, result.Extra)
	assert.Equal(t, []string{"0 1 10 11 12 2", "20 9"}, clusters(t, result.Left, result.Right))
}

func TestConnectedComponents_EmptyEdges(t *testing.T) {
	result, err := ConnectedComponents(context.Background(), newEdges())
	require.NoError(t, err)

	assert.True(t, result.Converged)
	assert.Empty(t, clusters(t, result.Left, result.Right))
}

func TestConnectedComponents_WithColumns(t *testing.T) {
	edges := relation.NewMemTable([]string{"left", "right"}, [][]relation.Value{
		{"a", "b"},
	})

	result, err := ConnectedComponents(context.Background(), edges, WithColumns("left", "right"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a b"}, clusters(t, result.Left, result.Right))
}

func TestConnectedComponents_MissingColumn(t *testing.T) {
	edges := relation.NewMemTable([]string{"foo", "bar"}, nil)

	_, err := ConnectedComponents(context.Background(), edges)

	var mc *ErrMissingColumn
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, labeler.DefaultLeftColumn, mc.Column)
	assert.Equal(t, []string{"foo", "bar"}, mc.Have)
}

func TestConnectedComponents_WithMaxIter(t *testing.T) {
	edges := newEdges(
		[2]relation.Value{0, 10}, [2]relation.Value{1, 10},
		[2]relation.Value{1, 11}, [2]relation.Value{2, 11},
	)

	t.Run("cap forces the iterative strategy", func(t *testing.T) {
		result, err := ConnectedComponents(context.Background(), edges, WithMaxIter(100))
		require.NoError(t, err)

		assert.True(t, result.Converged)
		assert.Greater(t, result.Rounds, 0)
		assert.Equal(t, []string{"0 1 10 11 2"}, clusters(t, result.Left, result.Right))
	})

	t.Run("cap of zero returns the initial labeling", func(t *testing.T) {
		result, err := ConnectedComponents(context.Background(), edges, WithMaxIter(0))
		require.NoError(t, err)

		assert.False(t, result.Converged)
		assert.Equal(t, 0, result.Rounds)
		assert.Equal(t, []string{"0", "1", "10", "11", "2"}, clusters(t, result.Left, result.Right))
	})
}

func TestConnectedComponents_WithPolicy(t *testing.T) {
	// Dedupe-style edges: b appears on both sides. The unified namespace
	// must treat it as one node.
	edges := newEdges(
		[2]relation.Value{"b", "a"}, [2]relation.Value{"c", "b"},
	)

	result, err := ConnectedComponents(context.Background(), edges, WithPolicy(namespace.Unified))
	require.NoError(t, err)
	assert.Equal(t, []string{"a b c"}, clusters(t, result.Left, result.Right))
}

func TestConnectedComponents_WithNodes(t *testing.T) {
	edges := newEdges([2]relation.Value{"a", "b"})
	nodes := relation.NewMemTable([]string{"record_id"}, [][]relation.Value{{"a"}, {"z"}})

	t.Run("requires unified policy", func(t *testing.T) {
		_, err := ConnectedComponents(context.Background(), edges, WithNodes(nodes, "record_id"))
		require.ErrorIs(t, err, ErrNodesRequireUnified)
	})

	t.Run("labels isolated nodes", func(t *testing.T) {
		result, err := ConnectedComponents(context.Background(), edges,
			WithPolicy(namespace.Unified),
			WithNodes(nodes, "record_id"),
		)
		require.NoError(t, err)
		require.NotNil(t, result.Extra)
		assert.Equal(t, []string{"a b", "z"}, clusters(t, result.Left, result.Right, result.Extra))
	})
}

type stubLabeler struct {
	labeling *labeler.Labeling
	calls    int
}

func (s *stubLabeler) Label(context.Context, relation.Table) (*labeler.Labeling, error) {
	s.calls++
	return s.labeling, nil
}

func TestConnectedComponents_WithLabeler(t *testing.T) {
	canned := &labeler.Labeling{
		Left:      relation.NewMemTable([]string{"id", "component"}, nil),
		Right:     relation.NewMemTable([]string{"id", "component"}, nil),
		Converged: true,
		Rounds:    7,
	}
	stub := &stubLabeler{labeling: canned}

	result, err := ConnectedComponents(context.Background(), newEdges(), WithLabeler(stub))
	require.NoError(t, err)

	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, 7, result.Rounds)
	assert.Same(t, canned.Left, result.Left)
}

func TestConnectedComponents_WithMetricsCollector(t *testing.T) {
	edges := newEdges(
		[2]relation.Value{0, 10}, [2]relation.Value{1, 10},
	)

	metrics := &BasicMetricsCollector{}
	result, err := ConnectedComponents(context.Background(), edges,
		WithMaxIter(100), // iterative, so rounds are observed
		WithMetricsCollector(metrics),
	)
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.RunCount)
	assert.Equal(t, int64(0), stats.RunErrors)
	assert.Equal(t, int64(0), stats.CappedRuns)
	assert.Equal(t, int64(result.Rounds), stats.RoundCount)
	assert.Greater(t, stats.ChangedLabels, int64(0))
}

func TestConnectedComponents_CappedRunMetrics(t *testing.T) {
	edges := newEdges(
		[2]relation.Value{0, 10}, [2]relation.Value{1, 10},
	)

	metrics := &BasicMetricsCollector{}
	result, err := ConnectedComponents(context.Background(), edges,
		WithMaxIter(0),
		WithMetricsCollector(metrics),
	)
	require.NoError(t, err)
	require.False(t, result.Converged)

	assert.Equal(t, int64(1), metrics.GetStats().CappedRuns)
}

func TestBasicMetricsCollector_GetStats(t *testing.T) {
	m := &BasicMetricsCollector{}
	m.RecordRound(1, 5, 100)
	m.RecordRound(2, 0, 300)
	m.RecordRun(2, true, 1000, nil)
	m.RecordRun(0, false, 500, assert.AnError)
	m.RecordExport(4096, 100, nil)

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats.RoundCount)
	assert.Equal(t, int64(5), stats.ChangedLabels)
	assert.Equal(t, int64(200), stats.RoundAvgNanos)
	assert.Equal(t, int64(2), stats.RunCount)
	assert.Equal(t, int64(1), stats.RunErrors)
	assert.Equal(t, int64(750), stats.RunAvgNanos)
	assert.Equal(t, int64(1), stats.ExportCount)
	assert.Equal(t, int64(4096), stats.ExportBytes)
}

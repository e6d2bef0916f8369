package relation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowsOf(t *testing.T, tbl Table) []Row {
	t.Helper()
	rows, err := tbl.Rows(context.Background())
	require.NoError(t, err)
	return rows
}

func TestNewMemTable(t *testing.T) {
	t.Run("copies input", func(t *testing.T) {
		src := [][]Value{{1, 2}}
		tbl := NewMemTable([]string{"a", "b"}, src)
		src[0][0] = 99

		rows := rowsOf(t, tbl)
		assert.Equal(t, 1, rows[0]["a"])
	})

	t.Run("rejects ragged rows", func(t *testing.T) {
		tbl := NewMemTable([]string{"a", "b"}, [][]Value{{1}})
		_, err := tbl.Count(context.Background())
		require.Error(t, err)
	})
}

func TestMemTable_ProjectRenameAlias(t *testing.T) {
	tbl := NewMemTable([]string{"a", "b"}, [][]Value{{1, 2}, {3, 4}})

	t.Run("project reorders", func(t *testing.T) {
		p := tbl.Project("b", "a")
		assert.Equal(t, []string{"b", "a"}, p.Columns())
	})

	t.Run("rename", func(t *testing.T) {
		r := tbl.Rename("a", "x")
		assert.Equal(t, []string{"x", "b"}, r.Columns())
	})

	t.Run("rename to existing column fails", func(t *testing.T) {
		_, err := tbl.Rename("a", "b").Materialize(context.Background())
		require.ErrorIs(t, err, ErrSchemaMismatch)
	})

	t.Run("alias duplicates values", func(t *testing.T) {
		a := tbl.Alias("c", "a")
		assert.Equal(t, []string{"a", "b", "c"}, a.Columns())
		for _, r := range rowsOf(t, a) {
			assert.Equal(t, r["a"], r["c"])
		}
	})
}

func TestMemTable_DistinctUnion(t *testing.T) {
	t.Run("distinct", func(t *testing.T) {
		tbl := NewMemTable([]string{"a"}, [][]Value{{1}, {1}, {2}})
		n, err := tbl.Distinct().Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("union deduplicates", func(t *testing.T) {
		a := NewMemTable([]string{"x"}, [][]Value{{1}, {2}})
		b := NewMemTable([]string{"x"}, [][]Value{{2}, {3}})
		n, err := a.Union(b).Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("union aligns columns by name", func(t *testing.T) {
		a := NewMemTable([]string{"x", "y"}, [][]Value{{1, 2}})
		b := NewMemTable([]string{"y", "x"}, [][]Value{{20, 10}})
		rows := rowsOf(t, a.Union(b))
		require.Len(t, rows, 2)
		for _, r := range rows {
			if r["x"] == 10 {
				assert.Equal(t, 20, r["y"])
			}
		}
	})

	t.Run("union schema mismatch", func(t *testing.T) {
		a := NewMemTable([]string{"x"}, nil)
		b := NewMemTable([]string{"y"}, nil)
		_, err := a.Union(b).Materialize(context.Background())
		require.ErrorIs(t, err, ErrSchemaMismatch)
	})
}

func TestMemTable_Joins(t *testing.T) {
	labels := NewMemTable([]string{"record", "component"}, [][]Value{
		{uint64(0), uint64(0)},
		{uint64(1), uint64(0)},
		{uint64(2), uint64(2)},
	})

	t.Run("inner join drops right key column", func(t *testing.T) {
		edges := NewMemTable([]string{"l", "r"}, [][]Value{
			{uint64(0), uint64(1)},
			{uint64(0), uint64(9)}, // no label for 9
		})
		j := edges.Join(labels.Rename("record", "r2"), "r", "r2")
		assert.Equal(t, []string{"l", "r", "component"}, j.Columns())
		rows := rowsOf(t, j)
		require.Len(t, rows, 1)
		assert.Equal(t, uint64(0), rows[0]["component"])
	})

	t.Run("left join fills unmatched with NULL", func(t *testing.T) {
		left := NewMemTable([]string{"k"}, [][]Value{{uint64(2)}, {uint64(9)}})
		j := left.LeftJoin(labels.Rename("record", "k2"), "k", "k2")
		rows := rowsOf(t, j)
		require.Len(t, rows, 2)
		for _, r := range rows {
			if r["k"] == uint64(9) {
				assert.Nil(t, r["component"])
			} else {
				assert.Equal(t, uint64(2), r["component"])
			}
		}
	})

	t.Run("anti join keeps unmatched rows", func(t *testing.T) {
		left := NewMemTable([]string{"k"}, [][]Value{{uint64(1)}, {uint64(9)}})
		j := left.AntiJoin(labels, "k", "record")
		rows := rowsOf(t, j)
		require.Len(t, rows, 1)
		assert.Equal(t, uint64(9), rows[0]["k"])
	})

	t.Run("duplicate non-key column fails", func(t *testing.T) {
		a := NewMemTable([]string{"k", "v"}, nil)
		b := NewMemTable([]string{"k2", "v"}, nil)
		_, err := a.Join(b, "k", "k2").Materialize(context.Background())
		require.ErrorIs(t, err, ErrSchemaMismatch)
	})
}

func TestMemTable_MinBy(t *testing.T) {
	tbl := NewMemTable([]string{"g", "v"}, [][]Value{
		{uint64(1), uint64(5)},
		{uint64(1), uint64(3)},
		{uint64(2), uint64(7)},
	})
	m := tbl.MinBy("g", "v")
	assert.Equal(t, []string{"g", "v"}, m.Columns())

	got := make(map[Value]Value)
	for _, r := range rowsOf(t, m) {
		got[r["g"]] = r["v"]
	}
	assert.Equal(t, map[Value]Value{uint64(1): uint64(3), uint64(2): uint64(7)}, got)
}

func TestMemTable_ScalarOps(t *testing.T) {
	t.Run("least", func(t *testing.T) {
		tbl := NewMemTable([]string{"a", "b"}, [][]Value{{uint64(4), uint64(2)}})
		rows := rowsOf(t, tbl.Least("m", "a", "b"))
		assert.Equal(t, uint64(2), rows[0]["m"])
	})

	t.Run("coalesce", func(t *testing.T) {
		tbl := NewMemTable([]string{"a", "b"}, [][]Value{
			{nil, uint64(7)},
			{uint64(1), uint64(9)},
		})
		rows := rowsOf(t, tbl.Coalesce("c", "a", "b"))
		got := []Value{rows[0]["c"], rows[1]["c"]}
		assert.ElementsMatch(t, []Value{uint64(7), uint64(1)}, got)
	})

	t.Run("offset", func(t *testing.T) {
		tbl := NewMemTable([]string{"h"}, [][]Value{{uint64(3)}})
		rows := rowsOf(t, tbl.Offset("h", "h", 10))
		assert.Equal(t, uint64(13), rows[0]["h"])
	})

	t.Run("offset of non-integer fails", func(t *testing.T) {
		tbl := NewMemTable([]string{"h"}, [][]Value{{"x"}})
		_, err := tbl.Offset("h", "h", 1).Materialize(context.Background())
		require.Error(t, err)
	})

	t.Run("dense rank is order-based and dense", func(t *testing.T) {
		tbl := NewMemTable([]string{"id"}, [][]Value{{"c"}, {"a"}, {"b"}, {"a"}})
		got := make(map[Value]Value)
		for _, r := range rowsOf(t, tbl.DenseRank("rank", "id")) {
			got[r["id"]] = r["rank"]
		}
		assert.Equal(t, map[Value]Value{"a": uint64(0), "b": uint64(1), "c": uint64(2)}, got)
	})

	t.Run("not equal", func(t *testing.T) {
		tbl := NewMemTable([]string{"a", "b"}, [][]Value{
			{uint64(1), uint64(1)},
			{uint64(1), uint64(2)},
		})
		n, err := tbl.NotEqual("a", "b").Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestMemTable_Terminals(t *testing.T) {
	tbl := NewMemTable([]string{"a"}, [][]Value{{uint64(1)}, {uint64(5)}, {uint64(3)}})

	t.Run("count", func(t *testing.T) {
		n, err := tbl.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("max", func(t *testing.T) {
		v, err := tbl.Max(context.Background(), "a")
		require.NoError(t, err)
		assert.Equal(t, uint64(5), v)
	})

	t.Run("max of empty table is nil", func(t *testing.T) {
		empty := NewMemTable([]string{"a"}, nil)
		v, err := empty.Max(context.Background(), "a")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("materialize returns self", func(t *testing.T) {
		m, err := tbl.Materialize(context.Background())
		require.NoError(t, err)
		assert.Same(t, Table(tbl), m)
	})
}

func TestMemTable_ErrorPoisoning(t *testing.T) {
	tbl := NewMemTable([]string{"a"}, [][]Value{{1}})

	// The unknown column is referenced mid-chain; the error must survive
	// subsequent transforms and surface at the terminal.
	bad := tbl.Project("nope").Distinct().Rename("a", "b")

	var uc *ErrUnknownColumn
	_, err := bad.Materialize(context.Background())
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, "nope", uc.Column)

	_, err = bad.Count(context.Background())
	require.Error(t, err)
	_, err = bad.Rows(context.Background())
	require.Error(t, err)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"null first", nil, uint64(0), -1},
		{"numbers before strings", uint64(9), "a", -1},
		{"mixed numeric kinds", int(3), uint64(4), -1},
		{"equal across kinds", int(5), uint64(5), 0},
		{"negative before positive", int(-1), uint64(0), -1},
		{"strings", "a", "b", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, Compare(tt.b, tt.a))
		})
	}
}

func TestAsUint64(t *testing.T) {
	v, ok := AsUint64(uint64(7))
	assert.True(t, ok)
	assert.Equal(t, uint64(7), v)

	v, ok = AsUint64(int(7))
	assert.True(t, ok)
	assert.Equal(t, uint64(7), v)

	_, ok = AsUint64(int(-1))
	assert.False(t, ok)

	_, ok = AsUint64("7")
	assert.False(t, ok)

	_, ok = AsUint64(nil)
	assert.False(t, ok)
}

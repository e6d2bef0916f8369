package namespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/clustergo/relation"
)

func TestBuild(t *testing.T) {
	t.Run("dense handles in value order", func(t *testing.T) {
		a := Build([]relation.Value{"c", "a", "b"}, 0)
		require.Equal(t, 3, a.Len())

		for i, v := range []relation.Value{"a", "b", "c"} {
			h, ok := a.Handle(v)
			require.True(t, ok)
			assert.Equal(t, uint64(i), h)

			back, ok := a.Value(h)
			require.True(t, ok)
			assert.Equal(t, v, back)
		}
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		a := Build([]relation.Value{1, 1, 2, 2, 2}, 0)
		assert.Equal(t, 2, a.Len())
	})

	t.Run("base offsets the range", func(t *testing.T) {
		a := Build([]relation.Value{10, 20}, 5)
		assert.Equal(t, uint64(5), a.Base())
		assert.Equal(t, uint64(7), a.Next())

		h, ok := a.Handle(10)
		require.True(t, ok)
		assert.Equal(t, uint64(5), h)

		_, ok = a.Value(4)
		assert.False(t, ok)
		_, ok = a.Value(7)
		assert.False(t, ok)
	})

	t.Run("deterministic across input order", func(t *testing.T) {
		a := Build([]relation.Value{3, 1, 2}, 0)
		b := Build([]relation.Value{2, 3, 1}, 0)
		for _, v := range []relation.Value{1, 2, 3} {
			ha, _ := a.Handle(v)
			hb, _ := b.Handle(v)
			assert.Equal(t, ha, hb)
		}
	})
}

func TestArena_Append(t *testing.T) {
	a := Build([]relation.Value{"a", "b"}, 0)

	h := a.Append("z")
	assert.Equal(t, uint64(2), h)
	assert.Equal(t, 3, a.Len())

	// Appending an interned value returns its existing handle.
	assert.Equal(t, uint64(2), a.Append("z"))
	hb, _ := a.Handle("b")
	assert.Equal(t, hb, a.Append("b"))
}

func TestArena_UnknownValue(t *testing.T) {
	a := Build([]relation.Value{"a"}, 0)
	_, ok := a.Handle("missing")
	assert.False(t, ok)
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "PerRole", PerRole.String())
	assert.Equal(t, "Unified", Unified.String())
}

package namespace

import (
	"sort"

	"github.com/hupe1980/clustergo/relation"
)

// Arena is an injective mapping between record identities and dense uint64
// handles. Handles start at Base and are contiguous.
//
// An Arena is built once from the distinct identities observed in an edge
// relation; identities added later via Append (nodes absent from all edges)
// receive fresh handles past the initial range. Not safe for concurrent use.
type Arena struct {
	base     uint64
	byValue  map[relation.Value]uint64
	byHandle []relation.Value
}

// Build creates an Arena over the distinct values in vs, assigning handles
// base, base+1, ... in the order of relation.Compare. Duplicate values are
// collapsed.
func Build(vs []relation.Value, base uint64) *Arena {
	seen := make(map[relation.Value]struct{}, len(vs))
	distinct := make([]relation.Value, 0, len(vs))
	for _, v := range vs {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}
	sort.Slice(distinct, func(i, j int) bool {
		return relation.Compare(distinct[i], distinct[j]) < 0
	})

	a := &Arena{
		base:     base,
		byValue:  make(map[relation.Value]uint64, len(distinct)),
		byHandle: distinct,
	}
	for i, v := range distinct {
		a.byValue[v] = base + uint64(i)
	}
	return a
}

// Handle returns the handle for v, if v is interned.
func (a *Arena) Handle(v relation.Value) (uint64, bool) {
	h, ok := a.byValue[v]
	return h, ok
}

// Value returns the identity for handle h, if h belongs to this arena.
func (a *Arena) Value(h uint64) (relation.Value, bool) {
	if h < a.base || h >= a.base+uint64(len(a.byHandle)) {
		return nil, false
	}
	return a.byHandle[h-a.base], true
}

// Append interns v with the next free handle and returns it. If v is already
// interned its existing handle is returned.
func (a *Arena) Append(v relation.Value) uint64 {
	if h, ok := a.byValue[v]; ok {
		return h
	}
	h := a.Next()
	a.byValue[v] = h
	a.byHandle = append(a.byHandle, v)
	return h
}

// Len returns the number of interned identities.
func (a *Arena) Len() int {
	return len(a.byHandle)
}

// Base returns the first handle of the arena's range.
func (a *Arena) Base() uint64 {
	return a.base
}

// Next returns the handle the next Append would assign.
func (a *Arena) Next() uint64 {
	return a.base + uint64(len(a.byHandle))
}

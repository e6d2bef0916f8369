package partition

import (
	"context"
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/clustergo/labeler"
	"github.com/hupe1980/clustergo/namespace"
	"github.com/hupe1980/clustergo/relation"
)

// Partition is an immutable index over one clustering result. Safe for
// concurrent reads after construction.
type Partition struct {
	arena      *namespace.Arena
	members    map[uint64]*roaring64.Bitmap // component -> member handles
	byIdentity map[relation.Value]uint64    // identity -> component
}

// New builds a Partition from one or more label relations. Each relation
// must have two columns with the component column named "component"; the
// other column holds identities. Relations typically come straight from a
// Result (Left, Right and optionally Extra).
//
// An identity appearing in several relations must carry the same component
// in all of them.
func New(ctx context.Context, tables ...relation.Table) (*Partition, error) {
	identities := make([]relation.Value, 0)
	type pair struct {
		id   relation.Value
		comp uint64
	}
	pairs := make([]pair, 0)

	for _, t := range tables {
		if t == nil {
			continue
		}
		idCol, err := identityColumn(t)
		if err != nil {
			return nil, err
		}
		rows, err := t.Rows(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			comp, ok := relation.AsUint64(r[labeler.ComponentColumn])
			if !ok {
				return nil, fmt.Errorf("partition: component for identity %v is %T, not a handle", r[idCol], r[labeler.ComponentColumn])
			}
			identities = append(identities, r[idCol])
			pairs = append(pairs, pair{id: r[idCol], comp: comp})
		}
	}

	p := &Partition{
		arena:      namespace.Build(identities, 0),
		members:    make(map[uint64]*roaring64.Bitmap),
		byIdentity: make(map[relation.Value]uint64, len(pairs)),
	}
	for _, pr := range pairs {
		if prev, seen := p.byIdentity[pr.id]; seen {
			if prev != pr.comp {
				return nil, fmt.Errorf("partition: identity %v labeled with both %d and %d", pr.id, prev, pr.comp)
			}
			continue
		}
		p.byIdentity[pr.id] = pr.comp

		bm, ok := p.members[pr.comp]
		if !ok {
			bm = roaring64.New()
			p.members[pr.comp] = bm
		}
		h, _ := p.arena.Handle(pr.id)
		bm.Add(h)
	}
	return p, nil
}

func identityColumn(t relation.Table) (string, error) {
	cols := t.Columns()
	if len(cols) != 2 {
		return "", fmt.Errorf("partition: label relation must have two columns, got %v", cols)
	}
	switch labeler.ComponentColumn {
	case cols[0]:
		return cols[1], nil
	case cols[1]:
		return cols[0], nil
	}
	return "", fmt.Errorf("partition: label relation %v lacks a %q column", cols, labeler.ComponentColumn)
}

// NumComponents returns the number of distinct components.
func (p *Partition) NumComponents() int {
	return len(p.members)
}

// NumRecords returns the number of labeled identities.
func (p *Partition) NumRecords() int {
	return len(p.byIdentity)
}

// ComponentOf returns the component of an identity.
func (p *Partition) ComponentOf(id relation.Value) (uint64, bool) {
	c, ok := p.byIdentity[id]
	return c, ok
}

// SameComponent reports whether two identities were clustered together.
// Unknown identities are never in the same component.
func (p *Partition) SameComponent(a, b relation.Value) bool {
	ca, ok := p.byIdentity[a]
	if !ok {
		return false
	}
	cb, ok := p.byIdentity[b]
	return ok && ca == cb
}

// Size returns the number of members of a component.
func (p *Partition) Size(component uint64) uint64 {
	bm, ok := p.members[component]
	if !ok {
		return 0
	}
	return bm.GetCardinality()
}

// Sizes returns the size of every component keyed by its label.
func (p *Partition) Sizes() map[uint64]uint64 {
	sizes := make(map[uint64]uint64, len(p.members))
	for c, bm := range p.members {
		sizes[c] = bm.GetCardinality()
	}
	return sizes
}

// Members returns the identities of a component, ordered by their dense
// handles.
func (p *Partition) Members(component uint64) []relation.Value {
	bm, ok := p.members[component]
	if !ok {
		return nil
	}
	out := make([]relation.Value, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		v, _ := p.arena.Value(it.Next())
		out = append(out, v)
	}
	return out
}

// Components returns all component labels in ascending order.
func (p *Partition) Components() []uint64 {
	out := make([]uint64, 0, len(p.members))
	for c := range p.members {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

package iterative

import (
	"context"

	"github.com/hupe1980/clustergo/relation"
)

// initialLabels seeds every node seen in an edge with itself as its own
// label: the deduplicated union of (handle, handle) pairs derived from each
// edge column.
func initialLabels(edges relation.Table) relation.Table {
	left := edges.Project(recordLeftCol).
		Rename(recordLeftCol, recordCol).
		Alias(componentCol, recordCol)
	right := edges.Project(recordRightCol).
		Rename(recordRightCol, recordCol).
		Alias(componentCol, recordCol)
	return left.Union(right)
}

// step computes the next labeling from the current one: discover which
// components are bridged by an edge, reduce each bridged group to its
// minimum label, and substitute.
func step(labels, edges relation.Table) relation.Table {
	pairs := equivalences(edges, labels)
	mapping := updateMap(pairs)
	return relabel(labels, mapping)
}

// equivalences returns the distinct (component_l, component_r) pairs bridged
// by at least one edge under the current labeling.
func equivalences(edges, labels relation.Table) relation.Table {
	return edges.
		Join(labels.Rename(componentCol, componentLCol), recordLeftCol, recordCol).
		Join(labels.Rename(componentCol, componentRCol), recordRightCol, recordCol).
		Project(componentLCol, componentRCol).
		Distinct()
}

// updateMap reduces equivalence pairs to a substitution map from old label to
// the minimum representative. The trailing group-by-min handles an old label
// participating in several pairs within one round (chained merges).
func updateMap(pairs relation.Table) relation.Table {
	m := pairs.Least(componentNewCol, componentLCol, componentRCol)
	ml := m.Project(componentLCol, componentNewCol).Rename(componentLCol, componentOldCol)
	mr := m.Project(componentRCol, componentNewCol).Rename(componentRCol, componentOldCol)
	return ml.Union(mr).MinBy(componentOldCol, componentNewCol)
}

// relabel applies the substitution map: where a substitution exists use it,
// else keep the old label.
func relabel(labels, mapping relation.Table) relation.Table {
	return labels.
		Rename(componentCol, componentOldCol).
		LeftJoin(mapping, componentOldCol, componentOldCol).
		Coalesce(componentCol, componentNewCol, componentOldCol).
		Project(recordCol, componentCol)
}

// countChanged counts nodes whose label differs between two labelings.
func countChanged(ctx context.Context, old, next relation.Table) (int64, error) {
	return old.
		Rename(componentCol, componentOldCol).
		Join(next.Rename(componentCol, componentNewCol), recordCol, recordCol).
		NotEqual(componentOldCol, componentNewCol).
		Count(ctx)
}

// mapRole projects dense labels back onto one role's original identities,
// yielding (identity, component).
func mapRole(ctx context.Context, roleMap, labels relation.Table) (relation.Table, error) {
	identity := roleMap.Columns()[0]
	return roleMap.
		LeftJoin(labels, recordCol, recordCol).
		Project(identity, componentCol).
		Materialize(ctx)
}

// extraNodeLabels assigns fresh singleton components to nodes that appear in
// no edge, numbering them past the maximum assigned label.
func extraNodeLabels(ctx context.Context, nodes relation.Table, nodeCol string, allMap, labels relation.Table) (relation.Table, error) {
	missing := nodes.Project(nodeCol).Distinct().AntiJoin(allMap, nodeCol, unifiedIDCol)

	var base uint64
	maxLabel, err := labels.Max(ctx, componentCol)
	if err != nil {
		return nil, err
	}
	if maxLabel != nil {
		h, _ := relation.AsUint64(maxLabel)
		base = h + 1
	}

	return missing.
		DenseRank(componentCol, nodeCol).
		Offset(componentCol, componentCol, base).
		Materialize(ctx)
}

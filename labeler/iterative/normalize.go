package iterative

import (
	"context"

	"github.com/hupe1980/clustergo/namespace"
	"github.com/hupe1980/clustergo/relation"
)

// normalized holds the outcome of namespace normalization: the edge relation
// rewritten over dense handles, plus the reversible mapping tables used to
// project labels back onto the original identities.
type normalized struct {
	// edges has columns (record_l, record_r), deduplicated.
	edges relation.Table

	// leftMap has columns (<left identity>, record).
	leftMap relation.Table

	// rightMap has columns (<right identity>, record).
	rightMap relation.Table

	// allMap has columns (record_id, record) covering both roles. Only set
	// under the Unified policy.
	allMap relation.Table
}

func (l *Labeler) normalize(ctx context.Context, edges relation.Table) (*normalized, error) {
	cl, cr := l.opts.LeftColumn, l.opts.RightColumn
	pairs := edges.Project(cl, cr)

	switch l.opts.Policy {
	case namespace.Unified:
		return normalizeUnified(ctx, pairs, cl, cr)
	default:
		return normalizePerRole(ctx, pairs, cl, cr)
	}
}

// normalizePerRole numbers each identity column independently by dense rank
// and shifts the right range past the left one, so the two roles can never
// collide in the handle space.
func normalizePerRole(ctx context.Context, pairs relation.Table, cl, cr string) (*normalized, error) {
	leftMap, err := pairs.Project(cl).Distinct().DenseRank(recordCol, cl).Materialize(ctx)
	if err != nil {
		return nil, err
	}
	leftCount, err := leftMap.Count(ctx)
	if err != nil {
		return nil, err
	}

	rightMap, err := pairs.Project(cr).Distinct().
		DenseRank(recordCol, cr).
		Offset(recordCol, recordCol, uint64(leftCount)+1).
		Materialize(ctx)
	if err != nil {
		return nil, err
	}

	norm, err := pairs.
		Join(leftMap.Rename(recordCol, recordLeftCol), cl, cl).
		Join(rightMap.Rename(recordCol, recordRightCol), cr, cr).
		Project(recordLeftCol, recordRightCol).
		Distinct().
		Materialize(ctx)
	if err != nil {
		return nil, err
	}

	return &normalized{edges: norm, leftMap: leftMap, rightMap: rightMap}, nil
}

// normalizeUnified numbers the union of both identity columns as one
// namespace, so an identity denotes the same node regardless of role.
func normalizeUnified(ctx context.Context, pairs relation.Table, cl, cr string) (*normalized, error) {
	ids := pairs.Project(cl).Rename(cl, unifiedIDCol).
		Union(pairs.Project(cr).Rename(cr, unifiedIDCol))
	allMap, err := ids.DenseRank(recordCol, unifiedIDCol).Materialize(ctx)
	if err != nil {
		return nil, err
	}

	norm, err := pairs.
		Join(allMap.Rename(unifiedIDCol, cl).Rename(recordCol, recordLeftCol), cl, cl).
		Join(allMap.Rename(unifiedIDCol, cr).Rename(recordCol, recordRightCol), cr, cr).
		Project(recordLeftCol, recordRightCol).
		Distinct().
		Materialize(ctx)
	if err != nil {
		return nil, err
	}

	leftMap, err := pairs.Project(cl).Distinct().
		Join(allMap.Rename(unifiedIDCol, cl), cl, cl).
		Materialize(ctx)
	if err != nil {
		return nil, err
	}
	rightMap, err := pairs.Project(cr).Distinct().
		Join(allMap.Rename(unifiedIDCol, cr), cr, cr).
		Materialize(ctx)
	if err != nil {
		return nil, err
	}

	return &normalized{edges: norm, leftMap: leftMap, rightMap: rightMap, allMap: allMap}, nil
}

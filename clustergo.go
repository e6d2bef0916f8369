package clustergo

import (
	"context"
	"time"

	"github.com/hupe1980/clustergo/labeler"
	"github.com/hupe1980/clustergo/labeler/iterative"
	"github.com/hupe1980/clustergo/labeler/unionfind"
	"github.com/hupe1980/clustergo/relation"
)

// Result holds the outcome of one clustering call.
type Result struct {
	// Left labels identities from the left edge column: (identity, component).
	Left relation.Table

	// Right labels identities from the right edge column: (identity, component).
	Right relation.Table

	// Extra labels nodes supplied via WithNodes that appear in no edge. Nil
	// unless WithNodes was used.
	Extra relation.Table

	// Converged reports whether the labeling is the true partition. False
	// means the iteration cap was hit first and the labeling is an
	// under-merged but valid partial refinement.
	Converged bool

	// Rounds is the number of label propagation rounds executed.
	Rounds int
}

// ConnectedComponents clusters the given edge relation into connected
// components: every pair of identities reachable through edges ends up with
// the same component value.
//
// The edge relation must expose the configured identity columns (defaults
// "record_id_l", "record_id_r"); duplicate rows are deduplicated internally.
// Identities absent from every edge are absent from the output - callers
// must treat them as singleton clusters (or supply them via WithNodes).
//
// Strategy selection: an in-memory edge relation without an iteration cap is
// clustered with the exact union-find fast path; everything else uses the
// iterative relational strategy. Use WithLabeler to override.
func ConnectedComponents(ctx context.Context, edges relation.Table, optFns ...Option) (*Result, error) {
	opts := applyOptions(optFns)

	l, err := buildLabeler(edges, opts)
	if err != nil {
		return nil, translateError(err)
	}

	start := time.Now()
	labeling, err := l.Label(ctx, edges)
	duration := time.Since(start)

	if err != nil {
		opts.metricsCollector.RecordRun(0, false, duration, err)
		opts.logger.LogRun(ctx, 0, false, err)
		return nil, translateError(err)
	}

	opts.metricsCollector.RecordRun(labeling.Rounds, labeling.Converged, duration, nil)
	opts.logger.LogRun(ctx, labeling.Rounds, labeling.Converged, nil)

	return &Result{
		Left:      labeling.Left,
		Right:     labeling.Right,
		Extra:     labeling.Extra,
		Converged: labeling.Converged,
		Rounds:    labeling.Rounds,
	}, nil
}

func buildLabeler(edges relation.Table, opts options) (labeler.ComponentLabeler, error) {
	if opts.labeler != nil {
		return opts.labeler, nil
	}

	// An in-memory edge relation is by definition small enough for the exact
	// fast path; a configured cap only has meaning for the iterative strategy.
	if _, inMemory := edges.(*relation.MemTable); inMemory && opts.maxIter < 0 {
		return unionfind.New(func(o *unionfind.Options) {
			o.LeftColumn = opts.leftColumn
			o.RightColumn = opts.rightColumn
			o.Policy = opts.policy
			o.Nodes = opts.nodes
			o.NodeColumn = opts.nodeColumn
			o.Logger = opts.logger.Logger
		})
	}

	return iterative.New(func(o *iterative.Options) {
		o.LeftColumn = opts.leftColumn
		o.RightColumn = opts.rightColumn
		o.MaxIter = opts.maxIter
		o.Policy = opts.policy
		o.Nodes = opts.nodes
		o.NodeColumn = opts.nodeColumn
		o.Logger = opts.logger.Logger
		o.Observer = &collectorObserver{mc: opts.metricsCollector}
	})
}

// collectorObserver adapts a MetricsCollector to the per-round observer the
// iterative strategy expects.
type collectorObserver struct {
	mc MetricsCollector
}

func (c *collectorObserver) ObserveRound(round int, changed int64, duration time.Duration) {
	c.mc.RecordRound(round, changed, duration)
}

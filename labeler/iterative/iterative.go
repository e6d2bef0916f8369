package iterative

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/hupe1980/clustergo/labeler"
	"github.com/hupe1980/clustergo/namespace"
	"github.com/hupe1980/clustergo/relation"
)

// Compile-time check to ensure Labeler satisfies the capability interface.
var _ labeler.ComponentLabeler = (*Labeler)(nil)

// Internal column names of the dense-handle relations built during a run.
// Identity columns must not collide with these.
const (
	recordCol       = "record"
	recordLeftCol   = "record_l"
	recordRightCol  = "record_r"
	componentCol    = labeler.ComponentColumn
	componentLCol   = "component_l"
	componentRCol   = "component_r"
	componentOldCol = "component_old"
	componentNewCol = "component_new"
	unifiedIDCol    = "record_id"
)

var reservedCols = []string{
	recordCol, recordLeftCol, recordRightCol,
	componentCol, componentLCol, componentRCol,
	componentOldCol, componentNewCol,
}

// Labeler clusters edges by iterative relational label propagation.
type Labeler struct {
	opts     Options
	logger   *slog.Logger
	observer labeler.RoundObserver
}

// New creates an iterative Labeler.
func New(optFns ...func(o *Options)) (*Labeler, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Nodes != nil && opts.Policy != namespace.Unified {
		return nil, labeler.ErrNodesRequireUnified
	}
	for _, c := range []string{opts.LeftColumn, opts.RightColumn} {
		if slices.Contains(reservedCols, c) {
			return nil, fmt.Errorf("identity column %q collides with an internal column name", c)
		}
	}

	l := &Labeler{
		opts:     opts,
		logger:   opts.Logger,
		observer: opts.Observer,
	}
	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}
	if l.observer == nil {
		l.observer = labeler.NoopRoundObserver{}
	}
	return l, nil
}

// Name returns the strategy name.
func (*Labeler) Name() string { return "Iterative" }

// Label implements labeler.ComponentLabeler.
func (l *Labeler) Label(ctx context.Context, edges relation.Table) (*labeler.Labeling, error) {
	if err := labeler.ValidateColumns(edges, l.opts.LeftColumn, l.opts.RightColumn); err != nil {
		return nil, err
	}
	if l.opts.Nodes != nil {
		if err := labeler.ValidateColumns(l.opts.Nodes, l.opts.NodeColumn); err != nil {
			return nil, err
		}
	}

	edges, err := edges.Materialize(ctx)
	if err != nil {
		return nil, err
	}

	norm, err := l.normalize(ctx, edges)
	if err != nil {
		return nil, err
	}

	labels, converged, rounds, err := l.run(ctx, norm.edges)
	if err != nil {
		return nil, err
	}

	left, err := mapRole(ctx, norm.leftMap, labels)
	if err != nil {
		return nil, err
	}
	right, err := mapRole(ctx, norm.rightMap, labels)
	if err != nil {
		return nil, err
	}

	out := &labeler.Labeling{
		Left:      left,
		Right:     right,
		Converged: converged,
		Rounds:    rounds,
	}

	if l.opts.Nodes != nil {
		extra, err := extraNodeLabels(ctx, l.opts.Nodes, l.opts.NodeColumn, norm.allMap, labels)
		if err != nil {
			return nil, err
		}
		out.Extra = extra
	}

	l.logger.InfoContext(ctx, "clustering completed",
		"strategy", l.Name(),
		"rounds", rounds,
		"converged", converged,
	)
	return out, nil
}

// run drives the fixpoint loop over materialized snapshots. The loop is a
// small state machine: Running until either no label changes (Converged) or
// the iteration cap is reached (Capped).
func (l *Labeler) run(ctx context.Context, edges relation.Table) (relation.Table, bool, int, error) {
	labels, err := initialLabels(edges).Materialize(ctx)
	if err != nil {
		return nil, false, 0, err
	}
	domain, err := labels.Count(ctx)
	if err != nil {
		return nil, false, 0, err
	}

	rounds := 0
	for {
		if l.opts.MaxIter >= 0 && rounds >= l.opts.MaxIter {
			return labels, false, rounds, nil
		}

		start := time.Now()
		next, err := step(labels, edges).Materialize(ctx)
		if err != nil {
			return nil, false, rounds, err
		}

		// The label domain is total over nodes seen in edges; rounds change
		// values, never keys.
		n, err := next.Count(ctx)
		if err != nil {
			return nil, false, rounds, err
		}
		if n != domain {
			return nil, false, rounds, fmt.Errorf("label domain size changed from %d to %d in round %d", domain, n, rounds+1)
		}

		changed, err := countChanged(ctx, labels, next)
		if err != nil {
			return nil, false, rounds, err
		}
		rounds++

		l.observer.ObserveRound(rounds, changed, time.Since(start))
		l.logger.InfoContext(ctx, "round completed", "round", rounds, "changed", changed)

		if changed == 0 {
			return labels, true, rounds, nil
		}
		labels = next
	}
}

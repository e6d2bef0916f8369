package unionfind

import (
	"context"
	"log/slog"
	"sort"

	"github.com/hupe1980/clustergo/labeler"
	"github.com/hupe1980/clustergo/namespace"
	"github.com/hupe1980/clustergo/relation"
)

// Compile-time check to ensure Labeler satisfies the capability interface.
var _ labeler.ComponentLabeler = (*Labeler)(nil)

// Labeler clusters edges with an in-memory disjoint-set structure.
type Labeler struct {
	opts   Options
	logger *slog.Logger
}

// New creates a union-find Labeler.
func New(optFns ...func(o *Options)) (*Labeler, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Nodes != nil && opts.Policy != namespace.Unified {
		return nil, labeler.ErrNodesRequireUnified
	}

	l := &Labeler{opts: opts, logger: opts.Logger}
	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}
	return l, nil
}

// Name returns the strategy name.
func (*Labeler) Name() string { return "UnionFind" }

// Label implements labeler.ComponentLabeler. The result is always exact:
// Converged is true and Rounds is zero.
func (l *Labeler) Label(ctx context.Context, edges relation.Table) (*labeler.Labeling, error) {
	cl, cr := l.opts.LeftColumn, l.opts.RightColumn
	if err := labeler.ValidateColumns(edges, cl, cr); err != nil {
		return nil, err
	}
	if l.opts.Nodes != nil {
		if err := labeler.ValidateColumns(l.opts.Nodes, l.opts.NodeColumn); err != nil {
			return nil, err
		}
	}

	rows, err := edges.Project(cl, cr).Rows(ctx)
	if err != nil {
		return nil, err
	}

	leftVals := make([]relation.Value, 0, len(rows))
	rightVals := make([]relation.Value, 0, len(rows))
	for _, r := range rows {
		leftVals = append(leftVals, r[cl])
		rightVals = append(rightVals, r[cr])
	}

	var out *labeler.Labeling
	if l.opts.Policy == namespace.Unified {
		out, err = l.labelUnified(ctx, rows, leftVals, rightVals)
	} else {
		out, err = l.labelPerRole(rows, leftVals, rightVals)
	}
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "clustering completed",
		"strategy", l.Name(),
		"nodes", len(leftVals)+len(rightVals),
		"edges", len(rows),
	)
	return out, nil
}

func (l *Labeler) labelPerRole(rows []relation.Row, leftVals, rightVals []relation.Value) (*labeler.Labeling, error) {
	cl, cr := l.opts.LeftColumn, l.opts.RightColumn

	leftArena := namespace.Build(leftVals, 0)
	// Offsetting past the left range keeps the roles collision-free.
	rightArena := namespace.Build(rightVals, uint64(leftArena.Len())+1)

	d := NewDisjointSet(rightArena.Next())
	for _, r := range rows {
		lh, _ := leftArena.Handle(r[cl])
		rh, _ := rightArena.Handle(r[cr])
		d.Union(lh, rh)
	}
	labels := d.Labels()

	return &labeler.Labeling{
		Left:      roleTable(cl, leftArena, labels),
		Right:     roleTable(cr, rightArena, labels),
		Converged: true,
	}, nil
}

func (l *Labeler) labelUnified(ctx context.Context, rows []relation.Row, leftVals, rightVals []relation.Value) (*labeler.Labeling, error) {
	cl, cr := l.opts.LeftColumn, l.opts.RightColumn

	all := make([]relation.Value, 0, len(leftVals)+len(rightVals))
	all = append(all, leftVals...)
	all = append(all, rightVals...)
	arena := namespace.Build(all, 0)

	d := NewDisjointSet(arena.Next())
	for _, r := range rows {
		lh, _ := arena.Handle(r[cl])
		rh, _ := arena.Handle(r[cr])
		d.Union(lh, rh)
	}
	labels := d.Labels()

	out := &labeler.Labeling{
		Left:      seenTable(cl, leftVals, arena, labels),
		Right:     seenTable(cr, rightVals, arena, labels),
		Converged: true,
	}

	if l.opts.Nodes != nil {
		extra, err := l.extraNodeLabels(ctx, arena, labels)
		if err != nil {
			return nil, err
		}
		out.Extra = extra
	}
	return out, nil
}

// extraNodeLabels assigns fresh singleton components to configured nodes
// that appear in no edge, numbering them past the maximum assigned label.
func (l *Labeler) extraNodeLabels(ctx context.Context, arena *namespace.Arena, labels []uint64) (relation.Table, error) {
	nodeRows, err := l.opts.Nodes.Project(l.opts.NodeColumn).Distinct().Rows(ctx)
	if err != nil {
		return nil, err
	}

	missing := make([]relation.Value, 0, len(nodeRows))
	for _, r := range nodeRows {
		v := r[l.opts.NodeColumn]
		if _, seen := arena.Handle(v); !seen {
			missing = append(missing, v)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		return relation.Compare(missing[i], missing[j]) < 0
	})

	next := uint64(0)
	for _, c := range labels {
		if c+1 > next {
			next = c + 1
		}
	}

	rows := make([][]relation.Value, len(missing))
	for i, v := range missing {
		rows[i] = []relation.Value{v, next}
		next++
	}
	return relation.NewMemTable([]string{l.opts.NodeColumn, labeler.ComponentColumn}, rows), nil
}

// roleTable projects one role's arena back onto identities: (identity, component).
func roleTable(identityCol string, arena *namespace.Arena, labels []uint64) relation.Table {
	rows := make([][]relation.Value, 0, arena.Len())
	for h := arena.Base(); h < arena.Next(); h++ {
		v, _ := arena.Value(h)
		rows = append(rows, []relation.Value{v, labels[h]})
	}
	return relation.NewMemTable([]string{identityCol, labeler.ComponentColumn}, rows)
}

// seenTable labels the distinct identities observed in one role of a unified
// namespace.
func seenTable(identityCol string, vals []relation.Value, arena *namespace.Arena, labels []uint64) relation.Table {
	seen := make(map[relation.Value]struct{}, len(vals))
	rows := make([][]relation.Value, 0, len(vals))
	for _, v := range vals {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		h, _ := arena.Handle(v)
		rows = append(rows, []relation.Value{v, labels[h]})
	}
	return relation.NewMemTable([]string{identityCol, labeler.ComponentColumn}, rows)
}

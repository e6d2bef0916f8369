package clustergo

import (
	"log/slog"

	"github.com/hupe1980/clustergo/labeler"
	"github.com/hupe1980/clustergo/labeler/iterative"
	"github.com/hupe1980/clustergo/namespace"
	"github.com/hupe1980/clustergo/relation"
)

type options struct {
	leftColumn       string
	rightColumn      string
	maxIter          int
	policy           namespace.Policy
	nodes            relation.Table
	nodeColumn       string
	labeler          labeler.ComponentLabeler
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures ConnectedComponents behavior.
type Option func(*options)

// WithColumns configures the names of the left and right identity columns in
// the edge relation. Defaults are "record_id_l" and "record_id_r".
func WithColumns(left, right string) Option {
	return func(o *options) {
		o.leftColumn = left
		o.rightColumn = right
	}
}

// WithMaxIter caps the number of label propagation rounds. Without a cap the
// iteration runs to true fixpoint.
//
// Hitting the cap is not an error: the returned labeling is an under-merged
// but valid partial refinement of the true partition, and Result.Converged
// reports false. A cap of 0 returns the initial singleton labeling.
//
// The cap forces the iterative strategy; the union-find fast path has no
// rounds to bound.
func WithMaxIter(n int) Option {
	return func(o *options) {
		o.maxIter = n
	}
}

// WithPolicy configures how the two identity columns share the dense handle
// namespace. The default is namespace.PerRole, which preserves the behavior
// of true two-table linkage: each column is numbered independently, and
// callers own the guarantee that the two columns draw from disjoint record
// populations. Use namespace.Unified for dedupe-style edge sets where the
// same identity may appear on either side of an edge.
func WithPolicy(p namespace.Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithNodes supplies identities that must be labeled even when they appear
// in no edge; each receives a fresh singleton component, returned in
// Result.Extra. column names the identity column of nodes.
//
// Requires WithPolicy(namespace.Unified).
func WithNodes(nodes relation.Table, column string) Option {
	return func(o *options) {
		o.nodes = nodes
		if column != "" {
			o.nodeColumn = column
		}
	}
}

// WithLabeler overrides strategy selection with a custom ComponentLabeler.
// The labeler's own configuration wins over WithColumns, WithMaxIter,
// WithPolicy and WithNodes.
func WithLabeler(l labeler.ComponentLabeler) Option {
	return func(o *options) {
		o.labeler = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// clustering runs. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &clustergo.BasicMetricsCollector{}
//	result, _ := clustergo.ConnectedComponents(ctx, edges, clustergo.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Rounds: %d, Changed labels: %d\n", stats.RoundCount, stats.ChangedLabels)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for clustering runs.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := clustergo.NewJSONLogger(slog.LevelInfo)
//	result, _ := clustergo.ConnectedComponents(ctx, edges, clustergo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		leftColumn:       labeler.DefaultLeftColumn,
		rightColumn:      labeler.DefaultRightColumn,
		maxIter:          iterative.Unbounded,
		policy:           namespace.PerRole,
		nodeColumn:       "record_id",
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

package iterative

import (
	"log/slog"

	"github.com/hupe1980/clustergo/labeler"
	"github.com/hupe1980/clustergo/namespace"
	"github.com/hupe1980/clustergo/relation"
)

// Unbounded disables the iteration cap: the driver runs to true fixpoint.
const Unbounded = -1

// Options contains configuration options for the iterative strategy.
type Options struct {
	// LeftColumn is the name of the left identity column in the edge relation.
	LeftColumn string

	// RightColumn is the name of the right identity column in the edge relation.
	RightColumn string

	// MaxIter caps the number of label propagation rounds. Unbounded (the
	// default) iterates to fixpoint. A non-negative cap may terminate the run
	// before convergence; the returned labeling is then an under-merged
	// partial refinement and Labeling.Converged reports false. MaxIter of 0
	// returns the initial singleton labeling.
	MaxIter int

	// Policy selects how the two identity columns share the dense handle
	// namespace. See namespace.Policy for the trade-off.
	Policy namespace.Policy

	// Nodes optionally supplies identities that must be labeled even when
	// they appear in no edge; each receives a fresh singleton component.
	// Requires the Unified policy.
	Nodes relation.Table

	// NodeColumn is the identity column of Nodes.
	NodeColumn string

	// Logger receives one event per round (round number, changed label
	// count). Nil disables logging.
	Logger *slog.Logger

	// Observer receives one callback per round. Nil disables observation.
	Observer labeler.RoundObserver
}

// DefaultOptions contains the default configuration options for the
// iterative strategy.
var DefaultOptions = Options{
	LeftColumn:  labeler.DefaultLeftColumn,
	RightColumn: labeler.DefaultRightColumn,
	MaxIter:     Unbounded,
	Policy:      namespace.PerRole,
	NodeColumn:  "record_id",
}

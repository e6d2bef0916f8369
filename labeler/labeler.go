// Package labeler defines the ComponentLabeler capability and the types
// shared by its interchangeable strategies.
//
// Two strategies ship with clustergo:
//
//   - labeler/unionfind: an in-memory disjoint-set structure. Near-linear,
//     exact, no iteration cap. Preferred whenever the edge set fits in memory.
//   - labeler/iterative: a fixpoint label propagation expressed as relational
//     transforms against the host substrate. Suited to out-of-core or
//     distributed execution; supports a bounded iteration cap.
//
// Both satisfy the same output contract: the partition equals the transitive
// closure of the edge relation restricted to nodes seen in at least one edge,
// and the canonical label of a converged component is the minimum dense
// handle among its nodes.
package labeler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/hupe1980/clustergo/relation"
)

// Default identity column names, matching the conventional shape of an edge
// relation produced by pairwise record comparison.
const (
	DefaultLeftColumn  = "record_id_l"
	DefaultRightColumn = "record_id_r"

	// ComponentColumn is the name of the component column in label relations.
	ComponentColumn = "component"
)

// ErrNodesRequireUnified is returned when extra nodes are supplied under the
// per-role namespace policy, which has no single output namespace to place
// them in.
var ErrNodesRequireUnified = errors.New("extra nodes require the unified namespace policy")

// ErrMissingColumn indicates that the edge relation lacks a required identity
// column. Reported before any clustering work begins.
type ErrMissingColumn struct {
	Column string
	Have   []string
}

func (e *ErrMissingColumn) Error() string {
	return fmt.Sprintf("edges must contain column %q, but it contains %v", e.Column, e.Have)
}

// Labeling is the result of one clustering pass.
//
// Left and Right each hold (identity, component) rows covering only the
// identities that appeared in at least one edge in that role (plus any extra
// nodes supplied to the strategy). Component values are synthetic per-call
// identifiers; they are not stable across invocations or edge-set changes.
type Labeling struct {
	// Left labels identities from the left edge column.
	Left relation.Table

	// Right labels identities from the right edge column.
	Right relation.Table

	// Extra labels caller-supplied nodes that appear in no edge; each such
	// node forms its own singleton component. Nil unless extra nodes were
	// configured on the strategy.
	Extra relation.Table

	// Converged reports whether the labeling is the true partition. A false
	// value means the iteration cap was hit first and the labeling is an
	// under-merged but valid partial refinement.
	Converged bool

	// Rounds is the number of label propagation rounds executed. Zero for
	// strategies that do not iterate.
	Rounds int
}

// ComponentLabeler computes a component labeling from an edge relation.
type ComponentLabeler interface {
	// Label clusters the given edges. The edge relation must expose the
	// strategy's configured identity columns.
	Label(ctx context.Context, edges relation.Table) (*Labeling, error)
}

// RoundObserver receives one event per label propagation round. Strategies
// that do not iterate never call it.
type RoundObserver interface {
	// ObserveRound is called after each round with the number of labels that
	// changed in that round.
	ObserveRound(round int, changed int64, duration time.Duration)
}

// NoopRoundObserver is a RoundObserver that discards all events.
type NoopRoundObserver struct{}

// ObserveRound implements RoundObserver.
func (NoopRoundObserver) ObserveRound(int, int64, time.Duration) {}

// ValidateColumns checks that t exposes every column in cols, returning
// *ErrMissingColumn for the first one absent.
func ValidateColumns(t relation.Table, cols ...string) error {
	have := t.Columns()
	for _, c := range cols {
		if !slices.Contains(have, c) {
			return &ErrMissingColumn{Column: c, Have: have}
		}
	}
	return nil
}

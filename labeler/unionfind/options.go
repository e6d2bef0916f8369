package unionfind

import (
	"log/slog"

	"github.com/hupe1980/clustergo/labeler"
	"github.com/hupe1980/clustergo/namespace"
	"github.com/hupe1980/clustergo/relation"
)

// Options contains configuration options for the union-find strategy.
type Options struct {
	// LeftColumn is the name of the left identity column in the edge relation.
	LeftColumn string

	// RightColumn is the name of the right identity column in the edge relation.
	RightColumn string

	// Policy selects how the two identity columns share the dense handle
	// namespace. See namespace.Policy for the trade-off.
	Policy namespace.Policy

	// Nodes optionally supplies identities that must be labeled even when
	// they appear in no edge; each receives a fresh singleton component.
	// Requires the Unified policy.
	Nodes relation.Table

	// NodeColumn is the identity column of Nodes.
	NodeColumn string

	// Logger receives a completion event per run. Nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions contains the default configuration options for the
// union-find strategy.
var DefaultOptions = Options{
	LeftColumn:  labeler.DefaultLeftColumn,
	RightColumn: labeler.DefaultRightColumn,
	Policy:      namespace.PerRole,
	NodeColumn:  "record_id",
}

package clustergo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/clustergo/labeler"
)

// ErrNodesRequireUnified is returned when extra nodes are supplied under the
// per-role namespace policy, which has no single output namespace to place
// them in.
var ErrNodesRequireUnified = errors.New("extra nodes require the unified namespace policy")

// ErrMissingColumn indicates that the edge relation lacks a required
// identity column. Validation happens before any clustering work begins.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrMissingColumn struct {
	Column string
	Have   []string
	cause  error
}

func (e *ErrMissingColumn) Error() string {
	return fmt.Sprintf("edges must contain column %q, but it contains %v", e.Column, e.Have)
}

func (e *ErrMissingColumn) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var mc *labeler.ErrMissingColumn
	if errors.As(err, &mc) {
		return &ErrMissingColumn{Column: mc.Column, Have: mc.Have, cause: err}
	}
	if errors.Is(err, labeler.ErrNodesRequireUnified) {
		return fmt.Errorf("%w: %w", ErrNodesRequireUnified, err)
	}

	return err
}

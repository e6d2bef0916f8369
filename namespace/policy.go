package namespace

// Policy selects how left and right identity columns are numbered.
//
// PerRole numbers each column independently and offsets the right handles
// past the left range, so the two roles never collide. This matches true
// two-table linkage, where the left and right columns are guaranteed to draw
// from disjoint record populations. If the same identity appears in both
// roles it receives two distinct handles and is NOT unified unless some path
// of edges happens to connect them - callers choosing PerRole own that
// guarantee.
//
// Unified numbers the union of both columns as one namespace keyed by raw
// identity, so an identity means the same node regardless of which side of an
// edge it appears on. Use this for dedupe-style edge sets produced by
// self-joins.
//
// A single clustering call uses exactly one policy; they are never mixed.
type Policy int

const (
	// PerRole assigns independent handle ranges to the left and right columns.
	PerRole Policy = iota

	// Unified assigns one handle range keyed by raw identity across both columns.
	Unified
)

// String returns a string representation of the Policy.
func (p Policy) String() string {
	switch p {
	case PerRole:
		return "PerRole"
	case Unified:
		return "Unified"
	default:
		return "Unknown"
	}
}

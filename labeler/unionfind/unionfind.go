package unionfind

// DisjointSet is a union-find structure over a dense handle range [0, n)
// with path compression and union by rank. Single-writer: it has no internal
// locking and must not be mutated concurrently.
type DisjointSet struct {
	parent []uint64
	rank   []uint8
}

// NewDisjointSet creates a DisjointSet of n singleton elements.
func NewDisjointSet(n uint64) *DisjointSet {
	d := &DisjointSet{
		parent: make([]uint64, n),
		rank:   make([]uint8, n),
	}
	for i := range d.parent {
		d.parent[i] = uint64(i)
	}
	return d
}

// Find returns the current root of x, compressing the path along the way.
func (d *DisjointSet) Find(x uint64) uint64 {
	root := x
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for d.parent[x] != root {
		d.parent[x], x = root, d.parent[x]
	}
	return root
}

// Union merges the sets containing a and b, reporting whether they were
// separate.
func (d *DisjointSet) Union(a, b uint64) bool {
	ra, rb := d.Find(a), d.Find(b)
	if ra == rb {
		return false
	}
	switch {
	case d.rank[ra] < d.rank[rb]:
		d.parent[ra] = rb
	case d.rank[ra] > d.rank[rb]:
		d.parent[rb] = ra
	default:
		d.parent[rb] = ra
		d.rank[ra]++
	}
	return true
}

// Len returns the number of elements.
func (d *DisjointSet) Len() uint64 {
	return uint64(len(d.parent))
}

// Labels resolves every element to its canonical component label: the
// minimum handle of its set. Ranks chose roots for balance, not canonically,
// so this pass rewrites each root to the smallest member.
func (d *DisjointSet) Labels() []uint64 {
	const unset = ^uint64(0)

	canon := make([]uint64, len(d.parent))
	for i := range canon {
		canon[i] = unset
	}

	labels := make([]uint64, len(d.parent))
	for x := range labels {
		root := d.Find(uint64(x))
		if canon[root] == unset {
			canon[root] = uint64(x) // ascending scan, so first hit is the minimum
		}
		labels[x] = canon[root]
	}
	return labels
}

package relation

import (
	"context"
	"fmt"
	"slices"
	"sort"
)

// maxKeyWidth bounds the row width supported by hash-based transforms
// (Distinct, Union). Engine-internal tables never exceed four columns.
const maxKeyWidth = 8

// MemTable is the in-memory reference substrate. Every transform evaluates
// eagerly and returns a new immutable MemTable; a transform error poisons the
// result and surfaces from the next terminal call.
//
// MemTable can only be combined (Union, Join, ...) with other MemTables.
type MemTable struct {
	cols []string
	rows [][]Value
	err  error
}

// NewMemTable creates a MemTable with the given columns and rows. The inputs
// are copied; rows shorter than cols are rejected.
func NewMemTable(cols []string, rows [][]Value) *MemTable {
	t := &MemTable{
		cols: slices.Clone(cols),
		rows: make([][]Value, 0, len(rows)),
	}
	for _, r := range rows {
		if len(r) != len(cols) {
			t.err = fmt.Errorf("relation: row width %d does not match %d columns", len(r), len(cols))
			return t
		}
		t.rows = append(t.rows, slices.Clone(r))
	}
	return t
}

// Columns implements Table.
func (t *MemTable) Columns() []string {
	return slices.Clone(t.cols)
}

func (t *MemTable) fail(err error) *MemTable {
	return &MemTable{cols: slices.Clone(t.cols), err: err}
}

func (t *MemTable) colIndex(name string) (int, bool) {
	for i, c := range t.cols {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

func (t *MemTable) unknown(name string) *MemTable {
	return t.fail(&ErrUnknownColumn{Column: name, Have: t.Columns()})
}

// other coerces a Table argument to a MemTable, carrying its error forward.
func (t *MemTable) other(o Table) (*MemTable, error) {
	if t.err != nil {
		return nil, t.err
	}
	m, ok := o.(*MemTable)
	if !ok {
		return nil, fmt.Errorf("relation: memory substrate cannot combine %T", o)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m, nil
}

// Project implements Table.
func (t *MemTable) Project(cols ...string) Table {
	if t.err != nil {
		return t
	}
	idx := make([]int, len(cols))
	for i, c := range cols {
		j, ok := t.colIndex(c)
		if !ok {
			return t.unknown(c)
		}
		idx[i] = j
	}
	rows := make([][]Value, len(t.rows))
	for i, r := range t.rows {
		nr := make([]Value, len(idx))
		for k, j := range idx {
			nr[k] = r[j]
		}
		rows[i] = nr
	}
	return &MemTable{cols: slices.Clone(cols), rows: rows}
}

// Rename implements Table.
func (t *MemTable) Rename(from, to string) Table {
	if t.err != nil {
		return t
	}
	i, ok := t.colIndex(from)
	if !ok {
		return t.unknown(from)
	}
	if _, exists := t.colIndex(to); exists && to != from {
		return t.fail(fmt.Errorf("%w: rename %q to existing column %q", ErrSchemaMismatch, from, to))
	}
	cols := slices.Clone(t.cols)
	cols[i] = to
	return &MemTable{cols: cols, rows: t.rows}
}

// Alias implements Table.
func (t *MemTable) Alias(dst, src string) Table {
	if t.err != nil {
		return t
	}
	si, ok := t.colIndex(src)
	if !ok {
		return t.unknown(src)
	}
	return t.extend(dst, func(r []Value) (Value, error) {
		return r[si], nil
	})
}

type rowKey [maxKeyWidth]Value

func makeKey(r []Value) (rowKey, bool) {
	var k rowKey
	if len(r) > maxKeyWidth {
		return k, false
	}
	copy(k[:], r)
	return k, true
}

// Distinct implements Table.
func (t *MemTable) Distinct() Table {
	if t.err != nil {
		return t
	}
	seen := make(map[rowKey]struct{}, len(t.rows))
	rows := make([][]Value, 0, len(t.rows))
	for _, r := range t.rows {
		k, ok := makeKey(r)
		if !ok {
			return t.fail(ErrTooManyColumns)
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		rows = append(rows, r)
	}
	return &MemTable{cols: slices.Clone(t.cols), rows: rows}
}

// Union implements Table.
func (t *MemTable) Union(o Table) Table {
	m, err := t.other(o)
	if err != nil {
		return t.fail(err)
	}
	// Align the other table's columns to ours by name.
	idx := make([]int, len(t.cols))
	if len(m.cols) != len(t.cols) {
		return t.fail(fmt.Errorf("%w: union of %v and %v", ErrSchemaMismatch, t.cols, m.cols))
	}
	for i, c := range t.cols {
		j, ok := m.colIndex(c)
		if !ok {
			return t.fail(fmt.Errorf("%w: union of %v and %v", ErrSchemaMismatch, t.cols, m.cols))
		}
		idx[i] = j
	}

	rows := make([][]Value, 0, len(t.rows)+len(m.rows))
	rows = append(rows, t.rows...)
	for _, r := range m.rows {
		nr := make([]Value, len(idx))
		for k, j := range idx {
			nr[k] = r[j]
		}
		rows = append(rows, nr)
	}
	u := &MemTable{cols: slices.Clone(t.cols), rows: rows}
	return u.Distinct()
}

func (t *MemTable) joinCols(m *MemTable, rightOn string) ([]string, []int, error) {
	ri, ok := m.colIndex(rightOn)
	if !ok {
		return nil, nil, &ErrUnknownColumn{Column: rightOn, Have: m.Columns()}
	}
	cols := slices.Clone(t.cols)
	keep := make([]int, 0, len(m.cols)-1)
	for j, c := range m.cols {
		if j == ri {
			continue
		}
		if slices.Contains(cols, c) {
			return nil, nil, fmt.Errorf("%w: join would duplicate column %q", ErrSchemaMismatch, c)
		}
		cols = append(cols, c)
		keep = append(keep, j)
	}
	return cols, keep, nil
}

func (t *MemTable) hashJoin(o Table, leftOn, rightOn string, outer, anti bool) Table {
	m, err := t.other(o)
	if err != nil {
		return t.fail(err)
	}
	li, ok := t.colIndex(leftOn)
	if !ok {
		return t.unknown(leftOn)
	}
	ri, _ := m.colIndex(rightOn)

	if anti {
		matches := make(map[Value]struct{}, len(m.rows))
		for _, r := range m.rows {
			if r[ri] != nil {
				matches[r[ri]] = struct{}{}
			}
		}
		rows := make([][]Value, 0, len(t.rows))
		for _, r := range t.rows {
			if _, hit := matches[r[li]]; !hit {
				rows = append(rows, r)
			}
		}
		return &MemTable{cols: slices.Clone(t.cols), rows: rows}
	}

	cols, keep, err := t.joinCols(m, rightOn)
	if err != nil {
		return t.fail(err)
	}

	index := make(map[Value][][]Value, len(m.rows))
	for _, r := range m.rows {
		if r[ri] == nil {
			continue
		}
		index[r[ri]] = append(index[r[ri]], r)
	}

	rows := make([][]Value, 0, len(t.rows))
	for _, lr := range t.rows {
		matched := index[lr[li]]
		if lr[li] == nil {
			matched = nil
		}
		if len(matched) == 0 {
			if outer {
				nr := make([]Value, len(cols))
				copy(nr, lr)
				rows = append(rows, nr)
			}
			continue
		}
		for _, rr := range matched {
			nr := make([]Value, 0, len(cols))
			nr = append(nr, lr...)
			for _, j := range keep {
				nr = append(nr, rr[j])
			}
			rows = append(rows, nr)
		}
	}
	return &MemTable{cols: cols, rows: rows}
}

// Join implements Table.
func (t *MemTable) Join(o Table, leftOn, rightOn string) Table {
	return t.hashJoin(o, leftOn, rightOn, false, false)
}

// LeftJoin implements Table.
func (t *MemTable) LeftJoin(o Table, leftOn, rightOn string) Table {
	return t.hashJoin(o, leftOn, rightOn, true, false)
}

// AntiJoin implements Table.
func (t *MemTable) AntiJoin(o Table, leftOn, rightOn string) Table {
	return t.hashJoin(o, leftOn, rightOn, false, true)
}

// MinBy implements Table.
func (t *MemTable) MinBy(groupCol, valueCol string) Table {
	if t.err != nil {
		return t
	}
	gi, ok := t.colIndex(groupCol)
	if !ok {
		return t.unknown(groupCol)
	}
	vi, ok := t.colIndex(valueCol)
	if !ok {
		return t.unknown(valueCol)
	}
	mins := make(map[Value]Value, len(t.rows))
	order := make([]Value, 0, len(t.rows))
	for _, r := range t.rows {
		cur, seen := mins[r[gi]]
		if !seen {
			order = append(order, r[gi])
			mins[r[gi]] = r[vi]
			continue
		}
		if Compare(r[vi], cur) < 0 {
			mins[r[gi]] = r[vi]
		}
	}
	rows := make([][]Value, len(order))
	for i, g := range order {
		rows[i] = []Value{g, mins[g]}
	}
	return &MemTable{cols: []string{groupCol, valueCol}, rows: rows}
}

// extend appends or replaces column dst with fn(row).
func (t *MemTable) extend(dst string, fn func(r []Value) (Value, error)) Table {
	if t.err != nil {
		return t
	}
	di, replace := t.colIndex(dst)
	cols := slices.Clone(t.cols)
	if !replace {
		di = len(cols)
		cols = append(cols, dst)
	}
	rows := make([][]Value, len(t.rows))
	for i, r := range t.rows {
		v, err := fn(r)
		if err != nil {
			return t.fail(err)
		}
		nr := make([]Value, len(cols))
		copy(nr, r)
		nr[di] = v
		rows[i] = nr
	}
	return &MemTable{cols: cols, rows: rows}
}

// Least implements Table.
func (t *MemTable) Least(dst, a, b string) Table {
	if t.err != nil {
		return t
	}
	ai, ok := t.colIndex(a)
	if !ok {
		return t.unknown(a)
	}
	bi, ok := t.colIndex(b)
	if !ok {
		return t.unknown(b)
	}
	return t.extend(dst, func(r []Value) (Value, error) {
		if Compare(r[ai], r[bi]) <= 0 {
			return r[ai], nil
		}
		return r[bi], nil
	})
}

// Coalesce implements Table.
func (t *MemTable) Coalesce(dst, a, b string) Table {
	if t.err != nil {
		return t
	}
	ai, ok := t.colIndex(a)
	if !ok {
		return t.unknown(a)
	}
	bi, ok := t.colIndex(b)
	if !ok {
		return t.unknown(b)
	}
	return t.extend(dst, func(r []Value) (Value, error) {
		if r[ai] != nil {
			return r[ai], nil
		}
		return r[bi], nil
	})
}

// Offset implements Table.
func (t *MemTable) Offset(dst, src string, delta uint64) Table {
	if t.err != nil {
		return t
	}
	si, ok := t.colIndex(src)
	if !ok {
		return t.unknown(src)
	}
	return t.extend(dst, func(r []Value) (Value, error) {
		h, ok := AsUint64(r[si])
		if !ok {
			return nil, fmt.Errorf("relation: column %q holds %T, not an integer handle", src, r[si])
		}
		return h + delta, nil
	})
}

// DenseRank implements Table.
func (t *MemTable) DenseRank(dst, orderBy string) Table {
	if t.err != nil {
		return t
	}
	oi, ok := t.colIndex(orderBy)
	if !ok {
		return t.unknown(orderBy)
	}
	distinct := make([]Value, 0, len(t.rows))
	seen := make(map[Value]struct{}, len(t.rows))
	for _, r := range t.rows {
		if _, dup := seen[r[oi]]; dup {
			continue
		}
		seen[r[oi]] = struct{}{}
		distinct = append(distinct, r[oi])
	}
	sort.Slice(distinct, func(i, j int) bool {
		return Compare(distinct[i], distinct[j]) < 0
	})
	ranks := make(map[Value]uint64, len(distinct))
	for i, v := range distinct {
		ranks[v] = uint64(i)
	}
	return t.extend(dst, func(r []Value) (Value, error) {
		return ranks[r[oi]], nil
	})
}

// NotEqual implements Table.
func (t *MemTable) NotEqual(a, b string) Table {
	if t.err != nil {
		return t
	}
	ai, ok := t.colIndex(a)
	if !ok {
		return t.unknown(a)
	}
	bi, ok := t.colIndex(b)
	if !ok {
		return t.unknown(b)
	}
	rows := make([][]Value, 0, len(t.rows))
	for _, r := range t.rows {
		if Compare(r[ai], r[bi]) != 0 {
			rows = append(rows, r)
		}
	}
	return &MemTable{cols: slices.Clone(t.cols), rows: rows}
}

// Materialize implements Table. MemTables are already concrete, so this only
// surfaces deferred transform errors.
func (t *MemTable) Materialize(_ context.Context) (Table, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t, nil
}

// Count implements Table.
func (t *MemTable) Count(_ context.Context) (int64, error) {
	if t.err != nil {
		return 0, t.err
	}
	return int64(len(t.rows)), nil
}

// Max implements Table.
func (t *MemTable) Max(_ context.Context, col string) (Value, error) {
	if t.err != nil {
		return nil, t.err
	}
	ci, ok := t.colIndex(col)
	if !ok {
		return nil, &ErrUnknownColumn{Column: col, Have: t.Columns()}
	}
	var best Value
	for i, r := range t.rows {
		if i == 0 || Compare(r[ci], best) > 0 {
			best = r[ci]
		}
	}
	return best, nil
}

// Rows implements Table.
func (t *MemTable) Rows(_ context.Context) ([]Row, error) {
	if t.err != nil {
		return nil, t.err
	}
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		row := make(Row, len(t.cols))
		for j, c := range t.cols {
			row[c] = r[j]
		}
		rows[i] = row
	}
	return rows, nil
}

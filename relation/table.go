package relation

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrTooManyColumns is returned when a transform needs a row key but the
	// table is wider than the supported key width.
	ErrTooManyColumns = errors.New("relation: too many columns for row key")

	// ErrSchemaMismatch is returned when a set operation combines tables with
	// incompatible column sets.
	ErrSchemaMismatch = errors.New("relation: schema mismatch")
)

// ErrUnknownColumn indicates that a transform referenced a column the table
// does not have.
type ErrUnknownColumn struct {
	Column string
	Have   []string
}

func (e *ErrUnknownColumn) Error() string {
	return fmt.Sprintf("relation: unknown column %q (have %v)", e.Column, e.Have)
}

// Value is a single cell. Values must be comparable Go values so they can be
// used as join and distinct keys. nil represents NULL, produced only by
// unmatched left-join rows.
type Value any

// Row is one tuple keyed by column name.
type Row map[string]Value

// Table is the capability interface the clustering engine consumes from its
// host substrate.
//
// Transform methods are builders: they never fail directly. A transform that
// references an unknown column, or otherwise cannot be evaluated, poisons the
// resulting table, and the error surfaces from the next terminal call
// (Materialize, Count, Max or Rows). This keeps call sites free of error
// plumbing between steps, mirroring how deferred query expressions behave on
// lazily evaluated substrates.
//
// Join and LeftJoin drop the right-hand join column from the result (it is
// redundant with the left-hand one); all remaining column names must be
// disjoint. LeftJoin fills unmatched right-hand columns with NULL.
type Table interface {
	// Columns returns the column names in order.
	Columns() []string

	// Project keeps only the given columns, in the given order.
	Project(cols ...string) Table

	// Rename renames column from to to.
	Rename(from, to string) Table

	// Alias appends column dst as a copy of column src. An existing dst
	// column is replaced.
	Alias(dst, src string) Table

	// Distinct removes duplicate rows (set semantics).
	Distinct() Table

	// Union is a distinct set union. Both tables must have the same column
	// set; columns are matched by name.
	Union(other Table) Table

	// Join is an inner equi-join on leftOn = rightOn.
	Join(other Table, leftOn, rightOn string) Table

	// LeftJoin is a left outer equi-join on leftOn = rightOn.
	LeftJoin(other Table, leftOn, rightOn string) Table

	// AntiJoin keeps rows whose leftOn value has no match in other's rightOn
	// column.
	AntiJoin(other Table, leftOn, rightOn string) Table

	// MinBy groups by groupCol and keeps the minimum valueCol per group. The
	// result has exactly the columns (groupCol, valueCol).
	MinBy(groupCol, valueCol string) Table

	// Least sets dst to the lesser of columns a and b. An existing dst column
	// is replaced.
	Least(dst, a, b string) Table

	// Coalesce sets dst to column a where a is non-NULL, else to column b. An
	// existing dst column is replaced.
	Coalesce(dst, a, b string) Table

	// Offset sets dst to the uint64 value of column src plus delta. An
	// existing dst column is replaced.
	Offset(dst, src string, delta uint64) Table

	// DenseRank sets dst to the zero-based dense rank of column orderBy under
	// the total order of Compare. Equal values share a rank; ranks are
	// contiguous. An existing dst column is replaced.
	DenseRank(dst, orderBy string) Table

	// NotEqual keeps rows where columns a and b differ.
	NotEqual(a, b string) Table

	// Materialize forces the table into a concrete snapshot, cutting any
	// deferred lineage, and reports the first transform error if any.
	Materialize(ctx context.Context) (Table, error)

	// Count returns the number of rows.
	Count(ctx context.Context) (int64, error)

	// Max returns the maximum value of the column under Compare, or nil for
	// an empty table.
	Max(ctx context.Context, col string) (Value, error)

	// Rows returns all rows. Row order is unspecified.
	Rows(ctx context.Context) ([]Row, error)
}

// Compare imposes a total order over Values: NULL sorts first, then numbers
// by numeric value, then strings, then everything else by its fmt
// representation. Values of the same Go numeric kind compare exactly;
// signed/unsigned comparisons are widened safely.
func Compare(a, b Value) int {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}

	switch ka {
	case kindNull:
		return 0
	case kindNumber:
		return compareNumbers(a, b)
	case kindString:
		return compareStrings(toString(a), toString(b))
	default:
		return compareStrings(fmt.Sprint(a), fmt.Sprint(b))
	}
}

type valueKind int

const (
	kindNull valueKind = iota
	kindNumber
	kindString
	kindOther
)

func kindOf(v Value) valueKind {
	switch v.(type) {
	case nil:
		return kindNull
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return kindNumber
	case string:
		return kindString
	default:
		return kindOther
	}
}

func toString(v Value) string {
	s, _ := v.(string)
	return s
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareNumbers(a, b Value) int {
	an, aneg := toUint64(a)
	bn, bneg := toUint64(b)
	if aneg != bneg {
		if aneg {
			return -1
		}
		return 1
	}
	if aneg {
		// Both negative: larger magnitude sorts first.
		switch {
		case an > bn:
			return -1
		case an < bn:
			return 1
		default:
			return 0
		}
	}
	switch {
	case an < bn:
		return -1
	case an > bn:
		return 1
	default:
		return 0
	}
}

// toUint64 returns the magnitude of a numeric Value and whether it is
// negative. Floats are truncated; the clustering engine only produces integer
// handles, floats appear only in caller-supplied identities.
func toUint64(v Value) (mag uint64, neg bool) {
	switch n := v.(type) {
	case int:
		return intMag(int64(n))
	case int8:
		return intMag(int64(n))
	case int16:
		return intMag(int64(n))
	case int32:
		return intMag(int64(n))
	case int64:
		return intMag(n)
	case uint:
		return uint64(n), false
	case uint8:
		return uint64(n), false
	case uint16:
		return uint64(n), false
	case uint32:
		return uint64(n), false
	case uint64:
		return n, false
	case float32:
		return floatMag(float64(n))
	case float64:
		return floatMag(n)
	default:
		return 0, false
	}
}

func intMag(n int64) (uint64, bool) {
	if n < 0 {
		return uint64(-n), true
	}
	return uint64(n), false
}

func floatMag(f float64) (uint64, bool) {
	if f < 0 {
		return uint64(-f), true
	}
	return uint64(f), false
}

// AsUint64 converts a handle-carrying Value to uint64. It reports false for
// NULL or non-integer values.
func AsUint64(v Value) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	default:
		return 0, false
	}
}

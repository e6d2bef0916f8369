package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/hupe1980/clustergo/labeler"
	"github.com/hupe1980/clustergo/relation"
)

// Format selects the row encoding of exported label files.
type Format int

const (
	// FormatCSV writes a header row followed by one comma-separated row per
	// label. The default: loads directly into warehouses and spreadsheets.
	FormatCSV Format = iota

	// FormatJSONL writes one JSON object per line, preserving the types of
	// identity values.
	FormatJSONL
)

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSONL:
		return "jsonl"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat maps a manifest format name back to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "csv", "":
		return FormatCSV, nil
	case "jsonl":
		return FormatJSONL, nil
	default:
		return FormatCSV, fmt.Errorf("export: unknown format %q", s)
	}
}

func (f Format) extension() string {
	switch f {
	case FormatJSONL:
		return ".jsonl"
	default:
		return ".csv"
	}
}

// writeRows encodes rows with the given column order and returns the number
// of rows written.
func (f Format) writeRows(w io.Writer, cols []string, rows []relation.Row) (int64, error) {
	switch f {
	case FormatCSV:
		return writeCSV(w, cols, rows)
	case FormatJSONL:
		return writeJSONL(w, cols, rows)
	default:
		return 0, fmt.Errorf("export: unknown format %d", int(f))
	}
}

// readRows decodes rows and projects them onto the requested columns.
func (f Format) readRows(r io.Reader, cols []string) ([][]relation.Value, error) {
	switch f {
	case FormatCSV:
		return readCSV(r, cols)
	case FormatJSONL:
		return readJSONL(r, cols)
	default:
		return nil, fmt.Errorf("export: unknown format %d", int(f))
	}
}

func writeCSV(w io.Writer, cols []string, rows []relation.Row) (int64, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return 0, err
	}

	record := make([]string, len(cols))
	var n int64
	for _, row := range rows {
		for i, col := range cols {
			record[i] = formatValue(row[col])
		}
		if err := cw.Write(record); err != nil {
			return n, err
		}
		n++
	}
	cw.Flush()
	return n, cw.Error()
}

func writeJSONL(w io.Writer, cols []string, rows []relation.Row) (int64, error) {
	enc := json.NewEncoder(w)
	obj := make(map[string]relation.Value, len(cols))
	var n int64
	for _, row := range rows {
		for _, col := range cols {
			obj[col] = row[col]
		}
		if err := enc.Encode(obj); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func readCSV(r io.Reader, cols []string) ([][]relation.Value, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("export: missing header row")
	}
	if err != nil {
		return nil, err
	}

	idx := make([]int, len(cols))
	for i, col := range cols {
		idx[i] = -1
		for j, h := range header {
			if h == col {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			return nil, fmt.Errorf("export: column %q not in header %v", col, header)
		}
	}

	var rows [][]relation.Value
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		row := make([]relation.Value, len(cols))
		for i, j := range idx {
			row[i] = parseValue(cols[i], record[j])
		}
		rows = append(rows, row)
	}
}

func readJSONL(r io.Reader, cols []string) ([][]relation.Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var rows [][]relation.Value
	for {
		var obj map[string]any
		if err := dec.Decode(&obj); errors.Is(err, io.EOF) {
			return rows, nil
		} else if err != nil {
			return nil, err
		}

		row := make([]relation.Value, len(cols))
		for i, col := range cols {
			v, ok := obj[col]
			if !ok {
				return nil, fmt.Errorf("export: column %q missing from row %v", col, obj)
			}
			row[i] = decodeValue(col, v)
		}
		rows = append(rows, row)
	}
}

func formatValue(v relation.Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case uint64:
		return strconv.FormatUint(x, 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

// parseValue turns a CSV cell back into a value. Component labels are
// handles and parse as uint64; identity cells stay strings.
func parseValue(col, cell string) relation.Value {
	if col == labeler.ComponentColumn {
		if u, err := strconv.ParseUint(cell, 10, 64); err == nil {
			return u
		}
	}
	return cell
}

// decodeValue normalizes a decoded JSON value. Component labels become
// uint64 handles; other numbers keep their integral or float form.
func decodeValue(col string, v any) relation.Value {
	num, ok := v.(json.Number)
	if !ok {
		return v
	}
	if col == labeler.ComponentColumn {
		if u, err := strconv.ParseUint(num.String(), 10, 64); err == nil {
			return u
		}
	}
	if i, err := num.Int64(); err == nil {
		return i
	}
	if f, err := num.Float64(); err == nil {
		return f
	}
	return num.String()
}

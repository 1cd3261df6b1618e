package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// MissingLabel is the group label used for null keys.
const MissingLabel = "(missing)"

// ValueKind identifies what a cell holds
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindText
	KindNumber
)

// String returns the kind name used in info reports
func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return "null"
	}
}

// Value is a single cell. A zero Value is null.
type Value struct {
	Kind ValueKind
	Text string
	Num  float64
}

// Null returns a missing cell
func Null() Value {
	return Value{}
}

// Text returns a text cell
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Number returns a numeric cell
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// IsNull reports whether the cell is missing
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// String renders the cell as text. Null renders as the empty string.
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// Label renders the cell as a grouping key
func (v Value) Label() string {
	if v.IsNull() {
		return MissingLabel
	}
	return v.String()
}

// Float returns the numeric content of the cell. Text cells are parsed
// after trimming; unparsable text and nulls report false.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// MarshalJSON encodes null cells as JSON null and numbers as JSON numbers
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindText:
		return json.Marshal(v.Text)
	case KindNumber:
		return json.Marshal(v.Num)
	default:
		return []byte("null"), nil
	}
}

// Record is one row, aligned with the owning Dataset's columns
type Record []Value

// IsEmpty reports whether every cell of the record is null
func (r Record) IsEmpty() bool {
	for _, v := range r {
		if !v.IsNull() {
			return false
		}
	}
	return true
}

// Dataset is an ordered collection of records sharing a fixed column set.
// Datasets are treated as immutable; derived views are new Datasets.
type Dataset struct {
	columns []string
	index   map[string]int
	records []Record
}

// NewDataset builds a Dataset. Records shorter than the column set are
// padded with nulls and longer ones are truncated.
func NewDataset(columns []string, records []Record) *Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)

	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, exists := index[c]; !exists {
			index[c] = i
		}
	}

	rows := make([]Record, len(records))
	for i, rec := range records {
		if len(rec) == len(cols) {
			rows[i] = rec
			continue
		}
		fixed := make(Record, len(cols))
		copy(fixed, rec)
		rows[i] = fixed
	}

	return &Dataset{columns: cols, index: index, records: rows}
}

// Columns returns a copy of the column names in order
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns the underlying records. Callers must not mutate them.
func (d *Dataset) Records() []Record {
	return d.records
}

// Record returns the i-th record
func (d *Dataset) Record(i int) Record {
	return d.records[i]
}

// ColumnIndex returns the position of a column
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// HasColumn reports whether the column exists
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Value returns the cell at row i for the named column; unknown columns are null
func (d *Dataset) Value(i int, column string) Value {
	idx, ok := d.index[column]
	if !ok {
		return Null()
	}
	return d.records[i][idx]
}

// Row returns a mapping view of the i-th record
func (d *Dataset) Row(i int) map[string]Value {
	row := make(map[string]Value, len(d.columns))
	for j, c := range d.columns {
		row[c] = d.records[i][j]
	}
	return row
}

// Column returns every value of the named column
func (d *Dataset) Column(name string) ([]Value, bool) {
	idx, ok := d.index[name]
	if !ok {
		return nil, false
	}
	out := make([]Value, len(d.records))
	for i, rec := range d.records {
		out[i] = rec[idx]
	}
	return out, true
}

// Subset returns a new Dataset holding the records at the given positions
func (d *Dataset) Subset(indices []int) *Dataset {
	rows := make([]Record, 0, len(indices))
	for _, i := range indices {
		rows = append(rows, d.records[i])
	}
	return &Dataset{columns: d.columns, index: d.index, records: rows}
}

// Project returns a new Dataset restricted to the named columns that exist,
// in the order given. Unknown names are skipped.
func (d *Dataset) Project(columns []string) *Dataset {
	var keep []string
	var pos []int
	for _, c := range columns {
		if i, ok := d.index[c]; ok {
			keep = append(keep, c)
			pos = append(pos, i)
		}
	}

	rows := make([]Record, len(d.records))
	for r, rec := range d.records {
		out := make(Record, len(pos))
		for j, p := range pos {
			out[j] = rec[p]
		}
		rows[r] = out
	}
	return NewDataset(keep, rows)
}

// Equal reports whether both datasets have the same columns and records in the same order
func (d *Dataset) Equal(other *Dataset) bool {
	if d == nil || other == nil {
		return d == other
	}
	if len(d.columns) != len(other.columns) || len(d.records) != len(other.records) {
		return false
	}
	for i := range d.columns {
		if d.columns[i] != other.columns[i] {
			return false
		}
	}
	for i := range d.records {
		a, b := d.records[i], other.records[i]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON encodes the dataset as {"columns": [...], "rows": [[...], ...]}
func (d *Dataset) MarshalJSON() ([]byte, error) {
	rows := d.records
	if rows == nil {
		rows = []Record{}
	}
	return json.Marshal(struct {
		Columns []string `json:"columns"`
		Rows    []Record `json:"rows"`
		Count   int      `json:"count"`
	}{
		Columns: d.Columns(),
		Rows:    rows,
		Count:   len(d.records),
	})
}

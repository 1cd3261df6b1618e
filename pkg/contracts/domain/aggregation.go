package domain

// Selection restricts a Dataset by column. Values within a column are
// OR-combined, columns are AND-combined. Empty or absent = no restriction.
type Selection map[string][]string

// IsEmpty returns true if no column carries a restriction
func (s Selection) IsEmpty() bool {
	for _, vals := range s {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// AggregateKind selects the reducer applied per group
type AggregateKind string

const (
	AggregateCount AggregateKind = "count"
	AggregateSum   AggregateKind = "sum"
	AggregateMean  AggregateKind = "mean"
	AggregateBox   AggregateKind = "box"
)

// GroupOrder controls the order of groups in a result
type GroupOrder string

const (
	// OrderSorted sorts keys numerically when both parse as numbers, else
	// lexically. The missing group is always last.
	OrderSorted GroupOrder = "sorted"
	// OrderFirstSeen keeps keys in order of first appearance
	OrderFirstSeen GroupOrder = "first_seen"
	// OrderValueDesc sorts by the computed value, largest first
	OrderValueDesc GroupOrder = "value_desc"
	// OrderMonths sorts Spanish month names in calendar order
	OrderMonths GroupOrder = "months"
)

// AggregateRequest describes one reducer call
type AggregateRequest struct {
	Kind  AggregateKind `json:"kind" validate:"required,oneof=count sum mean box"`
	Key   string        `json:"key" validate:"required"`
	Value string        `json:"value,omitempty" validate:"required_unless=Kind count"`
	Order GroupOrder    `json:"order,omitempty" validate:"omitempty,oneof=sorted first_seen value_desc months"`
}

// Group is one (key, value) pair of an aggregation result
type Group struct {
	Key     string    `json:"key"`
	Value   float64   `json:"value"`
	Count   int       `json:"count"`
	Sum     float64   `json:"sum"`
	Mean    *float64  `json:"mean,omitempty"`
	Missing int       `json:"missing"`
	Box     *BoxStats `json:"box,omitempty"`
}

// AggregationResult is a small ordered table of groups
type AggregationResult struct {
	Kind        AggregateKind `json:"kind"`
	KeyColumn   string        `json:"key_column"`
	ValueColumn string        `json:"value_column,omitempty"`
	Groups      []Group       `json:"groups"`
}

// Map returns the group values keyed by group label
func (r AggregationResult) Map() map[string]float64 {
	out := make(map[string]float64, len(r.Groups))
	for _, g := range r.Groups {
		out[g.Key] = g.Value
	}
	return out
}

// Keys returns the group labels in result order
func (r AggregationResult) Keys() []string {
	keys := make([]string, len(r.Groups))
	for i, g := range r.Groups {
		keys[i] = g.Key
	}
	return keys
}

// Total sums the group values
func (r AggregationResult) Total() float64 {
	var total float64
	for _, g := range r.Groups {
		total += g.Value
	}
	return total
}

// CrossTab is a two-dimensional co-occurrence count matrix
type CrossTab struct {
	RowColumn string   `json:"row_column"`
	ColColumn string   `json:"col_column"`
	RowKeys   []string `json:"row_keys"`
	ColKeys   []string `json:"col_keys"`
	Counts    [][]int  `json:"counts"`
}

// Transpose swaps rows and columns
func (c CrossTab) Transpose() CrossTab {
	counts := make([][]int, len(c.ColKeys))
	for j := range c.ColKeys {
		counts[j] = make([]int, len(c.RowKeys))
		for i := range c.RowKeys {
			counts[j][i] = c.Counts[i][j]
		}
	}
	return CrossTab{
		RowColumn: c.ColColumn,
		ColColumn: c.RowColumn,
		RowKeys:   append([]string(nil), c.ColKeys...),
		ColKeys:   append([]string(nil), c.RowKeys...),
		Counts:    counts,
	}
}

// Count returns the cell for a (row key, column key) pair
func (c CrossTab) Count(rowKey, colKey string) int {
	for i, rk := range c.RowKeys {
		if rk != rowKey {
			continue
		}
		for j, ck := range c.ColKeys {
			if ck == colKey {
				return c.Counts[i][j]
			}
		}
	}
	return 0
}

// BoxStats is the five-number summary of a group
type BoxStats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// ColumnInfo is one line of the dataset info report
type ColumnInfo struct {
	Column   string    `json:"column"`
	NonNull  int       `json:"non_null"`
	Null     int       `json:"null"`
	Kind     ValueKind `json:"-"`
	KindName string    `json:"kind"`
}

// ColumnSummary is one column of the descriptive statistics report.
// Numeric columns fill the numeric fields, categorical ones fill Unique/Top/Freq.
type ColumnSummary struct {
	Column  string   `json:"column"`
	Numeric bool     `json:"numeric"`
	Count   int      `json:"count"`
	Mean    *float64 `json:"mean,omitempty"`
	Std     *float64 `json:"std,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	P25     *float64 `json:"p25,omitempty"`
	P50     *float64 `json:"p50,omitempty"`
	P75     *float64 `json:"p75,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Unique  int      `json:"unique,omitempty"`
	Top     string   `json:"top,omitempty"`
	Freq    int      `json:"freq,omitempty"`
}

// HistogramBin is one equal-width bucket
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// CorrelationMatrix holds pairwise Pearson coefficients. Nil entries mean
// fewer than two complete observations or zero variance.
type CorrelationMatrix struct {
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

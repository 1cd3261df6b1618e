package dataprocessing

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"realtydash/internal/config"
	apperrors "realtydash/internal/errors"
	"realtydash/pkg/contracts/domain"
)

// groupAcc accumulates the rows of one key
type groupAcc struct {
	key     string
	missing bool
	rows    []int
}

// groupRows partitions record positions by the label of column keyIdx, in
// order of first appearance
func groupRows(ds *domain.Dataset, keyIdx int) []*groupAcc {
	byKey := make(map[string]*groupAcc)
	var ordered []*groupAcc
	var missing *groupAcc

	for i, rec := range ds.Records() {
		v := rec[keyIdx]
		if v.IsNull() {
			if missing == nil {
				missing = &groupAcc{key: domain.MissingLabel, missing: true}
				ordered = append(ordered, missing)
			}
			missing.rows = append(missing.rows, i)
			continue
		}
		label := v.String()
		g, ok := byKey[label]
		if !ok {
			g = &groupAcc{key: label}
			byKey[label] = g
			ordered = append(ordered, g)
		}
		g.rows = append(g.rows, i)
	}
	return ordered
}

// CountBy counts records per key
func CountBy(ds *domain.Dataset, key string, order domain.GroupOrder) (domain.AggregationResult, error) {
	return Aggregate(ds, domain.AggregateRequest{Kind: domain.AggregateCount, Key: key, Order: order})
}

// SumBy sums value per key. Missing values add nothing.
func SumBy(ds *domain.Dataset, key, value string, order domain.GroupOrder) (domain.AggregationResult, error) {
	return Aggregate(ds, domain.AggregateRequest{Kind: domain.AggregateSum, Key: key, Value: value, Order: order})
}

// MeanBy averages value per key over non-missing values
func MeanBy(ds *domain.Dataset, key, value string, order domain.GroupOrder) (domain.AggregationResult, error) {
	return Aggregate(ds, domain.AggregateRequest{Kind: domain.AggregateMean, Key: key, Value: value, Order: order})
}

// BoxBy computes the five-number summary of value per key
func BoxBy(ds *domain.Dataset, key, value string, order domain.GroupOrder) (domain.AggregationResult, error) {
	return Aggregate(ds, domain.AggregateRequest{Kind: domain.AggregateBox, Key: key, Value: value, Order: order})
}

// FilteredCountBy counts records per key among those where predColumn equals predValue
func FilteredCountBy(ds *domain.Dataset, predColumn, predValue, key string, order domain.GroupOrder) (domain.AggregationResult, error) {
	subset, err := Where(ds, predColumn, predValue)
	if err != nil {
		return domain.AggregationResult{}, err
	}
	return CountBy(subset, key, order)
}

// FilteredSumBy sums value per key among records where predColumn equals predValue
func FilteredSumBy(ds *domain.Dataset, predColumn, predValue, key, value string, order domain.GroupOrder) (domain.AggregationResult, error) {
	subset, err := Where(ds, predColumn, predValue)
	if err != nil {
		return domain.AggregationResult{}, err
	}
	return SumBy(subset, key, value, order)
}

// Aggregate groups ds by req.Key and applies req.Kind to each group
func Aggregate(ds *domain.Dataset, req domain.AggregateRequest) (domain.AggregationResult, error) {
	keyIdx, ok := ds.ColumnIndex(req.Key)
	if !ok {
		return domain.AggregationResult{}, unknownColumn(req.Key)
	}

	valueIdx := -1
	switch req.Kind {
	case domain.AggregateCount:
	case domain.AggregateSum, domain.AggregateMean, domain.AggregateBox:
		if req.Value == "" {
			return domain.AggregationResult{}, apperrors.NewAppValidationError(
				fmt.Sprintf("%s aggregation needs a value column", req.Kind))
		}
		if valueIdx, ok = ds.ColumnIndex(req.Value); !ok {
			return domain.AggregationResult{}, unknownColumn(req.Value)
		}
	default:
		return domain.AggregationResult{}, apperrors.NewAppValidationError(
			fmt.Sprintf("unknown aggregation kind %q", req.Kind))
	}

	order := req.Order
	if order == "" {
		order = domain.OrderSorted
	}

	result := domain.AggregationResult{
		Kind:      req.Kind,
		KeyColumn: req.Key,
		Groups:    make([]domain.Group, 0),
	}
	if req.Kind != domain.AggregateCount {
		result.ValueColumn = req.Value
	}

	records := ds.Records()
	for _, acc := range groupRows(ds, keyIdx) {
		g := domain.Group{Key: acc.key, Count: len(acc.rows)}

		if valueIdx >= 0 {
			values := make([]float64, 0, len(acc.rows))
			for _, r := range acc.rows {
				f, ok := records[r][valueIdx].Float()
				if !ok {
					g.Missing++
					continue
				}
				values = append(values, f)
				g.Sum += f
			}
			if len(values) > 0 {
				mean := g.Sum / float64(len(values))
				g.Mean = &mean
			}
			if req.Kind == domain.AggregateBox {
				g.Box = boxStats(values)
			}
		}

		switch req.Kind {
		case domain.AggregateCount:
			g.Value = float64(g.Count)
		case domain.AggregateSum:
			g.Value = g.Sum
		case domain.AggregateMean:
			if g.Mean != nil {
				g.Value = *g.Mean
			}
		case domain.AggregateBox:
			if g.Box != nil {
				g.Value = g.Box.Median
			}
		}
		result.Groups = append(result.Groups, g)
	}

	if err := orderGroups(result.Groups, order); err != nil {
		return domain.AggregationResult{}, err
	}
	return result, nil
}

// CrossTab counts co-occurrences of rowColumn and colColumn labels. Both axes
// are sorted with the missing label last.
func CrossTab(ds *domain.Dataset, rowColumn, colColumn string) (domain.CrossTab, error) {
	rowIdx, ok := ds.ColumnIndex(rowColumn)
	if !ok {
		return domain.CrossTab{}, unknownColumn(rowColumn)
	}
	colIdx, ok := ds.ColumnIndex(colColumn)
	if !ok {
		return domain.CrossTab{}, unknownColumn(colColumn)
	}

	rowKeys := sortedLabels(ds, rowIdx)
	colKeys := sortedLabels(ds, colIdx)
	rowPos := positionsOf(rowKeys)
	colPos := positionsOf(colKeys)

	counts := make([][]int, len(rowKeys))
	for i := range counts {
		counts[i] = make([]int, len(colKeys))
	}
	for _, rec := range ds.Records() {
		counts[rowPos[rec[rowIdx].Label()]][colPos[rec[colIdx].Label()]]++
	}

	return domain.CrossTab{
		RowColumn: rowColumn,
		ColColumn: colColumn,
		RowKeys:   rowKeys,
		ColKeys:   colKeys,
		Counts:    counts,
	}, nil
}

func sortedLabels(ds *domain.Dataset, idx int) []string {
	groups := groupRows(ds, idx)
	labels := make([]string, 0, len(groups))
	missing := false
	for _, g := range groups {
		if g.missing {
			missing = true
			continue
		}
		labels = append(labels, g.key)
	}
	sort.SliceStable(labels, func(i, j int) bool { return lessKey(labels[i], labels[j]) })
	if missing {
		labels = append(labels, domain.MissingLabel)
	}
	return labels
}

func positionsOf(keys []string) map[string]int {
	pos := make(map[string]int, len(keys))
	for i, k := range keys {
		pos[k] = i
	}
	return pos
}

// orderGroups sorts groups in place. The missing group is last for every
// order except first_seen.
func orderGroups(groups []domain.Group, order domain.GroupOrder) error {
	switch order {
	case domain.OrderFirstSeen:
		return nil
	case domain.OrderSorted:
		sort.SliceStable(groups, func(i, j int) bool {
			return lessGroupKey(groups[i].Key, groups[j].Key)
		})
	case domain.OrderValueDesc:
		sort.SliceStable(groups, func(i, j int) bool {
			a, b := groups[i], groups[j]
			if (a.Key == domain.MissingLabel) != (b.Key == domain.MissingLabel) {
				return b.Key == domain.MissingLabel
			}
			if a.Value != b.Value {
				return a.Value > b.Value
			}
			return lessKey(a.Key, b.Key)
		})
	case domain.OrderMonths:
		sort.SliceStable(groups, func(i, j int) bool {
			return lessMonth(groups[i].Key, groups[j].Key)
		})
	default:
		return apperrors.NewAppValidationError(fmt.Sprintf("unknown group order %q", order))
	}
	return nil
}

func lessGroupKey(a, b string) bool {
	if (a == domain.MissingLabel) != (b == domain.MissingLabel) {
		return b == domain.MissingLabel
	}
	return lessKey(a, b)
}

// lessKey orders labels numerically when both parse as numbers and lexically
// otherwise. Numbers sort before text.
func lessKey(a, b string) bool {
	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	switch {
	case errA == nil && errB == nil:
		if fa != fb {
			return fa < fb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// MonthIndex returns the calendar position (0-11) of a Spanish month name
func MonthIndex(label string) (int, bool) {
	name := strings.ToUpper(strings.TrimSpace(label))
	for i, m := range config.Months {
		if m == name {
			return i, true
		}
	}
	return 0, false
}

func lessMonth(a, b string) bool {
	if (a == domain.MissingLabel) != (b == domain.MissingLabel) {
		return b == domain.MissingLabel
	}
	ia, okA := MonthIndex(a)
	ib, okB := MonthIndex(b)
	switch {
	case okA && okB:
		if ia != ib {
			return ia < ib
		}
		return a < b
	case okA:
		return true
	case okB:
		return false
	default:
		return lessKey(a, b)
	}
}

// boxStats computes the five-number summary with linearly interpolated quartiles
func boxStats(values []float64) *domain.BoxStats {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return &domain.BoxStats{
		Count:  len(sorted),
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

// quantile reads q from sorted values using linear interpolation between
// closest ranks
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lower := math.Floor(pos)
	upper := math.Ceil(pos)
	if lower == upper {
		return sorted[int(pos)]
	}
	frac := pos - lower
	return sorted[int(lower)]*(1-frac) + sorted[int(upper)]*frac
}

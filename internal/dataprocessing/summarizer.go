package dataprocessing

import (
	"fmt"
	"math"
	"sort"

	apperrors "realtydash/internal/errors"
	"realtydash/pkg/contracts/domain"
)

// Info reports the non-null count and inferred kind of every column
func Info(ds *domain.Dataset) []domain.ColumnInfo {
	columns := ds.Columns()
	infos := make([]domain.ColumnInfo, len(columns))

	for j, name := range columns {
		var numbers, texts int
		for _, rec := range ds.Records() {
			switch rec[j].Kind {
			case domain.KindNumber:
				numbers++
			case domain.KindText:
				texts++
			}
		}

		info := domain.ColumnInfo{
			Column:  name,
			NonNull: numbers + texts,
			Null:    ds.Len() - numbers - texts,
		}
		switch {
		case numbers > 0 && texts > 0:
			info.Kind, info.KindName = domain.KindText, "mixed"
		case numbers > 0:
			info.Kind, info.KindName = domain.KindNumber, domain.KindNumber.String()
		case texts > 0:
			info.Kind, info.KindName = domain.KindText, domain.KindText.String()
		default:
			info.Kind, info.KindName = domain.KindNull, domain.KindNull.String()
		}
		infos[j] = info
	}
	return infos
}

// Describe computes descriptive statistics per column. Columns whose
// non-null cells are all numbers get numeric statistics; the rest get
// count, unique, top and freq.
func Describe(ds *domain.Dataset) []domain.ColumnSummary {
	infos := Info(ds)
	summaries := make([]domain.ColumnSummary, len(infos))

	for j, info := range infos {
		values, _ := ds.Column(info.Column)
		if info.Kind == domain.KindNumber {
			summaries[j] = describeNumeric(info.Column, values)
			continue
		}
		summaries[j] = describeCategorical(info.Column, values)
	}
	return summaries
}

func describeNumeric(column string, cells []domain.Value) domain.ColumnSummary {
	values := floats(cells)
	s := domain.ColumnSummary{Column: column, Numeric: true, Count: len(values)}
	if len(values) == 0 {
		return s
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mean := sum(values) / float64(len(values))
	s.Mean = &mean
	if len(values) > 1 {
		var sq float64
		for _, v := range values {
			sq += (v - mean) * (v - mean)
		}
		std := math.Sqrt(sq / float64(len(values)-1))
		s.Std = &std
	}

	minV, p25, p50, p75, maxV := sorted[0], quantile(sorted, 0.25), quantile(sorted, 0.5), quantile(sorted, 0.75), sorted[len(sorted)-1]
	s.Min, s.P25, s.P50, s.P75, s.Max = &minV, &p25, &p50, &p75, &maxV
	return s
}

func describeCategorical(column string, cells []domain.Value) domain.ColumnSummary {
	s := domain.ColumnSummary{Column: column}
	counts := make(map[string]int)
	var order []string
	for _, v := range cells {
		if v.IsNull() {
			continue
		}
		s.Count++
		label := v.String()
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	s.Unique = len(order)
	for _, label := range order {
		if counts[label] > s.Freq {
			s.Top, s.Freq = label, counts[label]
		}
	}
	return s
}

// NullCounts returns the number of null cells per column, in column order
func NullCounts(ds *domain.Dataset) domain.AggregationResult {
	result := domain.AggregationResult{
		Kind:      domain.AggregateCount,
		KeyColumn: "column",
		Groups:    make([]domain.Group, 0, len(ds.Columns())),
	}
	for _, info := range Info(ds) {
		result.Groups = append(result.Groups, domain.Group{
			Key:   info.Column,
			Value: float64(info.Null),
			Count: info.Null,
		})
	}
	return result
}

// ValueCounts counts the non-null labels of column, most frequent first.
// A positive limit keeps only that many groups.
func ValueCounts(ds *domain.Dataset, column string, limit int) (domain.AggregationResult, error) {
	result, err := CountBy(ds, column, domain.OrderValueDesc)
	if err != nil {
		return domain.AggregationResult{}, err
	}

	groups := result.Groups[:0]
	for _, g := range result.Groups {
		if g.Key != domain.MissingLabel {
			groups = append(groups, g)
		}
	}
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	result.Groups = groups
	return result, nil
}

// Histogram buckets the numeric values of column into equal-width bins
// spanning [min, max]. The last bin includes its upper edge.
func Histogram(ds *domain.Dataset, column string, bins int) ([]domain.HistogramBin, error) {
	if bins <= 0 {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("bins must be positive, got %d", bins))
	}
	cells, ok := ds.Column(column)
	if !ok {
		return nil, unknownColumn(column)
	}

	values := floats(cells)
	if len(values) == 0 {
		return []domain.HistogramBin{}, nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	width := (hi - lo) / float64(bins)
	out := make([]domain.HistogramBin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out, nil
}

// Correlation computes the Pearson coefficient for every pair of columns
// over the rows where both values are present
func Correlation(ds *domain.Dataset, columns []string) (domain.CorrelationMatrix, error) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		pos, ok := ds.ColumnIndex(c)
		if !ok {
			return domain.CorrelationMatrix{}, unknownColumn(c)
		}
		idx[i] = pos
	}

	matrix := domain.CorrelationMatrix{
		Columns: append([]string(nil), columns...),
		Values:  make([][]*float64, len(columns)),
	}
	for i := range columns {
		matrix.Values[i] = make([]*float64, len(columns))
	}

	records := ds.Records()
	for i := range columns {
		for j := i; j < len(columns); j++ {
			var xs, ys []float64
			for _, rec := range records {
				x, okX := rec[idx[i]].Float()
				y, okY := rec[idx[j]].Float()
				if okX && okY {
					xs = append(xs, x)
					ys = append(ys, y)
				}
			}
			r := pearson(xs, ys)
			matrix.Values[i][j] = r
			matrix.Values[j][i] = r
		}
	}
	return matrix, nil
}

func pearson(xs, ys []float64) *float64 {
	n := len(xs)
	if n < 2 {
		return nil
	}
	mx, my := sum(xs)/float64(n), sum(ys)/float64(n)

	var cov, vx, vy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return nil
	}
	r := cov / math.Sqrt(vx*vy)
	r = math.Max(-1, math.Min(1, r))
	return &r
}

func floats(cells []domain.Value) []float64 {
	out := make([]float64, 0, len(cells))
	for _, v := range cells {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

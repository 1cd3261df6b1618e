package dataprocessing

import (
	"fmt"
	"sort"

	apperrors "realtydash/internal/errors"
	"realtydash/pkg/contracts/domain"
)

// Filter keeps the records that match sel. Values within a column are
// alternatives and columns must all match. Null cells never match.
func Filter(ds *domain.Dataset, sel domain.Selection) (*domain.Dataset, error) {
	type constraint struct {
		idx     int
		allowed map[string]struct{}
	}

	constraints := make([]constraint, 0, len(sel))
	for column, values := range sel {
		if len(values) == 0 {
			continue
		}
		idx, ok := ds.ColumnIndex(column)
		if !ok {
			return nil, unknownColumn(column)
		}
		allowed := make(map[string]struct{}, len(values))
		for _, v := range values {
			allowed[v] = struct{}{}
		}
		constraints = append(constraints, constraint{idx: idx, allowed: allowed})
	}

	indices := make([]int, 0, ds.Len())
	for i, rec := range ds.Records() {
		match := true
		for _, c := range constraints {
			v := rec[c.idx]
			if v.IsNull() {
				match = false
				break
			}
			if _, ok := c.allowed[v.String()]; !ok {
				match = false
				break
			}
		}
		if match {
			indices = append(indices, i)
		}
	}
	return ds.Subset(indices), nil
}

// Where keeps the records whose column equals value
func Where(ds *domain.Dataset, column, value string) (*domain.Dataset, error) {
	return Filter(ds, domain.Selection{column: {value}})
}

// DistinctValues returns the non-null labels of a column in sorted order
func DistinctValues(ds *domain.Dataset, column string) ([]string, error) {
	idx, ok := ds.ColumnIndex(column)
	if !ok {
		return nil, unknownColumn(column)
	}

	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, rec := range ds.Records() {
		v := rec[idx]
		if v.IsNull() {
			continue
		}
		label := v.String()
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		values = append(values, label)
	}

	sort.SliceStable(values, func(i, j int) bool {
		return lessKey(values[i], values[j])
	})
	return values, nil
}

func unknownColumn(column string) error {
	return apperrors.NewAppValidationError(fmt.Sprintf("unknown column %q", column)).
		WithContext("column", column)
}

package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "realtydash/internal/errors"
	"realtydash/pkg/contracts/domain"
)

// currencyNoise lists every character removed before a currency cell is parsed
const currencyNoise = "$,."

// CleanOptions selects the columns that hold currency text
type CleanOptions struct {
	CurrencyColumns []string
}

// CoercionFailure records a currency cell that could not be read as a number.
// The cell is null in the cleaned Dataset.
type CoercionFailure struct {
	// Row is the zero-based position of the record in the input Dataset
	Row    int    `json:"row"`
	Column string `json:"column"`
	Raw    string `json:"raw"`
}

// Error implements the error interface
func (f CoercionFailure) Error() string {
	return fmt.Sprintf("row %d column %q: cannot read %q as currency", f.Row, f.Column, f.Raw)
}

// CleanReport summarizes one cleaning pass
type CleanReport struct {
	RowsIn     int               `json:"rows_in"`
	RowsPruned int               `json:"rows_pruned"`
	RowsOut    int               `json:"rows_out"`
	Renamed    map[string]string `json:"renamed,omitempty"`
	Failures   []CoercionFailure `json:"failures,omitempty"`
}

// Clean trims column names, drops rows whose every cell is null and then
// coerces the currency columns. A row emptied by coercion is kept. It never
// mutates ds.
func Clean(ds *domain.Dataset, opts CleanOptions) (*domain.Dataset, CleanReport, error) {
	report := CleanReport{RowsIn: ds.Len()}

	columns, renamed := normalizeColumns(ds.Columns())
	if len(renamed) > 0 {
		report.Renamed = renamed
	}

	positions := make(map[string]int, len(columns))
	for i, c := range columns {
		positions[c] = i
	}

	currency := make([]int, 0, len(opts.CurrencyColumns))
	for _, name := range opts.CurrencyColumns {
		idx, ok := positions[strings.TrimSpace(name)]
		if !ok {
			return nil, report, apperrors.NewParsingError(
				fmt.Sprintf("currency column %q not found", name), nil).
				WithContext("column", name)
		}
		currency = append(currency, idx)
	}

	kept := make([]domain.Record, 0, ds.Len())
	for i, rec := range ds.Records() {
		if rec.IsEmpty() {
			report.RowsPruned++
			continue
		}

		out := make(domain.Record, len(rec))
		copy(out, rec)

		for _, idx := range currency {
			v := out[idx]
			if v.IsNull() {
				continue
			}
			n, ok := CoerceCurrency(v.String())
			if !ok {
				report.Failures = append(report.Failures, CoercionFailure{
					Row:    i,
					Column: columns[idx],
					Raw:    v.String(),
				})
				out[idx] = domain.Null()
				continue
			}
			out[idx] = domain.Number(n)
		}
		kept = append(kept, out)
	}

	report.RowsOut = len(kept)
	return domain.NewDataset(columns, kept), report, nil
}

// CoerceCurrency reads a currency-formatted string as a whole-unit amount.
// Every '$', ',' and '.' is removed and the rest is trimmed; what remains
// must be a run of ASCII digits. Empty or anything else reports false.
func CoerceCurrency(text string) (float64, bool) {
	stripped := strings.TrimSpace(strings.Map(func(r rune) rune {
		if strings.ContainsRune(currencyNoise, r) {
			return -1
		}
		return r
	}, text))

	if stripped == "" {
		return 0, false
	}
	for i := 0; i < len(stripped); i++ {
		if stripped[i] < '0' || stripped[i] > '9' {
			return 0, false
		}
	}

	n, err := strconv.ParseFloat(stripped, 64)
	if err != nil || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// NormalizeColumnName trims surrounding whitespace from a header name
func NormalizeColumnName(name string) string {
	return strings.TrimSpace(name)
}

// normalizeColumns trims every name and keeps them unique. It returns the
// renames that changed a name.
func normalizeColumns(columns []string) ([]string, map[string]string) {
	trimmed := make([]string, len(columns))
	for i, c := range columns {
		trimmed[i] = NormalizeColumnName(c)
	}
	out := dedupeColumns(trimmed)

	renamed := make(map[string]string)
	for i, c := range columns {
		if out[i] != c {
			renamed[c] = out[i]
		}
	}
	return out, renamed
}

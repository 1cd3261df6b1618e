package exporter

import (
	"math"
	"strconv"
	"strings"

	"realtydash/pkg/contracts/domain"
)

// FormatCurrency renders an amount as whole units with thousands
// separators, e.g. $1,234,567
func FormatCurrency(amount float64) string {
	return "$" + FormatThousands(amount)
}

// FormatThousands rounds to whole units and groups digits by three
func FormatThousands(amount float64) string {
	rounded := math.Round(amount)
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}

	digits := strconv.FormatFloat(rounded, 'f', 0, 64)
	var b strings.Builder
	b.WriteString(sign)
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatValue renders a cell for CSV output. Integral numbers carry no
// decimals and null cells are empty.
func FormatValue(v domain.Value) string {
	if v.Kind == domain.KindNumber && v.Num == math.Trunc(v.Num) && math.Abs(v.Num) < 1e15 {
		return strconv.FormatFloat(v.Num, 'f', 0, 64)
	}
	return v.String()
}

// RecordStrings renders every cell of a record with FormatValue
func RecordStrings(rec domain.Record) []string {
	out := make([]string, len(rec))
	for i, v := range rec {
		out[i] = FormatValue(v)
	}
	return out
}

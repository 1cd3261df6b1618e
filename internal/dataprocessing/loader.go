package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"realtydash/internal/config"
	apperrors "realtydash/internal/errors"
	"realtydash/pkg/contracts/domain"
)

// utf8BOM is stripped from the first header cell
const utf8BOM = "\ufeff"

// naTokens are the cell spellings read as missing, in addition to the empty string
var naTokens = map[string]struct{}{
	"NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "#NA": {}, "<NA>": {},
	"#N/A N/A": {}, "1.#IND": {}, "1.#QNAN": {}, "-1.#IND": {}, "-1.#QNAN": {},
}

// LoadOptions controls how a source file is read
type LoadOptions struct {
	// Delimiter separates fields of text files. Zero means comma.
	Delimiter rune
	// Sheet names the workbook sheet to read. Empty means the first sheet.
	Sheet string
	// TextColumns keep their raw cell text even when every cell is a
	// decimal literal. Names are matched after trimming.
	TextColumns []string
}

// DefaultLoadOptions returns comma-delimited options that keep the default
// currency columns as text for the cleaner
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Delimiter:   ',',
		TextColumns: append([]string(nil), config.CurrencyColumns...),
	}
}

// Load reads path into a Dataset. Files ending in .xlsx are read as
// workbooks; everything else is delimited text with a header row.
func Load(path string, opts LoadOptions) (*domain.Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.NewDataAccessError("cannot open data file", err).
			WithContext("path", path)
	}
	if info.IsDir() {
		return nil, apperrors.NewDataAccessError("data path is a directory", nil).
			WithContext("path", path)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return loadWorkbook(path, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewDataAccessError("cannot open data file", err).
			WithContext("path", path)
	}
	defer f.Close()

	ds, err := ReadCSV(bufio.NewReader(f), opts)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("path", path)
		}
		return nil, err
	}
	return ds, nil
}

// ReadCSV reads delimited text with a header row from r
func ReadCSV(r io.Reader, opts LoadOptions) (*domain.Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiterOf(opts)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewParsingError("data file is empty", nil)
	}
	if err != nil {
		return nil, csvParseError(err)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	var rows [][]string
	var lines []int
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvParseError(err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, rec)
		lines = append(lines, line)
	}

	return buildDataset(header, rows, func(i int) int { return lines[i] }, opts)
}

// ReadCSVBytes is ReadCSV over an in-memory buffer
func ReadCSVBytes(data []byte, opts LoadOptions) (*domain.Dataset, error) {
	return ReadCSV(bytes.NewReader(data), opts)
}

func delimiterOf(opts LoadOptions) rune {
	if opts.Delimiter == 0 {
		return ','
	}
	return opts.Delimiter
}

func csvParseError(err error) error {
	appErr := apperrors.NewParsingError("malformed delimited text", err)
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		appErr.WithContext("row", pe.Line)
	}
	return appErr
}

func loadWorkbook(path string, opts LoadOptions) (*domain.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewDataAccessError("cannot open workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewParsingError("workbook has no sheets", nil).
				WithContext("path", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("cannot read sheet %q", sheet), err).
			WithContext("path", path)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, apperrors.NewParsingError("data file is empty", nil).
			WithContext("path", path)
	}

	// spreadsheet rows are 1-based and the header is row 1
	ds, err := buildDataset(rows[0], rows[1:], func(i int) int { return i + 2 }, opts)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("path", path).WithContext("sheet", sheet)
		}
		return nil, err
	}
	return ds, nil
}

// buildDataset turns raw string rows into typed records. lineOf maps a data
// row index to its line in the source for error reporting.
func buildDataset(header []string, rows [][]string, lineOf func(int) int, opts LoadOptions) (*domain.Dataset, error) {
	columns := dedupeColumns(header)
	width := len(columns)

	records := make([]domain.Record, len(rows))
	for i, raw := range rows {
		if len(raw) > width {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("expected %d fields, saw %d", width, len(raw)), nil).
				WithContext("row", lineOf(i))
		}
		rec := make(domain.Record, width)
		for j, cell := range raw {
			rec[j] = parseCell(cell)
		}
		records[i] = rec
	}

	inferNumericColumns(records, textColumnMask(columns, opts.TextColumns))
	return domain.NewDataset(columns, records), nil
}

// dedupeColumns renames repeated header names to X, X.1, X.2, ...
func dedupeColumns(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))
	for _, h := range header {
		taken[h] = true
	}

	for i, h := range header {
		n, dup := seen[h]
		if !dup {
			seen[h] = 0
			out[i] = h
			continue
		}
		name := h
		for {
			n++
			name = fmt.Sprintf("%s.%d", h, n)
			if !taken[name] {
				break
			}
		}
		seen[h] = n
		taken[name] = true
		out[i] = name
	}
	return out
}

func parseCell(s string) domain.Value {
	if s == "" {
		return domain.Null()
	}
	if _, na := naTokens[s]; na {
		return domain.Null()
	}
	return domain.Text(s)
}

// textColumnMask marks the positions of columns that must stay text
func textColumnMask(columns, names []string) []bool {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[strings.TrimSpace(n)] = true
	}
	mask := make([]bool, len(columns))
	for i, c := range columns {
		mask[i] = keep[strings.TrimSpace(c)]
	}
	return mask
}

// inferNumericColumns converts a column to numbers when every non-null cell
// is a plain decimal literal. Columns flagged in text are left alone.
func inferNumericColumns(records []domain.Record, text []bool) {
	for col, keepText := range text {
		if keepText {
			continue
		}
		numeric := false
		for _, rec := range records {
			v := rec[col]
			if v.IsNull() {
				continue
			}
			if _, ok := parseNumericLiteral(v.Text); !ok {
				numeric = false
				break
			}
			numeric = true
		}
		if !numeric {
			continue
		}
		for _, rec := range records {
			if rec[col].IsNull() {
				continue
			}
			f, _ := parseNumericLiteral(rec[col].Text)
			rec[col] = domain.Number(f)
		}
	}
}

func parseNumericLiteral(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789+-.eE", r) {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

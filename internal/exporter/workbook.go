package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	apperrors "realtydash/internal/errors"
	"realtydash/pkg/contracts/domain"
)

// Sheet names of the exported workbook
const (
	SheetDetail  = "Detalle"
	SheetPivot   = "Pivot"
	SheetSummary = "Resumen"
)

// WorkbookData is the content of an exported workbook
type WorkbookData struct {
	Metrics []domain.Metric
	Detail  *domain.TableData
	Pivot   *domain.CrossTab
}

// WorkbookExporter writes dashboards as Excel workbooks
type WorkbookExporter struct {
	logger *slog.Logger
}

// NewWorkbookExporter creates a workbook exporter
func NewWorkbookExporter(logger *slog.Logger) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{logger: logger.With(slog.String("component", "workbook_exporter"))}
}

// Build assembles the workbook. The caller must Close the returned file.
func (e *WorkbookExporter) Build(data WorkbookData) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetDetail); err != nil {
		f.Close()
		return nil, apperrors.NewExportError("failed to name detail sheet", err)
	}
	for _, name := range []string{SheetPivot, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, apperrors.NewExportError(fmt.Sprintf("failed to add sheet %s", name), err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, apperrors.NewExportError("failed to create header style", err)
	}

	steps := []func() error{
		func() error { return writeDetail(f, data.Detail, header) },
		func() error { return writePivot(f, data.Pivot, header) },
		func() error { return writeSummary(f, data.Metrics, header) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, apperrors.NewExportError("failed to build workbook", err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write streams the workbook to w
func (e *WorkbookExporter) Write(w io.Writer, data WorkbookData) error {
	f, err := e.Build(data)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return apperrors.NewExportError("failed to write workbook", err)
	}
	return nil
}

// Save writes the workbook to path, creating parent directories
func (e *WorkbookExporter) Save(path string, data WorkbookData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewExportError("failed to create directory", err)
	}

	f, err := e.Build(data)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewExportError("failed to save workbook", err)
	}

	e.logger.Info("workbook saved", slog.String("path", path))
	return nil
}

func writeDetail(f *excelize.File, table *domain.TableData, header int) error {
	if table == nil {
		return nil
	}

	if err := writeRow(f, SheetDetail, 1, stringsToCells(table.Columns)); err != nil {
		return err
	}
	for i, row := range table.Rows {
		cells := make([]interface{}, len(row))
		for j, s := range row {
			cells[j] = numericOrText(s)
		}
		if err := writeRow(f, SheetDetail, i+2, cells); err != nil {
			return err
		}
	}
	return styleHeader(f, SheetDetail, len(table.Columns), header)
}

func writePivot(f *excelize.File, ct *domain.CrossTab, header int) error {
	if ct == nil {
		return nil
	}

	head := []interface{}{ct.RowColumn + " / " + ct.ColColumn}
	for _, k := range ct.ColKeys {
		head = append(head, k)
	}
	head = append(head, "Total")
	if err := writeRow(f, SheetPivot, 1, head); err != nil {
		return err
	}

	colTotals := make([]int, len(ct.ColKeys))
	grand := 0
	for i, rk := range ct.RowKeys {
		row := []interface{}{rk}
		total := 0
		for j := range ct.ColKeys {
			n := ct.Counts[i][j]
			row = append(row, n)
			total += n
			colTotals[j] += n
		}
		grand += total
		row = append(row, total)
		if err := writeRow(f, SheetPivot, i+2, row); err != nil {
			return err
		}
	}

	footer := []interface{}{"Total"}
	for _, n := range colTotals {
		footer = append(footer, n)
	}
	footer = append(footer, grand)
	if err := writeRow(f, SheetPivot, len(ct.RowKeys)+2, footer); err != nil {
		return err
	}
	return styleHeader(f, SheetPivot, len(head), header)
}

func writeSummary(f *excelize.File, metrics []domain.Metric, header int) error {
	if err := writeRow(f, SheetSummary, 1, []interface{}{"Indicador", "Valor", "Formato"}); err != nil {
		return err
	}
	for i, m := range metrics {
		if err := writeRow(f, SheetSummary, i+2, []interface{}{m.Label, m.Value, m.Formatted}); err != nil {
			return err
		}
	}
	return styleHeader(f, SheetSummary, 3, header)
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}

func styleHeader(f *excelize.File, sheet string, width, style int) error {
	if width == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(width, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(width)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

func stringsToCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// numericOrText keeps numbers numeric so spreadsheet formulas work on them
func numericOrText(s string) interface{} {
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}

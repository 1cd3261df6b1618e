package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"realtydash/internal/config"
	"realtydash/internal/dataprocessing"
	"realtydash/internal/exporter"
	"realtydash/internal/services"
	"realtydash/pkg/contracts/domain"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

const histogramWidth = 30

func newDescribeCmd() *cobra.Command {
	var (
		showFailures bool
		counts       []string
		histColumn   string
		bins         int
		countLimit   int
	)

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Load and clean the sheet, then print its column report and statistics",
		Example: `  realtyctl describe --data data/Base.txt
  realtyctl describe --counts ASESOR --hist "VL. CUOTA INICIAL" --bins 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			summary, err := e.data.Summary(cmd.Context())
			if err != nil {
				return err
			}
			ds, err := e.data.CleanedDataset(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			renderSummary(w, summary, showFailures)

			explicit := cmd.Flags().Changed("counts")
			for _, column := range counts {
				if !explicit && !ds.HasColumn(column) {
					continue
				}
				res, err := dataprocessing.ValueCounts(ds, column, countLimit)
				if err != nil {
					return err
				}
				renderValueCounts(w, column, res)
			}

			if histColumn != "" && (cmd.Flags().Changed("hist") || ds.HasColumn(histColumn)) {
				hist, err := dataprocessing.Histogram(ds, histColumn, bins)
				if err != nil {
					return err
				}
				renderHistogram(w, histColumn, hist)
			}

			renderCorrelation(w, summary.Correlation)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showFailures, "failures", false, "list every cell that failed currency coercion")
	cmd.Flags().StringSliceVar(&counts, "counts", []string{config.ColEstado, config.ColTipo, config.ColMedio},
		"columns to print value counts for")
	cmd.Flags().IntVar(&countLimit, "top", 10, "value counts to show per column; 0 shows all")
	cmd.Flags().StringVar(&histColumn, "hist", config.ColValorTotal, "numeric column to print a histogram of; empty skips it")
	cmd.Flags().IntVar(&bins, "bins", 10, "histogram bins")
	return cmd
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func section(w io.Writer, title string, t *table.Table) {
	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintln(w, t.Render())
}

func renderSummary(w io.Writer, s *services.DatasetSummary, showFailures bool) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s: %d rows", s.Source, s.Rows)))
	fmt.Fprintf(w, "read %d, pruned %d empty, kept %d, %d coercion failures\n",
		s.Report.RowsIn, s.Report.RowsPruned, s.Report.RowsOut, len(s.Report.Failures))

	info := newTable("Column", "Non-null", "Null", "Kind")
	for _, c := range s.Info {
		info.Row(c.Column, strconv.Itoa(c.NonNull), strconv.Itoa(c.Null), c.KindName)
	}
	section(w, "Columns", info)

	numeric := newTable("Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max")
	categorical := newTable("Column", "Count", "Unique", "Top", "Freq")
	var nNumeric, nCategorical int
	for _, c := range s.Statistics {
		if c.Numeric {
			nNumeric++
			numeric.Row(c.Column, strconv.Itoa(c.Count), number(c.Mean), number(c.Std),
				number(c.Min), number(c.P25), number(c.P50), number(c.P75), number(c.Max))
			continue
		}
		nCategorical++
		categorical.Row(c.Column, strconv.Itoa(c.Count), strconv.Itoa(c.Unique), c.Top, strconv.Itoa(c.Freq))
	}
	if nNumeric > 0 {
		section(w, "Numeric columns", numeric)
	}
	if nCategorical > 0 {
		section(w, "Categorical columns", categorical)
	}

	if showFailures && len(s.Report.Failures) > 0 {
		failures := newTable("Row", "Column", "Raw")
		for _, f := range s.Report.Failures {
			failures.Row(strconv.Itoa(f.Row), f.Column, f.Raw)
		}
		section(w, "Coercion failures", failures)
	}
}

func renderValueCounts(w io.Writer, column string, res domain.AggregationResult) {
	t := newTable(column, "Count")
	for _, g := range res.Groups {
		t.Row(g.Key, strconv.Itoa(g.Count))
	}
	section(w, "Value counts: "+column, t)
}

func renderHistogram(w io.Writer, column string, bins []domain.HistogramBin) {
	peak := 0
	for _, b := range bins {
		peak = max(peak, b.Count)
	}
	t := newTable("From", "To", "Count", "")
	for _, b := range bins {
		bar := ""
		if peak > 0 {
			bar = strings.Repeat("█", b.Count*histogramWidth/peak)
		}
		t.Row(exporter.FormatThousands(b.Lower), exporter.FormatThousands(b.Upper), strconv.Itoa(b.Count), bar)
	}
	section(w, "Histogram: "+column, t)
}

func renderCorrelation(w io.Writer, m domain.CorrelationMatrix) {
	if len(m.Columns) < 2 {
		return
	}
	t := newTable(append([]string{""}, m.Columns...)...)
	for i, column := range m.Columns {
		row := []string{column}
		for _, v := range m.Values[i] {
			if v == nil {
				row = append(row, "-")
				continue
			}
			row = append(row, strconv.FormatFloat(*v, 'f', 2, 64))
		}
		t.Row(row...)
	}
	section(w, "Correlation (Pearson)", t)
}

func number(v *float64) string {
	if v == nil {
		return "-"
	}
	return exporter.FormatThousands(*v)
}

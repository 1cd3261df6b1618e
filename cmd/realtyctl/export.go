package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"realtydash/internal/exporter"
	"realtydash/internal/validation"
)

func newExportCmd() *cobra.Command {
	var (
		filters []string
		format  string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the cleaned, filtered sheet as CSV or the dashboard tables as an Excel workbook",
		Example: `  realtyctl export --format csv --filter ESTADO=VENDIDO
  realtyctl export --format xlsx --out ventas.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := parseSelection(filters)
			if err != nil {
				return err
			}
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			v := validation.NewFileValidator(e.logger)
			if err := v.ValidateOutputDirectory(e.paths.ExportDir); err != nil {
				return err
			}

			var written string
			switch strings.ToLower(format) {
			case "csv":
				if out == "" {
					out = "ventas.csv"
				}
				ds, err := e.data.FilteredDataset(cmd.Context(), sel)
				if err != nil {
					return err
				}
				written, err = exporter.NewCSVWriter(e.paths, e.logger).ExportDataset(out, ds)
				if err != nil {
					return err
				}

			case "xlsx":
				if out == "" {
					out = "dashboard.xlsx"
				}
				data, err := e.data.Workbook(cmd.Context(), sel)
				if err != nil {
					return err
				}
				written = out
				if !filepath.IsAbs(written) {
					written = e.paths.ExportPath(out)
				}
				if err := v.ValidateOutputDirectory(filepath.Dir(written)); err != nil {
					return err
				}
				if err := exporter.NewWorkbookExporter(e.logger).Save(written, data); err != nil {
					return err
				}

			default:
				return fmt.Errorf("unsupported format %q, want csv or xlsx", format)
			}

			fmt.Fprintln(cmd.OutOrStdout(), written)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "COLUMN=VALUE; repeat to allow several values or columns")
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file; relative paths land in the export directory")
	return cmd
}

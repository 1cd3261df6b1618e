// Package exporter writes cleaned data and dashboards to files.
//
// CSVWriter writes delimited text with an optional UTF-8 BOM so Excel opens
// accented headers correctly. Relative paths land in the configured export
// directory. WriteDataset streams a Dataset to any io.Writer.
//
// WorkbookExporter builds an Excel workbook with three sheets:
//
//	Detalle  the detail table of the dashboard
//	Pivot    the floor by type cross-tabulation with totals
//	Resumen  the headline metrics
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths, logger)
//	path, err := writer.ExportDataset("ventas.csv", ds)
//
//	wb := exporter.NewWorkbookExporter(logger)
//	err = wb.Save(paths.ExportPath("ventas.xlsx"), exporter.WorkbookData{
//	    Metrics: dash.Metrics,
//	    Detail:  dash.Detail,
//	    Pivot:   dash.Pivot,
//	})
package exporter

package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"realtydash/internal/config"
	apperrors "realtydash/internal/errors"
	"realtydash/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize UTF-8 text
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer. Relative paths are placed in the
// export directory of paths.
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger.With(slog.String("component", "csv_writer"))}
}

// ExportDataset writes every record of ds to filePath and returns the full path
func (w *CSVWriter) ExportDataset(filePath string, ds *domain.Dataset) (string, error) {
	stream, err := w.CreateStreamWriter(filePath, ds.Columns())
	if err != nil {
		return "", err
	}
	for _, rec := range ds.Records() {
		if err := stream.WriteRecord(RecordStrings(rec)); err != nil {
			stream.Close()
			return "", apperrors.NewExportError("failed to write record", err)
		}
	}
	if err := stream.Close(); err != nil {
		return "", apperrors.NewExportError("failed to close CSV", err)
	}
	return stream.Path(), nil
}

// WriteDataset writes ds as CSV to out, optionally prefixed with a BOM
func WriteDataset(out io.Writer, ds *domain.Dataset, bom bool) error {
	if bom {
		if _, err := out.Write(utf8BOM); err != nil {
			return apperrors.NewExportError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(ds.Columns()); err != nil {
		return apperrors.NewExportError("failed to write headers", err)
	}
	for i, rec := range ds.Records() {
		if err := writer.Write(RecordStrings(rec)); err != nil {
			return apperrors.NewExportError(fmt.Sprintf("failed to write record %d", i), err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewExportError("failed to flush CSV", err)
	}
	return nil
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	w.logger.Info("creating CSV stream writer",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("header_count", len(headers)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, apperrors.NewExportError("failed to create directory", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, apperrors.NewExportError("failed to create file", err)
	}

	if _, err := file.Write(utf8BOM); err != nil {
		file.Close()
		return nil, apperrors.NewExportError("failed to write BOM", err)
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, apperrors.NewExportError("failed to write headers", err)
		}
	}

	return &StreamWriter{
		path:   fullPath,
		file:   file,
		writer: writer,
	}, nil
}

// Path returns the file the stream writes to
func (s *StreamWriter) Path() string {
	return s.path
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// resolvePath places relative paths inside the export directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.ExportPath(filePath)
}

package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DataExtensions are the input formats the loader understands
var DataExtensions = []string{".txt", ".csv", ".xlsx"}

// FileValidator checks input and output locations before the pipeline touches them
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateDataFile checks that path is a readable sales sheet in a supported format
func (v *FileValidator) ValidateDataFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Warn("Data file does not exist",
			slog.String("file", path))
		return fmt.Errorf("data file not found: %s", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat data file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		return fmt.Errorf("%s is a temporary Excel lock file", path)
	}
	if !HasDataExtension(base) {
		return fmt.Errorf("unsupported data file extension %q (want %s)",
			filepath.Ext(base), strings.Join(DataExtensions, ", "))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Warn("Data file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("data file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("Data file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures dir exists, or can be created, and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("export directory not writable: %s", dir)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// HasDataExtension reports whether name ends in one of DataExtensions
func HasDataExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range DataExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileValidator_ValidateDataFile(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(t *testing.T) string
		errorContains string
	}{
		{
			name: "text sheet",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "Base.txt")
				require.NoError(t, os.WriteFile(path, []byte("ESTADO\nVENDIDO\n"), 0644))
				return path
			},
		},
		{
			name: "workbook upper case extension",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "Base.XLSX")
				require.NoError(t, os.WriteFile(path, []byte("PK"), 0644))
				return path
			},
		},
		{
			name: "missing file",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "gone.txt")
			},
			errorContains: "data file not found",
		},
		{
			name: "directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			errorContains: "is a directory",
		},
		{
			name: "excel lock file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "~$Base.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
				return path
			},
			errorContains: "lock file",
		},
		{
			name: "unsupported extension",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "Base.pdf")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
				return path
			},
			errorContains: "unsupported data file extension",
		},
	}

	v := NewFileValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateDataFile(tt.setup(t))
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)

	dir := filepath.Join(t.TempDir(), "exports", "nested")
	require.NoError(t, v.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)
	assert.NoFileExists(t, filepath.Join(dir, ".write_test"))

	// A regular file in the way cannot become a directory
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	assert.Error(t, v.ValidateOutputDirectory(filepath.Join(blocker, "sub")))
}

func TestHasDataExtension(t *testing.T) {
	assert.True(t, HasDataExtension("ventas.CSV"))
	assert.True(t, HasDataExtension("Base.txt"))
	assert.False(t, HasDataExtension("Base"))
	assert.False(t, HasDataExtension("Base.xls"))
}

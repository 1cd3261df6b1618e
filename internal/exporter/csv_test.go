package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtydash/internal/config"
	"realtydash/internal/shared/testutil"
	"realtydash/pkg/contracts/domain"
)

func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	dir := t.TempDir()
	logger, _ := testutil.NewTestLogger(t)
	writer := NewCSVWriter(&config.Paths{WorkDir: dir, ExportDir: filepath.Join(dir, "exports")}, logger)
	return writer, dir
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	content = bytes.TrimPrefix(content, utf8BOM)

	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	return records
}

func sampleDataset() *domain.Dataset {
	return domain.NewDataset(
		[]string{"APTO #", "TIPO", "VALOR TOTAL"},
		[]domain.Record{
			{domain.Number(101), domain.Text("A"), domain.Number(150000000)},
			{domain.Number(102), domain.Text("B, esquinero"), domain.Null()},
		},
	)
}

func TestCSVWriter_AbsolutePath(t *testing.T) {
	writer, _ := setupTestEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "abs.csv")

	written, err := writer.ExportDataset(path, sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, path, written)
	assert.Equal(t, []string{"APTO #", "TIPO", "VALOR TOTAL"}, readCSV(t, path)[0])
}

func TestCSVWriter_ExportDataset(t *testing.T) {
	writer, dir := setupTestEnv(t)

	path, err := writer.ExportDataset("ventas.csv", sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "exports", "ventas.csv"), path)

	assert.Equal(t, [][]string{
		{"APTO #", "TIPO", "VALOR TOTAL"},
		{"101", "A", "150000000"},
		{"102", "B, esquinero", ""},
	}, readCSV(t, path))
}

func TestWriteDataset(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDataset(&buf, sampleDataset(), false))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "APTO #,TIPO,VALOR TOTAL", lines[0])
	assert.Equal(t, `102,"B, esquinero",`, lines[2])

	buf.Reset()
	require.NoError(t, WriteDataset(&buf, sampleDataset(), true))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
}

func TestStreamWriter_Concurrent(t *testing.T) {
	writer, _ := setupTestEnv(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			stream, err := writer.CreateStreamWriter(filepath.Join("streams", string(rune('a'+n))+".csv"), []string{"n"})
			if !assert.NoError(t, err) {
				return
			}
			assert.NoError(t, stream.WriteRecord([]string{"1"}))
			assert.NoError(t, stream.Close())
			assert.FileExists(t, stream.Path())
		}(i)
	}
	wg.Wait()
}

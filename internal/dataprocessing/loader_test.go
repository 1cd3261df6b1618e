package dataprocessing

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "realtydash/internal/errors"
	"realtydash/internal/shared/testutil"
	"realtydash/pkg/contracts/domain"
)

func TestLoad_SalesFixture(t *testing.T) {
	ds, err := Load(testutil.WriteSalesCSV(t), DefaultLoadOptions())
	require.NoError(t, err)

	assert.Equal(t, 7, ds.Len())
	assert.Contains(t, ds.Columns(), "TIPO ")
	assert.Contains(t, ds.Columns(), " ESTADO ")

	// numeric columns are inferred, currency text is left for the cleaner
	assert.Equal(t, domain.Number(2023), ds.Value(0, "AÑO"))
	assert.Equal(t, domain.Number(60.5), ds.Value(0, "AREA CONST"))
	assert.Equal(t, domain.Text("$150,000,000"), ds.Value(0, "VALOR TOTAL"))
	assert.True(t, ds.Record(3).IsEmpty())
	assert.True(t, ds.Value(1, "ASESOR").IsNull())
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		opts    LoadOptions
		columns []string
		rows    []domain.Record
	}{
		{
			name:    "pads short rows",
			input:   "a,b,c\nx,y\n",
			columns: []string{"a", "b", "c"},
			rows:    []domain.Record{{domain.Text("x"), domain.Text("y"), domain.Null()}},
		},
		{
			name:    "strips byte order mark",
			input:   "\ufeffa,b\nx,y\n",
			columns: []string{"a", "b"},
			rows:    []domain.Record{{domain.Text("x"), domain.Text("y")}},
		},
		{
			name:    "renames duplicate headers",
			input:   "X,X,X\n1,2,3\n",
			columns: []string{"X", "X.1", "X.2"},
			rows:    []domain.Record{{domain.Number(1), domain.Number(2), domain.Number(3)}},
		},
		{
			name:    "reads NA tokens as null",
			input:   "a,b,c,d\nNA,N/A,#N/A,keep\n",
			columns: []string{"a", "b", "c", "d"},
			rows:    []domain.Record{{domain.Null(), domain.Null(), domain.Null(), domain.Text("keep")}},
		},
		{
			name:    "keeps whitespace-only cells as text",
			input:   "a,b\n  ,1\n",
			columns: []string{"a", "b"},
			rows:    []domain.Record{{domain.Text("  "), domain.Number(1)}},
		},
		{
			name:    "mixed column stays text",
			input:   "a\n1\nx\n",
			columns: []string{"a"},
			rows:    []domain.Record{{domain.Text("1")}, {domain.Text("x")}},
		},
		{
			name:    "custom delimiter",
			input:   "a;b\n1;$2.000\n",
			opts:    LoadOptions{Delimiter: ';'},
			columns: []string{"a", "b"},
			rows:    []domain.Record{{domain.Number(1), domain.Text("$2.000")}},
		},
		{
			name:    "text columns skip inference",
			input:   "a,VALOR TOTAL\n1,150000.00\n",
			opts:    LoadOptions{TextColumns: []string{" VALOR TOTAL "}},
			columns: []string{"a", "VALOR TOTAL"},
			rows:    []domain.Record{{domain.Number(1), domain.Text("150000.00")}},
		},
		{
			name:    "header only",
			input:   "a,b\n",
			columns: []string{"a", "b"},
			rows:    []domain.Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ReadCSV(strings.NewReader(tt.input), tt.opts)
			require.NoError(t, err)

			assert.Equal(t, tt.columns, ds.Columns())
			if diff := cmp.Diff(tt.rows, ds.Records()); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantRow int
	}{
		{name: "empty file", input: ""},
		{name: "row longer than header", input: "a,b\n1,2\n1,2,3\n", wantRow: 3},
		{name: "malformed quoting", input: "a,b\n\"x,y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSVBytes([]byte(tt.input), DefaultLoadOptions())
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))

			if tt.wantRow > 0 {
				var appErr *apperrors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.wantRow, appErr.Context["row"])
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.txt")

	_, err := Load(path, DefaultLoadOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeDataAccess))

	_, err = Load(t.TempDir(), DefaultLoadOptions())
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeDataAccess))
}

func TestLoad_WorkbookMatchesCSV(t *testing.T) {
	content := "APTO #,TIPO,VALOR TOTAL\n101,A,\"$150,000,000\"\n102,B,\n"
	csvPath := testutil.WriteFile(t, "Base.txt", content)

	fromCSV, err := Load(csvPath, DefaultLoadOptions())
	require.NoError(t, err)

	wb := excelize.NewFile()
	defer wb.Close()
	sheet := wb.GetSheetName(0)
	rows := [][]interface{}{
		{"APTO #", "TIPO", "VALOR TOTAL"},
		{"101", "A", "$150,000,000"},
		{"102", "B"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}
	xlsxPath := filepath.Join(t.TempDir(), "Base.xlsx")
	require.NoError(t, wb.SaveAs(xlsxPath))

	fromXLSX, err := Load(xlsxPath, DefaultLoadOptions())
	require.NoError(t, err)

	assert.Equal(t, fromCSV.Columns(), fromXLSX.Columns())
	if diff := cmp.Diff(fromCSV.Records(), fromXLSX.Records()); diff != "" {
		t.Errorf("workbook and csv disagree (-csv +xlsx):\n%s", diff)
	}
}

func TestLoad_WorkbookUnknownSheet(t *testing.T) {
	wb := excelize.NewFile()
	defer wb.Close()
	path := filepath.Join(t.TempDir(), "Base.xlsx")
	require.NoError(t, wb.SaveAs(path))

	_, err := Load(path, LoadOptions{Sheet: "Ventas"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

func TestDedupeColumns(t *testing.T) {
	assert.Equal(t, []string{"A", "A.2", "A.1"}, dedupeColumns([]string{"A", "A", "A.1"}))
	assert.Equal(t, []string{"A", "A.1", "A.2"}, dedupeColumns([]string{"A", "A", "A"}))
	assert.Equal(t, []string{"A", "B"}, dedupeColumns([]string{"A", "B"}))
}

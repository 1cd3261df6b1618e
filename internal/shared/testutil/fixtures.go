// Package testutil holds helpers shared by package tests: a slog handler that
// captures records and a small sales sheet with known aggregates.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SalesCSV is a seven-line sales sheet. The header carries padded names, the
// fourth data line is fully empty and two currency cells read "N/D".
//
// After cleaning it holds 6 rows:
//   - VENDIDO rows: 4; VALOR TOTAL sum: 925000000
//   - AÑO: 2023 x3, 2024 x3; TIPO: A x3, B x2, C x1
//   - sold VALOR TOTAL by ASESOR: ANA 590000000, LUIS 155000000
var SalesCSV = strings.Join([]string{
	`APTO #,PISO,TIPO , ESTADO ,MEDIO DE PUBLICIDAD,ASESOR,AÑO,MES DE VENTA,APLICA SUBSIDIO,CLIENTE 1,AREA CONST,AREA PRIVADA,VALOR TOTAL,VL. CUOTA INICIAL`,
	`101,1,A,VENDIDO,FACEBOOK,ANA,2023,ENERO,SI,Cliente Uno,60.5,55.2,"$150,000,000",$30.000.000`,
	`102,1,B,DISPONIBLE,REFERIDO,,2023,,NO,,72,66,$ 180.000.000,`,
	`201,2,A,VENDIDO,FACEBOOK,LUIS,2023,MARZO,SI,Cliente Tres,60.5,55.2,"$155,000,000","$31,000,000"`,
	`,,,,,,,,,,,,,`,
	`202,2,B,VENDIDO,VALLA,ANA,2024,ENERO,NO,Cliente Cuatro,72,66,"$190,000,000",N/D`,
	`301,3,A,SEPARADO,REFERIDO,LUIS,2024,FEBRERO,SI,Cliente Cinco,60.5,55.2,N/D,"$20,000,000"`,
	`302,3,C,VENDIDO,FACEBOOK,ANA,2024,FEBRERO,,Cliente Seis,90,84,"$250,000,000","$50,000,000"`,
}, "\n") + "\n"

// WriteFile writes content to name inside a fresh temp dir and returns the path
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// WriteSalesCSV writes SalesCSV to a temp file and returns its path
func WriteSalesCSV(t *testing.T) string {
	t.Helper()
	return WriteFile(t, "Base.txt", SalesCSV)
}

package config

import "time"

// Application constants
const (
	AppName     = "Realty Dashboard"
	ServiceName = "realtydash"

	// CleaningVersion keys the dataset cache. Bump it whenever cleaning rules change.
	CleaningVersion = "v1"

	DefaultDataFile  = "data/Base.txt"
	DefaultExportDir = "exports"
	DefaultLogFile   = "logs/app.log"
	DefaultLogLevel  = "info"

	DefaultRateLimit      = 100 // requests per second
	DefaultBurstSize      = 50
	DefaultRequestTimeout = 30 * time.Second

	DefaultPageLimit = 100
	MaxPageLimit     = 5000

	HistogramBins = 30
)

// Column names of the sales sheet
const (
	ColEstado         = "ESTADO"
	ColTipo           = "TIPO"
	ColMedio          = "MEDIO DE PUBLICIDAD"
	ColAsesor         = "ASESOR"
	ColPiso           = "PISO"
	ColAnio           = "AÑO"
	ColMesVenta       = "MES DE VENTA"
	ColAplicaSubsidio = "APLICA SUBSIDIO"
	ColApto           = "APTO #"
	ColCliente        = "CLIENTE 1"
	ColValorTotal     = "VALOR TOTAL"
	ColCuotaInicial   = "VL. CUOTA INICIAL"
	ColAreaConst      = "AREA CONST"
	ColAreaPrivada    = "AREA PRIVADA"
)

// StatusSold marks a closed sale in the ESTADO column
const StatusSold = "VENDIDO"

// Months lists sale month labels in calendar order
var Months = []string{
	"ENERO", "FEBRERO", "MARZO", "ABRIL", "MAYO", "JUNIO",
	"JULIO", "AGOSTO", "SEPTIEMBRE", "OCTUBRE", "NOVIEMBRE", "DICIEMBRE",
}

// FilterColumns are offered as dashboard filters, in display order
var FilterColumns = []string{ColEstado, ColMedio, ColTipo}

// DetailColumns make up the dashboard detail table
var DetailColumns = []string{ColApto, ColPiso, ColTipo, ColEstado, ColValorTotal, ColCliente, ColAsesor}

// CurrencyColumns hold currency text in the source sheet
var CurrencyColumns = []string{ColValorTotal, ColCuotaInicial}

// CorrelationColumns are the numeric columns of the correlation report
var CorrelationColumns = []string{ColAreaConst, ColAreaPrivada, ColValorTotal, ColCuotaInicial}

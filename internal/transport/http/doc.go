// Package http implements the HTTP handlers of the dashboard server.
//
// Handlers are thin: they parse and validate the request, call a service and
// format the response. Successful JSON responses use the envelope
//
//	{"status": "success", "data": ..., "count": ...}
//
// and failures are RFC 7807 problem documents written by errors.ErrorHandler.
//
// # Routes
//
//	GET  /api/health, /api/health/ready, /api/health/live, /api/version
//	GET  /api/data/dataset      filtered rows, limit/offset paging
//	GET  /api/data/aggregate    kind=count|sum|mean|box, key, value, order
//	GET  /api/data/crosstab     row, col
//	GET  /api/data/summary      dataset info report
//	GET  /api/data/dashboard    selection in the query string
//	POST /api/data/dashboard    {"selection": {...}}
//	GET  /api/data/export.csv   filtered CSV, bom=true for Excel
//	GET  /api/data/export.xlsx  detail, pivot and summary sheets
//	POST /api/logs              browser log forwarding
//	GET  /ws                    live dashboard updates
//	GET  /                      dashboard page
//
// # Selections
//
// Query parameters that are not request options name a column to filter on.
// Repeating a parameter allows several values:
//
//	/api/data/dashboard?ESTADO=VENDIDO&ESTADO=SEPARADO&TIPO=A
package http

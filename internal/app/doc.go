// Package app wires the dashboard server together and manages its lifecycle.
//
// New builds, in order: resolved paths, OpenTelemetry providers and business
// metrics, the load/clean pipeline behind a read-through dataset cache, the
// data and health services, the WebSocket hub and finally the chi router and
// HTTP server. NewApplication does the same after loading configuration and
// initializing the logger.
//
// Start optionally preloads the dataset so a broken input file fails fast,
// then serves in the background. Stop closes WebSocket sessions, drains the
// HTTP server within the configured shutdown timeout and flushes telemetry.
//
// # Usage
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//	    log.Fatal(err)
//	}
package app

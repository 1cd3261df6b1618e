// Package config provides configuration management for the realty dashboard.
// It loads settings from several sources, validates them and resolves the
// file system paths of the input sheet, exports and logs.
//
// # Configuration Sources
//
// Configuration is layered in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML file (config.yaml, configs/config.yaml or REALTY_CONFIG_FILE)
//	3. Default values (lowest priority)
//
// A .env file in the working directory is loaded into the process
// environment before variables are read.
//
// # Environment Variables
//
// All variables use the REALTY_ prefix followed by the section name:
//
//	REALTY_SERVER_PORT=8080
//	REALTY_DATA_PATH=data/Base.txt
//	REALTY_DATA_DELIMITER=;
//	REALTY_DATA_CURRENCY_COLUMNS="VALOR TOTAL,VL. CUOTA INICIAL"
//	REALTY_LOGGING_LEVEL=debug
//	REALTY_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths, err := cfg.GetPaths()
package config

// Command realtyctl inspects and exports the sales sheet without starting the server.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"realtydash/internal/config"
	"realtydash/internal/dataprocessing"
	"realtydash/internal/files"
	"realtydash/internal/infrastructure"
	"realtydash/internal/services"
	"realtydash/pkg/contracts"
	"realtydash/pkg/contracts/domain"
)

var (
	dataPath  string
	delimiter string
	verbose   bool
)

// env bundles what every subcommand needs
type env struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger
	data   *services.DataService
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "realtyctl",
		Short:         "Inspect and export the real estate sales sheet",
		Version:       contracts.FullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&dataPath, "data", "", "input file (.txt/.csv or .xlsx); overrides the configured path")
	root.PersistentFlags().StringVar(&delimiter, "delimiter", "", `field delimiter for text input, e.g. "," or "tab"`)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level to stderr")

	root.AddCommand(newDescribeCmd())
	root.AddCommand(newExportCmd())
	return root
}

// setup loads configuration, applies flag overrides and builds the data service
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if dataPath != "" {
		cfg.Data.Path = dataPath
	}
	if delimiter != "" {
		cfg.Data.Delimiter = delimiter
	}

	logCfg := cfg.Logging
	logCfg.Level = "warn"
	if verbose {
		logCfg.Level = "debug"
	}
	logger := infrastructure.NewLoggerWithWriter(cmd.ErrOrStderr(), logCfg)

	paths, err := cfg.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	// --data may name a folder of exports; take the newest sheet in it
	if paths.DataFile, err = files.NewDiscovery(paths.WorkDir).ResolveDataFile(paths.DataFile); err != nil {
		return nil, err
	}

	metrics := infrastructure.NewNoopBusinessMetrics()
	pipeline := dataprocessing.NewPipeline(dataprocessing.PipelineOptionsFrom(cfg.Data), logger, nil, metrics)
	cache := dataprocessing.NewPipelineCache(pipeline, config.CleaningVersion, logger, metrics)

	return &env{
		cfg:    cfg,
		paths:  paths,
		logger: logger,
		data:   services.NewDataService(cache, paths.DataFile, logger, metrics),
	}, nil
}

// parseSelection turns repeated COLUMN=VALUE flags into a Selection
func parseSelection(filters []string) (domain.Selection, error) {
	sel := domain.Selection{}
	for _, f := range filters {
		col, val, ok := strings.Cut(f, "=")
		if !ok || strings.TrimSpace(col) == "" {
			return nil, fmt.Errorf("invalid filter %q, want COLUMN=VALUE", f)
		}
		col = strings.TrimSpace(col)
		sel[col] = append(sel[col], val)
	}
	return sel, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

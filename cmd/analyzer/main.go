// Command analyzer is the command line front end for market share
// analysis: it runs analyzers against survey workbooks, lists
// workbooks and sheets, and manages the analysis settings.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"msacli/internal/config"
	"msacli/internal/exporter"
	"msacli/internal/files"
	"msacli/internal/operations"
	"msacli/internal/services"
	"msacli/internal/store"
	"msacli/pkg/contracts"
)

var (
	workspace string
	verbose   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "analyzer",
		Short: "Market share analysis of survey workbooks",
		Long: `analyzer reads survey workbooks, allocates per-site daily workloads
to brands, projects them to yearly volumes and reports market share
per analyzer, with optional Excel and CSV exports.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&workspace, "workspace", "", "Workspace directory (default: executable directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newSheetsCmd())
	rootCmd.AddCommand(newWorkbooksCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// cliContext bundles everything a subcommand needs.
type cliContext struct {
	paths     *config.Paths
	logger    *slog.Logger
	settings  *services.SettingsService
	discovery *files.Discovery
	history   *store.HistoryStore
}

func (c *cliContext) close() {
	if c.history != nil {
		c.history.Close()
	}
}

func newCLIContext() (*cliContext, error) {
	var paths *config.Paths
	if workspace != "" {
		abs, err := filepath.Abs(workspace)
		if err != nil {
			return nil, fmt.Errorf("invalid workspace path: %w", err)
		}
		paths = config.PathsAt(abs)
	} else {
		var err error
		paths, err = config.GetPaths()
		if err != nil {
			return nil, err
		}
	}

	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	history, err := store.Open(paths.HistoryDB, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	return &cliContext{
		paths:     paths,
		logger:    logger,
		settings:  services.NewSettingsService(paths.SettingsFile, logger),
		discovery: files.NewDiscovery(paths),
		history:   history,
	}, nil
}

// newDataService builds the file listing service.
func (c *cliContext) newDataService() *services.DataService {
	return services.NewDataService(c.discovery, files.NewManager(c.paths), c.logger)
}

// newAnalysisService assembles the full run pipeline for the CLI.
func (c *cliContext) newAnalysisService() *services.AnalysisService {
	steps := []operations.Step{
		operations.NewScanStage(c.discovery),
		operations.NewParseStage(c.logger),
		operations.NewAnalyzeStage(c.settings, c.logger),
		operations.NewExportStage(
			exporter.NewExcelExporter(c.logger),
			exporter.NewCSVWriter(c.paths),
			c.paths,
		),
	}
	manager := operations.NewManager(steps, c.logger)
	return services.NewAnalysisService(manager, c.history, 1, 500, c.logger)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(contracts.GetFullVersionString())
		},
	}
}

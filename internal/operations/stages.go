package operations

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"msacli/internal/config"
	"msacli/internal/dataprocessing"
	"msacli/internal/exporter"
	"msacli/internal/files"
	"msacli/internal/validation"
	"msacli/pkg/contracts/domain"
)

// SettingsProvider supplies the current analysis settings. Runs read
// the settings at execution time so edits apply without a restart.
type SettingsProvider interface {
	Current() (*config.Settings, error)
}

// ScanStage resolves the requested workbook against the input tree
// and rejects files the parser cannot read.
type ScanStage struct {
	discovery *files.Discovery
	validator *validation.FileValidator
}

// NewScanStage creates the workbook discovery stage.
func NewScanStage(discovery *files.Discovery) *ScanStage {
	return &ScanStage{
		discovery: discovery,
		validator: validation.NewFileValidator(nil),
	}
}

func (s *ScanStage) ID() string   { return StageIDScan }
func (s *ScanStage) Name() string { return StageNameScan }

func (s *ScanStage) Validate(state *RunState) error {
	if strings.TrimSpace(state.Request.Workbook) == "" {
		return fmt.Errorf("no workbook specified")
	}
	return nil
}

func (s *ScanStage) Execute(ctx context.Context, state *RunState) error {
	path, err := s.discovery.ResolveWorkbook(state.Request.Workbook, state.Request.Month)
	if err != nil {
		return err
	}
	if err := s.validator.ValidateWorkbook(path); err != nil {
		return err
	}
	state.SetWorkbookPath(path)
	return nil
}

// ParseStage loads the requested worksheet into a dataset.
type ParseStage struct {
	logger *slog.Logger
}

// NewParseStage creates the sheet parsing stage.
func NewParseStage(logger *slog.Logger) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseStage{logger: logger}
}

func (s *ParseStage) ID() string   { return StageIDParse }
func (s *ParseStage) Name() string { return StageNameParse }

func (s *ParseStage) Validate(state *RunState) error {
	if state.GetWorkbookPath() == "" {
		return fmt.Errorf("workbook not resolved")
	}
	return nil
}

func (s *ParseStage) Execute(ctx context.Context, state *RunState) error {
	ds, err := dataprocessing.ReadSheet(state.GetWorkbookPath(), state.Request.Sheet)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "worksheet parsed",
		slog.String("workbook", state.GetWorkbookPath()),
		slog.String("sheet", ds.Sheet),
		slog.Int("rows", len(ds.Rows)))

	state.SetDataset(ds)
	return nil
}

// AnalyzeStage runs the market-share computation.
type AnalyzeStage struct {
	settings SettingsProvider
	logger   *slog.Logger
}

// NewAnalyzeStage creates the analysis stage.
func NewAnalyzeStage(settings SettingsProvider, logger *slog.Logger) *AnalyzeStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeStage{settings: settings, logger: logger}
}

func (s *AnalyzeStage) ID() string   { return StageIDAnalyze }
func (s *AnalyzeStage) Name() string { return StageNameAnalyze }

func (s *AnalyzeStage) Validate(state *RunState) error {
	if state.GetDataset() == nil {
		return fmt.Errorf("no dataset loaded")
	}
	if strings.TrimSpace(state.Request.Analyzer) == "" {
		return fmt.Errorf("no analyzer specified")
	}
	return nil
}

func (s *AnalyzeStage) Execute(ctx context.Context, state *RunState) error {
	settings, err := s.settings.Current()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	analyzer := dataprocessing.NewAnalyzer(settings, s.logger)
	opts := dataprocessing.Options{
		Region:       state.Request.Region,
		IncludeCity:  true,
		IncludeClass: true,
		IncludeValue: state.Request.IncludeValue,
	}

	results, err := analyzer.Run(ctx, state.GetDataset(), state.Request.Analyzer, opts)
	if err != nil {
		return err
	}
	state.SetResults(results)
	return nil
}

// ExportStage writes the analysis workbook and per-analyzer CSV
// totals and pivots. It is a no-op when the request did not ask for
// an export.
type ExportStage struct {
	excel     *exporter.ExcelExporter
	csv       *exporter.CSVWriter
	paths     *config.Paths
	validator *validation.FileValidator
	now       func() time.Time
}

// NewExportStage creates the export stage.
func NewExportStage(excel *exporter.ExcelExporter, csv *exporter.CSVWriter, paths *config.Paths) *ExportStage {
	return &ExportStage{
		excel:     excel,
		csv:       csv,
		paths:     paths,
		validator: validation.NewFileValidator(nil),
		now:       time.Now,
	}
}

func (s *ExportStage) ID() string   { return StageIDExport }
func (s *ExportStage) Name() string { return StageNameExport }

func (s *ExportStage) Validate(state *RunState) error {
	if state.Request.Export && len(state.GetResults()) == 0 {
		return fmt.Errorf("no results to export")
	}
	return nil
}

func (s *ExportStage) Execute(ctx context.Context, state *RunState) error {
	if !state.Request.Export {
		return nil
	}

	outDir := s.paths.OutputDir
	if state.Request.Month != "" {
		outDir = s.paths.OutputMonthDir(state.Request.Month)
	}
	if err := s.validator.EnsureWritableDir(outDir); err != nil {
		return err
	}

	stamp := s.now().Format("2006-01-02_150405")
	prefix := strings.ToLower(state.Request.Analyzer)

	workbookPath := filepath.Join(outDir, fmt.Sprintf("%s_analysis_%s.xlsx", prefix, stamp))
	if err := s.excel.Export(workbookPath, state.GetResults()); err != nil {
		return err
	}
	state.AddExportPath(workbookPath)

	for _, result := range state.GetResults() {
		name := strings.ToLower(result.Analyzer)

		csvPath := filepath.Join(outDir, fmt.Sprintf("%s_totals_%s.csv", name, stamp))
		if err := s.csv.ExportBrandTotals(csvPath, result); err != nil {
			return err
		}
		state.AddExportPath(csvPath)

		pivots := []struct {
			suffix string
			table  *domain.PivotTable
		}{
			{"city", result.CityPivot},
			{"class", result.ClassPivot},
		}
		for _, p := range pivots {
			if p.table == nil || len(p.table.Rows) == 0 {
				continue
			}
			pivotPath := filepath.Join(outDir, fmt.Sprintf("%s_%s_%s.csv", name, p.suffix, stamp))
			if err := s.csv.ExportPivot(pivotPath, p.table); err != nil {
				return err
			}
			state.AddExportPath(pivotPath)
		}
	}
	return nil
}

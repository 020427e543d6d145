package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"msacli/pkg/contracts/domain"
)

// ExcelExporter writes formatted analysis workbooks.
type ExcelExporter struct {
	logger *slog.Logger
}

// NewExcelExporter creates an Excel exporter. A nil logger falls back
// to the default slog logger.
func NewExcelExporter(logger *slog.Logger) *ExcelExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelExporter{logger: logger}
}

// Export writes one workbook containing every result of a run: a
// summary sheet per analyzer followed by its pivot sheets.
func (e *ExcelExporter) Export(outputPath string, results []*domain.AnalysisResult) error {
	if len(results) == 0 {
		return fmt.Errorf("nothing to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, result := range results {
		if err := e.writeSummarySheet(f, result, i == 0); err != nil {
			return err
		}
		if result.CityPivot != nil {
			if err := e.writePivotSheet(f, result, result.CityPivot, "City_Analysis"); err != nil {
				return err
			}
		}
		if result.ClassPivot != nil {
			if err := e.writePivotSheet(f, result, result.ClassPivot, "Class_Analysis"); err != nil {
				return err
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("analysis workbook written",
		slog.String("path", outputPath),
		slog.Int("analyzers", len(results)))

	return nil
}

// writeSummarySheet renders "<Analyzer>_Summary": a bold title, the
// volume market share ranking and, when present, the value section.
func (e *ExcelExporter) writeSummarySheet(f *excelize.File, result *domain.AnalysisResult, first bool) error {
	sheet := result.Analyzer + "_Summary"
	if first {
		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
	} else if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return fmt.Errorf("failed to create title style: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create bold style: %w", err)
	}

	setCell := func(row int, col string, value interface{}) error {
		return f.SetCellValue(sheet, col+fmt.Sprint(row), value)
	}

	if err := setCell(1, "A", "Market Analysis Results - "+result.Analyzer); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", titleStyle); err != nil {
		return err
	}

	row := 3
	if err := setCell(row, "A", "Volume Market Share"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), boldStyle); err != nil {
		return err
	}
	row++
	for _, share := range result.MarketShare {
		if err := setCell(row, "A", share.Brand); err != nil {
			return err
		}
		if err := setCell(row, "B", formatPercent(share.Share)); err != nil {
			return err
		}
		row++
	}

	if len(result.BrandValues) > 0 {
		row++
		if err := setCell(row, "A", "Value Market Share"); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), boldStyle); err != nil {
			return err
		}
		row++
		// value rows follow the share ranking so both sections line up
		for _, share := range result.ValueShare {
			if err := setCell(row, "A", share.Brand); err != nil {
				return err
			}
			if err := setCell(row, "B", formatMoney(result.BrandValues[share.Brand])); err != nil {
				return err
			}
			row++
		}
	}

	return nil
}

// writePivotSheet renders a pivot table with a bold, grey-filled
// header row. Sheet names carry the analyzer prefix so consolidated
// workbooks stay collision-free.
func (e *ExcelExporter) writePivotSheet(f *excelize.File, result *domain.AnalysisResult, pivot *domain.PivotTable, name string) error {
	sheet := result.Analyzer + "_" + name
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"CCCCCC"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := append([]interface{}{pivot.GroupBy}, toInterfaces(pivot.Brands)...)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for i, pr := range pivot.Rows {
		row := make([]interface{}, 0, len(pr.Values)+1)
		row = append(row, pr.Key)
		for _, v := range pr.Values {
			row = append(row, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return nil
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

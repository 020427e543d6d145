package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"msacli/pkg/contracts/domain"
)

// ListSheets returns the sheet names of a workbook in workbook order.
func ListSheets(filePath string) ([]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// ReadSheet loads one worksheet into a Dataset. An empty sheet name
// selects the first sheet. The first non-empty row is the header;
// placeholder cells (NILL variants) are normalized to empty during
// load so downstream code never sees them.
func ReadSheet(filePath, sheet string) (*domain.Dataset, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", filePath)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	// Header is the first row with any content
	headerRow := -1
	for i, row := range rows {
		if rowHasContent(row) {
			headerRow = i
			break
		}
	}
	if headerRow == -1 {
		return nil, fmt.Errorf("sheet %q has no header row", sheet)
	}

	columns := make([]string, 0, len(rows[headerRow]))
	for _, cell := range rows[headerRow] {
		columns = append(columns, strings.TrimSpace(cell))
	}

	ds := &domain.Dataset{
		SourceFile: filePath,
		Sheet:      sheet,
		Columns:    columns,
	}

	for _, raw := range rows[headerRow+1:] {
		if !rowHasContent(raw) {
			continue
		}
		row := make(domain.Row, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}
			var cell string
			if i < len(raw) {
				cell = normalizeCell(raw[i])
			}
			row[col] = cell
		}
		ds.Rows = append(ds.Rows, row)
	}

	slog.Debug("worksheet loaded",
		slog.String("file", filePath),
		slog.String("sheet", sheet),
		slog.Int("columns", len(ds.Columns)),
		slog.Int("rows", len(ds.Rows)))

	return ds, nil
}

// FilterRegion returns the rows matching the region filter. "All" or
// an empty filter keeps everything. The filter requires a Region
// column only when it actually narrows the dataset.
func FilterRegion(ds *domain.Dataset, region string) *domain.Dataset {
	if region == "" || strings.EqualFold(region, "All") || !ds.HasColumn(domain.ColumnRegion) {
		return ds
	}

	filtered := &domain.Dataset{
		SourceFile: ds.SourceFile,
		Sheet:      ds.Sheet,
		Columns:    ds.Columns,
	}
	for _, row := range ds.Rows {
		if row.Get(domain.ColumnRegion) == region {
			filtered.Rows = append(filtered.Rows, row)
		}
	}
	return filtered
}

// normalizeCell maps NILL placeholder spellings to the empty string.
func normalizeCell(raw string) string {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToUpper(trimmed) {
	case "NILL", "NIL":
		return ""
	}
	return trimmed
}

func rowHasContent(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return true
		}
	}
	return false
}

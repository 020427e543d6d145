package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"msacli/internal/config"
	"msacli/internal/files"
	"msacli/internal/shared/testutil"
)

func testDataService(t *testing.T) (*DataService, *config.Paths) {
	t.Helper()
	paths := config.PathsAt(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	svc := NewDataService(files.NewDiscovery(paths), files.NewManager(paths), testutil.NewTestLogger(t))
	return svc, paths
}

func writeWorkbook(t *testing.T, path string, sheets ...string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet))
			continue
		}
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	require.NoError(t, f.SaveAs(path))
}

func TestDataServiceListWorkbooks(t *testing.T) {
	svc, paths := testDataService(t)

	writeWorkbook(t, filepath.Join(paths.InputDir, "survey.xlsx"), "Survey")

	workbooks, err := svc.ListWorkbooks(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, workbooks, 1)
	assert.Equal(t, "survey.xlsx", workbooks[0].Name)

	// Unknown month folder is an empty listing, not an error.
	workbooks, err = svc.ListWorkbooks(context.Background(), "Jan 2026")
	require.NoError(t, err)
	assert.Empty(t, workbooks)
}

func TestDataServiceListMonths(t *testing.T) {
	svc, paths := testDataService(t)

	require.NoError(t, os.MkdirAll(paths.InputMonthDir("Feb 2026"), 0755))
	require.NoError(t, os.MkdirAll(paths.InputMonthDir("Jan 2026"), 0755))

	months, err := svc.ListMonths(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Feb 2026", "Jan 2026"}, months)
}

func TestDataServiceListSheets(t *testing.T) {
	svc, paths := testDataService(t)

	writeWorkbook(t, filepath.Join(paths.InputDir, "survey.xlsx"), "Survey", "Notes")

	sheets, err := svc.ListSheets(context.Background(), "survey.xlsx", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Survey", "Notes"}, sheets)
}

func TestDataServiceListSheetsErrors(t *testing.T) {
	svc, _ := testDataService(t)

	_, err := svc.ListSheets(context.Background(), "", "")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ListSheets(context.Background(), "survey.txt", "")
	require.ErrorIs(t, err, ErrInvalidFileType)

	_, err = svc.ListSheets(context.Background(), "missing.xlsx", "")
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestDataServiceDeleteExport(t *testing.T) {
	svc, paths := testDataService(t)
	broadcaster := &recordingBroadcaster{}
	svc.SetBroadcaster(broadcaster)

	exportPath := filepath.Join(paths.OutputDir, "ia_totals.csv")
	require.NoError(t, os.WriteFile(exportPath, []byte("Brand,YearlyVolume\n"), 0644))

	require.NoError(t, svc.DeleteExport(context.Background(), "ia_totals.csv", ""))
	assert.NoFileExists(t, exportPath)
	assert.Equal(t, []string{"files:updated"}, broadcaster.events)

	err := svc.DeleteExport(context.Background(), "ia_totals.csv", "")
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestDataServiceDeleteExportRejectsPaths(t *testing.T) {
	svc, _ := testDataService(t)

	err := svc.DeleteExport(context.Background(), "../settings.json", "")
	require.ErrorIs(t, err, ErrInvalidInput)

	err = svc.DeleteExport(context.Background(), "", "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

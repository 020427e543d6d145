package http

import (
	"context"

	"msacli/internal/files"
)

// DataServiceInterface is the file listing surface the data handler
// depends on.
type DataServiceInterface interface {
	ListWorkbooks(ctx context.Context, month string) ([]files.FileInfo, error)
	ListExports(ctx context.Context, month string) ([]files.FileInfo, error)
	ListMonths(ctx context.Context) ([]string, error)
	ListSheets(ctx context.Context, workbook, month string) ([]string, error)
	DeleteExport(ctx context.Context, name, month string) error
}

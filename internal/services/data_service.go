package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"msacli/internal/dataprocessing"
	"msacli/internal/files"
)

// DataBroadcaster pushes file change notifications to clients.
type DataBroadcaster interface {
	BroadcastUpdate(eventType string, data interface{})
}

// DataService answers workbook and export file queries.
type DataService struct {
	discovery   *files.Discovery
	manager     *files.Manager
	logger      *slog.Logger
	broadcaster DataBroadcaster
}

// NewDataService creates the file listing service.
func NewDataService(discovery *files.Discovery, manager *files.Manager, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		discovery: discovery,
		manager:   manager,
		logger:    logger.With(slog.String("component", "data_service")),
	}
}

// SetBroadcaster attaches the websocket hub after construction.
func (s *DataService) SetBroadcaster(b DataBroadcaster) {
	s.broadcaster = b
}

// ListWorkbooks returns the workbooks available for analysis. A
// missing input folder yields an empty list, not an error.
func (s *DataService) ListWorkbooks(ctx context.Context, month string) ([]files.FileInfo, error) {
	workbooks, err := s.discovery.ListWorkbooks(month)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return workbooks, nil
}

// ListExports returns exported result files, newest first.
func (s *DataService) ListExports(ctx context.Context, month string) ([]files.FileInfo, error) {
	exports, err := s.discovery.ListExports(month)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return exports, nil
}

// ListMonths returns the periods that have an input folder.
func (s *DataService) ListMonths(ctx context.Context) ([]string, error) {
	return s.discovery.ListMonths()
}

// ListSheets opens a workbook and reports its sheet names.
func (s *DataService) ListSheets(ctx context.Context, workbook, month string) ([]string, error) {
	if workbook == "" {
		return nil, fmt.Errorf("%w: workbook is required", ErrInvalidInput)
	}
	if !strings.EqualFold(filepath.Ext(workbook), ".xlsx") && !strings.EqualFold(filepath.Ext(workbook), ".xls") {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFileType, workbook)
	}

	path, err := s.discovery.ResolveWorkbook(workbook, month)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, workbook)
	}

	sheets, err := dataprocessing.ListSheets(path)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "listed workbook sheets",
		slog.String("workbook", filepath.Base(path)),
		slog.Int("sheets", len(sheets)))
	return sheets, nil
}

// DeleteExport removes one exported file by name. Only files inside
// the output tree can be deleted.
func (s *DataService) DeleteExport(ctx context.Context, name, month string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("%w: invalid export name", ErrInvalidInput)
	}

	exports, err := s.ListExports(ctx, month)
	if err != nil {
		return err
	}
	for _, export := range exports {
		if export.Name != name {
			continue
		}
		if err := s.manager.DeleteFile(export.Path); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "deleted export",
			slog.String("file", name))
		if s.broadcaster != nil {
			s.broadcaster.BroadcastUpdate("files:updated", map[string]interface{}{
				"deleted": name,
				"month":   month,
			})
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrFileNotFound, name)
}

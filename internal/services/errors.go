package services

import "errors"

// Service errors
var (
	// Run errors
	ErrRunNotFound = errors.New("run not found")
	ErrRunBusy     = errors.New("too many concurrent runs")

	// File errors
	ErrNoWorkbooksFound = errors.New("no workbooks found")
	ErrFileNotFound     = errors.New("file not found")
	ErrInvalidFileType  = errors.New("invalid file type")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)

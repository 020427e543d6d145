// Package files provides file system operations and discovery
// utilities for the market share analyzer.
//
// Discovery locates survey workbooks and exported results under the
// data directories, including the per-period "Input <month>" and
// "Output <month>" folder convention.
//
// Manager provides basic file operations (copy, move, delete) with
// relative paths resolved against the data directory.
package files

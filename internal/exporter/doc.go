// Package exporter writes analysis results to disk.
//
// Two output formats are supported:
//
// ExcelExporter: a formatted workbook per analysis run with one
// summary sheet per analyzer (volume and value market share) plus
// City_Analysis and Class_Analysis pivot sheets.
//
// CSVWriter: plain CSV exports of brand totals and pivot tables,
// written with a UTF-8 BOM so Excel opens them cleanly.
package exporter

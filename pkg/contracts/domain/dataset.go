package domain

import (
	"fmt"
	"strings"
)

// Row is a single data row from a worksheet, keyed by column header.
// Cell values are kept as raw strings; numeric interpretation happens
// at aggregation time so partially dirty sheets still load.
type Row map[string]string

// Get returns the trimmed cell value for a column, or "" when the
// column is absent from the row.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Dataset is the in-memory table read from one worksheet. Columns
// preserve the header order of the source sheet.
type Dataset struct {
	SourceFile string `json:"source_file,omitempty"`
	Sheet      string `json:"sheet,omitempty"`
	Columns    []string `json:"columns"`
	Rows       []Row    `json:"rows"`
}

// HasColumn reports whether the dataset header contains the column.
func (d *Dataset) HasColumn(column string) bool {
	for _, c := range d.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// MissingColumns returns the subset of required columns absent from
// the dataset header, in the order they were requested.
func (d *Dataset) MissingColumns(required []string) []string {
	var missing []string
	for _, col := range required {
		if !d.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// ValidateColumns returns an error naming every required column the
// dataset is missing.
func (d *Dataset) ValidateColumns(required []string) error {
	if missing := d.MissingColumns(required); len(missing) > 0 {
		return fmt.Errorf("dataset is missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Validate checks that the dataset has a header and at least one data row.
func (d *Dataset) Validate() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("dataset has no header columns")
	}
	if len(d.Rows) == 0 {
		return fmt.Errorf("dataset has no data rows")
	}
	return nil
}

package operations

import "time"

// Step identifiers
const (
	StageIDScan    = "scan"
	StageIDParse   = "parse"
	StageIDAnalyze = "analyze"
	StageIDExport  = "export"
)

// Step names
const (
	StageNameScan    = "Workbook Discovery"
	StageNameParse   = "Sheet Parsing"
	StageNameAnalyze = "Market Analysis"
	StageNameExport  = "Result Export"
)

// Default timeouts
const (
	DefaultStageTimeout = 5 * time.Minute
	DefaultRunTimeout   = 10 * time.Minute
)

// Request describes one analysis run as submitted by the CLI or the
// HTTP API.
type Request struct {
	Workbook     string `json:"workbook" validate:"required"`
	Sheet        string `json:"sheet,omitempty"`
	Month        string `json:"month,omitempty"`
	Analyzer     string `json:"analyzer" validate:"required"`
	Region       string `json:"region,omitempty"`
	IncludeValue bool   `json:"include_value"`
	Export       bool   `json:"export"`
}

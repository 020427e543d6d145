// Package operations drives analysis runs through their stages:
// workbook discovery, sheet parsing, market analysis and result
// export. The Manager executes the stages in order, publishes
// progress to the websocket hub and fails the run on the first stage
// error.
package operations

// Package http contains the REST handlers for the analysis API.
//
// Each handler owns one resource (runs, settings, files, health),
// exposes a Routes() chi.Router, and depends on its service through a
// narrow interface so tests can stub it. Errors are rendered as
// RFC 7807 problem details by the shared error handler.
package http

// Package app wires the application together: configuration, logging,
// telemetry, the run history store, the websocket hub, the service
// layer and the HTTP router. The web server entrypoint constructs an
// Application and calls Run; everything else hangs off that.
package app

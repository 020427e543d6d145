// Command web starts the market share analysis server: the REST API,
// the websocket event stream and the Prometheus metrics endpoint.
package main

import (
	"context"
	"log/slog"
	"os"

	"msacli/internal/app"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

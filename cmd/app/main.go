// Command app serves the JeevaMithra HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanqian/jeevamithra/pkg/logger"
)

func main() {
	os.Exit(serve())
}

// serve wires the app and runs it until SIGINT or SIGTERM. Wiring errors
// are reported through the service logger since the configured one may
// not exist yet.
func serve() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New().With("component", "main")
	app, err := initializeApp()
	if err != nil {
		log.Error("startup failed", "error", err)
		return 1
	}
	if err := app.Run(ctx); err != nil {
		log.Error("server stopped", "error", err)
		return 1
	}
	log.Info("server exited cleanly")
	return 0
}

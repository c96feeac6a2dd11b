// API server entry point for ecowarn.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/ecowarn/internal/app"
	"github.com/turtacn/ecowarn/internal/config"
	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (ECOWARN_* environment only when empty)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := app.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	rt, err := app.NewRuntime(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize runtime", logging.Err(err))
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting ecowarn API server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.String("reference_source", cfg.Reference.Source),
	)
	if err := rt.Serve(ctx, version); err != nil {
		logger.Error("API server stopped", logging.Err(err))
		stop()
		rt.Close()
		os.Exit(1)
	}
	logger.Info("API server stopped")
}

//Personal.AI order the ending

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"FinAdvise/internal/di"
	"FinAdvise/pkg/config"
	applogger "FinAdvise/pkg/logger"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "config file path (defaults only when empty)")
	transport := flag.String("transport", "", "tool transport: http or stdio (overrides config)")
	flag.Parse()

	// stdout belongs to the protocol in stdio mode
	log.SetOutput(os.Stderr)

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *transport != "" {
		cfg.Transport = *transport
		if err := cfg.Validate(); err != nil {
			log.Fatalf("config invalid: %v", err)
		}
	}

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.Logger().Info("starting",
		applogger.String("transport", cfg.Transport),
		applogger.String("store_driver", cfg.Store.Driver),
		applogger.Bool("alerts", cfg.Alerts.Enabled),
	)

	// Run application (blocks until signal)
	if err := app.Run(ctx); err != nil {
		app.Logger().Error("app error", applogger.Error(err))
		os.Exit(1)
	}
}

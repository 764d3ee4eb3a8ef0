package main

import (
	"flag"
	"log"
	"os"

	"marketpulse/internal/di"
	"marketpulse/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s cache=%s symbols=%d feeds=%d",
		cfg.Environment, cfg.Cache.Backend, len(cfg.Quotes.Symbols), len(cfg.Feeds))

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

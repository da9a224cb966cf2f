package main

import (
	"log"

	"ledger-service/internal/cli"
	"ledger-service/internal/config"
	"ledger-service/internal/logger"
)

func main() {
	if err := config.LoadEnvFile(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cli.Execute(cfg, err)
}

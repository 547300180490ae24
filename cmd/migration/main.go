package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hugohenrick/arte-ideas/internal/infrastructure/config"
	"github.com/hugohenrick/arte-ideas/internal/infrastructure/database"
	"github.com/hugohenrick/arte-ideas/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migration [-config file] up | down N | version\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	appLogger, err := logger.NewLogger(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Env: cfg.App.Env})
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	if err := run(cfg, appLogger, flag.Args()); err != nil {
		appLogger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger, args []string) error {
	if len(args) == 0 {
		args = []string{"up"}
	}

	switch args[0] {
	case "up":
		return database.MigrateUp(cfg.Database, log)
	case "down":
		steps := 1
		if len(args) > 1 {
			if _, err := fmt.Sscanf(args[1], "%d", &steps); err != nil {
				return fmt.Errorf("invalid step count %q", args[1])
			}
		}
		return database.MigrateDown(cfg.Database, steps, log)
	case "version":
		version, dirty, err := database.MigrationVersion(cfg.Database)
		if err != nil {
			return err
		}
		log.Info("schema version", "version", version, "dirty", dirty)
		return nil
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

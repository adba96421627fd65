package main

import (
	"github.com/ericogr/dew-duel/internal/config"
	"github.com/ericogr/dew-duel/internal/constants"
	"github.com/ericogr/dew-duel/internal/game"
	"github.com/ericogr/dew-duel/internal/logging"
	"github.com/ericogr/dew-duel/internal/storage"
)

func loadEnvOrExit() config.Env {
	env, dotenv, err := config.LoadEnv()
	if err != nil {
		logging.Fatal("Invalid environment", err, nil)
	}
	logging.SetLevel(env.LogLevel)
	if dotenv {
		logging.Debug(".env file loaded", nil)
	}
	return env
}

func loadConfigOrExit(path string) *config.LoadedConfig {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logging.Fatal("Missing or invalid duel configuration", err, logging.Fields{
			"config_path": path,
			"hint":        "create a duel_config.json with a 'flavor_list' array of {name,attack,defense} and optional keys: server.address, duel, finished_retention_minutes, stats_refresh_minutes",
		})
	}
	return cfg
}

func createRepositoryOrExit(dbPath string, flavors []game.Flavor) storage.Repository {
	db, err := storage.OpenAndMigrate(dbPath, flavors)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{"db_path": dbPath})
	}
	logging.Info("Database ready", logging.Fields{"db_path": dbPath, constants.LogFieldCount: len(flavors)})
	return storage.NewSQLiteRepository(db)
}

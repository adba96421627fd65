package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env holds process settings read from the environment.
type Env struct {
	ConfigPath     string   `env:"DUEL_CONFIG" envDefault:"./duel_config.json"`
	DBPath         string   `env:"DUEL_DB" envDefault:"./data/duel.db"`
	SessionSecret  string   `env:"SESSION_SECRET"`
	LogLevel       string   `env:"DUEL_LOG_LEVEL" envDefault:"info"`
	AllowedOrigins []string `env:"DUEL_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// LoadEnv loads optional .env files (missing files are fine) and then
// parses the environment. It reports whether any dotenv file was read.
func LoadEnv(dotenvFiles ...string) (Env, bool, error) {
	loaded := godotenv.Load(dotenvFiles...) == nil
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, loaded, fmt.Errorf("parse env: %w", err)
	}
	return e, loaded, nil
}

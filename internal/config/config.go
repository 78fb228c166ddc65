// Package config loads runtime configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration for the server binary.
type Config struct {
	Env          string `env:"APP_ENV" envDefault:"development"`
	Addr         string `env:"ADDR" envDefault:":8080"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"squadup.db"`

	// AutoConfirmOnRSVP selects whether crossing the present-count
	// threshold confirms a session on the RSVP write path, or only the
	// explicit leader action does.
	AutoConfirmOnRSVP bool `env:"AUTO_CONFIRM_ON_RSVP" envDefault:"true"`

	// MaterializeInterval is how often active templates are checked for a
	// due next occurrence.
	MaterializeInterval time.Duration `env:"MATERIALIZE_INTERVAL" envDefault:"1m"`
}

// Load reads an optional .env file and parses the environment. A missing
// .env file is not an error; explicit environment variables always win.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

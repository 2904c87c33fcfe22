package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Masroof"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"masroof"`
	}

	Auth struct {
		JWTSecret string        `envconfig:"JWT_SECRET" default:"masroof-dev-secret"`
		TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"720h"`
	}

	// Client configures the TUI side: where the API lives, where the local
	// ledger file goes, and how long mutations are debounced before a
	// cloud push.
	Client struct {
		APIBaseURL string        `envconfig:"API_BASE_URL" default:"http://localhost:8080"`
		DataDir    string        `envconfig:"DATA_DIR" default:""`
		SyncDelay  time.Duration `envconfig:"SYNC_DELAY" default:"600ms"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

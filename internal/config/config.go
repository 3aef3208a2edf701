package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int    `envconfig:"PORT" default:"8080"`
	DatabasePath string `envconfig:"DATABASE_PATH" default:"./inkwell.db"`
	ImagesPath   string `envconfig:"IMAGES_PATH" default:"./images"`

	// Token signing. The secret deliberately has no default.
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"1h"`

	// Number of posts per feed page.
	PageSize int `envconfig:"PAGE_SIZE" default:"2"`

	// Cron expression for the orphaned image sweep.
	SweepSchedule string `envconfig:"IMAGE_SWEEP_SCHEDULE" default:"@hourly"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.PageSize <= 0 {
		return nil, errors.New("PAGE_SIZE must be positive")
	}
	return &cfg, nil
}

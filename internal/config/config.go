package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds the application configuration.
// It is loaded once at startup and never mutated afterwards.
type Config struct {
	Env            string   `env:"APP_ENV" env-default:"development"`
	ServerPort     int      `env:"PORT" env-default:"8080"`
	LogLevel       string   `env:"LOG_LEVEL" env-default:"info"`
	DatabaseURL    string   `env:"DATABASE_URL" env-default:"./inkpost.db"`
	JWTSecret      string   `env:"JWT_SECRET" env-required:"true"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000" env-separator:","`
	UploadTempDir  string   `env:"UPLOAD_TMP_DIR"` // empty means os.TempDir()
	MaxUploadBytes int64    `env:"MAX_UPLOAD_BYTES" env-default:"10485760"`

	S3 S3Config
}

// S3Config describes the S3-compatible bucket that stores post covers.
type S3Config struct {
	Endpoint     string `env:"S3_ENDPOINT" env-default:"http://127.0.0.1:9000"`
	Region       string `env:"S3_REGION" env-default:"us-east-1"`
	Bucket       string `env:"S3_BUCKET" env-default:"inkpost"`
	AccessKey    string `env:"S3_ACCESS_KEY"`
	SecretKey    string `env:"S3_SECRET_KEY"`
	PublicURL    string `env:"S3_PUBLIC_URL"` // defaults to <endpoint>/<bucket>
	Prefix       string `env:"S3_PREFIX" env-default:"covers"`
	UsePathStyle bool   `env:"S3_USE_PATH_STYLE" env-default:"true"`
}

// IsProduction reports whether cookies must be marked Secure.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load loads configuration from environment variables, optionally seeded from a .env file.
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if cfg.S3.PublicURL == "" {
		cfg.S3.PublicURL = strings.TrimRight(cfg.S3.Endpoint, "/") + "/" + cfg.S3.Bucket
	}
	if cfg.UploadTempDir == "" {
		cfg.UploadTempDir = os.TempDir()
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}
	return &cfg, nil
}

// Package config loads all runtime configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every configuration parameter the binaries read.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"edurank"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// Cron schedules for the background sweeps.
	ExpirySchedule     string `envconfig:"EXPIRY_SCHEDULE" default:"0 3 * * *"`
	SimilaritySchedule string `envconfig:"SIMILARITY_SCHEDULE" default:"30 3 * * *"`

	// SimilarityBatchSize is how many of the most viewed items each
	// scheduled similarity refresh recomputes edges for.
	SimilarityBatchSize int `envconfig:"SIMILARITY_BATCH_SIZE" default:"50"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// DSN returns the Data Source Name for the PostgreSQL connection.
func (c *Config) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBName, c.DBSSLMode)
	if c.DBPassword != "" {
		dsn += " password=" + c.DBPassword
	}
	return dsn
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Package config loads the server configuration from the environment.
// A .env file, if present, is loaded before parsing via godotenv's autoload
// import in the binaries.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full runtime configuration of the server and the historian.
type Config struct {
	Addr     string `env:"ADDR" envDefault:"0.0.0.0:8080"`
	DataDir  string `env:"DATA_DIR" envDefault:"data"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	RoomTimeout  time.Duration `env:"ROOM_TIMEOUT" envDefault:"10m"`
	RollCooldown time.Duration `env:"ROLL_COOLDOWN" envDefault:"450ms"`

	// RedisAddr empty disables result publishing; games still finish and
	// the file leaderboard still updates.
	RedisAddr        string `env:"REDIS_ADDR"`
	ResultsQueueName string `env:"RESULTS_QUEUE_NAME" envDefault:"jamb:results"`

	// Postgres settings are consumed by the historian only.
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"jamb"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	return cfg, nil
}

// PostgresDSN builds the connection string the historian hands to pgx.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB)
}

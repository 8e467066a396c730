package config

import (
	"os"
	"strconv"

	"cyberrisk/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Simulation SimulationConfig
	Paths      PathConfig
	LogLevel   string
}

// SimulationConfig holds Monte Carlo execution settings
type SimulationConfig struct {
	DefaultIterations int
	MaxWorkers        int
}

// PathConfig holds file system paths
type PathConfig struct {
	HistoryFile string
}

// Load builds configuration from the environment with validation
func Load() (*Config, error) {
	cfg := &Config{
		Simulation: SimulationConfig{
			DefaultIterations: getEnvInt("SIM_ITERATIONS", 50_000),
			MaxWorkers:        getEnvInt("SIM_WORKERS", 4),
		},
		Paths: PathConfig{
			HistoryFile: getEnv("CONTROL_HISTORY_FILE", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if c.Simulation.DefaultIterations < 1 {
		return errors.ConfigInvalid("SIM_ITERATIONS must be positive")
	}
	if c.Simulation.MaxWorkers < 1 {
		return errors.ConfigInvalid("SIM_WORKERS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DBPath          string `yaml:"db_path"`
	HistoryMaxItems int    `yaml:"history_max_items"`
	ClockResolution int    `yaml:"clock_resolution_seconds"`
	LogLevel        string `yaml:"log_level"`
	Output          string `yaml:"output"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/vkeep/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		HistoryMaxItems: 10,
		ClockResolution: 1,
		LogLevel:        "info",
		Output:          "table",
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// Load ~/.config/vkeep/config.yaml if it exists
	if err := loadYAMLConfig(cfg); err != nil {
		// YAML config is optional, so we don't fail if it doesn't exist
	}

	// Override with environment variables
	if dbPath := getEnvOrFile("VKEEP_DB_PATH", "VKEEP_DB_PATH_FILE"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if logLevel := os.Getenv("VKEEP_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if output := os.Getenv("VKEEP_OUTPUT"); output != "" {
		cfg.Output = output
	}
	if n, ok := getEnvInt("VKEEP_HISTORY_MAX_ITEMS"); ok && n > 0 {
		cfg.HistoryMaxItems = n
	}
	if n, ok := getEnvInt("VKEEP_CLOCK_RESOLUTION_SECONDS"); ok && n > 0 {
		cfg.ClockResolution = n
	}

	// Set defaults if not configured
	if cfg.DBPath == "" {
		// Check for project-local database first
		if _, err := os.Stat(".vkeep/vault.db"); err == nil {
			cfg.DBPath = ".vkeep/vault.db"
		} else {
			// Fall back to user-global database
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			cfg.DBPath = filepath.Join(homeDir, ".local", "share", "vkeep", "vault.db")
		}
	}

	return cfg, nil
}

// ClockResolutionDuration converts ClockResolution (whole seconds) into
// the time.Duration the vault package's normalizer expects. Callers
// typically assign this straight into vault.Resolution at startup.
func (c *Config) ClockResolutionDuration() time.Duration {
	if c.ClockResolution <= 0 {
		return time.Second
	}
	return time.Duration(c.ClockResolution) * time.Second
}

// loadYAMLConfig loads configuration from ~/.config/vkeep/config.yaml
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, ".config", "vkeep", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return string(data)
		}
	}

	return ""
}

// getEnvInt reads an integer environment variable. The bool result is
// false if the variable is unset or not a valid integer.
func getEnvInt(envVar string) (int, bool) {
	val := os.Getenv(envVar)
	if val == "" {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return n, true
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, just check cwd
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Clean paths for reliable comparison
	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		// Stop if we've reached home directory
		if dir == homeDir {
			break
		}

		// Get parent directory
		parent := filepath.Dir(dir)

		// Stop if we've reached the filesystem root
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}

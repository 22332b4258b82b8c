package config

import (
	"os"
	"strconv"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int
	Verbose      string

	// composer service
	DBPath              string
	ExportsDir          string
	MigrationsPath      string
	MaxGraphicsContexts int

	// gateway
	ComposerURL string
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", "3000"),
		Environment:         getEnv("ENV", "development"),
		ReadTimeout:         getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout:        getEnvAsInt("WRITE_TIMEOUT", 30),
		Verbose:             getEnv("VERBOSE", ""),
		DBPath:              getEnv("COMPOSER_DB_PATH", "data/db/composer.db"),
		ExportsDir:          getEnv("EXPORTS_DIR", "data/exports"),
		MigrationsPath:      getEnv("MIGRATIONS_PATH", "migrations/001_init_exports.sql"),
		MaxGraphicsContexts: getEnvAsInt("MAX_GRAPHICS_CONTEXTS", 4),
		ComposerURL:         getEnv("COMPOSER_URL", "http://localhost:3001"),
	}
}

// Env returns the value of key, or defaultVal when it is unset or empty.
func Env(key, defaultVal string) string {
	return getEnv(key, defaultVal)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

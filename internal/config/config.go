package config

import (
	"os"
	"strconv"

	"goeda/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Analysis AnalysisConfig
	Paths    PathConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	APIPort string
	GinMode string
}

// DatabaseConfig holds the optional report-history database settings.
// An empty URL disables persistence entirely.
type DatabaseConfig struct {
	URL string
}

// AnalysisConfig holds analysis thresholds and limits
type AnalysisConfig struct {
	MaxRows        int     // 0 means unlimited
	MaxFileSize    int64   // bytes
	TopValues      int     // categorical top-N
	HistogramBins  int
	NumericRatio   float64 // share of parseable cells for a column to be numeric
	DatetimeRatio  float64 // share of parseable cells for a column to be datetime
	CategoricalMax int     // max unique values before a string column is text
}

// PathConfig holds file system paths
type PathConfig struct {
	OutputDir string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   loadServerConfig(),
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Analysis: loadAnalysisConfig(),
		Paths:    loadPathConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("SERVER_PORT", "8080"),
		APIPort: getEnvOrDefault("API_PORT", "8081"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		MaxRows:        getEnvIntOrDefault("ANALYSIS_MAX_ROWS", 0),
		MaxFileSize:    int64(getEnvIntOrDefault("MAX_FILE_SIZE_MB", 50)) * 1024 * 1024,
		TopValues:      getEnvIntOrDefault("ANALYSIS_TOP_VALUES", 10),
		HistogramBins:  getEnvIntOrDefault("ANALYSIS_HISTOGRAM_BINS", 20),
		NumericRatio:   getEnvFloatOrDefault("ANALYSIS_NUMERIC_RATIO", 0.8),
		DatetimeRatio:  getEnvFloatOrDefault("ANALYSIS_DATETIME_RATIO", 0.8),
		CategoricalMax: getEnvIntOrDefault("ANALYSIS_CATEGORICAL_MAX", 100),
	}
}

func loadPathConfig() PathConfig {
	return PathConfig{
		OutputDir: getEnvOrDefault("OUTPUT_DIR", "outputs"),
	}
}

func validateConfig(c *Config) error {
	if c.Server.Port == "" {
		return errors.ConfigInvalid("SERVER_PORT cannot be empty")
	}
	if c.Analysis.TopValues <= 0 {
		return errors.ConfigInvalid("ANALYSIS_TOP_VALUES must be positive")
	}
	if c.Analysis.HistogramBins <= 0 {
		return errors.ConfigInvalid("ANALYSIS_HISTOGRAM_BINS must be positive")
	}
	if c.Analysis.NumericRatio <= 0 || c.Analysis.NumericRatio > 1 {
		return errors.ConfigInvalid("ANALYSIS_NUMERIC_RATIO must be in (0, 1]")
	}
	if c.Analysis.DatetimeRatio <= 0 || c.Analysis.DatetimeRatio > 1 {
		return errors.ConfigInvalid("ANALYSIS_DATETIME_RATIO must be in (0, 1]")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloatOrDefault(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

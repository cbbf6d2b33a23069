package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server   ServerConfig   `toml:"server"`   // HTTP server settings
	Database DatabaseConfig `toml:"database"` // Relational store settings
	Logging  LoggingConfig  `toml:"logging"`  // Application logging settings
	Weather  WeatherConfig  `toml:"wx"`       // Weather enrichment settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                  // HTTP port for the server
	Host               string   `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // List of origins allowed for CORS requests (use ["*"] for all origins)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response (0 = no timeout)
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
}

// DatabaseConfig contains relational store configuration.
// Driver selects the backend:
//   - "postgres": connects to PostgreSQL using the postgres_* fields
//   - "sqlite": opens (and creates if needed) the database at sqlite_path
type DatabaseConfig struct {
	Driver string `toml:"driver"` // Store backend: "postgres" or "sqlite"

	// PostgreSQL settings (used when driver = "postgres")
	PostgresHost     string `toml:"postgres_host"`     // PostgreSQL host
	PostgresPort     int    `toml:"postgres_port"`     // PostgreSQL port
	PostgresUser     string `toml:"postgres_user"`     // PostgreSQL user
	PostgresPassword string `toml:"postgres_password"` // PostgreSQL password
	PostgresDatabase string `toml:"postgres_database"` // PostgreSQL database name
	PostgresSSLMode  string `toml:"postgres_ssl_mode"` // sslmode parameter (e.g., "disable", "require")

	// SQLite settings (used when driver = "sqlite")
	SQLitePath string `toml:"sqlite_path"` // Path to the SQLite database file (":memory:" for in-memory)
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// WeatherConfig contains weather enrichment configuration
type WeatherConfig struct {
	Enabled               bool   `toml:"enabled"`                 // Whether airport lookups are enriched with forecast data
	APIBaseURL            string `toml:"api_base_url"`            // Base URL for the forecast API (e.g., https://api.open-meteo.com/v1/forecast)
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"` // HTTP request timeout in seconds
	CacheExpiryMinutes    int    `toml:"cache_expiry_minutes"`    // How long fetched forecasts stay valid
}

// Load reads and parses the configuration file at the given path
func Load(path string) (*Config, error) {
	var config Config

	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read the config file
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &config, nil
}

// LoadWithFallback loads configuration from the preferred path if given,
// otherwise searches the standard locations
func LoadWithFallback(preferredPath string) (*Config, error) {
	// List of paths to check in order of preference
	searchPaths := []string{
		preferredPath,         // User-specified path (if provided)
		"configs/config.toml", // configs/ folder
		"config.toml",         // Root directory
	}

	// Remove duplicates while preserving order
	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	var lastErr error
	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
				continue
			}
			return config, nil
		}
		lastErr = fmt.Errorf("config file not found: %s", path)
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations: %v. Last error: %w", uniquePaths, lastErr)
}

// Validate checks the configuration for invalid or missing values
// and fills in defaults where sensible
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Validate logging config
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be 'debug', 'info', 'warn', or 'error')", c.Logging.Level)
	}

	if err := c.ValidateDatabase(); err != nil {
		return err
	}

	return c.ValidateWeather()
}

// ValidateDatabase checks the store configuration for the selected driver
func (c *Config) ValidateDatabase() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.PostgresHost == "" {
			return fmt.Errorf("database postgres_host cannot be empty")
		}
		if c.Database.PostgresPort <= 0 || c.Database.PostgresPort > 65535 {
			return fmt.Errorf("invalid database postgres_port: %d", c.Database.PostgresPort)
		}
		if c.Database.PostgresUser == "" {
			return fmt.Errorf("database postgres_user cannot be empty")
		}
		if c.Database.PostgresDatabase == "" {
			return fmt.Errorf("database postgres_database cannot be empty")
		}
		if c.Database.PostgresSSLMode == "" {
			c.Database.PostgresSSLMode = "disable"
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("database sqlite_path cannot be empty")
		}
	case "":
		return fmt.Errorf("database driver cannot be empty (must be 'postgres' or 'sqlite')")
	default:
		return fmt.Errorf("invalid database driver: %s (must be 'postgres' or 'sqlite')", c.Database.Driver)
	}

	return nil
}

// ValidateWeather checks the weather enrichment configuration
func (c *Config) ValidateWeather() error {
	if !c.Weather.Enabled {
		return nil
	}

	if c.Weather.APIBaseURL == "" {
		return fmt.Errorf("weather api_base_url cannot be empty")
	}

	if c.Weather.RequestTimeoutSeconds <= 0 {
		c.Weather.RequestTimeoutSeconds = 3
	}

	if c.Weather.CacheExpiryMinutes <= 0 {
		return fmt.Errorf("weather cache_expiry_minutes must be greater than 0: %d", c.Weather.CacheExpiryMinutes)
	}

	return nil
}

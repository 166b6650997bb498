package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/hcc-raf-server/internal/domain"
)

// EnvPrefix prefixes every environment variable the server reads (RAF_SERVER_PORT, ...)
const EnvPrefix = "RAF"

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v          *viper.Viper
	configFile string
	config     *domain.Config
}

// NewManager creates a new configuration manager that searches the standard locations
// for config.yaml
func NewManager() (*Manager, error) {
	return NewManagerWithFile("")
}

// NewManagerWithFile creates a configuration manager reading an explicit config file.
// An empty path falls back to the standard search locations.
func NewManagerWithFile(path string) (*Manager, error) {
	m := &Manager{configFile: path}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	// A .env file is optional; variables already set in the environment win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	if m.configFile != "" {
		v.SetConfigFile(m.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/hcc-raf-server/")
	}

	// Set environment variable prefix and enable automatic env binding
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || m.configFile != "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.v = v
	m.config = config
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "20s")
	v.SetDefault("server.shutdown_timeout", "15s")

	// Engine defaults
	v.SetDefault("engine.base_url", "http://localhost:8000")
	v.SetDefault("engine.timeout", "10s")
	v.SetDefault("engine.rate_limit", 50)
	v.SetDefault("engine.burst", 50)
	v.SetDefault("engine.breaker.max_requests", 5)
	v.SetDefault("engine.breaker.interval", "30s")
	v.SetDefault("engine.breaker.timeout", "60s")
	v.SetDefault("engine.breaker.min_requests", 3)
	v.SetDefault("engine.breaker.failure_ratio", 0.6)

	// Model defaults
	v.SetDefault("model.name", "CMS-HCC Model V28")
	v.SetDefault("model.profile_path", "")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.memory_size", 1000)
	v.SetDefault("cache.memory_ttl", "15m")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.redis_ttl", "1h")
	v.SetDefault("cache.max_retries", 3)
	v.SetDefault("cache.pool_size", 10)
	v.SetDefault("cache.pool_timeout", "4s")

	// Audit defaults
	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.driver", "sqlite")
	v.SetDefault("audit.sqlite_path", "raf-audit.db")
	v.SetDefault("audit.migrations_path", "migrations")
	v.SetDefault("audit.postgres.host", "localhost")
	v.SetDefault("audit.postgres.port", 5432)
	v.SetDefault("audit.postgres.database", "hcc_raf")
	v.SetDefault("audit.postgres.username", "postgres")
	v.SetDefault("audit.postgres.password", "")
	v.SetDefault("audit.postgres.ssl_mode", "disable")
	v.SetDefault("audit.postgres.max_conns", 10)
	v.SetDefault("audit.postgres.min_conns", 1)
	v.SetDefault("audit.postgres.conn_max_lifetime", "1h")
	v.SetDefault("audit.postgres.conn_max_idle_time", "30m")

	// Auth defaults
	v.SetDefault("auth.enforce", false)
	v.SetDefault("auth.tokens", []string{})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// MCP defaults
	v.SetDefault("mcp.server_name", "hcc-raf-server")
	v.SetDefault("mcp.server_version", "1.0.0")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetEngineConfig returns engine client configuration
func (m *Manager) GetEngineConfig() *domain.EngineConfig {
	return &m.config.Engine
}

// GetCacheConfig returns result cache configuration
func (m *Manager) GetCacheConfig() *domain.CacheConfig {
	return &m.config.Cache
}

// GetAuditConfig returns audit trail configuration
func (m *Manager) GetAuditConfig() *domain.AuditConfig {
	return &m.config.Audit
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	// Validate server configuration
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	// Validate engine configuration
	if config.Engine.BaseURL == "" {
		return fmt.Errorf("engine base URL is required")
	}
	if u, err := url.Parse(config.Engine.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid engine base URL: %s", config.Engine.BaseURL)
	}
	if config.Engine.RateLimit <= 0 {
		return fmt.Errorf("engine rate limit must be positive: %d", config.Engine.RateLimit)
	}
	if r := config.Engine.Breaker.FailureRatio; r <= 0 || r > 1 {
		return fmt.Errorf("breaker failure ratio must be in (0, 1]: %v", r)
	}

	if config.Model.Name == "" {
		return fmt.Errorf("model name is required")
	}

	// Validate audit configuration
	if config.Audit.Enabled {
		switch config.Audit.Driver {
		case "sqlite":
			if config.Audit.SQLitePath == "" {
				return fmt.Errorf("audit sqlite path is required")
			}
		case "postgres":
			if config.Audit.Postgres.Host == "" {
				return fmt.Errorf("audit database host is required")
			}
			if config.Audit.Postgres.Database == "" {
				return fmt.Errorf("audit database name is required")
			}
			if config.Audit.Postgres.Username == "" {
				return fmt.Errorf("audit database username is required")
			}
		default:
			return fmt.Errorf("invalid audit driver: %s", config.Audit.Driver)
		}
	}

	// Enforcement without tokens would reject every request
	if config.Auth.Enforce && len(config.Auth.Tokens) == 0 {
		return fmt.Errorf("auth enforcement requires at least one token")
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}
	if f := strings.ToLower(config.Logging.Format); f != "json" && f != "text" {
		return fmt.Errorf("invalid log format: %s", config.Logging.Format)
	}

	return nil
}

// GetDatabaseConnectionString returns a formatted audit database connection string
func (m *Manager) GetDatabaseConnectionString() string {
	db := m.config.Audit.Postgres
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.Username, db.Password, db.Database, db.SSLMode)
}

// GetDatabaseURL returns the audit database as a URL, as migrate expects it
func (m *Manager) GetDatabaseURL() string {
	return DatabaseURL(m.config.Audit.Postgres)
}

// DatabaseURL formats a database configuration as a postgres:// URL
func DatabaseURL(db domain.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.Username, db.Password),
		Host:     fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:     "/" + db.Database,
		RawQuery: "sslmode=" + url.QueryEscape(db.SSLMode),
	}
	return u.String()
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.config.Environment)
	return env == "development" || env == "dev" || env == ""
}

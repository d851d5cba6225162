package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Logging  LoggingConfig
	Events   EventsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Environment     string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	MaxHeaderBytes  int
	ServerName      string
	CORSOrigin      string
}

// DatabaseConfig holds the Postgres connection settings
type DatabaseConfig struct {
	URL                 string
	MaxOpenConns        int
	MaxIdleConns        int
	ConnMaxLifetime     time.Duration
	ConnMaxIdleTime     time.Duration
	SlowQueryThreshold  time.Duration
	EnableQueryLogging  bool
	HealthCheckInterval time.Duration
	RunMigrations       bool
	ConnectRetries      int
	ConnectTimeout      time.Duration
}

// CacheConfig selects the badge catalog cache
type CacheConfig struct {
	Provider  string // none, memory or redis
	RedisURL  string
	KeyPrefix string
	BadgeTTL  time.Duration
}

// AuthConfig holds settings for verifying tokens issued by the external
// identity provider. An empty JWTSecret disables authentication.
type AuthConfig struct {
	JWTSecret string
	RoleClaim string
	Issuer    string
}

// Enabled reports whether request tokens are verified
func (a *AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Format string
}

// EventsConfig sizes the in-process event bus
type EventsConfig struct {
	BufferSize int
	Workers    int
}

// Load reads configuration from the environment, after loading
// .env.<GO_ENV> (or .env) outside production.
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load() // fallback to .env
		}
	}

	config := &Config{
		Server:   loadServerConfig(env),
		Database: loadDatabaseConfig(env),
		Cache:    loadCacheConfig(),
		Auth:     loadAuthConfig(),
		Logging:  loadLoggingConfig(env),
		Events:   loadEventsConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadServerConfig(env string) ServerConfig {
	config := ServerConfig{
		Port:            getEnv("PORT", "9000"),
		Environment:     env,
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		GracefulTimeout: getDurationEnv("GRACEFUL_TIMEOUT", 30*time.Second),
		MaxHeaderBytes:  getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1MB
		ServerName:      getEnv("SERVER_NAME", "CareerQuest"),
		CORSOrigin:      getEnv("CORS_ORIGIN", "*"),
	}

	if env == "development" {
		config.GracefulTimeout = getDurationEnv("GRACEFUL_TIMEOUT", 10*time.Second)
	}

	return config
}

func loadDatabaseConfig(env string) DatabaseConfig {
	config := DatabaseConfig{
		URL:                 getEnv("DATABASE_URL", ""),
		MaxOpenConns:        getIntEnv("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:        getIntEnv("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:     getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		ConnMaxIdleTime:     getDurationEnv("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
		SlowQueryThreshold:  getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
		EnableQueryLogging:  getBoolEnv("DB_ENABLE_QUERY_LOGGING", env == "development"),
		HealthCheckInterval: getDurationEnv("DB_HEALTH_CHECK_INTERVAL", 30*time.Second),
		RunMigrations:       getBoolEnv("DB_RUN_MIGRATIONS", true),
		ConnectRetries:      getIntEnv("DB_CONNECT_RETRIES", 5),
		ConnectTimeout:      getDurationEnv("DB_CONNECT_TIMEOUT", 10*time.Second),
	}

	optimizeDatabaseForEnvironment(&config, env)
	return config
}

func optimizeDatabaseForEnvironment(config *DatabaseConfig, env string) {
	switch env {
	case "production":
		if config.MaxOpenConns < 20 {
			config.MaxOpenConns = 50
		}
		if config.ConnMaxLifetime < 5*time.Minute {
			config.ConnMaxLifetime = 15 * time.Minute
		}
	default: // development, test
		if config.MaxOpenConns > 10 {
			config.MaxOpenConns = 10
		}
		if config.MaxIdleConns > config.MaxOpenConns {
			config.MaxIdleConns = config.MaxOpenConns
		}
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Provider:  strings.ToLower(getEnv("CACHE_PROVIDER", "memory")),
		RedisURL:  getEnv("REDIS_URL", "redis://localhost:6379/0"),
		KeyPrefix: getEnv("CACHE_KEY_PREFIX", "careerquest:"),
		BadgeTTL:  getDurationEnv("CACHE_BADGE_TTL", 5*time.Minute),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		RoleClaim: getEnv("AUTH_ROLE_CLAIM", "user_role"),
		Issuer:    getEnv("AUTH_ISSUER", ""),
	}
}

func loadLoggingConfig(env string) LoggingConfig {
	return LoggingConfig{
		Level:  getEnv("LOG_LEVEL", getDefaultLogLevel(env)),
		Format: getEnv("LOG_FORMAT", getDefaultLogFormat(env)),
	}
}

func loadEventsConfig() EventsConfig {
	return EventsConfig{
		BufferSize: getIntEnv("EVENT_BUFFER_SIZE", 256),
		Workers:    getIntEnv("EVENT_WORKERS", 2),
	}
}

// ===============================
// VALIDATION
// ===============================

func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.Auth.Validate(c.Server.Environment); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	if c.Events.Workers <= 0 || c.Events.BufferSize <= 0 {
		return fmt.Errorf("events config: EVENT_WORKERS and EVENT_BUFFER_SIZE must be positive")
	}

	return nil
}

func (d *DatabaseConfig) Validate() error {
	if d.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if d.MaxOpenConns <= 0 {
		return fmt.Errorf("MaxOpenConns must be positive")
	}

	if d.MaxIdleConns < 0 {
		return fmt.Errorf("MaxIdleConns cannot be negative")
	}

	if d.MaxIdleConns > d.MaxOpenConns {
		return fmt.Errorf("MaxIdleConns cannot be greater than MaxOpenConns")
	}

	if d.ConnMaxLifetime <= 0 {
		return fmt.Errorf("ConnMaxLifetime must be positive")
	}

	if d.SlowQueryThreshold <= 0 {
		return fmt.Errorf("SlowQueryThreshold must be positive")
	}

	if d.ConnectRetries < 0 {
		return fmt.Errorf("ConnectRetries cannot be negative")
	}

	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if s.ReadTimeout <= 0 {
		return fmt.Errorf("ReadTimeout must be positive")
	}

	if s.WriteTimeout <= 0 {
		return fmt.Errorf("WriteTimeout must be positive")
	}

	return nil
}

func (c *CacheConfig) Validate() error {
	switch c.Provider {
	case "none", "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_PROVIDER=redis")
		}
	default:
		return fmt.Errorf("unknown CACHE_PROVIDER %q", c.Provider)
	}

	if c.BadgeTTL < 0 {
		return fmt.Errorf("CACHE_BADGE_TTL cannot be negative")
	}

	return nil
}

func (a *AuthConfig) Validate(env string) error {
	if env == "production" && !a.Enabled() {
		return fmt.Errorf("AUTH_JWT_SECRET must be set for production")
	}

	if a.Enabled() && len(a.JWTSecret) < 32 && env == "production" {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least 32 characters")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getDefaultLogLevel(env string) string {
	switch env {
	case "production":
		return "info"
	default:
		return "debug"
	}
}

func getDefaultLogFormat(env string) string {
	switch env {
	case "production":
		return "json"
	default:
		return "console"
	}
}

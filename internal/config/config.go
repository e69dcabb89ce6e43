package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Upstream    UpstreamConfig
	Session     SessionConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type UpstreamConfig struct {
	BaseURL   string `yaml:"base_url"`
	Timeout   int    `yaml:"timeout"`
	UserAgent string `yaml:"user_agent"`
}

type SessionConfig struct {
	CookieName   string
	CookieSecure bool
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	BurstSize         int
}

type LoggingConfig struct {
	Level      string
	JSONFormat bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", ""),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 45),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Upstream: UpstreamConfig{
			BaseURL:   getEnv("UPSTREAM_BASE_URL", "https://noit.com.co"),
			Timeout:   getEnvInt("UPSTREAM_TIMEOUT", 30),
			UserAgent: getEnv("UPSTREAM_USER_AGENT", "noit-gateway/1.0"),
		},
		Session: SessionConfig{
			CookieName:   getEnv("SESSION_COOKIE_NAME", "token"),
			CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", true),
		},
		CORS: CORSConfig{
			AllowedOrigins:   parseStringSlice(getEnv("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods:   parseStringSlice(getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,PATCH,OPTIONS")),
			AllowedHeaders:   parseStringSlice(getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization")),
			AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getEnvInt("CORS_MAX_AGE", 300),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnvBool("RATE_LIMIT_ENABLED", false),
			RequestsPerMinute: getEnvInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 120),
			BurstSize:         getEnvInt("RATE_LIMIT_BURST_SIZE", 20),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			JSONFormat: getEnvBool("LOG_JSON_FORMAT", false),
		},
	}

	if err := cfg.loadUpstreamFile(); err != nil {
		return nil, fmt.Errorf("failed to load upstream config: %w", err)
	}

	if cfg.Upstream.BaseURL == "" {
		return nil, fmt.Errorf("upstream base URL is not configured")
	}
	if cfg.Upstream.Timeout <= 0 {
		return nil, fmt.Errorf("upstream timeout must be positive, got %d", cfg.Upstream.Timeout)
	}

	return cfg, nil
}

// loadUpstreamFile overrides the upstream settings from a YAML file when one
// is present. Environment variables remain the fallback.
func (c *Config) loadUpstreamFile() error {
	path := getEnv("UPSTREAM_CONFIG_FILE", "config/upstream.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		// File is optional; env-var settings stand.
		return nil
	}

	var upstream UpstreamConfig
	if err := yaml.Unmarshal(data, &upstream); err != nil {
		return fmt.Errorf("failed to parse upstream YAML: %w", err)
	}

	if upstream.BaseURL != "" {
		c.Upstream.BaseURL = upstream.BaseURL
	}
	if upstream.Timeout > 0 {
		c.Upstream.Timeout = upstream.Timeout
	}
	if upstream.UserAgent != "" {
		c.Upstream.UserAgent = upstream.UserAgent
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	return strings.ToLower(valueStr) == "true" || valueStr == "1"
}

func parseStringSlice(input string) []string {
	var result []string
	for _, v := range strings.Split(input, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

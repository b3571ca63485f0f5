package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	TokenFormatPaseto = "paseto"
	TokenFormatJWT    = "jwt"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"5000"`
	Env             string        `env:"APP_ENV" envDefault:"dev"` // dev or prod
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	TrustedOrigins  []string      `env:"TRUSTED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	// TrustedProxies lists peers (IPs or CIDRs) whose forwarding headers are honored
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

type DatabaseConfig struct {
	Host           string `env:"DB_HOST" envDefault:"localhost"`
	Port           string `env:"DB_PORT" envDefault:"5432"`
	User           string `env:"DB_USER" envDefault:"postgres"`
	Password       string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName         string `env:"DB_NAME" envDefault:"devconnector"`
	SSLMode        string `env:"DB_SSLMODE" envDefault:"disable"`
	ChannelBinding string `env:"DB_CHANNEL_BINDING"` // "require" for Neon DB, empty for local
	MaxOpenConns   int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns   int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type AuthConfig struct {
	// TokenFormat selects the bearer token implementation: paseto or jwt
	TokenFormat string `env:"AUTH_TOKEN_FORMAT" envDefault:"paseto"`
	// PASETO symmetric key (must be 32 bytes for v4.local)
	PasetoKey     string        `env:"PASETO_KEY"`
	JWTSecret     string        `env:"JWT_SECRET"`
	TokenDuration time.Duration `env:"TOKEN_DURATION" envDefault:"12h"`
}

type RateLimitConfig struct {
	Enabled     bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	MaxRequests int64         `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"10"`
	Window      time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"` // debug, info, warn, error
}

// Load reads configuration from environment variables,
// after merging in a .env file when one is present.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	if _, err := c.Server.TrustedProxyPrefixes(); err != nil {
		return err
	}

	c.Auth.TokenFormat = strings.ToLower(strings.TrimSpace(c.Auth.TokenFormat))

	switch c.Auth.TokenFormat {
	case TokenFormatPaseto:
		if len(c.Auth.PasetoKey) != 32 {
			return fmt.Errorf("PASETO_KEY must be exactly 32 bytes, got %d", len(c.Auth.PasetoKey))
		}
	case TokenFormatJWT:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_TOKEN_FORMAT=jwt")
		}
	default:
		return fmt.Errorf("unsupported AUTH_TOKEN_FORMAT %q", c.Auth.TokenFormat)
	}

	if c.Auth.TokenDuration <= 0 {
		return fmt.Errorf("TOKEN_DURATION must be positive, got %s", c.Auth.TokenDuration)
	}

	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	// Add channel_binding if configured (required for Neon DB)
	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// TrustedProxyPrefixes parses TrustedProxies. A bare IP is a single-host prefix.
func (c *ServerConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		if strings.Contains(raw, "/") {
			prefix, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", raw, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", raw, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

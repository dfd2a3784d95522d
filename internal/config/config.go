package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/ccsfp/clinic-api/internal/email"
	"github.com/ccsfp/clinic-api/internal/store/postgres"
)

type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Database  postgres.Config  `mapstructure:"database"`
	Redis     RedisConfig      `mapstructure:"redis"`
	JWT       JWTConfig        `mapstructure:"jwt"`
	Bootstrap BootstrapConfig  `mapstructure:"bootstrap"`
	SMTP      email.SMTPConfig `mapstructure:"smtp"`
	RateLimit RateLimitConfig  `mapstructure:"rate_limit"`
	CORS      CORSConfig       `mapstructure:"cors"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

// BootstrapConfig holds the built-in administrator credential. It is
// deployment configuration, never written to the account store.
type BootstrapConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	FullName string `mapstructure:"full_name"`
	Email    string `mapstructure:"email"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EnvOverrides are applied on top of the file-based configuration so
// secrets can come from the environment in deployment.
type EnvOverrides struct {
	Port              string `envconfig:"PORT"`
	DatabaseHost      string `envconfig:"DB_HOST"`
	DatabasePassword  string `envconfig:"DB_PASSWORD"`
	RedisURL          string `envconfig:"REDIS_URL"`
	JWTSecret         string `envconfig:"JWT_SECRET"`
	BootstrapPassword string `envconfig:"BOOTSTRAP_PASSWORD"`
	SMTPPassword      string `envconfig:"SMTP_PASSWORD"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetEnvPrefix("CLINIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !isNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	var env EnvOverrides
	if err := envconfig.Process("clinic", &env); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	applyOverrides(&cfg, env)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")

	// database.host deliberately has no default: an empty host selects
	// the in-memory store.
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "clinic")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.expiry_hours", 24)

	v.SetDefault("bootstrap.username", "admin")
	v.SetDefault("bootstrap.password", "admin12345")
	v.SetDefault("bootstrap.full_name", "Administrator")
	v.SetDefault("bootstrap.email", "admin@system.com")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 100)
	v.SetDefault("rate_limit.burst", 200)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

func applyOverrides(cfg *Config, env EnvOverrides) {
	if env.Port != "" {
		cfg.Server.Port = env.Port
	}
	if env.DatabaseHost != "" {
		cfg.Database.Host = env.DatabaseHost
	}
	if env.DatabasePassword != "" {
		cfg.Database.Password = env.DatabasePassword
	}
	if env.RedisURL != "" {
		cfg.Redis.URL = env.RedisURL
	}
	if env.JWTSecret != "" {
		cfg.JWT.Secret = env.JWTSecret
	}
	if env.BootstrapPassword != "" {
		cfg.Bootstrap.Password = env.BootstrapPassword
	}
	if env.SMTPPassword != "" {
		cfg.SMTP.Password = env.SMTPPassword
	}
}

// SMTPEnabled reports whether an outbound mail host is configured.
func (c *Config) SMTPEnabled() bool {
	return c.SMTP.Host != ""
}

func isNotExist(err error) bool {
	return strings.Contains(err.Error(), "no such file")
}

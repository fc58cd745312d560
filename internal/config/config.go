package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseDriver     string        `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	JWTSecret          string        `mapstructure:"JWT_SECRET"`
	JWTExpires         time.Duration `mapstructure:"JWT_EXPIRES"`
	BcryptCost         int           `mapstructure:"BCRYPT_COST"`
	HTTPAddr           string        `mapstructure:"HTTP_ADDR"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	GinMode            string        `mapstructure:"GIN_MODE"`
	RedisURL           string        `mapstructure:"REDIS_URL"`
	CORSAllowedOrigins string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	MetricsEnabled     bool          `mapstructure:"METRICS_ENABLED"`
}

var defaults = map[string]any{
	"DATABASE_DRIVER":      "postgres",
	"DATABASE_URL":         "",
	"JWT_SECRET":           "",
	"JWT_EXPIRES":          "24h",
	"BCRYPT_COST":          10,
	"HTTP_ADDR":            ":8080",
	"LOG_LEVEL":            "info",
	"GIN_MODE":             "release",
	"REDIS_URL":            "",
	"CORS_ALLOWED_ORIGINS": "*",
	"METRICS_ENABLED":      true,
}

// Load reads the configuration from an optional .env.local overlay, a .env file and
// environment variables, in increasing order of precedence.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	// godotenv never overrides variables that are already set.
	for _, p := range paths {
		_ = godotenv.Load(strings.TrimSuffix(p, "/") + "/.env.local")
	}

	v := viper.New()
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName(".env")
	v.SetConfigType("env")

	// Unmarshal only sees keys viper already knows about.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot run without.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return errors.New("DATABASE_DRIVER must be postgres or sqlite")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is empty")
	}
	if c.JWTExpires <= 0 {
		return errors.New("JWT_EXPIRES must be a positive duration")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("BCRYPT_COST must be between 4 and 31")
	}
	return nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS into its entries.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

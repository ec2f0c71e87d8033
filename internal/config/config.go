// Package config loads the server configuration from the environment and an optional .env file.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config holds every setting the server reads at boot.
type Config struct {
	Env      string
	Port     string
	LogLevel string

	DBDriver    string // mongo, postgres or sqlite
	MongoURI    string
	MongoDB     string
	DatabaseDSN string

	JWTSecret       string
	PaginationLimit int

	RabbitMQURL      string
	RabbitMQExchange string

	StorageDriver string // local or s3
	UploadDir     string
	S3Bucket      string
	S3Region      string
	S3Key         string
	S3Secret      string
	S3Endpoint    string
	S3URL         string

	FrontendDir string

	PayPalClientID  string
	PayPalAppSecret string
	PayPalAPIURL    string

	LoginRatePerMinute int
	CORSOrigins        string
	BodyLimitMB        int
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool { return c.Env == EnvDevelopment }

// Addr is the listen address derived from Port.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("NODE_ENV", EnvDevelopment)
	v.SetDefault("PORT", "5000")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DB_DRIVER", "mongo")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "proshop")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("PAGINATION_LIMIT", 8)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "proshop.orders")
	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_KEY", "")
	v.SetDefault("S3_SECRET", "")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_URL", "")
	v.SetDefault("FRONTEND_DIR", "frontend/build")
	v.SetDefault("PAYPAL_CLIENT_ID", "")
	v.SetDefault("PAYPAL_APP_SECRET", "")
	v.SetDefault("PAYPAL_API_URL", "https://api-m.sandbox.paypal.com")
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 20)
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("BODY_LIMIT_MB", 10)
}

// Load reads .env files (when present) and the environment. Variables already set in the
// environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// a missing .env file is normal outside development
		_ = godotenv.Load(f)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	env := v.GetString("APP_ENV")
	if env == "" {
		env = v.GetString("NODE_ENV")
	}

	cfg := &Config{
		Env:                strings.ToLower(strings.TrimSpace(env)),
		Port:               v.GetString("PORT"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		DBDriver:           strings.ToLower(v.GetString("DB_DRIVER")),
		MongoURI:           v.GetString("MONGO_URI"),
		MongoDB:            v.GetString("MONGO_DB"),
		DatabaseDSN:        v.GetString("DATABASE_DSN"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		PaginationLimit:    v.GetInt("PAGINATION_LIMIT"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		RabbitMQExchange:   v.GetString("RABBITMQ_EXCHANGE"),
		StorageDriver:      strings.ToLower(v.GetString("STORAGE_DRIVER")),
		UploadDir:          v.GetString("UPLOAD_DIR"),
		S3Bucket:           v.GetString("S3_BUCKET"),
		S3Region:           v.GetString("S3_REGION"),
		S3Key:              v.GetString("S3_KEY"),
		S3Secret:           v.GetString("S3_SECRET"),
		S3Endpoint:         v.GetString("S3_ENDPOINT"),
		S3URL:              v.GetString("S3_URL"),
		FrontendDir:        v.GetString("FRONTEND_DIR"),
		PayPalClientID:     v.GetString("PAYPAL_CLIENT_ID"),
		PayPalAppSecret:    v.GetString("PAYPAL_APP_SECRET"),
		PayPalAPIURL:       v.GetString("PAYPAL_API_URL"),
		LoginRatePerMinute: v.GetInt("LOGIN_RATE_PER_MINUTE"),
		CORSOrigins:        v.GetString("CORS_ORIGINS"),
		BodyLimitMB:        v.GetInt("BODY_LIMIT_MB"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("config: unknown environment %q", c.Env)
	}
	switch c.DBDriver {
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("config: MONGO_URI is required for the mongo driver")
		}
	case "postgres", "sqlite":
		if c.DatabaseDSN == "" {
			return fmt.Errorf("config: DATABASE_DSN is required for the %s driver", c.DBDriver)
		}
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	if c.PaginationLimit <= 0 {
		return fmt.Errorf("config: PAGINATION_LIMIT must be positive")
	}
	if c.StorageDriver == "s3" && c.S3Bucket == "" {
		return fmt.Errorf("config: S3_BUCKET is required for the s3 storage driver")
	}
	return nil
}

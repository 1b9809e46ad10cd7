package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
	DriverS3     = "s3"
)

// Config holds application configuration
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Store   StoreConfig   `koanf:"store"`
	Redis   RedisConfig   `koanf:"redis"`
	Auth    AuthConfig    `koanf:"auth"`
	Storage StorageConfig `koanf:"storage"`
	Logging LoggingConfig `koanf:"logging"`
}

type ServerConfig struct {
	Port           int      `koanf:"port"`
	AllowedOrigins []string `koanf:"allowed_origins"`
	// AuthRateLimit is the number of register/login requests allowed per IP per minute.
	AuthRateLimit int `koanf:"auth_rate_limit"`
}

type StoreConfig struct {
	Driver   string `koanf:"driver"`
	MongoURI string `koanf:"mongo_uri"`
	Database string `koanf:"database"`
}

type RedisConfig struct {
	// Addr left empty disables the profile cache.
	Addr            string        `koanf:"addr"`
	DB              int           `koanf:"db"`
	ProfileCacheTTL time.Duration `koanf:"profile_cache_ttl"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

type StorageConfig struct {
	Driver          string `koanf:"driver"`
	Region          string `koanf:"region"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	Bucket          string `koanf:"bucket"`
	Endpoint        string `koanf:"endpoint"`
	PublicBaseURL   string `koanf:"public_base_url"`
	PublicReadACL   bool   `koanf:"public_read_acl"`
	MaxUploadBytes  int64  `koanf:"max_upload_bytes"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:           4000,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			AuthRateLimit:  20,
		},
		Store: StoreConfig{
			Driver:   DriverMongo,
			MongoURI: "mongodb://localhost:27017",
			Database: "travel_blog",
		},
		Redis: RedisConfig{
			ProfileCacheTTL: 10 * time.Minute,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Storage: StorageConfig{
			Driver:         DriverS3,
			Region:         "us-east-1",
			PublicReadACL:  true,
			MaxUploadBytes: 5 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envMappings maps environment variable names to config paths. Variables not
// listed here are ignored.
var envMappings = map[string]string{
	"port":                  "server.port",
	"cors_allowed_origins":  "server.allowed_origins",
	"auth_rate_limit":       "server.auth_rate_limit",
	"store_driver":          "store.driver",
	"mongodb_uri":           "store.mongo_uri",
	"mongo_uri":             "store.mongo_uri",
	"mongodb_database":      "store.database",
	"redis_addr":            "redis.addr",
	"redis_db":              "redis.db",
	"profile_cache_ttl":     "redis.profile_cache_ttl",
	"jwt_secret":            "auth.jwt_secret",
	"token_ttl":             "auth.token_ttl",
	"storage_driver":        "storage.driver",
	"aws_region":            "storage.region",
	"aws_access_key_id":     "storage.access_key_id",
	"aws_secret_access_key": "storage.secret_access_key",
	"aws_bucket_name":       "storage.bucket",
	"s3_endpoint":           "storage.endpoint",
	"s3_public_base_url":    "storage.public_base_url",
	"s3_public_read_acl":    "storage.public_read_acl",
	"max_upload_bytes":      "storage.max_upload_bytes",
	"log_level":             "logging.level",
	"log_format":            "logging.format",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

var sliceConfigPaths = []string{
	"server.allowed_origins",
}

// Load reads an optional .env file and then layers environment variables over
// the built-in defaults.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// Validate checks required settings and driver names.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Server.Port)
	}
	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required for the mongo store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Storage.Driver {
	case DriverS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("AWS_BUCKET_NAME is required for s3 storage")
		}
		if c.Storage.Region == "" {
			return fmt.Errorf("AWS_REGION is required for s3 storage")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("TOKEN_TTL", "2h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("TokenTTL = %v, want 2h", cfg.Auth.TokenTTL)
	}
	if got := strings.Join(cfg.Server.AllowedOrigins, "|"); got != "https://a.example|https://b.example" {
		t.Errorf("AllowedOrigins = %q", got)
	}
	if cfg.Redis.ProfileCacheTTL != 10*time.Minute {
		t.Errorf("ProfileCacheTTL default = %v, want 10m", cfg.Redis.ProfileCacheTTL)
	}
	if cfg.Storage.MaxUploadBytes != 5<<20 {
		t.Errorf("MaxUploadBytes default = %d", cfg.Storage.MaxUploadBytes)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("STORAGE_DRIVER", "memory")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults with secret and bucket", func(c *Config) {}, ""},
		{"unknown store", func(c *Config) { c.Store.Driver = "sqlite" }, "STORE_DRIVER"},
		{"s3 without bucket", func(c *Config) { c.Storage.Bucket = "" }, "AWS_BUCKET_NAME"},
		{"memory storage without bucket", func(c *Config) {
			c.Storage.Driver = DriverMemory
			c.Storage.Bucket = ""
		}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Auth.JWTSecret = "s"
			cfg.Storage.Bucket = "bucket"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

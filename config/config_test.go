package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("MEALSNAP_SERVER_PORT")
		os.Unsetenv("MEALSNAP_SERVER_ENVIRONMENT")
		os.Unsetenv("MEALSNAP_ANALYSIS_BASE_URL")
		os.Unsetenv("MEALSNAP_ANALYSIS_API_KEY")
		os.Unsetenv("MEALSNAP_ANALYSIS_BROKERED_KEY")
		os.Unsetenv("MEALSNAP_ANALYSIS_MODEL")
		os.Unsetenv("MEALSNAP_IDENTITY_JWT_SECRET")
		os.Unsetenv("MEALSNAP_ANALYSIS_TIMEOUT")
		os.Unsetenv("MEALSNAP_STORAGE_DB_PATH")
		os.Unsetenv("MEALSNAP_SESSION_TTL")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Analysis.BaseURL != "https://openrouter.ai/api" {
			t.Errorf("Analysis.BaseURL = %s, want https://openrouter.ai/api", cfg.Analysis.BaseURL)
		}
		if cfg.Analysis.Model != "openrouter/optimus-alpha" {
			t.Errorf("Analysis.Model = %s, want openrouter/optimus-alpha", cfg.Analysis.Model)
		}
		if cfg.Analysis.Timeout != 30*time.Second {
			t.Errorf("Analysis.Timeout = %v, want 30s", cfg.Analysis.Timeout)
		}
		if cfg.Analysis.RatePerHour != 1000 {
			t.Errorf("Analysis.RatePerHour = %d, want 1000", cfg.Analysis.RatePerHour)
		}
		if cfg.Storage.DBPath != "./data/mealsnap.db" {
			t.Errorf("Storage.DBPath = %s, want ./data/mealsnap.db", cfg.Storage.DBPath)
		}
		if cfg.Session.TTL != 30*time.Minute {
			t.Errorf("Session.TTL = %v, want 30m", cfg.Session.TTL)
		}
	})

	t.Run("missing API key is allowed", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Analysis.APIKey != "" {
			t.Errorf("Analysis.APIKey = %s, want empty", cfg.Analysis.APIKey)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MEALSNAP_SERVER_PORT", "9090")
		os.Setenv("MEALSNAP_SERVER_ENVIRONMENT", "production")
		os.Setenv("MEALSNAP_ANALYSIS_BASE_URL", "https://custom.api.com")
		os.Setenv("MEALSNAP_ANALYSIS_API_KEY", "custom-api-key")
		os.Setenv("MEALSNAP_ANALYSIS_BROKERED_KEY", "brokered-key")
		os.Setenv("MEALSNAP_ANALYSIS_MODEL", "openai/gpt-4o")
		os.Setenv("MEALSNAP_IDENTITY_JWT_SECRET", "env-jwt-secret")
		os.Setenv("MEALSNAP_ANALYSIS_TIMEOUT", "10s")
		os.Setenv("MEALSNAP_STORAGE_DB_PATH", "/tmp/meals.db")
		os.Setenv("MEALSNAP_SESSION_TTL", "1h")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Analysis.BaseURL != "https://custom.api.com" {
			t.Errorf("Analysis.BaseURL = %s, want https://custom.api.com", cfg.Analysis.BaseURL)
		}
		if cfg.Analysis.APIKey != "custom-api-key" {
			t.Errorf("Analysis.APIKey = %s, want custom-api-key", cfg.Analysis.APIKey)
		}
		if cfg.Analysis.BrokeredKey != "brokered-key" {
			t.Errorf("Analysis.BrokeredKey = %s, want brokered-key", cfg.Analysis.BrokeredKey)
		}
		if cfg.Identity.JWTSecret != "env-jwt-secret" {
			t.Errorf("Identity.JWTSecret = %s, want env-jwt-secret", cfg.Identity.JWTSecret)
		}
		if cfg.Analysis.Model != "openai/gpt-4o" {
			t.Errorf("Analysis.Model = %s, want openai/gpt-4o", cfg.Analysis.Model)
		}
		if cfg.Analysis.Timeout != 10*time.Second {
			t.Errorf("Analysis.Timeout = %v, want 10s", cfg.Analysis.Timeout)
		}
		if cfg.Storage.DBPath != "/tmp/meals.db" {
			t.Errorf("Storage.DBPath = %s, want /tmp/meals.db", cfg.Storage.DBPath)
		}
		if cfg.Session.TTL != time.Hour {
			t.Errorf("Session.TTL = %v, want 1h", cfg.Session.TTL)
		}
	})

	t.Run("fails validation for non-positive timeout", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MEALSNAP_ANALYSIS_TIMEOUT", "0s")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for zero timeout")
		}
	})

	t.Run("fails validation for non-positive session TTL", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MEALSNAP_SESSION_TTL", "-5m")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for negative session TTL")
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Analysis: AnalysisConfig{
				BaseURL: "https://openrouter.ai/api",
				Timeout: 30 * time.Second,
			},
			Storage: StorageConfig{DBPath: "./data/mealsnap.db"},
			Session: SessionConfig{TTL: 30 * time.Minute},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(valid()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails when base URL is empty", func(t *testing.T) {
		cfg := valid()
		cfg.Analysis.BaseURL = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty base URL")
		}
	})

	t.Run("fails when db path is empty", func(t *testing.T) {
		cfg := valid()
		cfg.Storage.DBPath = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty db path")
		}
	})

	t.Run("fails for non-positive session TTL", func(t *testing.T) {
		cfg := valid()
		cfg.Session.TTL = 0
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for zero session TTL")
		}
	})
}

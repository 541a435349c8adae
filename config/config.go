package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Analysis AnalysisConfig
	Storage  StorageConfig
	Identity IdentityConfig
	Session  SessionConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AnalysisConfig holds external AI analysis endpoint configuration
type AnalysisConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	BrokeredKey string        `mapstructure:"brokered_key"`
	Model       string        `mapstructure:"model"`
	ProModel    string        `mapstructure:"pro_model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RatePerHour int           `mapstructure:"rate_per_hour"`
}

// StorageConfig holds meal log persistence configuration
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// IdentityConfig holds anonymous identity and session-token configuration
type IdentityConfig struct {
	LocalStorePath string `mapstructure:"local_store_path"`
	JWTSecret      string `mapstructure:"jwt_secret"`
}

// SessionConfig holds flow session registry configuration
type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/mealsnap/")

	// Environment variable settings
	v.SetEnvPrefix("MEALSNAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets have no default value, so viper would never surface them
	// from the environment during Unmarshal without an explicit binding
	v.BindEnv("analysis.api_key")
	v.BindEnv("analysis.brokered_key")
	v.BindEnv("identity.jwt_secret")

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Analysis defaults. An empty API key is allowed: the image path
	// falls back to sample data and the text path reports failure.
	v.SetDefault("analysis.base_url", "https://openrouter.ai/api")
	v.SetDefault("analysis.model", "openrouter/optimus-alpha")
	v.SetDefault("analysis.pro_model", "openai/gpt-4-vision-preview")
	v.SetDefault("analysis.timeout", "30s")
	v.SetDefault("analysis.rate_per_hour", 1000)

	// Storage defaults
	v.SetDefault("storage.db_path", "./data/mealsnap.db")

	// Identity defaults
	v.SetDefault("identity.local_store_path", "./data/localstore.json")

	// Session defaults
	v.SetDefault("session.ttl", "30m")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Analysis.BaseURL == "" {
		return fmt.Errorf("analysis base URL is required (set MEALSNAP_ANALYSIS_BASE_URL)")
	}

	if config.Analysis.Timeout <= 0 {
		return fmt.Errorf("analysis timeout must be positive, got: %s", config.Analysis.Timeout)
	}

	if config.Storage.DBPath == "" {
		return fmt.Errorf("storage db path is required (set MEALSNAP_STORAGE_DB_PATH)")
	}

	if config.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got: %s", config.Session.TTL)
	}

	return nil
}

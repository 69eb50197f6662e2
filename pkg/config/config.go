// Package config loads daemon configuration from file and environment.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// Photo server connection
	ServerURL    string `mapstructure:"server_url"`
	ServerAPIKey string `mapstructure:"server_api_key"`

	// Optional OAuth2 client-credentials auth instead of the API key
	OAuth *OAuthConfig `mapstructure:"oauth"`

	// Paging
	PageSize int `mapstructure:"page_size"`

	// Page cache
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// Debounce delays
	DeleteSettle time.Duration `mapstructure:"delete_settle"`
	ResetSettle  time.Duration `mapstructure:"reset_settle"`

	// Stats polling
	StatsPollCron string `mapstructure:"stats_poll_cron"`

	// Preferences
	PrefsPath string `mapstructure:"prefs_path"`

	// Timeouts
	ServerTimeout time.Duration `mapstructure:"server_timeout"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
}

// OAuthConfig holds client-credentials settings.
type OAuthConfig struct {
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	TokenURL     string   `mapstructure:"token_url"`
	Scopes       []string `mapstructure:"scopes"`
}

// Load loads configuration from file and environment.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			// Config file is optional
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("SEEN")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDerivedDefaults(&cfg, v)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("page_size", 100)
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("delete_settle", 500*time.Millisecond)
	v.SetDefault("reset_settle", time.Second)
	v.SetDefault("stats_poll_cron", "@every 30s")
	v.SetDefault("prefs_path", "data/preferences.json")
	v.SetDefault("server_timeout", 30*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

func applyDerivedDefaults(cfg *Config, v *viper.Viper) {
	if cfg.PageSize <= 0 {
		cfg.PageSize = v.GetInt("page_size")
		if cfg.PageSize <= 0 {
			cfg.PageSize = 100
		}
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = v.GetDuration("cache_ttl")
		if cfg.CacheTTL <= 0 {
			cfg.CacheTTL = 5 * time.Minute
		}
	}

	if cfg.DeleteSettle <= 0 {
		cfg.DeleteSettle = v.GetDuration("delete_settle")
		if cfg.DeleteSettle <= 0 {
			cfg.DeleteSettle = 500 * time.Millisecond
		}
	}

	if cfg.ResetSettle <= 0 {
		cfg.ResetSettle = v.GetDuration("reset_settle")
		if cfg.ResetSettle <= 0 {
			cfg.ResetSettle = time.Second
		}
	}

	if cfg.StatsPollCron == "" {
		cfg.StatsPollCron = v.GetString("stats_poll_cron")
		if cfg.StatsPollCron == "" {
			cfg.StatsPollCron = "@every 30s"
		}
	}

	if cfg.PrefsPath == "" {
		cfg.PrefsPath = v.GetString("prefs_path")
		if cfg.PrefsPath == "" {
			cfg.PrefsPath = "data/preferences.json"
		}
	}

	if cfg.ServerTimeout <= 0 {
		cfg.ServerTimeout = v.GetDuration("server_timeout")
		if cfg.ServerTimeout <= 0 {
			cfg.ServerTimeout = 30 * time.Second
		}
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = v.GetString("log_level")
		if cfg.LogLevel == "" {
			cfg.LogLevel = "info"
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}
	if c.ServerAPIKey == "" && c.OAuth == nil {
		return fmt.Errorf("server_api_key or oauth configuration is required")
	}
	if c.OAuth != nil {
		if c.OAuth.ClientID == "" || c.OAuth.ClientSecret == "" || c.OAuth.TokenURL == "" {
			return fmt.Errorf("oauth requires client_id, client_secret and token_url")
		}
	}
	return nil
}

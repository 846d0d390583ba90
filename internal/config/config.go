// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port     int `mapstructure:"port"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Uploads struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"uploads"`
	Exports struct {
		Path          string `mapstructure:"path"`
		RetentionDays int    `mapstructure:"retention_days"`
	} `mapstructure:"exports"`
	Extractor struct {
		DefaultProvider string `mapstructure:"default_provider"`
		BatchSize       int    `mapstructure:"batch_size"`
		ItemDelayMs     int    `mapstructure:"item_delay_ms"`
		BatchDelayMs    int    `mapstructure:"batch_delay_ms"`
		RetryBackoffMs  int    `mapstructure:"retry_backoff_ms"`
		MaxAttempts     int    `mapstructure:"max_attempts"`
		PollIntervalMs  int    `mapstructure:"poll_interval_ms"`
	} `mapstructure:"extractor"`
	TalentLens struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"talentlens"`
	OAuth struct {
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		AuthURL      string `mapstructure:"auth_url"`
		TokenURL     string `mapstructure:"token_url"`
		RedirectURL  string `mapstructure:"redirect_url"`
	} `mapstructure:"oauth"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or "yaml"
	viper.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// This tells Viper to look for environment variables with a "PROSPECTR_"
	// prefix. e.g., PROSPECTR_DATABASE_PATH overrides the `database.path` key.
	viper.SetEnvPrefix("PROSPECTR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8080)
	viper.SetDefault("database.path", "./prospectr.db")
	viper.SetDefault("uploads.path", "./data/uploads")
	viper.SetDefault("exports.path", "./data/exports")
	viper.SetDefault("exports.retention_days", 30)
	viper.SetDefault("extractor.default_provider", "talentlens")
	viper.SetDefault("extractor.batch_size", 50)
	viper.SetDefault("extractor.item_delay_ms", 2000)
	viper.SetDefault("extractor.batch_delay_ms", 5000)
	viper.SetDefault("extractor.retry_backoff_ms", 1000)
	viper.SetDefault("extractor.max_attempts", 3)
	viper.SetDefault("extractor.poll_interval_ms", 5000)
	viper.SetDefault("talentlens.base_url", "https://api.talentlens.io")
	viper.SetDefault("oauth.auth_url", "https://auth.talentlens.io/oauth/authorize")
	viper.SetDefault("oauth.token_url", "https://auth.talentlens.io/oauth/token")
	viper.SetDefault("oauth.redirect_url", "http://localhost:8080/api/accounts/talentlens/callback")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

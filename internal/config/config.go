package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix           = "GAMESCOUT"
	defaultHTTPAddress  = "0.0.0.0:8080"
	defaultDatabasePath = "gamescout.db"
	defaultLogLevel     = "info"

	defaultCatalogBaseURL    = "https://api.igdb.com/v4"
	defaultRankingBaseURL    = "https://api.rawg.io/api"
	defaultCompletionBaseURL = "https://api.openai.com/v1"
	defaultCompletionModel   = "gpt-3.5-turbo-instruct"
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress  string
	DatabasePath string
	LogLevel     string

	CatalogBaseURL     string
	CatalogClientID    string
	CatalogAccessToken string

	RankingBaseURL string
	RankingAPIKey  string

	CompletionBaseURL string
	CompletionAPIKey  string
	CompletionModel   string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("igdb.base_url", defaultCatalogBaseURL)
	configViper.SetDefault("rawg.base_url", defaultRankingBaseURL)
	configViper.SetDefault("openai.base_url", defaultCompletionBaseURL)
	configViper.SetDefault("openai.model", defaultCompletionModel)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:        configViper.GetString("http.address"),
		DatabasePath:       configViper.GetString("database.path"),
		LogLevel:           configViper.GetString("log.level"),
		CatalogBaseURL:     configViper.GetString("igdb.base_url"),
		CatalogClientID:    configViper.GetString("igdb.client_id"),
		CatalogAccessToken: configViper.GetString("igdb.access_token"),
		RankingBaseURL:     configViper.GetString("rawg.base_url"),
		RankingAPIKey:      configViper.GetString("rawg.api_key"),
		CompletionBaseURL:  configViper.GetString("openai.base_url"),
		CompletionAPIKey:   configViper.GetString("openai.api_key"),
		CompletionModel:    configViper.GetString("openai.model"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

// validate checks the keys the server cannot start without. The completion
// credential is deliberately not required here; its absence surfaces as a
// per-request error from the recommendation generator.
func (c AppConfig) validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.CatalogClientID) == "" {
		return fmt.Errorf("igdb.client_id is required")
	}
	if strings.TrimSpace(c.CatalogAccessToken) == "" {
		return fmt.Errorf("igdb.access_token is required")
	}
	if strings.TrimSpace(c.RankingAPIKey) == "" {
		return fmt.Errorf("rawg.api_key is required")
	}
	return nil
}

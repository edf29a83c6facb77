package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const EnvPrefix = "CATALOG"

var defaults = map[string]interface{}{
	"server.port":                      "8080",
	"server.read_timeout":              15,
	"server.write_timeout":             15,
	"server.shutdown_timeout":          10,
	"catalog.path":                     "~/catalog.json",
	"auth.api_key":                     "",
	"auth.jwt.secret_key":              "",
	"auth.jwt.access_token_expiry":     "",
	"ratelimit.default":                "3 per minute",
	"ratelimit.login":                  "6 per minute",
	"ratelimit.storage_uri":            "memory://",
	"enrichment.api_key":               "",
	"enrichment.base_url":              "https://www.omdbapi.com/",
	"enrichment.max_concurrency":       5,
	"enrichment.max_concurrency_limit": 20,
	"enrichment.request_timeout":       "10s",
	"enrichment.requests_per_second":   0,
	"log.level":                        "info",
	"log.file":                         "",
}

// LoadConfig reads app-config.yaml from the given directories (the working
// directory when none are given), then applies CATALOG_* environment
// overrides. A missing file is not an error.
func LoadConfig(configPaths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("app-config")
	v.SetConfigType("yaml")
	if len(configPaths) == 0 {
		configPaths = []string{"."}
	}
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Info().Msg("No app-config.yaml found, using defaults and environment")
	} else {
		log.Info().Str("file", v.ConfigFileUsed()).Msg("Config file loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

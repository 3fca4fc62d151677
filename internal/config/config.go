// Package config loads runtime settings from defaults, an optional config
// file and POKEDEX_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "POKEDEX"

// Config is the resolved process configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	PokeAPI    PokeAPIConfig    `mapstructure:"pokeapi"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Pokemon    PokemonConfig    `mapstructure:"pokemon"`
	Service    ServiceConfig    `mapstructure:"service"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Journal    JournalConfig    `mapstructure:"journal"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	FrontendURL string `mapstructure:"frontend_url"`
}

type PokeAPIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type CacheConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type PaginationConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// PokemonConfig bounds the numeric identifiers accepted by the validator.
type PokemonConfig struct {
	MinID int `mapstructure:"min_id"`
	MaxID int `mapstructure:"max_id"`
}

type ServiceConfig struct {
	// Fanout caps concurrent detail fetches within one list or type search.
	Fanout int `mapstructure:"fanout"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type JournalConfig struct {
	// Retention is the number of upstream call records kept.
	Retention int `mapstructure:"retention"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers every recognized key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.frontend_url", "http://localhost:5173")
	v.SetDefault("pokeapi.base_url", "https://pokeapi.co/api/v2")
	v.SetDefault("pokeapi.timeout", 10*time.Second)
	v.SetDefault("pokeapi.user_agent", "pokedex-api/1.0")
	v.SetDefault("cache.ttl", 300*time.Second)
	v.SetDefault("cache.sweep_interval", 600*time.Second)
	v.SetDefault("pagination.default_limit", 20)
	v.SetDefault("pagination.max_limit", 100)
	v.SetDefault("pokemon.min_id", 1)
	v.SetDefault("pokemon.max_id", 1025)
	v.SetDefault("service.fanout", 10)
	v.SetDefault("database.dsn", ":memory:")
	v.SetDefault("journal.retention", 1000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// NewViper returns a viper instance with defaults and environment binding applied.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Legacy variable names used by earlier deployments.
	_ = v.BindEnv("pokeapi.base_url", envPrefix+"_POKEAPI_BASE_URL", "POKEAPI_BASE_URL")
	_ = v.BindEnv("server.port", envPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.frontend_url", envPrefix+"_SERVER_FRONTEND_URL", "FRONTEND_URL")
	return v
}

// Load reads the optional config file (when path is non-empty) and decodes
// the merged settings.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration produced by defaults alone.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func (c *Config) Validate() error {
	switch {
	case c.PokeAPI.BaseURL == "":
		return errors.New("pokeapi.base_url must not be empty")
	case c.PokeAPI.Timeout <= 0:
		return errors.New("pokeapi.timeout must be positive")
	case c.Cache.TTL <= 0:
		return errors.New("cache.ttl must be positive")
	case c.Cache.SweepInterval <= 0:
		return errors.New("cache.sweep_interval must be positive")
	case c.Pagination.DefaultLimit < 1 || c.Pagination.MaxLimit < 1:
		return errors.New("pagination limits must be positive")
	case c.Pagination.DefaultLimit > c.Pagination.MaxLimit:
		return errors.New("pagination.default_limit cannot exceed pagination.max_limit")
	case c.Pokemon.MinID < 1 || c.Pokemon.MinID > c.Pokemon.MaxID:
		return errors.New("pokemon.min_id must be positive and not exceed pokemon.max_id")
	case c.Service.Fanout < 1:
		return errors.New("service.fanout must be positive")
	case c.Journal.Retention < 1:
		return errors.New("journal.retention must be positive")
	}
	return nil
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/couchcryptid/volcano-globe-api/internal/domain"
)

const (
	defaultCatalogURL  = "https://webservices.volcano.si.edu/geoserver/GVP-VOTW/ows?service=WFS&version=2.0.0&request=GetFeature&typeName=GVP-VOTW:Smithsonian_VOTW_Holocene_Volcanoes&outputFormat=json"
	defaultEruptionURL = "https://webservices.volcano.si.edu/geoserver/GVP-VOTW/ows?service=WFS&version=2.0.0&request=GetFeature&typeName=GVP-VOTW:Smithsonian_VOTW_Current_Eruptions&outputFormat=json"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// GVP upstream endpoints and fetch bound.
	CatalogURL   string        `env:"CATALOG_URL"`
	EruptionURL  string        `env:"ERUPTION_URL"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`

	// Cache windows. The catalog changes rarely; eruptions churn faster.
	CatalogTTL  time.Duration `env:"CATALOG_TTL" envDefault:"6h"`
	EruptionTTL time.Duration `env:"ERUPTION_TTL" envDefault:"30m"`

	// Optional JSON file overriding the built-in status watchlists.
	WatchlistFile string `env:"WATCHLIST_FILE"`
}

// Load reads configuration from environment variables, applying defaults where
// unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.CatalogURL == "" {
		cfg.CatalogURL = defaultCatalogURL
	}
	if cfg.EruptionURL == "" {
		cfg.EruptionURL = defaultEruptionURL
	}

	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.FetchTimeout <= 0 {
		return nil, errors.New("FETCH_TIMEOUT must be positive")
	}
	if cfg.CatalogTTL <= 0 {
		return nil, errors.New("CATALOG_TTL must be positive")
	}
	if cfg.EruptionTTL <= 0 {
		return nil, errors.New("ERUPTION_TTL must be positive")
	}

	return cfg, nil
}

// Watchlists returns the configured status watchlists: the contents of
// WatchlistFile when set, the built-in defaults otherwise.
func (c *Config) Watchlists() (domain.Watchlists, error) {
	if c.WatchlistFile == "" {
		return domain.DefaultWatchlists(), nil
	}

	data, err := os.ReadFile(c.WatchlistFile)
	if err != nil {
		return domain.Watchlists{}, fmt.Errorf("read watchlist file: %w", err)
	}

	var lists domain.Watchlists
	if err := json.Unmarshal(data, &lists); err != nil {
		return domain.Watchlists{}, fmt.Errorf("parse watchlist file %s: %w", c.WatchlistFile, err)
	}
	return lists, nil
}

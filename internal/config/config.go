// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Xuanwo/go-locale"
	"github.com/kkyr/fig"
)

const (
	configEnv = "GEOSEARCH"

	ProviderNominatim = "nominatim"
	ProviderOpenCage  = "opencage"

	// Nominatim returns at most 40 places per search
	maxLimit = 40

	DefaultSelectionTpl = "{{loc \"selected\"}}: {{.Label}}\n" +
		"{{loc \"coordinates\"}}: {{floatFormat .Lat 5}}, {{floatFormat .Lng 5}}\n" +
		"{{loc \"searcharea\"}}: {{if .Area.Rect}}{{floatFormat .Area.Rect.LatMin 4}}, {{floatFormat .Area.Rect.LngMin 4}}" +
		" - {{floatFormat .Area.Rect.LatMax 4}}, {{floatFormat .Area.Rect.LngMax 4}}{{else}}{{.Area.Query}}{{end}}\n"
)

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Geocoder struct {
		// Allowed values: nominatim, opencage
		Provider string `fig:"provider" default:"nominatim"`
		// Base URL of the Nominatim API, the OpenCage provider always uses its public API
		Endpoint  string        `fig:"endpoint" default:"https://nominatim.openstreetmap.org/"`
		UserAgent string        `fig:"user_agent"`
		APIKey    string        `fig:"apikey"`
		Timeout   time.Duration `fig:"timeout" default:"10s"`
		// Allowed values: 1 to 40
		Limit int `fig:"limit" default:"10"`
		// Requests per second sent to the provider
		RateLimit float64 `fig:"rate_limit" default:"1"`
	} `fig:"geocoder"`

	Search struct {
		Debounce       time.Duration `fig:"debounce" default:"1s"`
		DisableRegions bool          `fig:"disable_regions"`
		FullNames      bool          `fig:"full_names"`
	} `fig:"search"`

	Templates struct {
		Selection string `fig:"selection"`
	} `fig:"templates"`

	Cache struct {
		HitTTL  time.Duration `fig:"hit_ttl" default:"24h"`
		MissTTL time.Duration `fig:"miss_ttl" default:"1h"`
	} `fig:"cache"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	if c.Locale == "" {
		c.Locale = getLocale()
	}
	switch c.Geocoder.Provider {
	case ProviderNominatim:
	case ProviderOpenCage:
		if c.Geocoder.APIKey == "" {
			return fmt.Errorf("geocoder provider %s requires an API key", c.Geocoder.Provider)
		}
	default:
		return fmt.Errorf("invalid geocoder provider: %s", c.Geocoder.Provider)
	}
	if endpoint, err := url.Parse(c.Geocoder.Endpoint); err != nil || endpoint.Scheme == "" || endpoint.Host == "" {
		return fmt.Errorf("invalid geocoder endpoint: %q", c.Geocoder.Endpoint)
	}
	if c.Geocoder.Limit < 1 || c.Geocoder.Limit > maxLimit {
		return fmt.Errorf("invalid geocoder limit: %d", c.Geocoder.Limit)
	}
	if c.Geocoder.Timeout <= 0 {
		return fmt.Errorf("invalid geocoder timeout: %s", c.Geocoder.Timeout)
	}
	if c.Geocoder.RateLimit < 0 {
		return fmt.Errorf("invalid geocoder rate limit: %g", c.Geocoder.RateLimit)
	}
	if c.Search.Debounce <= 0 {
		return fmt.Errorf("invalid search debounce: %s", c.Search.Debounce)
	}
	if c.Templates.Selection == "" {
		c.Templates.Selection = DefaultSelectionTpl
	}
	if c.Cache.HitTTL <= 0 || c.Cache.MissTTL <= 0 {
		return fmt.Errorf("invalid cache TTLs: %s/%s", c.Cache.HitTTL, c.Cache.MissTTL)
	}

	return nil
}

func getLocale() string {
	if tag, err := locale.Detect(); err == nil {
		return tag.String()
	}
	loc := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(loc, "."); idx != -1 {
		lang := loc[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return loc
}

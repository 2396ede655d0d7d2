package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ProviderConfig holds credentials and the per-minute request budget for one
// upstream event API. A provider with an empty key is disabled.
type ProviderConfig struct {
	APIKey            string `yaml:"api_key"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

type ProvidersConfig struct {
	Ticketmaster ProviderConfig `yaml:"ticketmaster"`
	Eventbrite   ProviderConfig `yaml:"eventbrite"`
	PredictHQ    ProviderConfig `yaml:"predicthq"`
	RapidAPI     ProviderConfig `yaml:"rapidapi"`
}

type CacheConfig struct {
	Backend     string        `yaml:"backend"` // "memory" or "redis"
	RedisAddr   string        `yaml:"redis_addr"`
	MaxEntries  int           `yaml:"max_entries"`
	SearchTTL   time.Duration `yaml:"search_ttl"`
	FeaturedTTL time.Duration `yaml:"featured_ttl"`
}

type GeoConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	JWTIssuer   string        `yaml:"jwt_issuer"`
	JWTDuration time.Duration `yaml:"jwt_duration"`
}

type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	SyncAddr string `yaml:"sync_addr"` // TCP live-update feed
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Cache     CacheConfig     `yaml:"cache"`
	Geo       GeoConfig       `yaml:"geo"`
	Auth      AuthConfig      `yaml:"auth"`
	DBPath    string          `yaml:"db_path"`

	// FeaturedRefresh is a cron spec for the background featured-listings
	// refresh. Empty disables the job.
	FeaturedRefresh string `yaml:"featured_refresh"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return Config{
		Server: ServerConfig{
			HTTPAddr: ":8080",
			SyncAddr: ":7070",
		},
		Providers: ProvidersConfig{
			Ticketmaster: ProviderConfig{RequestsPerMinute: 30},
			Eventbrite:   ProviderConfig{RequestsPerMinute: 30},
			PredictHQ:    ProviderConfig{RequestsPerMinute: 20},
			RapidAPI:     ProviderConfig{RequestsPerMinute: 20},
		},
		Cache: CacheConfig{
			Backend:     "memory",
			MaxEntries:  1024,
			SearchTTL:   5 * time.Minute,
			FeaturedTTL: 15 * time.Minute,
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-secret-change-me",
			JWTIssuer:   "eventscout",
			JWTDuration: 24 * time.Hour,
		},
		DBPath:          filepath.Join(home, ".eventscout", "data.db"),
		FeaturedRefresh: "@every 15m",
	}
}

// Load reads the YAML file at path (if non-empty) on top of the defaults,
// then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.Cache.Backend != "memory" && cfg.Cache.Backend != "redis" {
		return cfg, fmt.Errorf("cache backend must be memory or redis, got %q", cfg.Cache.Backend)
	}
	return cfg, nil
}

// applyEnv lets deployment environments override secrets and addresses
// without touching the config file.
func (c *Config) applyEnv() {
	setStr := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setStr(&c.Providers.Ticketmaster.APIKey, "EVENTSCOUT_TICKETMASTER_KEY")
	setStr(&c.Providers.Eventbrite.APIKey, "EVENTSCOUT_EVENTBRITE_TOKEN")
	setStr(&c.Providers.PredictHQ.APIKey, "EVENTSCOUT_PREDICTHQ_TOKEN")
	setStr(&c.Providers.RapidAPI.APIKey, "EVENTSCOUT_RAPIDAPI_KEY")
	setStr(&c.Geo.Token, "EVENTSCOUT_GEOCODER_TOKEN")
	setStr(&c.Auth.JWTSecret, "EVENTSCOUT_JWT_SECRET")
	setStr(&c.Auth.JWTIssuer, "EVENTSCOUT_JWT_ISSUER")
	setStr(&c.DBPath, "EVENTSCOUT_DB_PATH")
	setStr(&c.Server.HTTPAddr, "EVENTSCOUT_HTTP_ADDR")
	setStr(&c.Server.SyncAddr, "EVENTSCOUT_SYNC_ADDR")
	setStr(&c.Cache.RedisAddr, "EVENTSCOUT_REDIS_ADDR")

	if v := os.Getenv("EVENTSCOUT_CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("EVENTSCOUT_JWT_TTL_HOURS"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h > 0 {
			c.Auth.JWTDuration = time.Duration(h) * time.Hour
		}
	}
}

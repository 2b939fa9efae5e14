package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Links   LinksConfig   `yaml:"links" mapstructure:"links"`
	Resolve ResolveConfig `yaml:"resolve" mapstructure:"resolve"`
	Google  GoogleConfig  `yaml:"google" mapstructure:"google"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// GoogleConfig holds Custom Search API credentials for the company-page
// search fallback. Both fields empty disables the fallback.
type GoogleConfig struct {
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	SearchCX string `yaml:"search_cx" mapstructure:"search_cx"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver        string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL   string `yaml:"database_url" mapstructure:"database_url"`
	CacheTTLHours int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// CacheTTL returns the page cache retention as a duration.
func (c StoreConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	MaxRetries     int     `yaml:"max_retries" mapstructure:"max_retries"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	MaxBodyBytes   int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// Timeout returns the configured request timeout as a duration.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// LinksConfig holds the static domain tables for link classification.
// Matching is by substring containment against the URL host: aggregator
// and social providers use many subdomains and regional TLD variants, so
// fragment containment deliberately trades precision for recall.
type LinksConfig struct {
	AggregatorServices []string            `yaml:"aggregator_services" mapstructure:"aggregator_services"`
	SocialPlatforms    map[string][]string `yaml:"social_platforms" mapstructure:"social_platforms"`
}

// ResolveConfig configures the enrichment orchestration.
type ResolveConfig struct {
	MaxLinks           int    `yaml:"max_links" mapstructure:"max_links"`
	MaxSecondaryPages  int    `yaml:"max_secondary_pages" mapstructure:"max_secondary_pages"`
	MaxWorkers         int    `yaml:"max_workers" mapstructure:"max_workers"`
	PhoneRegion        string `yaml:"phone_region" mapstructure:"phone_region"`
	SupplementPlatform string `yaml:"supplement_platform" mapstructure:"supplement_platform"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// defaultAggregatorServices lists the known link-in-bio service domains.
var defaultAggregatorServices = []string{
	"linktr.ee",
	"linktree.com",
	"bio.link",
	"beacons.ai",
	"hoo.be",
	"solo.to",
	"allmylinks.com",
	"carrd.co",
	"taplink.cc",
	"linkpop.com",
	"shorby.com",
	"campsite.bio",
}

// defaultSocialPlatforms maps platform name to host fragments.
var defaultSocialPlatforms = map[string][]string{
	"linkedin":  {"linkedin.com"},
	"facebook":  {"facebook.com", "fb.com", "fb.me"},
	"twitter":   {"twitter.com", "x.com"},
	"youtube":   {"youtube.com", "youtu.be"},
	"tiktok":    {"tiktok.com"},
	"pinterest": {"pinterest.com"},
	"instagram": {"instagram.com"},
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CONTACTSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "contact-scout.db")
	v.SetDefault("store.cache_ttl_hours", 24)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("fetch.timeout_secs", 10)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.requests_per_sec", 4.0)
	v.SetDefault("fetch.max_body_bytes", int64(2*1024*1024))
	v.SetDefault("links.aggregator_services", defaultAggregatorServices)
	v.SetDefault("links.social_platforms", defaultSocialPlatforms)
	v.SetDefault("resolve.max_links", 20)
	v.SetDefault("resolve.max_secondary_pages", 10)
	v.SetDefault("resolve.max_workers", 5)
	v.SetDefault("resolve.phone_region", "US")
	v.SetDefault("resolve.supplement_platform", "facebook")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

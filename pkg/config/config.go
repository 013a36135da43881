package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Fetch struct {
		Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Per-feed fetch timeout"`
		Retries     int           `yaml:"retries" json:"retries" jsonschema:"default=0,description=Number of retries after a failed fetch"`
		Concurrency int           `yaml:"concurrency" json:"concurrency" jsonschema:"default=4,description=Maximum feeds fetched in parallel"`
		MaxItems    int           `yaml:"max_items" json:"max_items" jsonschema:"default=10,description=Maximum items taken from each feed"`
		UserAgent   string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=feedhaul/1.0,description=User agent for feed requests"`
	} `yaml:"fetch" json:"fetch" jsonschema:"description=Feed fetching configuration"`

	State struct {
		Path   string        `yaml:"path" json:"path" jsonschema:"default=feedhaul-state.json,description=Path to the run state file"`
		Window time.Duration `yaml:"window" json:"window" jsonschema:"default=24h,description=Recency window used when no usable state exists"`
	} `yaml:"state" json:"state" jsonschema:"description=Run state configuration"`

	Identity string `yaml:"identity" json:"identity" jsonschema:"enum=link,enum=hash,default=link,description=Item identity derivation mode"`

	Feeds []Feed `yaml:"feeds" json:"feeds" jsonschema:"required,description=Feeds to process"`

	Sinks Sinks `yaml:"sinks" json:"sinks" jsonschema:"description=Output sink configuration"`
}

// Feed describes a single feed subscription
type Feed struct {
	Name     string `yaml:"name" json:"name" jsonschema:"description=Display name (defaults to the URL host)"`
	URL      string `yaml:"url" json:"url" jsonschema:"required,description=Feed URL"`
	Category string `yaml:"category" json:"category" jsonschema:"default=General,description=Category assigned to items from this feed"`
}

// Sinks groups all output destinations, each can be toggled independently
type Sinks struct {
	JSON      FileSink      `yaml:"json" json:"json" jsonschema:"description=JSON file output"`
	CSV       FileSink      `yaml:"csv" json:"csv" jsonschema:"description=CSV file output"`
	HTML      HTMLSink      `yaml:"html" json:"html" jsonschema:"description=HTML digest output"`
	Collector CollectorSink `yaml:"collector" json:"collector" jsonschema:"description=Remote collection API output"`
	Archive   ArchiveSink   `yaml:"archive" json:"archive" jsonschema:"description=Local database archive output"`
}

// FileSink holds settings shared by plain file outputs
type FileSink struct {
	Enabled bool   `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable this sink"`
	Path    string `yaml:"path" json:"path" jsonschema:"description=Output file path"`
}

// HTMLSink holds settings for the HTML digest output
type HTMLSink struct {
	Enabled bool   `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable this sink"`
	Path    string `yaml:"path" json:"path" jsonschema:"description=Output file path"`
	Title   string `yaml:"title" json:"title" jsonschema:"default=Feed Digest,description=Page title of the generated digest"`
}

// CollectorSink holds settings for the remote collection API
type CollectorSink struct {
	Enabled   bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable this sink"`
	Endpoint  string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=Collection API endpoint URL"`
	AuthKey   string        `yaml:"auth_key" json:"auth_key" jsonschema:"description=API key (can use environment variable)"`
	AccountID string        `yaml:"account_id" json:"account_id" jsonschema:"description=Account identifier sent with each request"`
	SiteID    string        `yaml:"site_id" json:"site_id" jsonschema:"description=Site identifier sent with each request"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=15s,description=Per-request timeout"`
}

// ArchiveSink holds settings for the local database archive
type ArchiveSink struct {
	Enabled         bool   `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable this sink"`
	DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:feedhaul.db?cache=shared&mode=rwc,description=Database connection string"`
	MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
	MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// set defaults for fetch
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 30 * time.Second
	}
	if cfg.Fetch.Concurrency == 0 {
		cfg.Fetch.Concurrency = 4
	}
	if cfg.Fetch.MaxItems == 0 {
		cfg.Fetch.MaxItems = 10
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "feedhaul/1.0"
	}

	// set defaults for state
	if cfg.State.Path == "" {
		cfg.State.Path = "feedhaul-state.json"
	}
	if cfg.State.Window == 0 {
		cfg.State.Window = 24 * time.Hour
	}

	if cfg.Identity == "" {
		cfg.Identity = "link"
	}

	// set defaults for feeds
	for i := range cfg.Feeds {
		if cfg.Feeds[i].Name == "" {
			cfg.Feeds[i].Name = hostName(cfg.Feeds[i].URL)
		}
		if cfg.Feeds[i].Category == "" {
			cfg.Feeds[i].Category = "General"
		}
	}

	// set defaults for sinks
	if cfg.Sinks.HTML.Title == "" {
		cfg.Sinks.HTML.Title = "Feed Digest"
	}
	if cfg.Sinks.Collector.Timeout == 0 {
		cfg.Sinks.Collector.Timeout = 15 * time.Second
	}
	if cfg.Sinks.Archive.DSN == "" {
		cfg.Sinks.Archive.DSN = "file:feedhaul.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Sinks.Archive.MaxOpenConns == 0 {
		cfg.Sinks.Archive.MaxOpenConns = 10
	}
	if cfg.Sinks.Archive.MaxIdleConns == 0 {
		cfg.Sinks.Archive.MaxIdleConns = 5
	}
	if cfg.Sinks.Archive.ConnMaxLifetime == 0 {
		cfg.Sinks.Archive.ConnMaxLifetime = 3600
	}

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// validate checks configuration for correctness
func validate(cfg *Config) error {

	// validate fetch config
	if cfg.Fetch.Timeout < time.Second {
		return fmt.Errorf("fetch.timeout must be at least 1 second")
	}
	if cfg.Fetch.Retries < 0 {
		return fmt.Errorf("fetch.retries must be non-negative")
	}
	if cfg.Fetch.Concurrency < 1 {
		return fmt.Errorf("fetch.concurrency must be at least 1")
	}
	if cfg.Fetch.MaxItems < 1 {
		return fmt.Errorf("fetch.max_items must be at least 1")
	}

	if cfg.Identity != "link" && cfg.Identity != "hash" {
		return fmt.Errorf("identity must be either %q or %q, got %q", "link", "hash", cfg.Identity)
	}

	// validate feeds
	if len(cfg.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}
	for i, f := range cfg.Feeds {
		if f.URL == "" {
			return fmt.Errorf("feeds[%d]: url is required", i)
		}
		u, err := url.Parse(f.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("feeds[%d]: invalid url %q", i, f.URL)
		}
	}

	// validate sinks
	if cfg.Sinks.JSON.Enabled && cfg.Sinks.JSON.Path == "" {
		return fmt.Errorf("sinks.json.path is required when the json sink is enabled")
	}
	if cfg.Sinks.CSV.Enabled && cfg.Sinks.CSV.Path == "" {
		return fmt.Errorf("sinks.csv.path is required when the csv sink is enabled")
	}
	if cfg.Sinks.HTML.Enabled && cfg.Sinks.HTML.Path == "" {
		return fmt.Errorf("sinks.html.path is required when the html sink is enabled")
	}
	if cfg.Sinks.Collector.Enabled {
		if cfg.Sinks.Collector.Endpoint == "" {
			return fmt.Errorf("sinks.collector.endpoint is required when the collector sink is enabled")
		}
		if cfg.Sinks.Collector.AuthKey == "" {
			return fmt.Errorf("sinks.collector.auth_key is required when the collector sink is enabled")
		}
		if cfg.Sinks.Collector.Timeout < time.Second {
			return fmt.Errorf("sinks.collector.timeout must be at least 1 second")
		}
	}

	return nil
}

// hostName extracts the host part of a URL for use as a feed name
func hostName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BAPNuSigma/StockAI/internal/indicators"
)

// Config is the complete pipeline configuration. Credentials, base URLs,
// indicator windows and cache TTL are all supplied here; the pipeline itself
// owns none of them.
type Config struct {
	Providers  map[string]ProviderConfig `yaml:"providers"`
	Aggregator AggregatorConfig          `yaml:"aggregator"`
	Indicators indicators.Config         `yaml:"indicators"`
	Report     ReportConfig              `yaml:"report"`
	Server     ServerConfig              `yaml:"server"`
}

// ProviderConfig holds one provider's credentials and limits. The api_key
// field supports ${ENV_VAR} expansion so keys stay out of the file.
type ProviderConfig struct {
	Enabled   bool    `yaml:"enabled"`
	BaseURL   string  `yaml:"base_url"`
	APIKey    string  `yaml:"api_key"`
	APISecret string  `yaml:"api_secret"`
	RPS       float64 `yaml:"rps"`
	Burst     int     `yaml:"burst"`
	TimeoutMS int     `yaml:"timeout_ms"`
}

// Timeout returns the per-call timeout
func (p ProviderConfig) Timeout() time.Duration {
	if p.TimeoutMS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(p.TimeoutMS) * time.Millisecond
}

// AggregatorConfig sets provider priority per capability and the per-build
// cache TTL
type AggregatorConfig struct {
	CacheTTLSecs int                 `yaml:"cache_ttl_secs"`
	Chains       map[string][]string `yaml:"chains"`
}

// CacheTTL returns the cache time-to-live
func (a AggregatorConfig) CacheTTL() time.Duration {
	if a.CacheTTLSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(a.CacheTTLSecs) * time.Second
}

// ReportConfig sets report build defaults
type ReportConfig struct {
	RangeYears int    `yaml:"range_years"`
	Resolution string `yaml:"resolution"`
	NewsLimit  int    `yaml:"news_limit"`
	OutputDir  string `yaml:"output_dir"`
}

// ServerConfig sets the HTTP surface
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Default returns the documented default configuration
func Default() *Config {
	return &Config{
		Providers: map[string]ProviderConfig{
			"alpaca": {
				Enabled:   true,
				APIKey:    "${ALPACA_API_KEY}",
				APISecret: "${ALPACA_SECRET_KEY}",
				RPS:       3,
				Burst:     6,
				TimeoutMS: 10000,
			},
			"alphavantage": {
				Enabled:   true,
				APIKey:    "${ALPHA_VANTAGE_API_KEY}",
				RPS:       0.5,
				Burst:     2,
				TimeoutMS: 15000,
			},
			"fmp": {
				Enabled:   true,
				APIKey:    "${FMP_API_KEY}",
				RPS:       1,
				Burst:     3,
				TimeoutMS: 10000,
			},
			"tiingo": {
				Enabled:   true,
				APIKey:    "${TIINGO_API_KEY}",
				RPS:       1,
				Burst:     3,
				TimeoutMS: 10000,
			},
		},
		Aggregator: AggregatorConfig{
			CacheTTLSecs: 60,
			Chains: map[string][]string{
				"price_history": {"alpaca", "alphavantage", "tiingo"},
				"quote":         {"alpaca"},
				"fundamentals":  {"fmp"},
				"profile":       {"alphavantage"},
				"news":          {"tiingo"},
			},
		},
		Indicators: indicators.DefaultConfig(),
		Report: ReportConfig{
			RangeYears: 5,
			Resolution: "1d",
			NewsLimit:  10,
			OutputDir:  "out",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
	}
}

// Load reads a YAML config file over the defaults and validates the result.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.expandEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// expandEnv resolves ${ENV_VAR} references in credential fields
func (c *Config) expandEnv() {
	for name, p := range c.Providers {
		p.APIKey = os.Expand(p.APIKey, os.Getenv)
		p.APISecret = os.Expand(p.APISecret, os.Getenv)
		c.Providers[name] = p
	}
}

// Validate checks chain references and provider limits
func (c *Config) Validate() error {
	for name, p := range c.Providers {
		if !p.Enabled {
			continue
		}
		if p.RPS <= 0 {
			return fmt.Errorf("provider %s: rps must be positive, got %g", name, p.RPS)
		}
		if p.TimeoutMS < 0 {
			return fmt.Errorf("provider %s: timeout_ms cannot be negative", name)
		}
	}

	if len(c.Aggregator.Chains) == 0 {
		return fmt.Errorf("aggregator: at least one capability chain is required")
	}
	for cap, chain := range c.Aggregator.Chains {
		if len(chain) == 0 {
			return fmt.Errorf("aggregator: chain for %s is empty", cap)
		}
		for _, name := range chain {
			p, ok := c.Providers[name]
			if !ok {
				return fmt.Errorf("aggregator: chain for %s references unknown provider %s", cap, name)
			}
			if !p.Enabled {
				return fmt.Errorf("aggregator: chain for %s references disabled provider %s", cap, name)
			}
		}
	}

	if c.Report.RangeYears <= 0 {
		return fmt.Errorf("report: range_years must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server: port %d out of range", c.Server.Port)
	}
	return nil
}

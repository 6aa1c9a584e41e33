// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/contact-scraper/internal/writer"
)

// Config captures all scraper configuration knobs loaded via Viper.
type Config struct {
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	UserAgent UserAgentConfig `mapstructure:"useragent"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	Output    OutputConfig    `mapstructure:"output"`
	Errors    ErrorsConfig    `mapstructure:"errors"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ScraperConfig governs pacing, retries, and parallelism.
type ScraperConfig struct {
	DelayMin    time.Duration `mapstructure:"delay_min"`
	DelayMax    time.Duration `mapstructure:"delay_max"`
	MaxRetries  int           `mapstructure:"max_retries"`
	BackoffUnit time.Duration `mapstructure:"backoff_unit"`
	BackoffMax  time.Duration `mapstructure:"backoff_max"`
	Deadline    time.Duration `mapstructure:"deadline"`
	Concurrency int           `mapstructure:"concurrency"`
}

// HTTPConfig configures each request.
type HTTPConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	AcceptLanguage string        `mapstructure:"accept_language"`
	Referer        string        `mapstructure:"referer"`
}

// UserAgentConfig points at an optional dynamic user agent catalogue.
type UserAgentConfig struct {
	CatalogURL     string        `mapstructure:"catalog_url"`
	CatalogTimeout time.Duration `mapstructure:"catalog_timeout"`
}

// ExtractConfig tunes the extraction engine.
type ExtractConfig struct {
	SocialPlatforms []string `mapstructure:"social_platforms"`
}

// OutputConfig sets where and how records are written.
type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
}

// ErrorsConfig locates the append-only error log.
type ErrorsConfig struct {
	LogPath string `mapstructure:"log_path"`
}

// MetricsConfig enables a Prometheus textfile export after each run.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from defaults, an optional file, and SCRAPER_* env vars.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scraper.delay_min", "1s")
	v.SetDefault("scraper.delay_max", "3s")
	v.SetDefault("scraper.max_retries", 3)
	v.SetDefault("scraper.backoff_unit", "1s")
	v.SetDefault("scraper.backoff_max", "0s")
	v.SetDefault("scraper.deadline", "0s")
	v.SetDefault("scraper.concurrency", 1)
	v.SetDefault("http.timeout", "10s")
	v.SetDefault("http.accept_language", "en-US,en;q=0.5")
	v.SetDefault("http.referer", "https://www.google.com/")
	v.SetDefault("useragent.catalog_url", "")
	v.SetDefault("useragent.catalog_timeout", "5s")
	v.SetDefault("extract.social_platforms", []string{"facebook", "twitter", "linkedin", "instagram"})
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.format", string(writer.FormatJSON))
	v.SetDefault("errors.log_path", "error_log.txt")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scraper.DelayMin < 0 {
		return fmt.Errorf("scraper.delay_min must be >= 0")
	}
	if c.Scraper.DelayMax < c.Scraper.DelayMin {
		return fmt.Errorf("scraper.delay_max must be >= scraper.delay_min")
	}
	if c.Scraper.MaxRetries < 0 {
		return fmt.Errorf("scraper.max_retries must be >= 0")
	}
	if c.Scraper.BackoffUnit <= 0 {
		return fmt.Errorf("scraper.backoff_unit must be > 0")
	}
	if c.Scraper.BackoffMax < 0 {
		return fmt.Errorf("scraper.backoff_max must be >= 0")
	}
	if c.Scraper.Deadline < 0 {
		return fmt.Errorf("scraper.deadline must be >= 0")
	}
	if c.Scraper.Concurrency <= 0 {
		return fmt.Errorf("scraper.concurrency must be > 0")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be > 0")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must be set")
	}
	if _, err := writer.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if c.Errors.LogPath == "" {
		return fmt.Errorf("errors.log_path must be set")
	}
	return nil
}

// RequestHeaders returns the fixed locale/referrer headers sent with every attempt.
func (c Config) RequestHeaders() http.Header {
	h := http.Header{}
	if c.HTTP.AcceptLanguage != "" {
		h.Set("Accept-Language", c.HTTP.AcceptLanguage)
	}
	if c.HTTP.Referer != "" {
		h.Set("Referer", c.HTTP.Referer)
	}
	return h
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// Config holds the crawl configuration values.
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Target site
	BaseURL      string
	SearchFormat string
	VerifyPath   string
	CookieDomain string

	// Browser
	UserAgent  string
	Headless   bool
	ChromePath string
	Proxy      string

	// Crawl bounds and pacing
	MaxItems     int
	MaxOptions   int
	ScrollRounds int
	Workers      int
	NavRateRPS   float64
	NavRateBurst int

	// Waits
	NavTimeout    time.Duration
	FieldTimeout  time.Duration
	AnchorTimeout time.Duration
	SettleDelay   time.Duration
	SearchSettle  time.Duration
	ScrollDelay   time.Duration
}

// Load builds a Config by combining defaults, environment variables, and
// CLI flags. Caller should pass the command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:      DefaultLogLevel,
		JSONLog:       DefaultJSONLog,
		BaseURL:       DefaultBaseURL,
		SearchFormat:  DefaultSearchFormat,
		VerifyPath:    DefaultVerifyPath,
		CookieDomain:  DefaultCookieDomain,
		UserAgent:     DefaultUserAgent,
		Headless:      DefaultHeadless,
		MaxItems:      DefaultMaxItems,
		MaxOptions:    DefaultMaxOptions,
		ScrollRounds:  DefaultScrollRounds,
		Workers:       1,
		NavRateRPS:    DefaultNavRateRPS,
		NavRateBurst:  DefaultNavRateBurst,
		NavTimeout:    DefaultNavTimeout,
		FieldTimeout:  DefaultFieldTimeout,
		AnchorTimeout: DefaultAnchorTimeout,
		SettleDelay:   DefaultSettleDelay,
		SearchSettle:  DefaultSearchSettle,
		ScrollDelay:   DefaultScrollDelay,
	}

	// Environment overrides
	if v := os.Getenv("YEOSHIN_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("YEOSHIN_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("YEOSHIN_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("YEOSHIN_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxItems = n
		}
	}

	// CLI flags, when registered on the command
	if cmd != nil {
		if f := cmd.Flags().Lookup("user-agent"); f != nil && f.Value.String() != "" {
			cfg.UserAgent = f.Value.String()
		}
		if f := cmd.Flags().Lookup("proxy"); f != nil && f.Value.String() != "" {
			cfg.Proxy = f.Value.String()
		}
		if f := cmd.Flags().Lookup("timeout"); f != nil && f.Value.String() != "" {
			if d, err := time.ParseDuration(f.Value.String()); err == nil {
				cfg.NavTimeout = d
			}
		}
		if f := cmd.Flags().Lookup("max-items"); f != nil {
			if n, err := strconv.Atoi(f.Value.String()); err == nil && n > 0 {
				cfg.MaxItems = n
			}
		}
		if f := cmd.Flags().Lookup("pooled"); f != nil && f.Value.String() == "true" {
			cfg.Workers = DefaultWorkers
		}
		// An explicit --workers wins over --pooled.
		if f := cmd.Flags().Lookup("workers"); f != nil && f.Changed {
			if n, err := strconv.Atoi(f.Value.String()); err == nil && n > 0 {
				cfg.Workers = n
			}
		}
		if f := cmd.Flags().Lookup("headful"); f != nil && f.Value.String() == "true" {
			cfg.Headless = false
		}
		if f := cmd.Flags().Lookup("json"); f != nil && f.Value.String() == "true" {
			cfg.JSONLog = true
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil && f.Value.String() == "true" {
			cfg.LogLevel = "debug"
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SearchURL returns the keyword-filtered listing URL.
func (c *Config) SearchURL(keyword string) string {
	return fmt.Sprintf(c.SearchFormat, url.QueryEscape(keyword))
}

// VerifyURL returns the authenticated-only page used by login verification.
func (c *Config) VerifyURL() string {
	return c.BaseURL + c.VerifyPath
}

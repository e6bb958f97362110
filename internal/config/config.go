// Package config provides configuration management for the site mirror.
// It defines configuration structures and default values for mirroring parameters.
package config

import (
	"net/url"
	"path"
	"strings"
	"time"
)

// MirrorConfig holds site-mirroring configuration
type MirrorConfig struct {
	// Crawl scope
	StartURL   string `mapstructure:"start_url" yaml:"start_url"`     // Crawl root and base for path-prefix derivation
	PathPrefix string `mapstructure:"path_prefix" yaml:"path_prefix"` // URL path prefix restricting crawl scope
	MaxPages   int    `mapstructure:"max_pages" yaml:"max_pages"`     // Stop after N pages (0=unlimited)

	// Rendering
	SettleDelay   time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`     // Wait after page load before capturing DOM
	RenderTimeout time.Duration `mapstructure:"render_timeout" yaml:"render_timeout"` // Per-page navigation timeout

	// Asset fetching
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"` // Per-asset HTTP timeout
	RequestDelay   time.Duration `mapstructure:"request_delay" yaml:"request_delay"`     // Delay between fetches
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`           // HTTP User-Agent header
	Headers        []string      `mapstructure:"headers" yaml:"headers"`                 // Extra headers in "Name: Value" form

	// Output
	OutputDir    string `mapstructure:"output_dir" yaml:"output_dir"`       // Root directory of the mirror
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"` // Path to the crawl manifest database

	// Logging
	LogLevel string `mapstructure:"log_level" yaml:"log_level"` // debug, info, warn, error
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`   // Optional log file ("" = console only)
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *MirrorConfig {
	return &MirrorConfig{
		MaxPages:       50,
		SettleDelay:    1500 * time.Millisecond,
		RenderTimeout:  45 * time.Second,
		RequestTimeout: 30 * time.Second,
		RequestDelay:   100 * time.Millisecond,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36",
		OutputDir:      "./mirror",
		LogLevel:       "info",
	}
}

// Validate checks if the configuration is valid
func (c *MirrorConfig) Validate() error {
	if c.StartURL == "" {
		return ErrNoStartURL
	}

	u, err := url.Parse(c.StartURL)
	if err != nil || u.Host == "" {
		return ErrInvalidStartURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidStartURL
	}

	if c.RenderTimeout <= 0 {
		return ErrInvalidRenderTimeout
	}

	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.OutputDir == "" {
		return ErrEmptyOutputDir
	}

	if c.MaxPages < 0 {
		return ErrInvalidPageLimit
	}

	return nil
}

// ApplyDefaults fills derived settings that depend on other values.
// The path prefix defaults to the directory of the start URL's path, and
// the manifest database lives under the output directory unless set.
func (c *MirrorConfig) ApplyDefaults() {
	if c.PathPrefix == "" {
		c.PathPrefix = DerivePathPrefix(c.StartURL)
	}
	if c.DatabasePath == "" {
		c.DatabasePath = path.Join(c.OutputDir, "mirror.db")
	}
}

// DerivePathPrefix returns the crawl scope implied by a start URL:
// the URL's path up to and including its last slash.
func DerivePathPrefix(startURL string) string {
	u, err := url.Parse(startURL)
	if err != nil {
		return "/"
	}

	p := u.Path
	if p == "" {
		return "/"
	}
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p[:strings.LastIndex(p, "/")+1]
}

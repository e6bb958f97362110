package config

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxPages != 50 {
		t.Errorf("Expected default max pages 50, got %d", cfg.MaxPages)
	}
	if cfg.RenderTimeout != 45*time.Second {
		t.Errorf("Expected default render timeout 45s, got %v", cfg.RenderTimeout)
	}
	if cfg.OutputDir != "./mirror" {
		t.Errorf("Expected default output dir ./mirror, got %s", cfg.OutputDir)
	}
	if cfg.SettleDelay != 1500*time.Millisecond {
		t.Errorf("Expected default settle delay 1.5s, got %v", cfg.SettleDelay)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*MirrorConfig)
		wantErr error
	}{
		{
			name:    "valid config",
			modify:  func(c *MirrorConfig) {},
			wantErr: nil,
		},
		{
			name:    "missing start URL",
			modify:  func(c *MirrorConfig) { c.StartURL = "" },
			wantErr: ErrNoStartURL,
		},
		{
			name:    "non-http scheme",
			modify:  func(c *MirrorConfig) { c.StartURL = "ftp://example.test/" },
			wantErr: ErrInvalidStartURL,
		},
		{
			name:    "missing host",
			modify:  func(c *MirrorConfig) { c.StartURL = "https:///nothing" },
			wantErr: ErrInvalidStartURL,
		},
		{
			name:    "zero render timeout",
			modify:  func(c *MirrorConfig) { c.RenderTimeout = 0 },
			wantErr: ErrInvalidRenderTimeout,
		},
		{
			name:    "zero request timeout",
			modify:  func(c *MirrorConfig) { c.RequestTimeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "empty output dir",
			modify:  func(c *MirrorConfig) { c.OutputDir = "" },
			wantErr: ErrEmptyOutputDir,
		},
		{
			name:    "negative page limit",
			modify:  func(c *MirrorConfig) { c.MaxPages = -1 },
			wantErr: ErrInvalidPageLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.StartURL = "https://example.test/app/"
			tt.modify(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StartURL = "https://example.test/app/"
	cfg.OutputDir = "/tmp/out"
	cfg.ApplyDefaults()

	if cfg.PathPrefix != "/app/" {
		t.Errorf("Expected derived prefix /app/, got %s", cfg.PathPrefix)
	}
	if cfg.DatabasePath != "/tmp/out/mirror.db" {
		t.Errorf("Expected manifest under output dir, got %s", cfg.DatabasePath)
	}

	// Explicit values are kept
	cfg2 := DefaultConfig()
	cfg2.StartURL = "https://example.test/app/"
	cfg2.PathPrefix = "/other/"
	cfg2.DatabasePath = "custom.db"
	cfg2.ApplyDefaults()
	if cfg2.PathPrefix != "/other/" {
		t.Errorf("Explicit prefix was overwritten: %s", cfg2.PathPrefix)
	}
	if cfg2.DatabasePath != "custom.db" {
		t.Errorf("Explicit database path was overwritten: %s", cfg2.DatabasePath)
	}
}

func TestDerivePathPrefix(t *testing.T) {
	tests := []struct {
		startURL string
		want     string
	}{
		{"https://example.test/app/", "/app/"},
		{"https://example.test/app/index.html", "/app/"},
		{"https://example.test/", "/"},
		{"https://example.test", "/"},
		{"https://example.test/a/b/c", "/a/b/"},
	}

	for _, tt := range tests {
		t.Run(tt.startURL, func(t *testing.T) {
			if got := DerivePathPrefix(tt.startURL); got != tt.want {
				t.Errorf("DerivePathPrefix(%q) = %q, want %q", tt.startURL, got, tt.want)
			}
		})
	}
}

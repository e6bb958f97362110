// Package cmd provides the command-line interface for html-copier.
// It handles command parsing, configuration loading, and mirror execution.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/habibjh88/html-copier/internal/config"
	"github.com/habibjh88/html-copier/internal/crawler"
	"github.com/habibjh88/html-copier/internal/logging"
	"github.com/habibjh88/html-copier/internal/render"
	"github.com/habibjh88/html-copier/internal/storage"
)

var (
	cfgFile   string
	version   string
	buildTime string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "htmlcopier <start-url>",
	Short: "Mirror a rendered website for offline browsing",
	Long: `html-copier mirrors a website: it renders each page through headless
Chrome, saves the fully rendered HTML, downloads every referenced asset
once, and rewrites references so the result is browsable offline.

The crawl stays on the start URL's hostname and inside a configurable
path prefix, and stops at a page cap.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMirror,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets version information for the CLI
func SetVersionInfo(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Configuration file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./htmlcopier.yml)")

	// Configuration management flags
	rootCmd.Flags().Bool("show-config", false, "Display current configuration in YAML format and exit")

	// Crawl scope flags
	rootCmd.Flags().StringP("prefix", "p", "", "URL path prefix restricting crawl scope (default: start URL directory)")
	rootCmd.Flags().IntP("max-pages", "l", 50, "Stop after N pages (0=unlimited)")

	// Rendering flags
	rootCmd.Flags().Duration("settle-delay", 1500*time.Millisecond, "Wait after page load before capturing the DOM")
	rootCmd.Flags().Duration("render-timeout", 45*time.Second, "Per-page navigation timeout")

	// Fetching flags
	rootCmd.Flags().DurationP("timeout", "t", 30*time.Second, "HTTP request timeout per asset")
	rootCmd.Flags().DurationP("delay", "r", 100*time.Millisecond, "Delay between requests to the same host")
	rootCmd.Flags().StringP("user-agent", "u", config.DefaultConfig().UserAgent, "HTTP User-Agent header")
	rootCmd.Flags().StringSliceP("header", "H", []string{}, "Extra HTTP headers in 'Name: Value' format (repeatable)")

	// Output flags
	rootCmd.Flags().StringP("output", "o", "./mirror", "Output directory for the mirror")
	rootCmd.Flags().StringP("database", "d", "", "Path to the crawl manifest database (default: <output>/mirror.db)")

	// Logging flags
	rootCmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().String("log-file", "", "Log file path (console only when empty)")

	// Bind flags to viper
	bindFlags := []struct {
		viperKey string
		flagName string
	}{
		{"path_prefix", "prefix"},
		{"max_pages", "max-pages"},
		{"settle_delay", "settle-delay"},
		{"render_timeout", "render-timeout"},
		{"request_timeout", "timeout"},
		{"request_delay", "delay"},
		{"user_agent", "user-agent"},
		{"headers", "header"},
		{"output_dir", "output"},
		{"database_path", "database"},
		{"log_level", "log-level"},
		{"log_file", "log-file"},
	}

	for _, bind := range bindFlags {
		if err := viper.BindPFlag(bind.viperKey, rootCmd.Flags().Lookup(bind.flagName)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind flag %s: %v\n", bind.flagName, err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("htmlcopier")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("HC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func showCurrentConfig(cfg *config.MirrorConfig) error {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Configuration validation failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "Displaying configuration anyway...\n\n")
	}

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	fmt.Printf("# Current html-copier Configuration\n")
	fmt.Printf("# Generated at: %s\n", time.Now().Format(time.RFC3339))
	fmt.Printf("# Configuration file search paths: ./htmlcopier.yml\n")
	fmt.Printf("# Environment variables prefix: HC_\n\n")
	fmt.Print(string(yamlData))

	return nil
}

// parseHeaders converts "Name: Value" strings into a header map, skipping
// malformed entries with a warning.
func parseHeaders(headers []string) map[string]string {
	headerMap := make(map[string]string)
	for _, header := range headers {
		colonIndex := strings.Index(header, ":")
		if colonIndex <= 0 {
			fmt.Fprintf(os.Stderr, "Warning: skipping invalid header %q\n", header)
			continue
		}
		key := strings.TrimSpace(header[:colonIndex])
		value := strings.TrimSpace(header[colonIndex+1:])
		if key == "" || value == "" {
			fmt.Fprintf(os.Stderr, "Warning: skipping header with empty key or value %q\n", header)
			continue
		}
		headerMap[key] = value
	}
	return headerMap
}

func runMirror(cmd *cobra.Command, args []string) error {
	showConfig, _ := cmd.Flags().GetBool("show-config")

	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The start URL comes from the command line; a config file value is
	// the fallback for scripted runs.
	if len(args) > 0 {
		cfg.StartURL = args[0]
	}

	cfg.ApplyDefaults()

	if showConfig {
		return showCurrentConfig(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.LogLevel)
	logCfg.FilePath = cfg.LogFile
	if err := logging.SetDefault(*logCfg); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Mirroring %s\n", cfg.StartURL)
	fmt.Fprintf(os.Stderr, "  Prefix:    %s\n", cfg.PathPrefix)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", cfg.OutputDir)
	fmt.Fprintf(os.Stderr, "  Max pages: %d\n", cfg.MaxPages)

	manifest, err := storage.NewSQLiteManifest(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize manifest: %w", err)
	}
	defer func() { _ = manifest.Close() }()

	headers := parseHeaders(cfg.Headers)

	fetcher := crawler.NewHTTPClient(cfg.UserAgent, cfg.RequestTimeout)
	defer fetcher.Close()
	if len(headers) > 0 {
		fetcher.SetCustomHeaders(headers)
	}

	renderer := render.NewChromeRenderer(cmd.Context(), cfg.UserAgent, cfg.SettleDelay, headers)
	defer func() { _ = renderer.Close() }()

	c, err := crawler.New(cfg, renderer, fetcher, manifest)
	if err != nil {
		return fmt.Errorf("failed to initialize crawler: %w", err)
	}

	stats, err := c.Run(cmd.Context())
	printMirrorReport(os.Stdout, stats, manifest)
	return err
}

// printMirrorReport prints the completion line from the in-memory run
// statistics, followed by the counts the manifest actually recorded. The
// manifest counts can exceed the run's own when the output directory has
// been mirrored before.
func printMirrorReport(w io.Writer, stats *crawler.CrawlStats, manifest crawler.Manifest) {
	if stats != nil {
		fmt.Fprintf(w, "Visited %d pages, downloaded %d assets (%d reused) in %v\n",
			stats.PagesVisited, stats.AssetsDownloaded, stats.AssetsSkipped,
			stats.Duration.Round(time.Millisecond))
	}

	if manifest == nil {
		return
	}
	pages, assets, err := manifest.Counts()
	if err != nil {
		fmt.Fprintf(w, "Manifest counts unavailable: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Manifest: %d pages and %d assets recorded ok\n", pages, assets)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the VSCO scraper
type Config struct {
	// VSCO site settings
	VSCO VSCOConfig `yaml:"vsco" json:"vsco"`

	// Browser and context pool settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Download orchestration settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Per-item retry settings
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// VSCOConfig holds VSCO-specific configuration
type VSCOConfig struct {
	BaseURL   string `yaml:"base_url" json:"base_url"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// BrowserConfig holds browser engine and context pool configuration
type BrowserConfig struct {
	Headless bool `yaml:"headless" json:"headless"`

	// MaxPoolSize caps how many browser contexts may exist at once. It must
	// be at least as large as Download.MaxConcurrency so every in-flight
	// download can hold a context.
	MaxPoolSize int `yaml:"max_pool_size" json:"max_pool_size"`

	// ContextLifetime is how long a context may live before it is recycled.
	ContextLifetime Duration `yaml:"context_lifetime" json:"context_lifetime"`

	// MaxContextUses recycles a context after this many leases.
	MaxContextUses int `yaml:"max_context_uses" json:"max_context_uses"`

	ViewportWidth  int `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height" json:"viewport_height"`
}

// DownloadConfig holds download orchestration configuration
type DownloadConfig struct {
	// MaxConcurrency caps how many downloads run at once. Valid range is
	// 1 through 10.
	MaxConcurrency int `yaml:"max_concurrency" json:"max_concurrency"`

	// EnableBatching splits the queue into slices with a pause between
	// them. When false the whole queue is one batch and only the
	// concurrency gate throttles work.
	EnableBatching bool `yaml:"enable_batching" json:"enable_batching"`

	// BatchSize is items per batch. Zero follows MaxConcurrency.
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	DelayBetweenBatches Duration `yaml:"delay_between_batches" json:"delay_between_batches"`

	// Timeout bounds a single page navigation or media fetch.
	Timeout Duration `yaml:"timeout" json:"timeout"`

	// DryRun walks the whole pipeline without network fetches or writes.
	DryRun bool `yaml:"dry_run" json:"dry_run"`

	// Limit stops gallery discovery after this many items. Zero means all.
	Limit int `yaml:"limit" json:"limit"`
}

// EffectiveBatchSize resolves the batch size, falling back to the
// concurrency limit when none is set.
func (d DownloadConfig) EffectiveBatchSize() int {
	if d.BatchSize > 0 {
		return d.BatchSize
	}
	return d.MaxConcurrency
}

// RetryConfig holds per-item retry configuration
type RetryConfig struct {
	// MaxAttempts is the total number of tries per item, not the number
	// of retries after the first failure.
	MaxAttempts int      `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier  float64  `yaml:"multiplier" json:"multiplier"`
}

// RateLimitConfig holds request pacing configuration. A zero
// RequestsPerMinute disables pacing entirely.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int `yaml:"burst_size" json:"burst_size"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory     string `yaml:"base_directory" json:"base_directory"`
	CreateUserFolders bool   `yaml:"create_user_folders" json:"create_user_folders"`
	SaveManifest      bool   `yaml:"save_manifest" json:"save_manifest"`
	ManifestFilename  string `yaml:"manifest_filename" json:"manifest_filename"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		VSCO: VSCOConfig{
			BaseURL:   "https://vsco.co",
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Browser: BrowserConfig{
			Headless:        true,
			MaxPoolSize:     3,
			ContextLifetime: Duration(5 * time.Minute),
			MaxContextUses:  100,
			ViewportWidth:   1920,
			ViewportHeight:  1080,
		},
		Download: DownloadConfig{
			MaxConcurrency:      3,
			EnableBatching:      true,
			BatchSize:           0, // follow MaxConcurrency
			DelayBetweenBatches: Duration(1 * time.Second),
			Timeout:             Duration(30 * time.Second),
			DryRun:              false,
			Limit:               0,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   Duration(2 * time.Second),
			MaxDelay:    Duration(5 * time.Minute),
			Multiplier:  2.0,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 0, // disabled
			BurstSize:         10,
		},
		Output: OutputConfig{
			BaseDirectory:     "./downloads",
			CreateUserFolders: true,
			SaveManifest:      true,
			ManifestFilename:  "manifest.json",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if userAgent := os.Getenv("VSCOSCRAPER_USER_AGENT"); userAgent != "" {
		c.VSCO.UserAgent = userAgent
	}
	if baseURL := os.Getenv("VSCOSCRAPER_BASE_URL"); baseURL != "" {
		c.VSCO.BaseURL = baseURL
	}

	if outputDir := os.Getenv("VSCOSCRAPER_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	if concurrent := os.Getenv("VSCOSCRAPER_MAX_CONCURRENCY"); concurrent != "" {
		var val int
		fmt.Sscanf(concurrent, "%d", &val)
		if val > 0 {
			c.Download.MaxConcurrency = val
		}
	}
	if batchSize := os.Getenv("VSCOSCRAPER_BATCH_SIZE"); batchSize != "" {
		var val int
		fmt.Sscanf(batchSize, "%d", &val)
		if val > 0 {
			c.Download.BatchSize = val
		}
	}
	if batching := os.Getenv("VSCOSCRAPER_ENABLE_BATCHING"); batching != "" {
		c.Download.EnableBatching = strings.ToLower(batching) == "true"
	}
	if delay := os.Getenv("VSCOSCRAPER_BATCH_DELAY"); delay != "" {
		if parsed, err := time.ParseDuration(delay); err == nil {
			c.Download.DelayBetweenBatches = Duration(parsed)
		}
	}
	if timeout := os.Getenv("VSCOSCRAPER_TIMEOUT"); timeout != "" {
		if parsed, err := time.ParseDuration(timeout); err == nil && parsed > 0 {
			c.Download.Timeout = Duration(parsed)
		}
	}
	if dryRun := os.Getenv("VSCOSCRAPER_DRY_RUN"); dryRun != "" {
		c.Download.DryRun = strings.ToLower(dryRun) == "true"
	}

	if headless := os.Getenv("VSCOSCRAPER_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) != "false"
	}
	if poolSize := os.Getenv("VSCOSCRAPER_MAX_POOL_SIZE"); poolSize != "" {
		var val int
		fmt.Sscanf(poolSize, "%d", &val)
		if val > 0 {
			c.Browser.MaxPoolSize = val
		}
	}

	if retries := os.Getenv("VSCOSCRAPER_RETRIES"); retries != "" {
		var val int
		fmt.Sscanf(retries, "%d", &val)
		if val > 0 {
			c.Retry.MaxAttempts = val
		}
	}

	if rpm := os.Getenv("VSCOSCRAPER_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if logLevel := os.Getenv("VSCOSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".vscoscraper.yaml",
		".vscoscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "vscoscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "vscoscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".vscoscraper.yaml"),
		filepath.Join(os.Getenv("HOME"), ".vscoscraper.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Validate download orchestration
	if c.Download.MaxConcurrency <= 0 {
		errs = append(errs, errors.New("max concurrency must be positive"))
	}
	if c.Download.MaxConcurrency > 10 {
		errs = append(errs, errors.New("max concurrency should not exceed 10"))
	}
	if c.Download.BatchSize < 0 {
		errs = append(errs, errors.New("batch size cannot be negative"))
	}
	if c.Download.DelayBetweenBatches < 0 {
		errs = append(errs, errors.New("delay between batches cannot be negative"))
	}
	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.Limit < 0 {
		errs = append(errs, errors.New("download limit cannot be negative"))
	}

	// Validate browser pool. The pool must never be smaller than the
	// concurrency limit or downloads would deadlock waiting for contexts.
	if c.Browser.MaxPoolSize <= 0 {
		errs = append(errs, errors.New("browser pool size must be positive"))
	}
	if c.Browser.MaxPoolSize < c.Download.MaxConcurrency {
		errs = append(errs, errors.New("browser pool size must be at least max concurrency"))
	}
	if c.Browser.ContextLifetime <= 0 {
		errs = append(errs, errors.New("context lifetime must be positive"))
	}
	if c.Browser.MaxContextUses <= 0 {
		errs = append(errs, errors.New("max context uses must be positive"))
	}

	// Validate retry settings
	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry max attempts must be positive"))
	}
	if c.Retry.BaseDelay < 0 {
		errs = append(errs, errors.New("retry base delay cannot be negative"))
	}
	if c.Retry.Multiplier < 1 {
		errs = append(errs, errors.New("retry multiplier must be at least 1"))
	}

	// Validate rate limiting
	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}
	if c.RateLimit.RequestsPerMinute > 0 && c.RateLimit.BurstSize <= 0 {
		errs = append(errs, errors.New("burst size must be positive when rate limiting is enabled"))
	}

	// Validate output settings
	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.SaveManifest && c.Output.ManifestFilename == "" {
		errs = append(errs, errors.New("manifest filename is required when manifest saving is enabled"))
	}

	// Validate logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if concurrent, ok := flags["concurrent"].(int); ok && concurrent > 0 {
		c.Download.MaxConcurrency = concurrent
	}
	if batchSize, ok := flags["batch-size"].(int); ok && batchSize > 0 {
		c.Download.BatchSize = batchSize
	}
	if noBatching, ok := flags["no-batching"].(bool); ok && noBatching {
		c.Download.EnableBatching = false
	}
	if delay, ok := flags["batch-delay"].(time.Duration); ok && delay >= 0 {
		c.Download.DelayBetweenBatches = Duration(delay)
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.Download.Timeout = Duration(timeout)
	}
	if dryRun, ok := flags["dry-run"].(bool); ok && dryRun {
		c.Download.DryRun = true
	}
	if limit, ok := flags["limit"].(int); ok && limit > 0 {
		c.Download.Limit = limit
	}
	if retries, ok := flags["retries"].(int); ok && retries > 0 {
		c.Retry.MaxAttempts = retries
	}
	if rpm, ok := flags["rate-limit"].(int); ok && rpm > 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".vscoscraper.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

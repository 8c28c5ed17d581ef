package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"vscoscraper/pkg/config"
	"vscoscraper/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage VSCO Scraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (VSCOSCRAPER_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'vscoscraper.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values`,
	Run: runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Internal consistency, such as the context pool covering the
    concurrency limit`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "vscoscraper.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# VSCO Scraper Configuration File
#
# This file contains all available configuration options.
# Every option can also be set through an environment variable prefixed
# with VSCOSCRAPER_, for example VSCOSCRAPER_MAX_CONCURRENCY=5.

# VSCO site settings
vsco:
  # Base URL of the site
  base_url: "https://vsco.co"

  # Browser user agent, leave empty to use the default
  user_agent: ""

# Browser engine and context pool settings
browser:
  # Run the browser without a visible window
  headless: true

  # Maximum number of browser contexts alive at once.
  # Must be at least as large as download.max_concurrency.
  max_pool_size: 3

  # Recycle a context after this long
  context_lifetime: 5m

  # Recycle a context after this many uses
  max_context_uses: 100

  # Browser viewport size
  viewport_width: 1920
  viewport_height: 1080

# Download orchestration settings
download:
  # Number of concurrent downloads
  # Range: 1-10
  max_concurrency: 3

  # Split the queue into batches with a pause between them
  enable_batching: true

  # Items per batch, 0 follows max_concurrency
  batch_size: 0

  # Pause between batches
  delay_between_batches: 1s

  # Timeout per page navigation or media fetch
  timeout: 30s

  # Walk the pipeline without downloading anything
  dry_run: false

  # Stop discovery after this many items, 0 means all
  limit: 0

# Per-item retry settings
retry:
  # Total attempts per item, including the first
  # Range: 1-10
  max_attempts: 3

  # Delay before the first retry
  base_delay: 2s

  # Ceiling for the backoff delay
  max_delay: 5m

  # Backoff multiplier between attempts
  multiplier: 2.0

# Request pacing
rate_limit:
  # Requests per minute, 0 disables pacing
  requests_per_minute: 0

  # Requests allowed to burst before pacing kicks in
  burst_size: 10

# Output settings
output:
  # Base directory for downloads
  base_directory: "./downloads"

  # Create a folder per username under the base directory
  create_user_folders: true

  # Write a JSON manifest describing every archived item
  save_manifest: true
  manifest_filename: "manifest.json"

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path, leave empty to log to stderr only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file to taste")
	fmt.Println("2. Run 'vscoscraper config validate' to check it")
	fmt.Println("3. Start downloading with 'vscoscraper download <username>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (VSCOSCRAPER_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (searched in standard locations)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	path := configFile
	if path == "" {
		// Same search order the scraper itself uses
		candidates := []string{
			".vscoscraper.yaml",
			".vscoscraper.yml",
			filepath.Join(os.Getenv("HOME"), ".config", "vscoscraper", "config.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "vscoscraper", "config.yml"),
			filepath.Join(os.Getenv("HOME"), ".vscoscraper.yaml"),
			filepath.Join(os.Getenv("HOME"), ".vscoscraper.yml"),
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path == "" {
		ui.PrintError("No configuration file found")
		fmt.Println("\nSearched standard locations. Specify a file with --config,")
		fmt.Println("or create one with 'vscoscraper config init'.")
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		ui.PrintError("Configuration file is invalid", err.Error())
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		ui.PrintError("Configuration failed validation", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration is valid: " + path)
}

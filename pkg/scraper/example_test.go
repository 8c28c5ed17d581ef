package scraper_test

import (
	"context"
	"fmt"

	"vscoscraper/pkg/config"
	"vscoscraper/pkg/scraper"
)

func ExampleScraper_Run() {
	// Start from defaults and tune the run
	cfg := config.DefaultConfig()
	cfg.Output.BaseDirectory = "downloads"
	cfg.Download.MaxConcurrency = 3
	cfg.Download.EnableBatching = true

	s, err := scraper.New(cfg)
	if err != nil {
		fmt.Printf("Failed to create scraper: %v\n", err)
		return
	}

	// Downloads every public media item, skipping files already on disk
	if err := s.Run(context.Background(), "example_username"); err != nil {
		fmt.Printf("Failed to download gallery: %v\n", err)
		return
	}

	fmt.Println("Gallery downloaded successfully!")
}

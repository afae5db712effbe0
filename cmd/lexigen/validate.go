package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/longregen/lexigen/internal/adapters/imagegen"
	"github.com/longregen/lexigen/internal/config"
	"github.com/longregen/lexigen/internal/vocab"
)

// validateCmd checks a config without running the pipeline
func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a config without running the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			// The backend tag must resolve; unknown tags never fall back.
			if _, err := imagegen.New(cfg.Generation); err != nil {
				return err
			}

			entries, err := vocab.Load(cfg.Vocabulary.Path)
			if err != nil {
				return err
			}

			fmt.Printf("Config OK: %d vocabulary entries, backend %q, %d images per prompt\n",
				len(entries), cfg.Generation.Backend, cfg.Generation.Images)
			return nil
		},
	}
}

// configCmd shows the resolved configuration
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			fmt.Println("Vocabulary:")
			fmt.Printf("  Path: %s\n", cfg.Vocabulary.Path)
			fmt.Println()

			fmt.Println("Output:")
			fmt.Printf("  Dir:       %s\n", cfg.Output.Dir)
			fmt.Printf("  Cache Dir: %s\n", cfg.Output.CacheDir)
			fmt.Println()

			fmt.Println("LLM:")
			fmt.Printf("  URL:         %s\n", cfg.LLM.URL)
			fmt.Printf("  Model:       %s\n", cfg.LLM.Model)
			fmt.Printf("  Max Tokens:  %d\n", cfg.LLM.MaxTokens)
			fmt.Printf("  Temperature: %.2f\n", cfg.LLM.Temperature)
			fmt.Printf("  API Key:     %s\n", maskSecret(cfg.LLM.APIKey))
			fmt.Println()

			fmt.Println("Generation:")
			fmt.Printf("  Backend:     %s\n", cfg.Generation.Backend)
			fmt.Printf("  URL:         %s\n", cfg.Generation.URL)
			fmt.Printf("  Images:      %d\n", cfg.Generation.Images)
			fmt.Printf("  Size:        %dx%d\n", cfg.Generation.Width, cfg.Generation.Height)
			fmt.Printf("  Steps:       %d\n", cfg.Generation.Steps)
			fmt.Printf("  Concurrency: %d\n", cfg.Generation.Concurrency)
			fmt.Printf("  API Key:     %s\n", maskSecret(cfg.Generation.APIKey))
			fmt.Println()

			fmt.Println("Scoring:")
			fmt.Printf("  URL:     %s\n", cfg.Scoring.URL)
			fmt.Printf("  Model:   %s\n", cfg.Scoring.Model)
			fmt.Printf("  API Key: %s\n", maskSecret(cfg.Scoring.APIKey))
			fmt.Println()

			fmt.Println("Environment variables:")
			fmt.Println("  LEXIGEN_CONFIG, LEXIGEN_VOCABULARY_PATH, LEXIGEN_OUTPUT_DIR, LEXIGEN_CACHE_DIR")
			fmt.Println("  LEXIGEN_LLM_URL, LEXIGEN_LLM_API_KEY, LEXIGEN_LLM_MODEL")
			fmt.Println("  LEXIGEN_GENERATION_BACKEND, LEXIGEN_GENERATION_URL, LEXIGEN_GENERATION_CONCURRENCY")
			fmt.Println("  LEXIGEN_SCORING_URL, LEXIGEN_SCORING_MODEL, LEXIGEN_METRICS_ADDR")

			return nil
		},
	}
}

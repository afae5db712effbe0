package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/longregen/lexigen/internal/adapters/clip"
	"github.com/longregen/lexigen/internal/adapters/id"
	"github.com/longregen/lexigen/internal/adapters/imagegen"
	"github.com/longregen/lexigen/internal/adapters/promptgen"
	"github.com/longregen/lexigen/internal/adapters/tracing"
	"github.com/longregen/lexigen/internal/config"
	"github.com/longregen/lexigen/internal/llm"
	"github.com/longregen/lexigen/internal/pipeline"
	"github.com/longregen/lexigen/internal/vocab"
)

// runCmd executes the full pipeline against a config
func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline against a config",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}))
			slog.SetDefault(logger)

			// Config and vocabulary problems surface here, before any
			// external call is made.
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			entries, err := vocab.Load(cfg.Vocabulary.Path)
			if err != nil {
				return fmt.Errorf("load vocabulary: %w", err)
			}
			logger.Info("vocabulary loaded", "path", cfg.Vocabulary.Path, "entries", len(entries))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Tracing.Enabled {
				shutdown, err := tracing.InitTracer("lexigen")
				if err != nil {
					return fmt.Errorf("init tracing: %w", err)
				}
				defer func() {
					_ = shutdown(context.WithoutCancel(ctx))
				}()
			}

			if cfg.Metrics.Addr != "" {
				go serveMetrics(cfg.Metrics.Addr, logger)
			}

			imageGen, err := imagegen.New(cfg.Generation)
			if err != nil {
				return err
			}

			llmClient := llm.NewClient(
				cfg.LLM.URL,
				cfg.LLM.APIKey,
				cfg.LLM.Model,
				cfg.LLM.MaxTokens,
				cfg.LLM.Temperature,
			)
			scorer := clip.NewClient(cfg.Scoring.URL, cfg.Scoring.APIKey, cfg.Scoring.Model)

			p, err := pipeline.New(pipeline.Options{
				Vocabulary:  entries,
				PromptGen:   promptgen.New(llmClient),
				ImageGen:    imageGen,
				Scorer:      scorer,
				OutputDir:   cfg.Output.Dir,
				CacheDir:    cfg.Output.CacheDir,
				Concurrency: cfg.Generation.Concurrency,
				RunID:       id.New().GenerateRunID(),
				Logger:      logger,
			})
			if err != nil {
				return err
			}

			records, err := p.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Done. %d records written to %s\n", len(records), cfg.Output.Dir)
			return nil
		},
	}
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics listener failed", "addr", addr, "error", err)
	}
}

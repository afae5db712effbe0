// Package pipeline implements the three-stage run: prompt drafting, image
// synthesis and similarity scoring, with per-stage on-disk memoization.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/longregen/lexigen/internal/adapters/metrics"
	"github.com/longregen/lexigen/internal/domain/models"
	"github.com/longregen/lexigen/internal/ports"
)

// Pipeline sequences the three stages over one vocabulary. Stages run
// strictly in order; any stage failure is fatal to the run. The cache
// directory provides the only resume mechanism across invocations.
type Pipeline struct {
	vocab   models.Vocabulary
	prompts *PromptStage
	images  *ImageStage
	scores  *ScoreStage
	scorer  ports.ImageScorer
	runID   string
	log     *slog.Logger
	tracer  trace.Tracer
}

// Options wires the pipeline's collaborators.
type Options struct {
	Vocabulary  models.Vocabulary
	PromptGen   ports.PromptGenerator
	ImageGen    ports.ImageGenerator
	Scorer      ports.ImageScorer
	OutputDir   string
	CacheDir    string
	Concurrency int
	RunID       string
	Logger      *slog.Logger
}

// New builds a pipeline and its cache. The output directory is created
// eagerly so configuration problems surface before any external call.
func New(opts Options) (*Pipeline, error) {
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	cache, err := NewCache(opts.CacheDir)
	if err != nil {
		return nil, err
	}

	log := opts.Logger.With("run_id", opts.RunID)
	imageDir := filepath.Join(opts.OutputDir, "images")

	return &Pipeline{
		vocab:   opts.Vocabulary,
		prompts: NewPromptStage(opts.PromptGen, cache, log),
		images:  NewImageStage(opts.ImageGen, cache, imageDir, opts.Concurrency, log),
		scores:  NewScoreStage(opts.Scorer, opts.OutputDir, log),
		scorer:  opts.Scorer,
		runID:   opts.RunID,
		log:     log,
		tracer:  otel.Tracer("lexigen/pipeline"),
	}, nil
}

// Run executes prompt drafting, image synthesis and scoring in order and
// returns the normalized score records.
func (p *Pipeline) Run(ctx context.Context) ([]models.ScoreRecord, error) {
	p.log.Info("pipeline starting", "entries", len(p.vocab))

	prompts, err := runStage(p, ctx, "prompts", func(ctx context.Context) (map[string]string, error) {
		return p.prompts.Run(ctx, p.vocab)
	})
	if err != nil {
		return nil, fmt.Errorf("prompt stage: %w", err)
	}

	images, err := runStage(p, ctx, "images", func(ctx context.Context) (map[string][]string, error) {
		return p.images.Run(ctx, p.vocab, prompts)
	})
	if err != nil {
		return nil, fmt.Errorf("image stage: %w", err)
	}

	// Scorer weights load here, not on the first Score call.
	if err := p.scorer.Init(ctx); err != nil {
		return nil, fmt.Errorf("init scorer: %w", err)
	}
	defer func() {
		if err := p.scorer.Close(context.WithoutCancel(ctx)); err != nil {
			p.log.Warn("scorer close failed", "error", err)
		}
	}()

	records, err := runStage(p, ctx, "scores", func(ctx context.Context) ([]models.ScoreRecord, error) {
		return p.scores.Run(ctx, p.vocab, prompts, images)
	})
	if err != nil {
		return nil, fmt.Errorf("score stage: %w", err)
	}

	p.log.Info("pipeline complete", "records", len(records))
	return records, nil
}

// runStage wraps one stage in a span and a duration observation.
func runStage[T any](p *Pipeline, ctx context.Context, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := p.tracer.Start(ctx, "stage."+name,
		trace.WithAttributes(
			attribute.String("run_id", p.runID),
			attribute.Int("entries", len(p.vocab)),
		))
	defer span.End()

	start := time.Now()
	out, err := fn(ctx)
	metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}

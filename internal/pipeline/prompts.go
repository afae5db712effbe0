package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/longregen/lexigen/internal/adapters/metrics"
	"github.com/longregen/lexigen/internal/domain/models"
	"github.com/longregen/lexigen/internal/ports"
)

const cacheKeyPrompts = "prompts"

// PromptStage drafts one generation prompt per vocabulary entry.
type PromptStage struct {
	gen   ports.PromptGenerator
	cache *Cache
	log   *slog.Logger
}

func NewPromptStage(gen ports.PromptGenerator, cache *Cache, log *slog.Logger) *PromptStage {
	return &PromptStage{gen: gen, cache: cache, log: log}
}

// Run returns the word-to-prompt mapping. A cache hit short-circuits the
// stage with zero generation calls. On a miss every entry is submitted
// concurrently with no cap; the first failure aborts the whole stage and
// nothing is cached. Completion order never matters: results land in a map
// keyed by word.
func (s *PromptStage) Run(ctx context.Context, vocab models.Vocabulary) (map[string]string, error) {
	if s.cache.Has(cacheKeyPrompts) {
		var prompts map[string]string
		err := s.cache.Load(cacheKeyPrompts, &prompts)
		if err == nil {
			s.log.Info("prompt stage served from cache", "entries", len(prompts))
			metrics.StageCacheHits.WithLabelValues("prompts").Inc()
			return prompts, nil
		}
		if !errors.Is(err, ErrCacheCorrupt) {
			return nil, err
		}
		s.log.Warn("prompt cache corrupt, regenerating", "error", err)
	}

	prompts := make(map[string]string, len(vocab))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	for _, entry := range vocab {
		entry := entry
		g.Go(func() error {
			prompt, err := s.gen.Generate(gCtx, entry)
			if err != nil {
				return fmt.Errorf("draft prompt for %q: %w", entry.Word, err)
			}
			mu.Lock()
			prompts[entry.Word] = prompt
			mu.Unlock()
			metrics.PromptsGenerated.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.cache.Save(cacheKeyPrompts, prompts); err != nil {
		return nil, err
	}
	s.log.Info("prompt stage complete", "entries", len(prompts))
	return prompts, nil
}

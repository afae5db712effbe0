package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/longregen/lexigen/internal/adapters/metrics"
	"github.com/longregen/lexigen/internal/domain/models"
	"github.com/longregen/lexigen/internal/ports"
)

const cacheKeyImages = "images"

// ImageStage synthesizes the image artifacts for every prompt and persists
// them under <dir>/<word>_<index>.png.
type ImageStage struct {
	gen   ports.ImageGenerator
	cache *Cache
	dir   string
	limit int // max in-flight generation calls, global across the entry set
	log   *slog.Logger
}

func NewImageStage(gen ports.ImageGenerator, cache *Cache, dir string, limit int, log *slog.Logger) *ImageStage {
	return &ImageStage{gen: gen, cache: cache, dir: dir, limit: limit, log: log}
}

// Run returns the word-to-artifact-paths mapping. A cache hit performs no
// generation calls and no disk writes. On a miss, entries fan out under the
// concurrency bound; each completed batch is written to deterministically
// named files before the entry counts as done. Any failure fails the stage:
// sibling artifacts already on disk are kept (a re-run overwrites them) but
// the cache entry is only written after full completion.
func (s *ImageStage) Run(ctx context.Context, vocab models.Vocabulary, prompts map[string]string) (map[string][]string, error) {
	if s.cache.Has(cacheKeyImages) {
		var paths map[string][]string
		err := s.cache.Load(cacheKeyImages, &paths)
		if err == nil {
			s.log.Info("image stage served from cache", "entries", len(paths))
			metrics.StageCacheHits.WithLabelValues("images").Inc()
			return paths, nil
		}
		if !errors.Is(err, ErrCacheCorrupt) {
			return nil, err
		}
		s.log.Warn("image cache corrupt, regenerating", "error", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}

	paths := make(map[string][]string, len(vocab))
	var mu sync.Mutex
	var done atomic.Int64
	total := len(vocab)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for _, entry := range vocab {
		entry := entry
		g.Go(func() error {
			prompt, ok := prompts[entry.Word]
			if !ok {
				return fmt.Errorf("no prompt for %q", entry.Word)
			}

			metrics.GenerationInFlight.Inc()
			images, err := s.gen.Generate(gCtx, prompt)
			metrics.GenerationInFlight.Dec()
			if err != nil {
				return fmt.Errorf("generate images for %q: %w", entry.Word, err)
			}

			entryPaths, err := s.writeImages(entry.Word, images)
			if err != nil {
				return err
			}

			mu.Lock()
			paths[entry.Word] = entryPaths
			mu.Unlock()

			completed := done.Add(1)
			metrics.EntriesGenerated.Inc()
			s.log.Info("images generated",
				"word", entry.Word,
				"images", len(entryPaths),
				"progress", fmt.Sprintf("%d/%d", completed, total))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.cache.Save(cacheKeyImages, paths); err != nil {
		return nil, err
	}
	s.log.Info("image stage complete", "entries", len(paths))
	return paths, nil
}

func (s *ImageStage) writeImages(word string, images [][]byte) ([]string, error) {
	entryPaths := make([]string, 0, len(images))
	for i, img := range images {
		path := filepath.Join(s.dir, fmt.Sprintf("%s_%d.png", word, i))
		if err := os.WriteFile(path, img, 0644); err != nil {
			return nil, fmt.Errorf("write image %s: %w", path, err)
		}
		metrics.ImagesWritten.Inc()
		entryPaths = append(entryPaths, path)
	}
	return entryPaths, nil
}

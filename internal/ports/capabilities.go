// Package ports defines the capability interfaces the pipeline core invokes
// but does not implement. Adapters under internal/adapters provide the real
// implementations; tests substitute stubs.
package ports

import (
	"context"

	"github.com/longregen/lexigen/internal/domain/models"
)

// PromptGenerator drafts one image-generation prompt for a vocabulary entry.
type PromptGenerator interface {
	Generate(ctx context.Context, entry models.VocabEntry) (string, error)
}

// ImageGenerator synthesizes an ordered batch of images for a prompt. The
// image count and dimensions are fixed at construction time; every call
// returns the same number of buffers in generation order.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([][]byte, error)
}

// ImageScorer rates how well an image matches a prompt, in a bounded real
// range. Init must be called before the first Score so that model loading is
// eager and its cost visible; Close releases whatever Init acquired.
type ImageScorer interface {
	Init(ctx context.Context) error
	Score(ctx context.Context, prompt string, image []byte) (float64, error)
	Close(ctx context.Context) error
}

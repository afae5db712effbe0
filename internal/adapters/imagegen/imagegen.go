// Package imagegen provides the image synthesis backends. Backends are
// selected by tag at startup; an unknown tag fails fast rather than falling
// back to a default.
package imagegen

import (
	"fmt"

	"github.com/longregen/lexigen/internal/config"
	"github.com/longregen/lexigen/internal/pipeline"
	"github.com/longregen/lexigen/internal/ports"
)

// New resolves the configured backend tag to an implementation.
func New(cfg config.GenerationConfig) (ports.ImageGenerator, error) {
	switch cfg.Backend {
	case "sd-webui":
		return NewSDWebUIClient(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", pipeline.ErrUnsupportedBackend, cfg.Backend)
	}
}

package inference

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/kdduha/llama-vision/backend/internal/config"
	"github.com/rs/zerolog"
)

// Load prepares the process-wide handle. With cfg.VerifyFiles the model file
// must exist next to its CLIP projector; a missing projector only disables
// vision. With cfg.Probe the runtime must answer a model listing.
func Load(ctx context.Context, cfg config.ModelConfig, rt Runtime, logger zerolog.Logger) (*Handle, error) {
	vision := true

	if cfg.VerifyFiles {
		modelPath := filepath.Join(cfg.Path, cfg.Name)
		clipPath := filepath.Join(cfg.Path, cfg.ClipName)
		logger.Info().Str("model_path", modelPath).Str("clip_path", clipPath).Msg("verifying model files")

		if _, err := os.Stat(modelPath); err != nil {
			return nil, fmt.Errorf("model file not found at %s: %w", modelPath, err)
		}
		if _, err := os.Stat(clipPath); err != nil {
			logger.Warn().Str("clip_path", clipPath).Msg("CLIP model file not found, vision features disabled")
			vision = false
		}
	}

	if lister, ok := rt.(ModelLister); cfg.Probe && ok {
		ids, err := lister.ListModels(ctx)
		if err != nil {
			return nil, fmt.Errorf("probe runtime: %w", err)
		}
		if !slices.Contains(ids, cfg.Name) {
			logger.Warn().Strs("served", ids).Str("model", cfg.Name).Msg("runtime does not list configured model")
		}
	}

	logger.Info().Str("model", cfg.Name).Bool("vision", vision).Msg("model loaded successfully")
	return NewHandle(cfg.Name, rt, vision), nil
}

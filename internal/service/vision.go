package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/bytedance/sonic"
	"github.com/kdduha/llama-vision/backend/internal/apperr"
	"github.com/kdduha/llama-vision/backend/internal/imagecodec"
	"github.com/kdduha/llama-vision/backend/internal/inference"
	"github.com/kdduha/llama-vision/backend/internal/metrics"
	"github.com/kdduha/llama-vision/backend/internal/models"
	"github.com/kdduha/llama-vision/backend/internal/prompt"
	"github.com/rs/zerolog"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}

type imageDecoder interface {
	Decode(raw string) (*imagecodec.NormalizedImage, error)
}

type invoker interface {
	Invoke(ctx context.Context, msg prompt.Message, params inference.Params) (string, inference.Usage, error)
}

type VisionService struct {
	logger  zerolog.Logger
	handle  *inference.Handle
	codec   imageDecoder
	invoker invoker
	cache   Cache
}

func NewVisionService(logger zerolog.Logger, handle *inference.Handle, codec imageDecoder) *VisionService {
	s := &VisionService{
		logger: logger.With().Str("component", "vision").Logger(),
		handle: handle,
		codec:  codec,
	}
	if handle.Loaded() {
		s.invoker = inference.NewInvoker(logger, handle.Runtime())
	}
	return s
}

func (s *VisionService) SetCacheClient(cache Cache) {
	s.cache = cache
}

func (s *VisionService) Ready() bool {
	return s.handle.Loaded() && s.invoker != nil
}

func (s *VisionService) Health() *models.HealthResponse {
	return models.NewHealthResponse(s.Ready(), s.handle.VisionEnabled(), s.handle.Name())
}

func (s *VisionService) Info() *models.ServiceInfo {
	return models.NewServiceInfo(s.handle.Name())
}

// ErrNotLoaded is answered to every inference request while no model is loaded.
func ErrNotLoaded() *apperr.Error {
	return apperr.Unavailable("Model not loaded", nil).
		WithDetails("message", "Model failed to load at startup")
}

// Infer runs the pipeline for a validated request. The normalized image lives
// exactly as long as this call.
func (s *VisionService) Infer(ctx context.Context, req models.InferenceRequest) (resp *models.VisionResponse, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error().Interface("panic", rec).Bytes("stack", debug.Stack()).Msg("inference error")
			resp = nil
			err = apperr.System("Internal server error", fmt.Errorf("panic: %v", rec)).
				WithDetails("panic", fmt.Sprint(rec))
		}
	}()

	if !s.Ready() {
		return nil, ErrNotLoaded()
	}

	params := req.Params()
	s.logger.Info().Int("prompt_len", len(req.Prompt)).Msg("processing inference request")

	img, err := s.decode(req.Image)
	if err != nil {
		return nil, err
	}
	defer s.release(img)

	var key string
	if s.cache != nil {
		key = getCacheKey(s.handle.Name(), req, params)
		if cached, ok := s.lookup(ctx, key); ok {
			resp := s.assemble(cached, params)
			resp.Metadata["cached"] = true
			return resp, nil
		}
	}

	msg := prompt.Build(req.Prompt, img)

	start := time.Now()
	text, usage, err := s.invoker.Invoke(ctx, msg, inference.Params{
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
	})
	if err != nil {
		metrics.InferenceTotal("error")
		metrics.InferenceDuration("error", time.Since(start))
		return nil, err
	}
	metrics.InferenceTotal("ok")
	metrics.InferenceDuration("ok", time.Since(start))
	metrics.TokensTotal(usage.PromptTokens, usage.CompletionTokens)

	result := cachedCompletion{Text: text, Usage: usage}
	if s.cache != nil {
		s.store(ctx, key, result)
	}

	s.logger.Info().Dur("dur", time.Since(start)).Msg("inference completed successfully")
	return s.assemble(result, params), nil
}

func (s *VisionService) assemble(c cachedCompletion, params models.GenerationParams) *models.VisionResponse {
	usage := &models.TokenUsage{
		PromptTokens:     c.Usage.PromptTokens,
		CompletionTokens: c.Usage.CompletionTokens,
		TotalTokens:      c.Usage.TotalTokens,
	}
	return models.NewVisionResponse(c.Text, s.handle.Name(), usage, params)
}

func (s *VisionService) decode(raw string) (*imagecodec.NormalizedImage, error) {
	start := time.Now()
	img, err := s.codec.Decode(raw)
	if err != nil {
		metrics.ImageDecodeTotal("error", "unknown")
		metrics.ImageDecodeDuration("error", time.Since(start))
		s.logger.Warn().Err(err).Msg("failed to process image")
		return nil, err
	}
	metrics.ImageDecodeTotal("ok", img.Format())
	metrics.ImageDecodeDuration("ok", time.Since(start))
	metrics.TempImageAcquired()

	s.logger.Debug().
		Str("format", img.Format()).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("image normalized")
	return img, nil
}

// release never fails the request; a file that cannot be removed is only
// logged.
func (s *VisionService) release(img *imagecodec.NormalizedImage) {
	if err := img.Release(); err != nil {
		s.logger.Warn().Err(err).Str("path", img.Path()).Msg("failed to delete temporary image")
		return
	}
	metrics.TempImageReleased()
}

type cachedCompletion struct {
	Text  string          `json:"text"`
	Usage inference.Usage `json:"usage"`
}

func (s *VisionService) lookup(ctx context.Context, key string) (cachedCompletion, bool) {
	raw, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache get error")
	}
	if !found {
		metrics.CacheTotal("miss")
		return cachedCompletion{}, false
	}

	var c cachedCompletion
	if err := sonic.UnmarshalString(raw, &c); err != nil {
		s.logger.Warn().Err(err).Msg("corrupt cache entry")
		metrics.CacheTotal("miss")
		return cachedCompletion{}, false
	}
	metrics.CacheTotal("hit")
	s.logger.Info().Msg("served from cache")
	return c, true
}

func (s *VisionService) store(ctx context.Context, key string, c cachedCompletion) {
	raw, err := sonic.MarshalString(c)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode cache entry")
		return
	}
	if err := s.cache.Set(ctx, key, raw); err != nil {
		s.logger.Warn().Err(err).Msg("failed to set cache")
	}
}

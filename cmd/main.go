package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kdduha/llama-vision/backend/internal/cache"
	"github.com/kdduha/llama-vision/backend/internal/config"
	"github.com/kdduha/llama-vision/backend/internal/handler"
	"github.com/kdduha/llama-vision/backend/internal/imagecodec"
	"github.com/kdduha/llama-vision/backend/internal/inference"
	"github.com/kdduha/llama-vision/backend/internal/logger"
	"github.com/kdduha/llama-vision/backend/internal/metrics"
	"github.com/kdduha/llama-vision/backend/internal/service"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	_ "github.com/kdduha/llama-vision/backend/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Llama 3.2 Vision Inference API
// @version 1.0.0
// @description Answers text prompts about base64-encoded images.
// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("config error")
	}

	log := logger.New(cfg.Log)

	rt := inference.NewOpenAIRuntime(
		openai.NewClient(
			option.WithAPIKey(cfg.OpenAI.APIKey),
			option.WithBaseURL(cfg.OpenAI.BaseURL),
			option.WithMaxRetries(cfg.OpenAI.MaxRetries),
			option.WithRequestTimeout(cfg.OpenAI.RequestTimeout),
		), cfg.Model.Name)

	// A failed load keeps the server up: health reports unhealthy and /infer
	// answers 503.
	handle, err := inference.Load(ctx, cfg.Model, rt, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to load model")
		handle = nil
	}

	visionService := service.NewVisionService(log, handle, imagecodec.New(cfg.Image.TempDir).WithMaxPixels(cfg.Image.MaxPixels))

	if cfg.CacheEnable {
		redisCache := cache.NewRedisCache(cfg.RedisConfig)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisConfig.Addr).Msg("redis unreachable, cache disabled")
			redisCache.Close()
		} else {
			visionService.SetCacheClient(redisCache)
			defer redisCache.Close()
			log.Info().Str("addr", cfg.RedisConfig.Addr).Msg("set redis as cache")
		}
	}

	v := handler.NewVisionHandler(visionService, log, cfg.Server.MaxBodyBytes)

	r := chi.NewRouter()
	r.Use([]func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		logger.Middleware(log),
		handler.Recoverer(log),
		handler.Throttle(cfg.Server.ThrottleLimit, log),
		handler.Timeout(cfg.Server.Timeout),
		metrics.Middleware,
	}...)
	if cfg.CORS.Enable {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: cfg.CORS.AllowedMethods,
			AllowedHeaders: cfg.CORS.AllowedHeaders,
			MaxAge:         300,
		}))
	}

	v.Routes(r)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Bool("model_loaded", handle.Loaded()).
			Str("model", handle.Name()).
			Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server stopped")
}

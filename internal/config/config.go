package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server      ServerConfig
	Model       ModelConfig
	OpenAI      OpenAIConfig
	Image       ImageConfig
	RedisConfig RedisConfig
	CORS        CORSConfig
	Log         LogConfig
	CacheEnable bool `env:"CACHE_ENABLE"`
}

type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"5000"`
	Timeout         time.Duration `env:"SERVER_TIMEOUT" envDefault:"2m"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ThrottleLimit   int           `env:"SERVER_THROTTLE_LIMIT" envDefault:"50"`
	MaxBodyBytes    int64         `env:"SERVER_MAX_BODY_BYTES" envDefault:"20971520"`
}

// ModelConfig describes the model served by the runtime. Name is also the
// model id sent with every chat completion.
type ModelConfig struct {
	Path        string `env:"MODEL_PATH" envDefault:"/models"`
	Name        string `env:"MODEL_NAME" envDefault:"llama-3.2-11b-vision-instruct-q4_k_m.gguf"`
	ClipName    string `env:"CLIP_MODEL_NAME" envDefault:"mmproj-model-f16.gguf"`
	VerifyFiles bool   `env:"MODEL_VERIFY_FILES" envDefault:"false"`
	Probe       bool   `env:"MODEL_PROBE" envDefault:"true"`
}

type OpenAIConfig struct {
	APIKey         string        `env:"OPENAI_API_KEY"`
	BaseURL        string        `env:"OPENAI_BASE_URL" envDefault:"http://localhost:8000/v1"`
	MaxRetries     int           `env:"OPENAI_MAX_RETRIES" envDefault:"0"`
	RequestTimeout time.Duration `env:"OPENAI_REQUEST_TIMEOUT" envDefault:"5m"`
}

type ImageConfig struct {
	// TempDir holds normalized request images. Empty means os.TempDir().
	TempDir string `env:"IMAGE_TEMP_DIR"`
	// MaxPixels bounds width*height of accepted images.
	MaxPixels int64 `env:"IMAGE_MAX_PIXELS" envDefault:"178956970"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" envDefault:"redis:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"REDIS_TTL" envDefault:"10m"`
}

type CORSConfig struct {
	Enable         bool     `env:"CORS_ENABLE"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	AllowedMethods []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,X-Request-Id"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

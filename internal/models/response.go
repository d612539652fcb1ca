package models

import (
	"time"

	"github.com/kdduha/llama-vision/backend/internal/apperr"
)

const (
	ServiceName    = "Llama 3.2 Vision Inference API"
	ServiceVersion = "1.0.0"

	// NotLoaded stands in for the model name while no model is loaded.
	NotLoaded = "not loaded"
)

type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// now is swapped by tests to pin timestamps.
var now = time.Now

func timestamp() string {
	return now().UTC().Format(time.RFC3339Nano)
}

// TokenUsage is the token accounting reported by the runtime.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type VisionResponse struct {
	Success      bool           `json:"success" example:"true"`
	ResponseText string         `json:"response_text" example:"A cat sitting on a windowsill."`
	Model        string         `json:"model" example:"llama-3.2-11b-vision-instruct-q4_k_m.gguf"`
	Timestamp    string         `json:"timestamp" example:"2025-01-01T12:00:00Z"`
	TokenUsage   *TokenUsage    `json:"token_usage,omitempty"`
	Metadata     map[string]any `json:"metadata"`
}

type ErrorResponse struct {
	Success   bool           `json:"success" example:"false"`
	Error     string         `json:"error" example:"Missing required field: prompt"`
	ErrorType apperr.Kind    `json:"error_type" example:"validation"`
	Timestamp string         `json:"timestamp" example:"2025-01-01T12:00:00Z"`
	Details   map[string]any `json:"details,omitempty"`
}

type HealthResponse struct {
	Status      HealthStatus `json:"status" example:"healthy"`
	ModelLoaded bool         `json:"model_loaded" example:"true"`
	ModelName   string       `json:"model_name" example:"llama-3.2-11b-vision-instruct-q4_k_m.gguf"`
	Timestamp   string       `json:"timestamp" example:"2025-01-01T12:00:00Z"`
}

type ServiceInfo struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
	Model     string            `json:"model"`
}

// NewVisionResponse assembles a successful inference result. Metadata echoes
// the effective generation parameters.
func NewVisionResponse(text, model string, usage *TokenUsage, params GenerationParams) *VisionResponse {
	return &VisionResponse{
		Success:      true,
		ResponseText: text,
		Model:        model,
		Timestamp:    timestamp(),
		TokenUsage:   usage,
		Metadata: map[string]any{
			"max_tokens":  params.MaxTokens,
			"temperature": params.Temperature,
			"top_p":       params.TopP,
		},
	}
}

func NewErrorResponse(message string, kind apperr.Kind, details map[string]any) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     message,
		ErrorType: kind,
		Timestamp: timestamp(),
		Details:   details,
	}
}

// NewHealthResponse reports degraded when the model is loaded without vision
// support.
func NewHealthResponse(loaded, vision bool, modelName string) *HealthResponse {
	resp := &HealthResponse{
		Status:      StatusUnhealthy,
		ModelLoaded: loaded,
		ModelName:   NotLoaded,
		Timestamp:   timestamp(),
	}
	if loaded {
		resp.ModelName = modelName
		resp.Status = StatusHealthy
		if !vision {
			resp.Status = StatusDegraded
		}
	}
	return resp
}

// NewServiceInfo describes the service; modelName is empty when no model is
// loaded.
func NewServiceInfo(modelName string) *ServiceInfo {
	if modelName == "" {
		modelName = NotLoaded
	}
	return &ServiceInfo{
		Service: ServiceName,
		Version: ServiceVersion,
		Endpoints: map[string]string{
			"/health":  "GET - Health check",
			"/infer":   "POST - Run inference with image and text prompt",
			"/metrics": "GET - Prometheus metrics",
			"/swagger": "GET - OpenAPI documentation",
		},
		Model: modelName,
	}
}

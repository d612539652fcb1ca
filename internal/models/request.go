package models

import (
	"github.com/kdduha/llama-vision/backend/internal/apperr"
)

const (
	DefaultMaxTokens   = 256
	DefaultTemperature = 0.7
	DefaultTopP        = 0.95

	MinMaxTokens   = 1
	MaxMaxTokens   = 4096
	MaxTemperature = 2.0
	MaxTopP        = 1.0
)

// InferenceRequest represents request for infer endpoint
type InferenceRequest struct {
	Prompt string `json:"prompt" validate:"required" example:"Describe this image"`
	Image  string `json:"image" validate:"required" example:"data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAA..."`

	// Optional generation parameters
	MaxTokens   *int     `json:"max_tokens,omitempty" example:"256" default:"256"`
	Temperature *float64 `json:"temperature,omitempty" example:"0.7" default:"0.7"`
	TopP        *float64 `json:"top_p,omitempty" example:"0.95" default:"0.95"`
}

// Validate checks required fields first, prompt before image, then the
// sampling bounds. It does no decoding work.
func (r InferenceRequest) Validate() error {
	if r.Prompt == "" {
		return apperr.Validation("Missing required field: prompt")
	}
	if r.Image == "" {
		return apperr.Validation("Missing required field: image")
	}
	if r.MaxTokens != nil && (*r.MaxTokens < MinMaxTokens || *r.MaxTokens > MaxMaxTokens) {
		return apperr.Validationf("max_tokens must be between %d and %d", MinMaxTokens, MaxMaxTokens)
	}
	if r.Temperature != nil && (*r.Temperature < 0 || *r.Temperature > MaxTemperature) {
		return apperr.Validationf("temperature must be between 0 and %g", MaxTemperature)
	}
	if r.TopP != nil && (*r.TopP < 0 || *r.TopP > MaxTopP) {
		return apperr.Validationf("top_p must be between 0 and %g", MaxTopP)
	}
	return nil
}

// GenerationParams holds the effective sampling parameters of a request.
type GenerationParams struct {
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// Params returns the sampling parameters with defaults applied.
func (r InferenceRequest) Params() GenerationParams {
	p := GenerationParams{
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
	}
	if r.MaxTokens != nil {
		p.MaxTokens = *r.MaxTokens
	}
	if r.Temperature != nil {
		p.Temperature = *r.Temperature
	}
	if r.TopP != nil {
		p.TopP = *r.TopP
	}
	return p
}

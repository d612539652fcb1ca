package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/kdduha/llama-vision/backend/internal/models"
)

func getCacheKey(model string, req models.InferenceRequest, params models.GenerationParams) string {
	imageHash := sha256.Sum256([]byte(req.Image))

	data := []string{
		model,
		req.Prompt,
		hex.EncodeToString(imageHash[:]),
		fmt.Sprintf("%d", params.MaxTokens),
		fmt.Sprintf("%f", params.Temperature),
		fmt.Sprintf("%f", params.TopP),
	}

	hash := sha256.Sum256([]byte(strings.Join(data, "-")))
	return hex.EncodeToString(hash[:])
}

package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/kdduha/llama-vision/backend/internal/apperr"
	"github.com/kdduha/llama-vision/backend/internal/models"
	"github.com/kdduha/llama-vision/backend/internal/service"
	"github.com/rs/zerolog"
)

const defaultMaxBodyBytes = 20 << 20

type visionService interface {
	Ready() bool
	Health() *models.HealthResponse
	Info() *models.ServiceInfo
	Infer(ctx context.Context, req models.InferenceRequest) (*models.VisionResponse, error)
}

type VisionHandler struct {
	service      visionService
	logger       zerolog.Logger
	maxBodyBytes int64
}

func NewVisionHandler(service visionService, logger zerolog.Logger, maxBodyBytes int64) *VisionHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &VisionHandler{
		service:      service,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}
}

// Routes registers the service endpoints on r.
func (h *VisionHandler) Routes(r chi.Router) {
	r.Get("/", h.Index)
	r.Get("/health", h.Health)
	r.Post("/infer", h.Infer)
}

// Infer godoc
// @Summary Answer a prompt about an image
// @Description Runs the vision model on a base64 image (raw or data URL) and a text prompt.
// @Tags inference
// @Accept json
// @Produce json
// @Param request body models.InferenceRequest true "Inference request"
// @Success 200 {object} models.VisionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /infer [post]
func (h *VisionHandler) Infer(w http.ResponseWriter, r *http.Request) {
	if !h.service.Ready() {
		h.writeError(w, service.ErrNotLoaded())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		h.writeError(w, apperr.Validationf("Invalid JSON body: %v", err))
		return
	}
	if isEmptyJSON(body) {
		h.writeError(w, apperr.Validation("No JSON data provided"))
		return
	}

	var req models.InferenceRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		h.writeError(w, apperr.Validationf("Invalid JSON body: %v", err))
		return
	}

	if err := req.Validate(); err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.service.Infer(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Health godoc
// @Summary Health check
// @Description Reports whether the model is loaded. Degraded means loaded without a vision projector.
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Failure 503 {object} models.HealthResponse
// @Router /health [get]
func (h *VisionHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := h.service.Health()
	status := http.StatusOK
	if !resp.ModelLoaded {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, resp)
}

// Index godoc
// @Summary Service information
// @Tags info
// @Produce json
// @Success 200 {object} models.ServiceInfo
// @Router / [get]
func (h *VisionHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Info())
}

// isEmptyJSON reports a body carrying no data: blank, null or {}.
func isEmptyJSON(body []byte) bool {
	body = bytes.TrimSpace(body)
	switch {
	case len(body) == 0, bytes.Equal(body, []byte("null")):
		return true
	case len(body) >= 2 && body[0] == '{' && body[len(body)-1] == '}':
		return len(bytes.TrimSpace(body[1:len(body)-1])) == 0
	}
	return false
}

func (h *VisionHandler) writeError(w http.ResponseWriter, err error) {
	writeError(w, h.logger, err)
}

func (h *VisionHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	writeJSON(w, h.logger, status, v)
}

func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	ae := apperr.From(err)
	if ae.Kind == apperr.KindSystem {
		logger.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, logger, ae.StatusCode(), models.NewErrorResponse(ae.Message, ae.Kind, ae.Details))
}

func writeJSON(w http.ResponseWriter, logger zerolog.Logger, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"failed to encode response","error_type":"system"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

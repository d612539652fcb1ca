package models

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kdduha/llama-vision/backend/internal/apperr"
)

func pinClock(t *testing.T) {
	t.Helper()
	orig := now
	now = func() time.Time { return time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })
}

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		req     InferenceRequest
		wantMsg string
	}{
		{"ok", InferenceRequest{Prompt: "hi", Image: "abc"}, ""},
		{"missing prompt", InferenceRequest{Image: "abc"}, "Missing required field: prompt"},
		{"missing image", InferenceRequest{Prompt: "hi"}, "Missing required field: image"},
		{"missing both reports prompt", InferenceRequest{}, "Missing required field: prompt"},
		{"max tokens low", InferenceRequest{Prompt: "hi", Image: "a", MaxTokens: intPtr(0)}, "max_tokens must be between 1 and 4096"},
		{"max tokens high", InferenceRequest{Prompt: "hi", Image: "a", MaxTokens: intPtr(4097)}, "max_tokens must be between 1 and 4096"},
		{"max tokens edge", InferenceRequest{Prompt: "hi", Image: "a", MaxTokens: intPtr(4096)}, ""},
		{"temperature high", InferenceRequest{Prompt: "hi", Image: "a", Temperature: floatPtr(2.5)}, "temperature must be between 0 and 2"},
		{"temperature zero", InferenceRequest{Prompt: "hi", Image: "a", Temperature: floatPtr(0)}, ""},
		{"top_p negative", InferenceRequest{Prompt: "hi", Image: "a", TopP: floatPtr(-0.1)}, "top_p must be between 0 and 1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected %q, got nil", tc.wantMsg)
			}
			ae := apperr.From(err)
			if ae.Kind != apperr.KindValidation || ae.Message != tc.wantMsg {
				t.Fatalf("got %s/%q, want validation/%q", ae.Kind, ae.Message, tc.wantMsg)
			}
		})
	}
}

func TestParams_Defaults(t *testing.T) {
	got := InferenceRequest{Prompt: "p", Image: "i"}.Params()
	want := GenerationParams{MaxTokens: 256, Temperature: 0.7, TopP: 0.95}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}

	got = InferenceRequest{MaxTokens: intPtr(300), Temperature: floatPtr(0), TopP: floatPtr(0.5)}.Params()
	want = GenerationParams{MaxTokens: 300, Temperature: 0, TopP: 0.5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestNewVisionResponse(t *testing.T) {
	pinClock(t)
	usage := &TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}

	got := NewVisionResponse("a cat", "llava", usage, GenerationParams{MaxTokens: 64, Temperature: 0.2, TopP: 0.9})
	want := &VisionResponse{
		Success:      true,
		ResponseText: "a cat",
		Model:        "llava",
		Timestamp:    "2025-03-01T10:30:00Z",
		TokenUsage:   usage,
		Metadata: map[string]any{
			"max_tokens":  64,
			"temperature": 0.2,
			"top_p":       0.9,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestNewErrorResponse(t *testing.T) {
	pinClock(t)
	got := NewErrorResponse("Model not loaded", apperr.KindModel, map[string]any{"message": "x"})
	if got.Success || got.ErrorType != apperr.KindModel || got.Timestamp != "2025-03-01T10:30:00Z" {
		t.Fatalf("unexpected error response: %+v", got)
	}
}

func TestNewHealthResponse(t *testing.T) {
	cases := []struct {
		name           string
		loaded, vision bool
		wantStatus     HealthStatus
		wantName       string
	}{
		{"loaded", true, true, StatusHealthy, "llava"},
		{"no projector", true, false, StatusDegraded, "llava"},
		{"unloaded", false, false, StatusUnhealthy, NotLoaded},
	}
	for _, tc := range cases {
		got := NewHealthResponse(tc.loaded, tc.vision, "llava")
		if got.Status != tc.wantStatus || got.ModelName != tc.wantName || got.ModelLoaded != tc.loaded {
			t.Fatalf("%s: got %+v", tc.name, got)
		}
	}
}

func TestNewServiceInfo(t *testing.T) {
	if got := NewServiceInfo("").Model; got != NotLoaded {
		t.Fatalf("model = %q, want %q", got, NotLoaded)
	}
	info := NewServiceInfo("llava")
	if info.Model != "llava" || info.Version != ServiceVersion {
		t.Fatalf("info = %+v", info)
	}
	if _, ok := info.Endpoints["/infer"]; !ok {
		t.Fatal("missing /infer endpoint")
	}
}
